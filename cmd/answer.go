package cmd

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutorcore/internal/tracker"
	"github.com/abhisek/tutorcore/internal/ui/report"
)

var answerCmd = &cobra.Command{
	Use:   "answer",
	Short: "Record a learner answer and update progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		in := tracker.AnswerInput{}
		in.UserID, _ = f.GetString("user")
		in.SubtopicID, _ = f.GetString("subtopic")
		in.ConceptID, _ = f.GetString("concept")
		in.QuestionID, _ = f.GetString("question")
		in.SessionID, _ = f.GetString("session")
		in.IsCorrect, _ = f.GetBool("correct")
		in.Depth, _ = f.GetString("depth")
		in.HintsUsed, _ = f.GetInt("hints")
		if took, _ := f.GetDuration("took"); took > 0 {
			in.TimeToAnswer = &took
		}
		if in.QuestionID == "" {
			in.QuestionID = uuid.NewString()
		}

		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		out, err := a.Tracker.RecordAnswer(cmd.Context(), in)
		if err != nil {
			return errors.Wrap(err, "record answer")
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Outcome(out))
		return nil
	},
}

func init() {
	f := answerCmd.Flags()
	f.String("user", "", "Learner id")
	f.String("subtopic", "", "Subtopic id")
	f.String("concept", "", "Concept id (optional)")
	f.String("question", "", "Question id (random when empty)")
	f.String("session", "", "Session id")
	f.Bool("correct", false, "Whether the answer was correct")
	f.String("depth", "", "Depth of understanding: NONE, SHALLOW or DEEP")
	f.Int("hints", 0, "Hints used")
	f.Duration("took", time.Duration(0), "Time taken to answer, e.g. 45s")
}
