package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutorcore/internal/difficulty"
	"github.com/abhisek/tutorcore/internal/ui/report"
)

var difficultyCmd = &cobra.Command{
	Use:   "difficulty <user-id>",
	Short: "Recommend the next question difficulty",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f := cmd.Flags()
		current, _ := f.GetInt("current")
		scope := difficulty.Scope{}
		scope.TopicID, _ = f.GetString("topic")
		scope.SubtopicID, _ = f.GetString("subtopic")

		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		rec, err := a.Difficulty.Recommend(cmd.Context(), args[0], scope, current)
		if err != nil {
			return errors.Wrap(err, "recommend difficulty")
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Recommendation(rec))
		return nil
	},
}

func init() {
	f := difficultyCmd.Flags()
	f.Int("current", difficulty.DefaultDifficulty, "Current difficulty (1-5)")
	f.String("topic", "", "Limit to a topic")
	f.String("subtopic", "", "Limit to a subtopic (wins over --topic)")
}
