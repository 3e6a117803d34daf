package cmd

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutorcore/internal/ui/report"
)

var progressCmd = &cobra.Command{
	Use:   "progress <topic-id>",
	Short: "Show mastery, unlocks and the next step for a topic",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		ctx := cmd.Context()

		if recalc, _ := cmd.Flags().GetBool("recalculate"); recalc {
			if _, err := a.Mastery.CalculateTopicMastery(ctx, args[0]); err != nil {
				return errors.Wrap(err, "recalculate mastery")
			}
			if _, err := a.Progression.UnlockNext(ctx, args[0]); err != nil {
				return errors.Wrap(err, "unlock next subtopic")
			}
		}

		sum, err := a.Progression.ProgressSummary(ctx, args[0])
		if err != nil {
			return errors.Wrap(err, "progress summary")
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Summary(sum))
		return nil
	},
}

func init() {
	progressCmd.Flags().Bool("recalculate", false, "Recompute mastery from answer history first")
}
