package cmd

import (
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutorcore/internal/ui/report"
)

var reviewsCmd = &cobra.Command{
	Use:   "reviews",
	Short: "Work with spaced-repetition reviews",
}

var reviewsDueCmd = &cobra.Command{
	Use:   "due <user-id>",
	Short: "List reviews that are due now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		cards, err := a.Reviews.GetReviewsDue(cmd.Context(), args[0], limit)
		if err != nil {
			return errors.Wrap(err, "list due reviews")
		}
		fmt.Fprint(cmd.OutOrStdout(), report.Reviews(cards, time.Now()))
		return nil
	},
}

var reviewsCountCmd = &cobra.Command{
	Use:   "count <user-id>",
	Short: "Count reviews that are due now",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		n, err := a.Reviews.CountReviewsDue(cmd.Context(), args[0])
		if err != nil {
			return errors.Wrap(err, "count due reviews")
		}
		fmt.Fprintln(cmd.OutOrStdout(), n)
		return nil
	},
}

var reviewsRateCmd = &cobra.Command{
	Use:   "rate <review-id> <rating>",
	Short: "Rate a review: 1 again, 2 hard, 3 good, 4 easy",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		rating, err := strconv.Atoi(args[1])
		if err != nil {
			return errors.Errorf("rating must be a number 1-4, got %q", args[1])
		}

		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()

		res, err := a.Reviews.RecordReview(cmd.Context(), args[0], rating)
		if err != nil {
			return errors.Wrap(err, "record review")
		}
		fmt.Fprint(cmd.OutOrStdout(), report.ReviewResult(res))
		return nil
	},
}

func init() {
	reviewsDueCmd.Flags().Int("limit", 0, "Maximum reviews to list (default: session cap)")

	reviewsCmd.AddCommand(reviewsDueCmd)
	reviewsCmd.AddCommand(reviewsCountCmd)
	reviewsCmd.AddCommand(reviewsRateCmd)
}
