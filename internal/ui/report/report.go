// Package report formats engine results for the terminal.
package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/tutorcore/internal/difficulty"
	"github.com/abhisek/tutorcore/internal/progression"
	"github.com/abhisek/tutorcore/internal/spacedrep"
	"github.com/abhisek/tutorcore/internal/store"
	"github.com/abhisek/tutorcore/internal/tracker"
	"github.com/abhisek/tutorcore/internal/ui/components"
	"github.com/abhisek/tutorcore/internal/ui/theme"
)

const barWidth = 48

// Summary renders a topic progress summary.
func Summary(s *progression.Summary) string {
	var b strings.Builder

	status := string(s.Status)
	if s.IsComplete {
		status = theme.Good.Render(status)
	}
	fmt.Fprintf(&b, "%s  %s\n", theme.Title.Render(s.Name), theme.Dim.Render(s.TopicID+" · "+status))
	b.WriteString(components.NewProgressBar("topic", s.MasteryPercentage, true, barWidth).View())
	b.WriteString("\n\n")

	for _, sub := range s.Subtopics {
		label := fmt.Sprintf("%2d. %-20s", sub.Order, truncate(sub.Name, 20))
		if sub.IsLocked {
			b.WriteString(theme.Dim.Render(label + "  locked"))
		} else {
			b.WriteString(components.NewProgressBar(label, sub.MasteryPercentage, true, barWidth+8).View())
		}
		if sub.Concepts > 0 {
			b.WriteString(theme.Dim.Render(fmt.Sprintf("  %d/%d concepts", sub.MasteredConcepts, sub.Concepts)))
		}
		b.WriteString("\n")
	}

	if s.ReviewsDue > 0 {
		fmt.Fprintf(&b, "\n%s\n", theme.Warn.Render(fmt.Sprintf("%d review(s) due", s.ReviewsDue)))
	}
	fmt.Fprintf(&b, "\n%s %s\n", theme.Label.Render("Next:"), Action(s.NextAction))
	return b.String()
}

// Action renders a recommended next step as one line.
func Action(a progression.Action) string {
	switch a.Type {
	case progression.ActionComplete:
		return theme.Good.Render("topic complete")
	case progression.ActionReview:
		return fmt.Sprintf("review %d due card(s)", a.ReviewsDue)
	case progression.ActionContinue:
		return fmt.Sprintf("continue %s (concept %s)", a.SubtopicID, a.ConceptID)
	case progression.ActionUnlock:
		return fmt.Sprintf("unlock %s", a.SubtopicID)
	}
	return string(a.Type)
}

// Reviews renders due review cards as a table, most overdue first as
// given.
func Reviews(cards []store.ReviewCard, now time.Time) string {
	if len(cards) == 0 {
		return theme.Hint.Render("Nothing due. Come back later.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-36s  %-8s  %-24s  %-10s  %8s  %6s\n",
		"ID", "Type", "Item", "Status", "Overdue", "Recall")
	b.WriteString(strings.Repeat("─", 102))
	b.WriteString("\n")
	for _, c := range cards {
		fmt.Fprintf(&b, "%-36s  %-8s  %-24s  %-10s  %7.1fd  %5.0f%%\n",
			c.ID, c.Type, truncate(itemID(c), 24), c.Status,
			spacedrep.OverdueDays(c, now), 100*spacedrep.CalculateRetention(c, now))
	}
	fmt.Fprintf(&b, "\n%d due\n", len(cards))
	return b.String()
}

// ReviewResult renders the outcome of a rating.
func ReviewResult(r spacedrep.ReviewResult) string {
	return fmt.Sprintf("%s %s  next review %s  (reps %d, lapses %d)\n",
		theme.Label.Render(r.ReviewID),
		theme.Good.Render(string(r.NewStatus)),
		r.NextReviewDate.Local().Format("2006-01-02 15:04"),
		r.Reps, r.Lapses)
}

// Recommendation renders a difficulty recommendation.
func Recommendation(r difficulty.Recommendation) string {
	var b strings.Builder
	switch {
	case !r.SufficientData:
		fmt.Fprintf(&b, "Stay at %d: %s\n", r.Current,
			theme.Hint.Render(fmt.Sprintf("only %d answer(s), need %d", r.Metrics.TotalQuestions, difficulty.MinSampleSize)))
	case r.ShouldAdjust:
		style := theme.Good
		if r.Next < r.Current {
			style = theme.Warn
		}
		fmt.Fprintf(&b, "Move %d → %s\n", r.Current, style.Render(fmt.Sprint(r.Next)))
	default:
		fmt.Fprintf(&b, "Stay at %d\n", r.Current)
	}
	if r.SufficientData {
		fmt.Fprintf(&b, "%s\n", theme.Dim.Render(fmt.Sprintf("effective accuracy %.0f%% over %d answer(s)",
			100*r.EffectiveAccuracy, r.Metrics.TotalQuestions)))
	}
	return b.String()
}

// Outcome renders what changed after an answer was recorded.
func Outcome(o *tracker.Outcome) string {
	var b strings.Builder
	b.WriteString(components.NewProgressBar(o.Mastery.SubtopicID, o.Mastery.SubtopicMastery, true, barWidth).View())
	b.WriteString("\n")
	b.WriteString(components.NewProgressBar(o.Mastery.TopicID, o.Mastery.TopicMastery, true, barWidth).View())
	b.WriteString("\n")
	if o.Unlocked != nil {
		fmt.Fprintf(&b, "%s %s\n", theme.Good.Render("Unlocked"), o.Unlocked.Name)
	}
	for _, c := range o.ReviewCards {
		fmt.Fprintf(&b, "%s %s %s\n", theme.Label.Render("Scheduled review"), c.Type, itemID(c))
	}
	if o.TopicCompleted {
		b.WriteString(theme.Good.Render("Topic complete!") + "\n")
	}
	return b.String()
}

func itemID(c store.ReviewCard) string {
	switch {
	case c.ConceptID != "":
		return c.ConceptID
	case c.SubtopicID != "":
		return c.SubtopicID
	}
	return c.TopicID
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
