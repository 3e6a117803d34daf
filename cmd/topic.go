package cmd

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/abhisek/tutorcore/internal/store"
)

var topicCmd = &cobra.Command{
	Use:   "topic",
	Short: "Manage a learner's topics",
}

var topicCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a topic with ordered subtopics",
	Example: `  tutorcore topic create --user u1 --id fractions --name Fractions \
    --subtopic "Halves=identify,compare" --subtopic "Quarters=identify"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		id, _ := cmd.Flags().GetString("id")
		user, _ := cmd.Flags().GetString("user")
		name, _ := cmd.Flags().GetString("name")
		specs, _ := cmd.Flags().GetStringArray("subtopic")
		if id == "" || user == "" {
			return errors.New("--id and --user are required")
		}
		if len(specs) == 0 {
			return errors.New("at least one --subtopic is required")
		}
		if name == "" {
			name = id
		}

		a, closeFn, err := setup(cmd)
		if err != nil {
			return err
		}
		defer closeFn()
		ctx := cmd.Context()

		subtopics := make([]store.Subtopic, len(specs))
		concepts := make([][]string, len(specs))
		for i, spec := range specs {
			subName, conceptList, _ := strings.Cut(spec, "=")
			subtopics[i] = store.Subtopic{
				ID:    fmt.Sprintf("%s-s%d", id, i),
				Name:  strings.TrimSpace(subName),
				Order: i,
			}
			for _, c := range strings.Split(conceptList, ",") {
				if c = strings.TrimSpace(c); c != "" {
					concepts[i] = append(concepts[i], c)
				}
			}
		}

		topic := store.Topic{ID: id, UserID: user, Name: name}
		if err := a.Progression.InitializeTopic(ctx, &topic, subtopics); err != nil {
			return errors.Wrap(err, "create topic")
		}
		for i, sub := range subtopics {
			for j, c := range concepts[i] {
				err := a.Store.Curriculum().CreateConcept(ctx, &store.Concept{
					ID:         fmt.Sprintf("%s-c%d", sub.ID, j),
					SubtopicID: sub.ID,
					Name:       c,
					Order:      j,
				})
				if err != nil {
					return errors.Wrapf(err, "create concept %q", c)
				}
			}
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Created topic %s with %d subtopic(s)\n", topic.ID, len(subtopics))
		for _, sub := range subtopics {
			state := "open"
			if sub.IsLocked {
				state = "locked"
			}
			fmt.Fprintf(out, "  %-24s  %-30s  %s\n", sub.ID, sub.Name, state)
		}
		return nil
	},
}

func init() {
	topicCreateCmd.Flags().String("id", "", "Topic id")
	topicCreateCmd.Flags().String("user", "", "Learner id")
	topicCreateCmd.Flags().String("name", "", "Display name (defaults to the id)")
	topicCreateCmd.Flags().StringArray("subtopic", nil, `Subtopic as "Name=concept,concept" (repeatable, in order)`)

	topicCmd.AddCommand(topicCreateCmd)
}
