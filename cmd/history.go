package cmd

import (
	"fmt"
	"strings"

	"github.com/abhisek/mathdrill/internal/problemgen"
	"github.com/abhisek/mathdrill/internal/store"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List practiced problems and submitted answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")
		verbose, _ := cmd.Flags().GetBool("verbose")

		s, err := openStore(cmd)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer s.Close()

		ctx := cmd.Context()
		repo := s.SessionRepo()
		sessions, err := repo.ListSessions(ctx, store.QueryOpts{Limit: limit})
		if err != nil {
			return fmt.Errorf("list sessions: %w", err)
		}

		if len(sessions) == 0 {
			fmt.Println("No problems practiced yet.")
			return nil
		}

		fmt.Printf("%-19s  %-36s  %10s  %s\n", "Created", "Session", "Answer", "Result")
		fmt.Println(strings.Repeat("─", 84))

		for _, sess := range sessions {
			subs, err := repo.ListSubmissions(ctx, sess.ID)
			if err != nil {
				return fmt.Errorf("list submissions for %s: %w", sess.ID, err)
			}
			fmt.Printf("%-19s  %-36s  %10s  %s\n",
				sess.CreatedAt.Local().Format("2006-01-02 15:04:05"),
				sess.ID,
				problemgen.FormatAnswer(sess.CorrectAnswer),
				summarize(subs),
			)
			if verbose {
				fmt.Printf("  %s\n", sess.ProblemText)
				for _, sub := range subs {
					mark := "✗"
					if sub.IsCorrect {
						mark = "✓"
					}
					fmt.Printf("    %s %s  %s\n", mark, problemgen.FormatAnswer(sub.UserAnswer), sub.FeedbackText)
				}
				fmt.Println()
			}
		}

		stats, err := repo.Stats(ctx)
		if err != nil {
			return fmt.Errorf("stats: %w", err)
		}
		fmt.Println(strings.Repeat("─", 84))
		fmt.Printf("%d problems, %d answers, %d correct (%.0f%%)\n",
			stats.Sessions, stats.Submissions, stats.Correct, stats.Accuracy()*100)
		return nil
	},
}

// summarize describes a session's submissions in one short phrase.
func summarize(subs []store.Submission) string {
	if len(subs) == 0 {
		return "unanswered"
	}
	for _, sub := range subs {
		if sub.IsCorrect {
			return fmt.Sprintf("solved (%d tries)", len(subs))
		}
	}
	return fmt.Sprintf("unsolved (%d tries)", len(subs))
}

func init() {
	historyCmd.Flags().IntP("limit", "n", 20, "Number of problems to show")
	historyCmd.Flags().BoolP("verbose", "v", false, "Show problem text and every answer")
}
