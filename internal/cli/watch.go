package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/mailbrief/internal/service"
)

var watchCmd = &cobra.Command{
	Use:   "watch <analysis-id>",
	Short: "Follow research progress for an analysis",
	Long: `Stream research progress over a websocket until every topic settles.

Prints one line per update. Useful after detaching from 'mailbrief research'
with Ctrl+C while the server keeps working.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	err := apiClient.Watch(ctx, args[0], func(s service.Summary) error {
		done := 0
		for _, t := range s.Topics {
			if !t.IsLoading {
				done++
			}
		}
		fmt.Printf("%d/%d topics settled\n", done, len(s.Topics))
		for _, t := range s.Topics {
			marker := "…"
			if !t.IsLoading {
				marker = "✓"
			}
			fmt.Printf("  %s %s\n", marker, t.Topic)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("watch: %w", err)
	}
	fmt.Println(defaultTheme.completedStyle().Render("All topics settled."))
	return nil
}
