package cli

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/mailbrief/internal/client"
)

var researchPlain bool

var researchCmd = &cobra.Command{
	Use:   "research <analysis-id> [file]",
	Short: "Run topic research for an analysis",
	Long: `Identify research topics for an analysis and process each one.

Reads the original email content from a file, or from stdin when no file
is given. Topics that already have results are skipped, so rerunning the
command after a partial failure only retries the unsettled topics.

Examples:
  mailbrief research analysis-abc123 thread.txt
  cat thread.txt | mailbrief research analysis-abc123 --plain`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runResearch,
}

func init() {
	researchCmd.Flags().BoolVar(&researchPlain, "plain", false, "line-based output instead of the interactive display")
}

func runResearch(cmd *cobra.Command, args []string) error {
	analysisID := args[0]
	path := ""
	if len(args) > 1 {
		path = args[1]
	}
	content, err := readContent(path)
	if err != nil {
		return err
	}
	if content == "" {
		return fmt.Errorf("email content is empty")
	}

	if researchPlain {
		return runResearchPlain(analysisID, content)
	}

	p := tea.NewProgram(newResearchModel())

	rec := client.NewReconciler(apiClient, analysisID, content, func(s client.Snapshot) {
		p.Send(snapshotMsg(s))
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		err := rec.Run(ctx)
		p.Send(reconcileDoneMsg{err: err})
	}()

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(researchModel); ok {
		// Ctrl+C leaves identified topics for the server; not an error.
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}
	return nil
}

// runResearchPlain drives the reconciler without the interactive display,
// for pipes and CI.
func runResearchPlain(analysisID, content string) error {
	settled := 0
	rec := client.NewReconciler(apiClient, analysisID, content, func(s client.Snapshot) {
		if s.Phase == client.PhaseResearching && s.Settled != settled {
			settled = s.Settled
			fmt.Printf("settled %d/%d topics\n", s.Settled, len(s.Topics))
		}
	})

	ctx := context.Background()
	fmt.Println("Identifying topics...")
	if err := rec.Run(ctx); err != nil {
		return err
	}

	snap := rec.Snapshot()
	for _, t := range snap.Topics {
		switch t.State {
		case client.TopicCompleted:
			fmt.Printf("done   %s\n", t.Topic)
			for _, line := range t.TLDR {
				fmt.Printf("       %s\n", line)
			}
		case client.TopicFailed:
			fmt.Printf("failed %s\n", t.Topic)
		}
	}
	return nil
}
