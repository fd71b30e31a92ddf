package cli

import (
	"context"
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var analyzeTitle string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze an email thread",
	Long: `Analyze an email thread and print the structured extraction.

Reads the thread content from a file, or from stdin when no file is given.
The server stores the thread, runs the extraction, and derives todos and
calendar events from action items and deadlines.

Examples:
  mailbrief analyze thread.txt
  cat thread.txt | mailbrief analyze --title "Q3 budget review"`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeTitle, "title", "t", "", "thread title (derived from content when omitted)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := ""
	if len(args) > 0 {
		path = args[0]
	}
	content, err := readContent(path)
	if err != nil {
		return err
	}
	if content == "" {
		return fmt.Errorf("thread content is empty")
	}

	ctx := context.Background()
	resp, err := apiClient.Analyze(ctx, analyzeTitle, content)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	fmt.Printf("Thread:   %s\n", resp.ThreadID)
	fmt.Printf("Analysis: %s\n", resp.AnalysisID)
	if resp.Degraded {
		fmt.Println(defaultTheme.errorStyle().Render("Extraction degraded: results are empty, retry later."))
	}

	a := resp.Analysis
	if a == nil {
		return nil
	}

	section := lipgloss.NewStyle().Bold(true)

	if len(a.Stakeholders) > 0 {
		fmt.Println("\n" + section.Render("Stakeholders"))
		for _, s := range a.Stakeholders {
			fmt.Printf("  • %s", s.Name)
			if s.Role != "" {
				fmt.Printf(" (%s)", s.Role)
			}
			if s.Email != "" {
				fmt.Printf(" <%s>", s.Email)
			}
			fmt.Println()
		}
	}

	if len(a.ActionItems) > 0 {
		fmt.Println("\n" + section.Render("Action items"))
		for _, item := range a.ActionItems {
			fmt.Printf("  • [%s] %s", item.Priority, item.Description)
			if item.Assignee != "" {
				fmt.Printf(" (%s)", item.Assignee)
			}
			fmt.Println()
		}
	}

	if len(a.Deadlines) > 0 {
		fmt.Println("\n" + section.Render("Deadlines"))
		for _, d := range a.Deadlines {
			fmt.Printf("  • %s: %s\n", d.Date, d.Description)
		}
	}

	if len(a.KeyDecisions) > 0 {
		fmt.Println("\n" + section.Render("Key decisions"))
		for _, d := range a.KeyDecisions {
			fmt.Printf("  • %s\n", d.Decision)
		}
	}

	if len(a.OpenQuestions) > 0 {
		fmt.Println("\n" + section.Render("Open questions"))
		for _, q := range a.OpenQuestions {
			fmt.Printf("  • %s\n", q.Question)
		}
	}

	if len(a.SuggestedReplies) > 0 {
		fmt.Println("\n" + section.Render("Suggested replies"))
		for i, r := range a.SuggestedReplies {
			fmt.Printf("\n  %d. %s\n", i+1, r.Title)
			if verbose {
				fmt.Printf("     %s\n", r.Content)
			}
		}
	}

	if len(resp.Todos) > 0 || len(resp.Events) > 0 {
		fmt.Printf("\nDerived %d todo(s) and %d calendar event(s).\n", len(resp.Todos), len(resp.Events))
	}
	fmt.Printf("\nRun research with:\n  mailbrief research %s %s\n", resp.AnalysisID, pathHint(path))
	return nil
}

// pathHint echoes the content source back for the follow-up command.
func pathHint(path string) string {
	if path == "" {
		return "<file>"
	}
	return path
}
