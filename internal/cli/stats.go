package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/mailbrief/internal/db"
	"github.com/raphaelgruber/mailbrief/internal/metrics"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show record counts and LLM usage",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "raw JSON output")
}

func runStats(cmd *cobra.Command, args []string) error {
	raw, err := apiClient.Stats(context.Background())
	if err != nil {
		return fmt.Errorf("fetch stats: %w", err)
	}

	if statsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(raw)
	}

	var payload struct {
		Records db.Stats         `json:"records"`
		Usage   metrics.Snapshot `json:"usage"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return fmt.Errorf("decode stats: %w", err)
	}

	section := lipgloss.NewStyle().Bold(true)
	r := payload.Records

	fmt.Println(section.Render("Records"))
	fmt.Printf("  Threads:         %d\n", r.Threads)
	fmt.Printf("  Analyses:        %d\n", r.Analyses)
	fmt.Printf("  Topics:          %d (%d pending)\n", r.Topics, r.PendingTopics)
	fmt.Printf("  Results:         %d\n", r.Results)
	fmt.Printf("  Todos:           %d (%d open)\n", r.Todos, r.OpenTodos)
	fmt.Printf("  Calendar events: %d\n", r.CalendarEvents)

	fmt.Println("\n" + section.Render("LLM usage"))
	fmt.Printf("  Uptime: %.0fs\n", payload.Usage.UptimeSeconds)
	printOp("Extraction", payload.Usage.Extraction)
	printOp("Topic identify", payload.Usage.TopicIdentify)
	printOp("Research stage", payload.Usage.ResearchStage)
	printOp("Format stage", payload.Usage.FormatStage)
	return nil
}

func printOp(name string, op *metrics.OperationSnapshot) {
	if op == nil {
		return
	}
	line := fmt.Sprintf("  %-15s %d calls, avg %.0fms", name+":", op.Count, op.AvgTimeMs)
	if op.TotalInputTokens != nil && op.TotalOutputTokens != nil {
		line += fmt.Sprintf(", %d in / %d out tokens", *op.TotalInputTokens, *op.TotalOutputTokens)
	}
	fmt.Println(line)
}
