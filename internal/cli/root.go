// Package cli provides the command-line interface for mailbrief.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/raphaelgruber/mailbrief/internal/client"
	"github.com/raphaelgruber/mailbrief/internal/config"
	"github.com/spf13/cobra"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	userID    string
	serverURL string
	verbose   bool

	// apiClient talks to the mailbrief server. Built in PersistentPreRunE.
	apiClient *client.Client
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "mailbrief",
	Short: "Email thread analysis and research briefs",
	Long: `Mailbrief analyzes email threads: it extracts stakeholders, action items,
deadlines and decisions, derives todos and calendar events, and runs
background research on the topics the thread raises.

All commands talk to a running mailbrief server. Point at it with
--server or MAILBRIEF_SERVER_URL, and identify yourself with --user
or MAILBRIEF_USER.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Version and help never hit the server.
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if userID == "" {
			userID = os.Getenv("MAILBRIEF_USER")
		}
		if userID == "" {
			return fmt.Errorf("no user set: pass --user or set MAILBRIEF_USER")
		}

		cfg := config.Load()
		if serverURL == "" {
			serverURL = cfg.ServerURL
		}
		apiClient = client.New(serverURL, userID,
			client.WithTimeout(cfg.ClientTimeout),
			client.WithToken(cfg.InternalToken),
		)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&userID, "user", "u", "", "user id (or MAILBRIEF_USER)")
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s", "", "server URL (or MAILBRIEF_SERVER_URL)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	// Add subcommands
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(researchCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(todosCmd)
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(statsCmd)
}

// exitWithError prints an error message and exits with code 1.
func exitWithError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// readContent returns the contents of the file at path, or stdin when path
// is empty or "-".
func readContent(path string) (string, error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", path, err)
	}
	return string(data), nil
}
