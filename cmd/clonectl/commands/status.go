package commands

import (
	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the current session status",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]any
		if err := apiGet("/api/status", &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Probe the inference backend",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]any
		if err := apiGet("/api/health", &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Show recent session events",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out []map[string]any
		if err := apiGet("/api/events", &out); err != nil {
			return err
		}
		return printJSON(out)
	},
}
