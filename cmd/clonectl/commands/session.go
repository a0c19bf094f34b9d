package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

var recordCmd = &cobra.Command{
	Use:   "record <start|stop>",
	Short: "Start or stop a voice sample recording",
	Long: `Start or stop a voice sample recording.

Starting acquires the studio's configured microphone; stopping hands the
sample to the inference backend for speaker embedding extraction.

Examples:
  clonectl record start
  clonectl record stop`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"start", "stop"},
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]string
		if err := apiPost("/api/record/"+args[0], nil, &out); err != nil {
			return err
		}
		fmt.Println(out["status"])
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Discard the recording, embedding and output",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiPost("/api/session/clear", nil, nil); err != nil {
			return err
		}
		fmt.Println("cleared")
		return nil
	},
}

var useCmd = &cobra.Command{
	Use:   "use",
	Short: "Unlock synthesis for the current recording",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := apiPost("/api/session/use", nil, nil); err != nil {
			return err
		}
		fmt.Println("unlocked")
		return nil
	},
}
