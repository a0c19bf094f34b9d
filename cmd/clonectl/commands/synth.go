package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var synthCmd = &cobra.Command{
	Use:   "synth <text>...",
	Short: "Synthesize text in the recorded voice",
	Long: `Synthesize text in the recorded voice.

Requires a speaker embedding, so run this after 'record stop' has
completed and 'use' has unlocked the session. The call returns as soon
as synthesis starts; poll 'status' until the state is output_ready.

Examples:
  clonectl synth "Hello from my cloned voice"
  clonectl synth Hello from my cloned voice`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		text := strings.Join(args, " ")
		if err := apiPost("/api/synthesize", map[string]string{"text": text}, nil); err != nil {
			return err
		}
		fmt.Println("synthesizing")
		return nil
	},
}

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Toggle local playback of the synthesized output",
	RunE: func(cmd *cobra.Command, args []string) error {
		var out map[string]bool
		if err := apiPost("/api/playback/toggle", nil, &out); err != nil {
			return err
		}
		if out["playing"] {
			fmt.Println("playing")
		} else {
			fmt.Println("stopped")
		}
		return nil
	},
}

var downloadCmd = &cobra.Command{
	Use:   "download [file]",
	Short: "Save the synthesized output as a WAV file",
	Long: `Save the synthesized output as a WAV file.

Without an argument the server's timestamped filename is used.

Examples:
  clonectl download
  clonectl download output.wav`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		resp, err := httpClient.Get(serverURL + "/api/download")
		if err != nil {
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode >= 300 {
			return apiError(resp)
		}

		name := ""
		if len(args) == 1 {
			name = args[0]
		} else {
			name = filenameFromDisposition(resp.Header.Get("Content-Disposition"))
			if name == "" {
				name = "output.wav"
			}
		}

		f, err := os.Create(name)
		if err != nil {
			return err
		}
		defer func() { _ = f.Close() }()

		n, err := io.Copy(f, resp.Body)
		if err != nil {
			return err
		}
		fmt.Printf("wrote %s (%d bytes)\n", name, n)
		return nil
	},
}

// filenameFromDisposition extracts the filename from a Content-Disposition
// header, returning "" when absent.
func filenameFromDisposition(header string) string {
	const marker = `filename="`
	i := strings.Index(header, marker)
	if i < 0 {
		return ""
	}
	rest := header[i+len(marker):]
	j := strings.IndexByte(rest, '"')
	if j < 0 {
		return ""
	}
	return rest[:j]
}
