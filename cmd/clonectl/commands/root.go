package commands

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var serverURL string

var rootCmd = &cobra.Command{
	Use:   "clonectl",
	Short: "Command line client for the voice cloning studio",
	Long: `clonectl drives a running voice cloning studio over its REST API.

The studio itself owns the microphone, the inference backend connection
and the session state; clonectl is a thin remote control.

Examples:
  clonectl status
  clonectl record start
  clonectl record stop
  clonectl synth "Hello from my cloned voice"
  clonectl download output.wav`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&serverURL, "server", "s",
		"http://127.0.0.1:8080", "Studio base URL")

	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(healthCmd)
	rootCmd.AddCommand(recordCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(useCmd)
	rootCmd.AddCommand(synthCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(downloadCmd)
	rootCmd.AddCommand(eventsCmd)
}

var httpClient = &http.Client{Timeout: 3 * time.Minute}

// apiGet performs a GET request and decodes the JSON response into out.
func apiGet(path string, out any) error {
	resp, err := httpClient.Get(serverURL + path)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiPost performs a POST request with an optional JSON body and decodes the
// JSON response into out.
func apiPost(path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	resp, err := httpClient.Post(serverURL+path, "application/json", reader)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode >= 300 {
		return apiError(resp)
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// apiError extracts the studio's error message from a failed response.
func apiError(resp *http.Response) error {
	var payload struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err == nil && payload.Error != "" {
		return fmt.Errorf("%s", payload.Error)
	}
	return fmt.Errorf("server returned %s", resp.Status)
}

// printJSON writes v as indented JSON to stdout.
func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
