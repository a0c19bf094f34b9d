// Package main provides clonectl, a command line client for the voice
// cloning studio's REST API.
//
// Usage:
//
//	clonectl [flags] <command> [args]
//
// Commands:
//
//	status   - Show the current session status
//	health   - Probe the inference backend
//	record   - Start or stop a recording
//	clear    - Discard the current session
//	use      - Unlock synthesis for the current recording
//	synth    - Synthesize text in the recorded voice
//	play     - Toggle local playback of the output
//	download - Save the synthesized output to a file
//	events   - Show recent session events
package main

import (
	"fmt"
	"os"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/cmd/clonectl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
