package session

import "github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"

// controlsByState is the single mapping from session state to enabled user
// actions. Control enablement is derived from this table and nowhere else;
// per-control boolean flags do not exist.
var controlsByState = map[types.SessionState]types.Controls{
	types.StateIdle: {
		Record: true,
	},
	types.StateRecording: {
		Stop: true,
	},
	types.StateProcessing: {},
	types.StateRecorded: {
		Clear: true,
	},
	types.StateEmbeddingReady: {
		Clear:      true,
		Use:        true,
		Synthesize: true,
	},
	types.StateSynthesizing: {},
	types.StateOutputReady: {
		Clear:      true,
		Use:        true,
		Synthesize: true,
		Play:       true,
		Download:   true,
	},
}

// ControlsFor returns the enabled controls for a state.
func ControlsFor(state types.SessionState) types.Controls {
	return controlsByState[state]
}
