// Package audio provides the pure PCM layer: the decoded sample buffer, the
// WAV interchange codec, waveform rendering and level metering. Nothing in
// this package touches hardware or the network.
package audio

import "errors"

// ErrNoAudioDevice is returned when no audio input device is available.
var ErrNoAudioDevice = errors.New("no audio input device found")

// Buffer holds decoded PCM audio as per-channel float samples in [-1, 1].
// A Buffer is immutable once produced by the decoder.
type Buffer struct {
	SampleRate int
	Channels   int
	// Samples is indexed [channel][frame].
	Samples [][]float32
}

// FrameCount returns the number of sample frames per channel.
func (b *Buffer) FrameCount() int {
	if len(b.Samples) == 0 {
		return 0
	}
	return len(b.Samples[0])
}

// Duration returns the buffer length in seconds.
func (b *Buffer) Duration() float64 {
	if b.SampleRate <= 0 {
		return 0
	}
	return float64(b.FrameCount()) / float64(b.SampleRate)
}

// Device represents an available audio input device.
type Device struct {
	// ID is the device identifier.
	ID string `json:"id"`
	// Name is the device display name.
	Name string `json:"name"`
}
