// Package transcode decodes the compressed capture container into raw PCM
// using an ffmpeg subprocess.
package transcode

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"math"
	"os/exec"
	"strconv"

	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/audio"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/util"
)

// Decoder converts compressed audio blobs into audio.Buffer values at a
// fixed output rate and channel count.
type Decoder struct {
	ffmpegPath string
	sampleRate int
	channels   int
}

// NewDecoder returns a Decoder that produces PCM at the given format.
func NewDecoder(ffmpegPath string, sampleRate, channels int) *Decoder {
	if ffmpegPath == "" {
		ffmpegPath = "ffmpeg"
	}
	return &Decoder{
		ffmpegPath: ffmpegPath,
		sampleRate: sampleRate,
		channels:   channels,
	}
}

// Args returns the ffmpeg arguments for decoding pipe:0 to 32-bit float PCM
// on pipe:1. Deterministic for a given decoder configuration.
func (d *Decoder) Args() []string {
	return []string{
		"-hide_banner",
		"-loglevel", "warning",
		"-i", "pipe:0",
		"-vn",
		"-ac", strconv.Itoa(d.channels),
		"-ar", strconv.Itoa(d.sampleRate),
		"-f", "f32le",
		"pipe:1",
	}
}

// Decode converts a compressed blob into a Buffer. A malformed container or
// unsupported codec yields types.ErrDecode with ffmpeg's last stderr line.
func (d *Decoder) Decode(ctx context.Context, blob []byte) (*audio.Buffer, error) {
	if len(blob) == 0 {
		return nil, fmt.Errorf("%w: empty input", types.ErrDecode)
	}

	ctx, cancel := context.WithTimeout(ctx, types.DecodeTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, d.ffmpegPath, d.Args()...)
	cmd.Stdin = bytes.NewReader(blob)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := util.ExtractLastError(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("%w: %s", types.ErrDecode, msg)
	}

	raw := stdout.Bytes()
	if len(raw) < 4 {
		return nil, fmt.Errorf("%w: decoder produced no samples", types.ErrDecode)
	}

	return parseF32LE(raw, d.sampleRate, d.channels), nil
}

// parseF32LE deinterleaves little-endian 32-bit float PCM into a Buffer.
func parseF32LE(raw []byte, sampleRate, channels int) *audio.Buffer {
	frames := len(raw) / (4 * channels)

	buf := &audio.Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([][]float32, channels),
	}
	for ch := range buf.Samples {
		buf.Samples[ch] = make([]float32, frames)
	}

	off := 0
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			bits := binary.LittleEndian.Uint32(raw[off:])
			buf.Samples[ch][frame] = math.Float32frombits(bits)
			off += 4
		}
	}

	return buf
}
