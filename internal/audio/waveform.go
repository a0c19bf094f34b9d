package audio

import (
	"github.com/babith-ai/Real-Time-Voice-Cloning-System/internal/types"
)

// RenderWaveform downsamples a Buffer into exactly width min/max column
// pairs for display. Each column covers a contiguous, non-overlapping window
// of ceil(frames/width) samples from channel 0; the final window may be
// shorter. When there are fewer samples than columns, columns past the end
// repeat the last computed pair so the result always has length width.
// Pure function of its input.
func RenderWaveform(b *Buffer, width int) []types.WavePoint {
	if width <= 0 {
		return nil
	}

	out := make([]types.WavePoint, width)
	if b == nil || b.FrameCount() == 0 {
		return out
	}

	samples := b.Samples[0]
	n := len(samples)
	window := (n + width - 1) / width

	last := types.WavePoint{}
	for col := 0; col < width; col++ {
		start := col * window
		if start >= n {
			out[col] = last
			continue
		}
		end := start + window
		if end > n {
			end = n
		}

		lo, hi := samples[start], samples[start]
		for _, s := range samples[start+1 : end] {
			if s < lo {
				lo = s
			}
			if s > hi {
				hi = s
			}
		}
		last = types.WavePoint{Min: lo, Max: hi}
		out[col] = last
	}

	return out
}
