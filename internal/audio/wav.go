package audio

import (
	"encoding/binary"
	"fmt"
	"math"
)

// WAV container constants. The header is the fixed 44-byte RIFF layout:
// "RIFF" + size + "WAVE", a 16-byte "fmt " sub-chunk with PCM format code 1,
// and a "data" sub-chunk of interleaved little-endian signed 16-bit samples.
const (
	wavHeaderSize    = 44
	wavFmtChunkSize  = 16
	wavFormatPCM     = 1
	wavBitsPerSample = 16
)

// EncodeWAV serializes a Buffer into a 16-bit PCM WAV container.
// The encoding is total and deterministic: identical input yields identical
// bytes. Samples are clamped to [-1, 1] and scaled asymmetrically (negative
// values by 32768, non-negative by 32767) before rounding, so -1 maps to
// -32768 and +1 to 32767. Frames are interleaved channel-major.
func EncodeWAV(b *Buffer) []byte {
	frames := b.FrameCount()
	channels := b.Channels
	dataSize := frames * channels * 2

	out := make([]byte, wavHeaderSize+dataSize)

	copy(out[0:4], "RIFF")
	binary.LittleEndian.PutUint32(out[4:8], uint32(wavHeaderSize-8+dataSize))
	copy(out[8:12], "WAVE")

	copy(out[12:16], "fmt ")
	binary.LittleEndian.PutUint32(out[16:20], wavFmtChunkSize)
	binary.LittleEndian.PutUint16(out[20:22], wavFormatPCM)
	binary.LittleEndian.PutUint16(out[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:28], uint32(b.SampleRate))
	byteRate := b.SampleRate * channels * 2
	binary.LittleEndian.PutUint32(out[28:32], uint32(byteRate))
	blockAlign := channels * 2
	binary.LittleEndian.PutUint16(out[32:34], uint16(blockAlign))
	binary.LittleEndian.PutUint16(out[34:36], wavBitsPerSample)

	copy(out[36:40], "data")
	binary.LittleEndian.PutUint32(out[40:44], uint32(dataSize))

	off := wavHeaderSize
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			v := quantizeSample(b.Samples[ch][frame])
			binary.LittleEndian.PutUint16(out[off:], uint16(v))
			off += 2
		}
	}

	return out
}

// quantizeSample converts a float amplitude to a signed 16-bit value.
func quantizeSample(s float32) int16 {
	f := float64(s)
	if f > 1 {
		f = 1
	} else if f < -1 {
		f = -1
	}
	if f < 0 {
		return int16(math.Round(f * 32768))
	}
	return int16(math.Round(f * 32767))
}

// DecodeWAV parses a 16-bit PCM WAV container back into a Buffer. It is the
// inverse of EncodeWAV up to 16-bit quantization error and accepts only the
// fixed layout EncodeWAV produces (PCM format code 1, 16-bit depth).
func DecodeWAV(data []byte) (*Buffer, error) {
	if len(data) < wavHeaderSize {
		return nil, fmt.Errorf("wav too short: %d bytes", len(data))
	}
	if string(data[0:4]) != "RIFF" || string(data[8:12]) != "WAVE" {
		return nil, fmt.Errorf("not a RIFF/WAVE container")
	}
	if string(data[12:16]) != "fmt " {
		return nil, fmt.Errorf("missing fmt chunk")
	}
	if format := binary.LittleEndian.Uint16(data[20:22]); format != wavFormatPCM {
		return nil, fmt.Errorf("unsupported audio format %d", format)
	}
	if bits := binary.LittleEndian.Uint16(data[34:36]); bits != wavBitsPerSample {
		return nil, fmt.Errorf("unsupported bit depth %d", bits)
	}
	if string(data[36:40]) != "data" {
		return nil, fmt.Errorf("missing data chunk")
	}

	channels := int(binary.LittleEndian.Uint16(data[22:24]))
	sampleRate := int(binary.LittleEndian.Uint32(data[24:28]))
	dataSize := int(binary.LittleEndian.Uint32(data[40:44]))
	if channels < 1 {
		return nil, fmt.Errorf("invalid channel count %d", channels)
	}
	if sampleRate < 1 {
		return nil, fmt.Errorf("invalid sample rate %d", sampleRate)
	}
	if dataSize > len(data)-wavHeaderSize {
		dataSize = len(data) - wavHeaderSize
	}

	frames := dataSize / (channels * 2)
	buf := &Buffer{
		SampleRate: sampleRate,
		Channels:   channels,
		Samples:    make([][]float32, channels),
	}
	for ch := range buf.Samples {
		buf.Samples[ch] = make([]float32, frames)
	}

	off := wavHeaderSize
	for frame := 0; frame < frames; frame++ {
		for ch := 0; ch < channels; ch++ {
			v := int16(binary.LittleEndian.Uint16(data[off:]))
			buf.Samples[ch][frame] = dequantizeSample(v)
			off += 2
		}
	}

	return buf, nil
}

// dequantizeSample inverts quantizeSample's asymmetric scaling.
func dequantizeSample(v int16) float32 {
	if v < 0 {
		return float32(v) / 32768
	}
	return float32(v) / 32767
}
