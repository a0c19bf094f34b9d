package audio

import "math"

// MinDB is the floor for reported levels (treated as silence).
const MinDB = -60.0

// Levels contains measured audio levels in dBFS.
type Levels struct {
	RMS  float64
	Peak float64
}

// MeasureLevels computes RMS and peak levels over all channels of a decoded
// buffer. Used to show the recording's loudness next to its waveform.
func MeasureLevels(b *Buffer) Levels {
	if b == nil || b.FrameCount() == 0 {
		return Levels{RMS: MinDB, Peak: MinDB}
	}

	var sumSquares float64
	var peak float64
	var count int

	for _, ch := range b.Samples {
		for _, s := range ch {
			f := float64(s)
			sumSquares += f * f
			if a := math.Abs(f); a > peak {
				peak = a
			}
			count++
		}
	}

	rms := math.Sqrt(sumSquares / float64(count))

	return Levels{
		RMS:  clampDB(20 * math.Log10(rms)),
		Peak: clampDB(20 * math.Log10(peak)),
	}
}

func clampDB(db float64) float64 {
	if math.IsInf(db, -1) || math.IsNaN(db) || db < MinDB {
		return MinDB
	}
	return db
}
