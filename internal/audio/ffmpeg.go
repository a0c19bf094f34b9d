package audio

import "strconv"

// buildFFmpegCaptureArgs constructs FFmpeg arguments for microphone capture
// into an Ogg Vorbis container on stdout.
func buildFFmpegCaptureArgs(inputFormat, device string, sampleRate, channels int) []string {
	return []string{
		"-f", inputFormat,
		"-i", device,
		"-nostdin",
		"-hide_banner",
		"-loglevel", "warning",
		"-vn",
		"-ac", strconv.Itoa(channels),
		"-ar", strconv.Itoa(sampleRate),
		"-c:a", "libvorbis",
		"-f", "ogg",
		"pipe:1",
	}
}
