package audio

// CaptureConfig defines platform-specific audio capture configuration.
type CaptureConfig struct {
	// InputFormat is the FFmpeg input format (e.g., "alsa", "avfoundation", "dshow").
	InputFormat string

	// DefaultDevice is used when no device is configured.
	DefaultDevice string

	// Devices lists available input devices for the platform.
	Devices func() []Device
}

// CaptureParams describes the desired capture format.
type CaptureParams struct {
	Device     string
	SampleRate int
	Channels   int
}

// BuildCaptureCommand returns the ffmpeg invocation that records from the
// microphone and writes a compressed Ogg Vorbis container to stdout. The
// compressed stream is the intermediate artifact handed to the transcoder.
// If params.Device is empty, the platform default or first detected device
// is used. Returns ErrNoAudioDevice when nothing can be resolved.
func BuildCaptureCommand(ffmpegPath string, params CaptureParams) (cmd string, args []string, err error) {
	cfg := getPlatformConfig()

	device := params.Device
	if device == "" {
		device = cfg.DefaultDevice
	}
	if device == "" {
		devices := cfg.Devices()
		if len(devices) == 0 {
			return "", nil, ErrNoAudioDevice
		}
		device = devices[0].ID
	}

	command := "ffmpeg"
	if ffmpegPath != "" {
		command = ffmpegPath
	}

	return command, buildFFmpegCaptureArgs(cfg.InputFormat, device, params.SampleRate, params.Channels), nil
}

// ListDevices returns available audio input devices for the current platform.
func ListDevices() []Device {
	return getPlatformConfig().Devices()
}
