//go:build darwin

package audio

import "regexp"

func getPlatformConfig() CaptureConfig {
	return CaptureConfig{
		InputFormat:   "avfoundation",
		DefaultDevice: ":0",
		Devices:       listDarwinDevices,
	}
}

func listDarwinDevices() []Device {
	probe := deviceProbe{
		command:      []string{"ffmpeg", "-hide_banner", "-f", "avfoundation", "-list_devices", "true", "-i", ""},
		sectionStart: "AVFoundation audio devices:",
		sectionEnd:   "AVFoundation video devices:",
		pattern:      regexp.MustCompile(`\[AVFoundation[^\]]*\]\s*\[(\d+)\]\s*(.+)`),
		parse: func(matches []string) *Device {
			if len(matches) < 3 {
				return nil
			}
			return &Device{
				ID:   ":" + matches[1],
				Name: matches[2],
			}
		},
	}
	return probe.list()
}
