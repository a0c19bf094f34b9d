//go:build windows

package audio

import (
	"regexp"
	"strings"
)

func getPlatformConfig() CaptureConfig {
	return CaptureConfig{
		InputFormat:   "dshow",
		DefaultDevice: "", // Auto-detect, no safe default on Windows
		Devices:       listWindowsDevices,
	}
}

func listWindowsDevices() []Device {
	// FFmpeg versions vary in how they delimit the dshow device list, so no
	// section markers: lines are matched by the trailing "(audio)" tag.
	probe := deviceProbe{
		command: []string{"ffmpeg", "-hide_banner", "-f", "dshow", "-list_devices", "true", "-i", "dummy"},
		pattern: regexp.MustCompile(`\[dshow[^\]]*\]\s*"([^"]+)"\s*\(audio\)`),
		parse: func(matches []string) *Device {
			if len(matches) < 2 {
				return nil
			}
			name := strings.TrimSpace(matches[1])
			return &Device{
				ID:   "audio=" + name,
				Name: name,
			}
		},
	}
	return probe.list()
}
