//go:build linux

package audio

import "regexp"

func getPlatformConfig() CaptureConfig {
	return CaptureConfig{
		InputFormat:   "alsa",
		DefaultDevice: "default",
		Devices:       listLinuxDevices,
	}
}

func listLinuxDevices() []Device {
	probe := deviceProbe{
		command: []string{"arecord", "-l"},
		pattern: regexp.MustCompile(`card\s+(\d+):\s+(\w+)\s+\[([^\]]+)\]`),
		parse: func(matches []string) *Device {
			if len(matches) < 4 {
				return nil
			}
			return &Device{
				ID:   "hw:CARD=" + matches[2],
				Name: matches[3],
			}
		},
		fallback: []Device{
			{ID: "default", Name: "Default capture device"},
		},
	}
	return probe.list()
}
