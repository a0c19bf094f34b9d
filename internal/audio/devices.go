package audio

import (
	"bufio"
	"bytes"
	"log/slog"
	"os/exec"
	"regexp"
	"strings"
)

// deviceProbe describes how one platform enumerates capture devices: the
// command to run, the output section that holds audio devices and the line
// pattern that yields one device.
type deviceProbe struct {
	command []string

	// sectionStart/sectionEnd delimit the audio device section of the
	// command output. Empty markers mean the whole output is scanned.
	sectionStart string
	sectionEnd   string

	pattern *regexp.Regexp
	parse   func(matches []string) *Device

	// fallback is returned when the probe finds nothing.
	fallback []Device
}

// list runs the probe and parses its output into devices.
func (p deviceProbe) list() []Device {
	if len(p.command) == 0 {
		return p.fallback
	}

	cmd := exec.Command(p.command[0], p.command[1:]...)
	output, err := cmd.CombinedOutput()
	if err != nil && len(output) == 0 {
		slog.Error("failed to list audio devices", "error", err)
		return p.fallback
	}

	var devices []Device
	inSection := p.sectionStart == ""

	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		line := scanner.Text()

		if p.sectionStart != "" && strings.Contains(line, p.sectionStart) {
			inSection = true
			continue
		}
		if p.sectionEnd != "" && strings.Contains(line, p.sectionEnd) {
			inSection = false
			continue
		}
		if !inSection {
			continue
		}

		// DirectShow repeats each device with an "Alternative name" line.
		if strings.Contains(line, "Alternative name") {
			continue
		}

		matches := p.pattern.FindStringSubmatch(line)
		if len(matches) == 0 {
			continue
		}
		if dev := p.parse(matches); dev != nil {
			devices = append(devices, *dev)
		}
	}

	if len(devices) == 0 {
		return p.fallback
	}
	return devices
}
