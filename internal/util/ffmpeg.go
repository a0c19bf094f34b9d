package util

import "os/exec"

// ResolveTool returns the path to an external audio tool (ffmpeg, ffplay).
// If customPath is set, it validates the path exists and is executable.
// Otherwise, it searches for name in the system PATH.
// Returns an empty string if the tool is not found.
func ResolveTool(name, customPath string) string {
	if customPath != "" {
		if _, err := exec.LookPath(customPath); err == nil {
			return customPath
		}
		return ""
	}
	path, err := exec.LookPath(name)
	if err != nil {
		return ""
	}
	return path
}
