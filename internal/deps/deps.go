// Package deps reports availability of the external binaries clipcap
// depends on: the caption worker itself and the bundled FFmpeg it shells
// out to. Used by `clipcap status` and the daemon status endpoint.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
)

// Requirement defines an external dependency clipcap relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string `json:"name"`
	Command     string `json:"command"`
	Description string `json:"description"`
	Optional    bool   `json:"optional"`
	Available   bool   `json:"available"`
	Detail      string `json:"detail"`
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if strings.ContainsRune(cmd, os.PathSeparator) {
			if isExecutable(cmd) {
				status.Available = true
			} else {
				status.Detail = fmt.Sprintf("binary %q not found", cmd)
			}
			results = append(results, status)
			continue
		}
		if _, err := exec.LookPath(cmd); err != nil {
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// CheckFFmpegForWorker reports the FFmpeg binary the worker will execute.
//
// The worker honors FFMPEG_PATH first, then looks for an ffmpeg next to its
// own binary (and under a bin/ sibling), and finally falls back to PATH.
// This helper mirrors that lookup so status output matches what the worker
// actually runs.
func CheckFFmpegForWorker(workerPath string) Status {
	result := Status{
		Name:        "FFmpeg",
		Description: "Used by the worker for audio extraction and muxing",
	}

	name := "ffmpeg"
	if runtime.GOOS == "windows" {
		name += ".exe"
	}

	if worker := strings.TrimSpace(workerPath); worker != "" {
		dir := filepath.Dir(worker)
		for _, candidate := range []string{
			filepath.Join(dir, "bin", name),
			filepath.Join(dir, name),
		} {
			if isExecutable(candidate) {
				result.Command = candidate
				result.Available = true
				return result
			}
		}
	}

	if ffmpegPath, err := exec.LookPath("ffmpeg"); err == nil {
		result.Command = ffmpegPath
		result.Available = true
		return result
	}

	result.Command = "ffmpeg"
	result.Detail = `binary "ffmpeg" not found`
	return result
}

func isExecutable(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
