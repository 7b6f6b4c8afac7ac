package worker

import (
	"os"
	"path/filepath"
	"runtime"
)

// FFmpegPathEnv tells the worker exactly which FFmpeg to run. The worker
// honors it in preference to searching PATH.
const FFmpegPathEnv = "FFMPEG_PATH"

func binaryName() string {
	if runtime.GOOS == "windows" {
		return "clipcap-core.exe"
	}
	return "clipcap-core"
}

func ffmpegName() string {
	if runtime.GOOS == "windows" {
		return "ffmpeg.exe"
	}
	return "ffmpeg"
}

// Locate returns the worker executable to spawn. It probes, in order: the
// explicit override, the packaged layouts next to the running executable,
// and the development build output under the working directory. When
// nothing exists it returns the bare binary name so the spawn attempt
// fails with a diagnosable "file not found" instead of silently doing
// nothing.
func Locate(override string) string {
	exeDir := ""
	if exe, err := os.Executable(); err == nil {
		exeDir = filepath.Dir(exe)
	}
	workDir, _ := os.Getwd()
	for _, candidate := range candidatePaths(override, exeDir, workDir) {
		if isExecutableFile(candidate) {
			return candidate
		}
	}
	return binaryName()
}

// candidatePaths builds the probe order. The override always comes first;
// packaged layouts (sibling, bin/, macOS Resources/) precede the dev build
// tree so an installed app never picks up a stale local build.
func candidatePaths(override, exeDir, workDir string) []string {
	name := binaryName()
	candidates := make([]string, 0, 8)
	if override != "" {
		candidates = append(candidates, override)
	}
	if exeDir != "" {
		candidates = append(candidates,
			filepath.Join(exeDir, name),
			filepath.Join(exeDir, "bin", name),
			filepath.Join(exeDir, "..", "Resources", name),
		)
	}
	if workDir != "" {
		candidates = append(candidates,
			filepath.Join(workDir, "core", "target", "release", name),
			filepath.Join(workDir, "core", "target", "debug", name),
		)
	}
	return candidates
}

// toolDir returns the bundled tool directory for a resolved worker binary:
// a bin/ sibling when present, otherwise the binary's own directory.
func toolDir(workerPath string) string {
	dir := filepath.Dir(workerPath)
	binDir := filepath.Join(dir, "bin")
	if info, err := os.Stat(binDir); err == nil && info.IsDir() {
		return binDir
	}
	return dir
}

func isExecutableFile(path string) bool {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return false
	}
	if runtime.GOOS == "windows" {
		return true
	}
	return info.Mode().Perm()&0o111 != 0
}
