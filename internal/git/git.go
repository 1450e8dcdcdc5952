package git

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// Status contains git integration status of one env file
type Status struct {
	IsRepo  bool
	File    string // Path relative to the work dir
	Tracked bool   // Committed or staged (bad)
	Ignored bool   // Matched by .gitignore (good)
}

// IsRepo checks if the working directory is inside a git repository
func IsRepo(workDir string) bool {
	cmd := exec.Command("git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = workDir
	err := cmd.Run()
	return err == nil
}

// IsTracked checks if a file is tracked by git
func IsTracked(workDir, path string) bool {
	cmd := exec.Command("git", "ls-files", "--", path)
	cmd.Dir = workDir
	output, err := cmd.Output()

	if err != nil {
		return false
	}

	return len(strings.TrimSpace(string(output))) > 0
}

// IsIgnored checks if a file is ignored by git (handles all .gitignore files)
func IsIgnored(workDir, path string) bool {
	cmd := exec.Command("git", "check-ignore", "-q", "--", path)
	cmd.Dir = workDir
	err := cmd.Run()

	// git check-ignore returns exit code 0 if file is ignored
	return err == nil
}

// Check reports the git status of the env file at path, running git in
// the file's directory
func Check(path string) *Status {
	workDir, file := filepath.Split(path)
	if workDir == "" {
		workDir = "."
	}
	status := &Status{File: file}

	if !IsRepo(workDir) {
		return status
	}
	status.IsRepo = true
	status.Tracked = IsTracked(workDir, file)
	status.Ignored = IsIgnored(workDir, file)
	return status
}

// Warnings lists problems with the status, empty when there are none
func (s *Status) Warnings() []string {
	if !s.IsRepo {
		return nil
	}

	var warnings []string
	if s.Tracked {
		warnings = append(warnings, fmt.Sprintf("%s is tracked by git (run: git rm --cached %s)", s.File, s.File))
	}
	if !s.Ignored {
		warnings = append(warnings, fmt.Sprintf("%s not in .gitignore (add to .gitignore)", s.File))
	}
	return warnings
}

// Format formats git status for display
func Format(s *Status) string {
	if !s.IsRepo {
		return ""
	}

	var result strings.Builder
	result.WriteString("\nGit Integration:\n")

	if s.Tracked {
		result.WriteString(fmt.Sprintf("   error: %s tracked by git (run: git rm --cached %s)\n", s.File, s.File))
	} else {
		result.WriteString(fmt.Sprintf("   ok: %s not tracked by git\n", s.File))
	}

	if s.Ignored {
		result.WriteString(fmt.Sprintf("   ok: %s in .gitignore\n", s.File))
	} else if !s.Tracked {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore (add to .gitignore)\n", s.File))
	} else {
		result.WriteString(fmt.Sprintf("   warning: %s not in .gitignore\n", s.File))
	}

	return result.String()
}
