// Package publish opens a pull request that adds a blog post to the website
// repository.
package publish

import (
	"fmt"
	"strings"
)

// CommandError represents a git or gh invocation that failed
type CommandError struct {
	Command []string
	Stderr  string
	Cause   error
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf("command failed: %s", strings.Join(e.Command, " "))
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	if e.Cause != nil {
		msg += fmt.Sprintf(" (%v)", e.Cause)
	}
	return msg
}

func (e *CommandError) Unwrap() error {
	return e.Cause
}

// RepoError represents a missing or malformed website repository
type RepoError struct {
	Path    string
	Message string
	Cause   error
}

func (e *RepoError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("repository error at %s: %s: %v", e.Path, e.Message, e.Cause)
	}
	return fmt.Sprintf("repository error at %s: %s", e.Path, e.Message)
}

func (e *RepoError) Unwrap() error {
	return e.Cause
}
