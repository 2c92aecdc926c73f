package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotRepository is returned when the file is not inside a git work tree.
var ErrNotRepository = errors.New("not a git repository")

// Git shells out to the git binary.
type Git struct {
	timeout time.Duration
}

func New() *Git {
	return &Git{timeout: 10 * time.Second}
}

// HasUnstagedChanges reports whether the work tree copy of path differs from
// the index. Untracked files count as clean.
func (g *Git) HasUnstagedChanges(path string) (bool, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false, err
	}

	out, err := g.run(filepath.Dir(abs), "status", "--porcelain", "--", filepath.Base(abs))
	if err != nil {
		return false, err
	}

	for _, line := range strings.Split(out, "\n") {
		if len(line) < 2 || strings.HasPrefix(line, "??") {
			continue
		}
		// second column is the work tree state
		if line[1] != ' ' {
			return true, nil
		}
	}
	return false, nil
}

func (g *Git) run(dir string, args ...string) (string, error) {
	ctx, cancel := context.WithTimeout(context.Background(), g.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if strings.Contains(msg, "not a git repository") {
			return "", ErrNotRepository
		}
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, msg)
	}
	return stdout.String(), nil
}
