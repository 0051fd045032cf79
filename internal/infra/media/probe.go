package media

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"
)

// Prober measures audio duration using ffprobe.
type Prober struct {
	command string
	timeout time.Duration
}

func NewProber(command string, timeout time.Duration) *Prober {
	if command == "" {
		command = "ffprobe"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Prober{command: command, timeout: timeout}
}

// Duration returns the recording length in seconds. Failures are returned to
// the caller, which treats an unmeasurable duration as "unknown, allow".
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, p.command,
		"-v", "quiet",
		"-show_entries", "format=duration",
		"-of", "csv=p=0",
		path,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", path, err)
	}

	seconds, err := strconv.ParseFloat(strings.TrimSpace(stdout.String()), 64)
	if err != nil {
		return 0, fmt.Errorf("parsing ffprobe output %q: %w", stdout.String(), err)
	}
	return seconds, nil
}
