package media

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"calmmate/internal/domain"
)

// Transcoder converts an uploaded recording to the canonical waveform
// (mono, 16 kHz wav) using ffmpeg.
type Transcoder struct {
	command string
	timeout time.Duration
}

func NewTranscoder(command string, timeout time.Duration) *Transcoder {
	if command == "" {
		command = "ffmpeg"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Transcoder{command: command, timeout: timeout}
}

// Transcode writes a canonical-format sibling next to the source file and
// returns its path. A non-zero exit or missing output file fails with the
// ffmpeg diagnostics attached.
func (t *Transcoder) Transcode(ctx context.Context, path string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	wavPath := strings.TrimSuffix(path, filepath.Ext(path)) + ".wav"

	cmd := exec.CommandContext(ctx, t.command,
		"-i", path,
		"-ar", "16000",
		"-ac", "1",
		wavPath,
		"-y",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if _, statErr := os.Stat(wavPath); statErr != nil {
		if runErr != nil {
			return "", fmt.Errorf("%w: ffmpeg: %v: %s", domain.ErrConversionFailed, runErr, trimmed(stderr))
		}
		return "", fmt.Errorf("%w: ffmpeg produced no output: %s", domain.ErrConversionFailed, trimmed(stderr))
	}

	return wavPath, nil
}

func trimmed(buf bytes.Buffer) string {
	return strings.TrimSpace(buf.String())
}
