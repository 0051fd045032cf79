package media_test

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"calmmate/internal/infra/media"
)

// stubScript writes an executable shell script standing in for ffprobe/ffmpeg.
func stubScript(t *testing.T, body string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stubs not supported on windows")
	}
	path := filepath.Join(t.TempDir(), "stub.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestProber_Duration(t *testing.T) {
	script := stubScript(t, `echo "5.216000"`)
	prober := media.NewProber(script, 5*time.Second)

	duration, err := prober.Duration(context.Background(), "whatever.webm")
	if err != nil {
		t.Fatalf("Duration error: %v", err)
	}
	if duration != 5.216 {
		t.Errorf("duration: got %v, want 5.216", duration)
	}
}

func TestProber_CommandFailure(t *testing.T) {
	script := stubScript(t, `exit 1`)
	prober := media.NewProber(script, 5*time.Second)

	if _, err := prober.Duration(context.Background(), "whatever.webm"); err == nil {
		t.Fatal("expected error")
	}
}

func TestProber_UnparseableOutput(t *testing.T) {
	script := stubScript(t, `echo "N/A"`)
	prober := media.NewProber(script, 5*time.Second)

	if _, err := prober.Duration(context.Background(), "whatever.webm"); err == nil {
		t.Fatal("expected error")
	}
}
