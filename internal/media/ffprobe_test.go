package media

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestFFProbeDuration(t *testing.T) {
	probe := NewFFProbe("ffprobe", time.Second)
	probe.Run = func(_ context.Context, binary string, args ...string) ([]byte, error) {
		if binary != "ffprobe" {
			t.Fatalf("unexpected binary %q", binary)
		}
		return []byte(`{"format":{"duration":"123.456"}}`), nil
	}

	seconds, err := probe.Duration(context.Background(), "/tmp/clip.mp4")
	if err != nil {
		t.Fatalf("duration: %v", err)
	}
	if seconds != 123.456 {
		t.Fatalf("expected 123.456 got %v", seconds)
	}
}

func TestFFProbeDurationErrors(t *testing.T) {
	probe := NewFFProbe("", 0)

	probe.Run = func(context.Context, string, ...string) ([]byte, error) {
		return nil, errors.New("exec failed")
	}
	if _, err := probe.Duration(context.Background(), "clip.mp4"); err == nil {
		t.Fatal("expected error when command fails")
	}

	probe.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`not-json`), nil
	}
	if _, err := probe.Duration(context.Background(), "clip.mp4"); err == nil {
		t.Fatal("expected error for invalid json")
	}

	probe.Run = func(context.Context, string, ...string) ([]byte, error) {
		return []byte(`{"format":{}}`), nil
	}
	if _, err := probe.Duration(context.Background(), "clip.mp4"); err == nil {
		t.Fatal("expected error for missing duration")
	}
}
