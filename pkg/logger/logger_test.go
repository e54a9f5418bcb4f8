package logger

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	if logger == nil {
		t.Fatal("logger is nil after initialization")
	}

	// Re-initialization must be safe.
	if err := Init(); err != nil {
		t.Fatalf("failed to re-initialize logger: %v", err)
	}
	if Get() == nil {
		t.Fatal("logger is nil after re-initialization")
	}
}

func TestLoggerLazyGet(t *testing.T) {
	global = nil

	logger := Get()
	if logger == nil {
		t.Fatal("Get did not lazily initialize the logger")
	}
}

func TestLoggerBasic(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	logger := Get()
	ctx := context.Background()

	logger.Info(ctx, "test message", String("k", "v"))
	logger.Debug(ctx, "debug message", Int("n", 42))
	logger.Warn(ctx, "warn message", Float64("f", 3.14))
	logger.Error(ctx, "error message", Error(errors.New("boom")), Any("extra", []int{1, 2}))
}

func TestLoggerNamed(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}

	named := Named("subsystem")
	if named == nil {
		t.Fatal("named logger is nil")
	}
	named.Info(context.Background(), "named message", String("k", "v"))

	nested := named.Named("inner")
	if nested == nil {
		t.Fatal("nested named logger is nil")
	}
	nested.Info(context.Background(), "nested message")
}

func TestSetLevelString(t *testing.T) {
	cases := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{"debug", slog.LevelDebug, false},
		{"info", slog.LevelInfo, false},
		{"", slog.LevelInfo, false},
		{"warn", slog.LevelWarn, false},
		{"warning", slog.LevelWarn, false},
		{"error", slog.LevelError, false},
		{" ERROR ", slog.LevelError, false},
		{"verbose", 0, true},
	}

	for _, tc := range cases {
		err := SetLevelString(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("SetLevelString(%q) expected error, got nil", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("SetLevelString(%q): %v", tc.in, err)
			continue
		}
		if got := levelVar.Level(); got != tc.want {
			t.Errorf("SetLevelString(%q) set level %v, want %v", tc.in, got, tc.want)
		}
	}
}
