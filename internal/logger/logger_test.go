package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestLogLevels(t *testing.T) {
	defer Nop()

	tests := []struct {
		level    string
		expected []string
		excluded []string
	}{
		{
			level:    "error",
			expected: []string{"ERROR"},
			excluded: []string{"WARN", "INFO", "DEBUG"},
		},
		{
			level:    "warn",
			expected: []string{"ERROR", "WARN"},
			excluded: []string{"INFO", "DEBUG"},
		},
		{
			level:    "info",
			expected: []string{"ERROR", "WARN", "INFO"},
			excluded: []string{"DEBUG"},
		},
		{
			level:    "debug",
			expected: []string{"ERROR", "WARN", "INFO", "DEBUG"},
			excluded: []string{},
		},
		{
			level:    "bogus",
			expected: []string{"INFO"},
			excluded: []string{"DEBUG"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			logFile := filepath.Join(t.TempDir(), tt.level+".log")

			cfg := FileConfig{
				Path:       logFile,
				MaxSizeMB:  10,
				MaxBackups: 1,
				MaxAgeDays: 1,
				Compress:   false,
			}

			if err := InitWithFileConfig(tt.level, cfg, nil, nil); err != nil {
				t.Fatalf("failed to init logger: %v", err)
			}

			Debug("debug message")
			Info("info message")
			Warn("warn message")
			Error("error message")
			Sync()

			content, err := os.ReadFile(logFile)
			if err != nil {
				t.Fatalf("failed to read log file: %v", err)
			}
			logContent := string(content)

			for _, exp := range tt.expected {
				if !strings.Contains(logContent, exp) {
					t.Errorf("expected %s in log output", exp)
				}
			}
			for _, exc := range tt.excluded {
				if strings.Contains(logContent, exc) {
					t.Errorf("unexpected %s in log output for level %s", exc, tt.level)
				}
			}
		})
	}
}

func TestConsoleOutput(t *testing.T) {
	defer Nop()

	var out, errOut bytes.Buffer
	if err := InitWithFileConfig("info", FileConfig{}, &out, &errOut); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("Converting file", zap.String("file", "house.dae"))
	Sugar.Warnf("%d face(s) that's not a triangle", 2)
	Error("Failed to load scene", zap.String("file", "broken.obj"))
	Sync()

	stdout := out.String()
	for _, want := range []string{"Converting file", "house.dae", "logger_test.go"} {
		if !strings.Contains(stdout, want) {
			t.Errorf("stdout %q does not contain %q", stdout, want)
		}
	}
	if strings.Contains(stdout, "broken.obj") || strings.Contains(stdout, "face(s)") {
		t.Errorf("warnings and errors leaked to stdout: %q", stdout)
	}

	stderr := errOut.String()
	for _, want := range []string{"Failed to load scene", "broken.obj", "2 face(s)"} {
		if !strings.Contains(stderr, want) {
			t.Errorf("stderr %q does not contain %q", stderr, want)
		}
	}
	if strings.Contains(stderr, "Converting file") {
		t.Errorf("info entry written to stderr: %q", stderr)
	}
}

func TestConsoleOutputLevel(t *testing.T) {
	defer Nop()

	var out, errOut bytes.Buffer
	if err := InitWithFileConfig("error", FileConfig{}, &out, &errOut); err != nil {
		t.Fatalf("failed to init logger: %v", err)
	}

	Info("dropped info")
	Warn("dropped warning")
	Error("kept error")
	Sync()

	if out.Len() != 0 {
		t.Errorf("stdout should be empty at error level, got %q", out.String())
	}
	if got := errOut.String(); !strings.Contains(got, "kept error") || strings.Contains(got, "dropped") {
		t.Errorf("stderr = %q", got)
	}
}

func TestNop(t *testing.T) {
	Nop()
	// Must not panic without Init.
	Debug("dropped")
	Info("dropped")
	Warn("dropped")
	Error("dropped")
	Sugar.Infof("dropped %d", 1)
	Sync()
}

func TestDefaultFileConfig(t *testing.T) {
	cfg := DefaultFileConfig("/tmp/womconverter.log")

	if cfg.Path != "/tmp/womconverter.log" {
		t.Errorf("expected path /tmp/womconverter.log, got %s", cfg.Path)
	}
	if cfg.MaxSizeMB != 20 {
		t.Errorf("expected MaxSizeMB 20, got %d", cfg.MaxSizeMB)
	}
	if cfg.MaxBackups != 3 {
		t.Errorf("expected MaxBackups 3, got %d", cfg.MaxBackups)
	}
	if cfg.MaxAgeDays != 14 {
		t.Errorf("expected MaxAgeDays 14, got %d", cfg.MaxAgeDays)
	}
	if !cfg.Compress {
		t.Error("expected Compress to be true")
	}
}
