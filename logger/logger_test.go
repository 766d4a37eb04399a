package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// TestInitLogger ensures that the logger initializes properly.
func TestInitLogger(t *testing.T) {
	ResetLogger()
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "zonegen.log")
	SetLogPath(logPath)

	InitLogger()

	if log == nil {
		t.Fatal("Expected logger to be initialized, but got nil")
	}

	log.Info("Test log message")

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Fatal("Log file was not created")
	}
}

// TestGetLogger ensures that GetLogger returns a non-nil instance.
func TestGetLogger(t *testing.T) {
	ResetLogger()
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "zonegen.log")
	SetLogPath(logPath)

	logger := GetLogger()
	if logger == nil {
		t.Fatal("Expected non-nil logger instance, but got nil")
	}

	logger.Info("Logger retrieved successfully")
	Sync()

	if _, err := os.Stat(logPath); os.IsNotExist(err) {
		t.Fatal("Log file was not created")
	}
}

// TestLogOutput checks if logging produces expected results in the log file.
func TestLogOutput(t *testing.T) {
	ResetLogger()
	tmpDir := t.TempDir()
	logPath := filepath.Join(tmpDir, "zonegen.log")
	SetLogPath(logPath)

	InitLogger()
	log.Info("Writing to log file")
	Sync()

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("Failed to read log file: %v", err)
	}

	if !bytes.Contains(data, []byte("Writing to log file")) {
		t.Fatal("Expected log message not found in log file")
	}
}
