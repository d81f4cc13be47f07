package logger

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
)

var (
	std     = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	logFile *os.File
)

// Init redirects log output to the given file path, creating parent
// directories if needed and opening the file in append mode.
func Init(path string) error {
	if err := ensureParentDir(path); err != nil {
		return err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	logFile = f
	std = log.New(f, "", log.Ldate|log.Ltime|log.Lmicroseconds)
	return nil
}

// Close closes the underlying log file, if open. Output falls back to
// stderr afterwards.
func Close() error {
	if logFile != nil {
		err := logFile.Close()
		logFile = nil
		std = log.New(os.Stderr, "", log.Ldate|log.Ltime|log.Lmicroseconds)
		return err
	}
	return nil
}

// Infof logs informational messages.
func Infof(format string, args ...any) { write("INFO", format, args...) }

// Warnf logs warnings.
func Warnf(format string, args ...any) { write("WARN", format, args...) }

// Errorf logs errors.
func Errorf(format string, args ...any) { write("ERROR", format, args...) }

func write(level string, format string, args ...any) {
	std.Printf("[%s] %s", level, fmt.Sprintf(format, args...))
}

func ensureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
