// Package helpers contains few helpers functions which are used througout the project
package helpers

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"gopkg.in/natefinch/lumberjack.v2"
)

// ProjectUserPath returns the directory in which Aquarelle keeps the user's
// configuration, database and logs.
func ProjectUserPath() (string, error) {
	base, err := userBaseDir()
	if err != nil {
		return "", fmt.Errorf("finding user directory: %w", err)
	}
	return filepath.Join(base, AquarelleDir), nil
}

// SetLogsFile sets the logfile of the program. Logs are appended to the file.
func SetLogsFile(fs afero.Fs, logFilePath string) error {
	if err := fs.MkdirAll(filepath.Dir(logFilePath), 0700); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	logFile, err := fs.OpenFile(
		logFilePath,
		os.O_APPEND|os.O_WRONLY|os.O_CREATE,
		0600,
	)
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}

	log.SetOutput(logFile)
	return nil
}

// SetRotatingLogsFile sends the logs to a file which is rotated once it grows above
// maxSizeMB megabytes. The returned closer closes the current log file.
func SetRotatingLogsFile(logFilePath string, maxSizeMB int) io.Closer {
	logger := &lumberjack.Logger{
		Filename:   logFilePath,
		MaxSize:    maxSizeMB,
		MaxBackups: 3,
		Compress:   true,
	}
	log.SetOutput(logger)
	return logger
}

// AbsolutePath returns `path` unchanged when it is absolute and joined with `root`
// otherwise.
func AbsolutePath(path, root string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(root, path)
}
