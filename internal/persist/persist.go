package persist

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Mode is the requested write mode.
type Mode string

const (
	ModeWrite  Mode = "w"
	ModeAppend Mode = "a"
)

// Error reports a failed save.
type Error struct {
	Path string
	Mode Mode
	Err  error
}

func (e *Error) Error() string { return fmt.Sprintf("save %s: %v", e.Path, e.Err) }

func (e *Error) Unwrap() error { return e.Err }

// Writer saves extraction results to disk.
type Writer struct {
	// StrictPerms writes files 0600 and creates missing directories 0700.
	StrictPerms bool
	// Logger receives save failures. Nil uses the global logger.
	Logger *zerolog.Logger
}

// Save writes payload to filename. The file is always created or truncated;
// mode is recorded but ModeAppend does not append. Failures are logged and
// returned as *Error.
func (w Writer) Save(filename, payload string, mode Mode) error {
	if err := w.write(filename, payload); err != nil {
		l := &log.Logger
		if w.Logger != nil {
			l = w.Logger
		}
		l.Error().Err(err).Str("path", filename).Str("mode", string(mode)).Msg("error occurred while saving data to file")
		return &Error{Path: filename, Mode: mode, Err: err}
	}
	return nil
}

func (w Writer) write(filename, payload string) error {
	dirPerm, filePerm := os.FileMode(0o755), os.FileMode(0o644)
	if w.StrictPerms {
		dirPerm, filePerm = 0o700, 0o600
	}
	if dir := filepath.Dir(filename); dir != "." && dir != "" {
		if err := os.MkdirAll(dir, dirPerm); err != nil {
			return fmt.Errorf("create dir: %w", err)
		}
	}
	f, err := os.OpenFile(filename, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm)
	if err != nil {
		return err
	}
	if w.StrictPerms {
		// OpenFile keeps the mode of an existing file
		if err := f.Chmod(filePerm); err != nil {
			f.Close()
			return err
		}
	}
	if _, err := f.WriteString(payload); err != nil {
		f.Close()
		return fmt.Errorf("write: %w", err)
	}
	return f.Close()
}

// Save writes with a default Writer.
func Save(filename, payload string, mode Mode) error {
	return Writer{}.Save(filename, payload, mode)
}
