package ingest

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// ErrInvalidFilename marks client-supplied names the stager refuses to touch.
var ErrInvalidFilename = errors.New("invalid filename")

// Stager writes uploaded payloads into a local staging directory before
// processing. Filenames come straight from the client and are treated as
// untrusted: anything that could escape the staging directory is rejected.
type Stager struct {
	dir string
}

// NewStager creates the staging directory if it does not exist.
func NewStager(dir string) (*Stager, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create staging dir: %w", err)
	}
	return &Stager{dir: dir}, nil
}

func (s *Stager) Dir() string { return s.dir }

// Stage writes the payload under its original filename, overwriting any
// existing file of the same name. Concurrent uploads sharing a filename race
// on the same path; callers that need isolation must use distinct names.
func (s *Stager) Stage(filename string, data io.Reader) (string, error) {
	if err := validateFilename(filename); err != nil {
		return "", err
	}

	path := filepath.Join(s.dir, filename)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create staged file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, data); err != nil {
		return "", fmt.Errorf("write staged file: %w", err)
	}
	return path, nil
}

func validateFilename(name string) error {
	if name == "" {
		return fmt.Errorf("%w: empty", ErrInvalidFilename)
	}
	if strings.ContainsAny(name, `/\`) || name != filepath.Base(name) || name == "." || name == ".." {
		return fmt.Errorf("%w: unsafe name %q", ErrInvalidFilename, name)
	}
	return nil
}
