// Package storage holds the places export files are written to.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/labelprint/orderexport/pkg/errors"
)

// LocalStore writes export files into a directory served under a public URL prefix
type LocalStore struct {
	dir       string
	publicURL string
	logger    *zap.Logger
}

// NewLocalStore creates the directory if needed
func NewLocalStore(dir, publicURL string, logger *zap.Logger) (*LocalStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create export directory: %w", err)
	}
	return &LocalStore{
		dir:       dir,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger,
	}, nil
}

// Save writes data to name. An existing file is never replaced: Save returns
// *errors.ErrConflict instead. The file appears atomically with its full content.
// The returned location is the public URL of the file.
func (s *LocalStore) Save(_ context.Context, name string, data []byte) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(s.dir, ".export-*")
	if err != nil {
		return "", fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("failed to write export file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("failed to close export file: %w", err)
	}
	// link fails if the target exists, unlike rename
	if err := os.Link(tmp.Name(), filepath.Join(s.dir, name)); err != nil {
		if os.IsExist(err) {
			return "", &errors.ErrConflict{Resource: "export file", ID: name}
		}
		return "", fmt.Errorf("failed to move export file into place: %w", err)
	}

	s.logger.Debug("Export file written", zap.String("filename", name), zap.Int("bytes", len(data)))
	return s.publicURL + "/" + name, nil
}

// Delete removes name. A missing file is not an error.
func (s *LocalStore) Delete(_ context.Context, name string) error {
	if err := validateName(name); err != nil {
		return err
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete export file: %w", err)
	}
	return nil
}

// Path returns the file system path of an existing export file
func (s *LocalStore) Path(name string) (string, error) {
	if err := validateName(name); err != nil {
		return "", err
	}
	p := filepath.Join(s.dir, name)
	info, err := os.Stat(p)
	if err != nil || info.IsDir() {
		return "", &errors.ErrNotFound{Resource: "export file", ID: name}
	}
	return p, nil
}

// validateName only accepts plain file names, never paths
func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.HasPrefix(name, ".") {
		return &errors.ErrValidation{
			Message: fmt.Sprintf("invalid export file name %q", name),
			Fields:  map[string]string{"filename": "invalid"},
		}
	}
	return nil
}
