// Package storage implements the local upload store. Uploads happen in a
// two-phase flow: the blob is saved first and only the returned reference
// is attached to domain entities, never a file handle.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/davinrkh/finbook/internal/application/port"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// LocalFileStore implements port.FileStore on the local filesystem.
type LocalFileStore struct {
	baseDir string
	logger  *zap.Logger
}

// NewLocalFileStore creates a store rooted at baseDir
func NewLocalFileStore(baseDir string, logger *zap.Logger) (*LocalFileStore, error) {
	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create upload directory: %w", err)
	}
	return &LocalFileStore{
		baseDir: baseDir,
		logger:  logger,
	}, nil
}

// Save stores the blob under a collision-free name and returns the
// reference used later as a receipt or transfer-proof ref.
func (s *LocalFileStore) Save(ctx context.Context, filename string, content []byte) (string, error) {
	ext := filepath.Ext(filename)
	ref := uuid.NewString() + ext

	fullPath := filepath.Join(s.baseDir, ref)
	if err := s.validatePath(fullPath); err != nil {
		return "", err
	}

	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		s.logger.Error("Failed to write upload",
			zap.String("path", fullPath),
			zap.Error(err))
		return "", fmt.Errorf("failed to write file: %w", err)
	}

	s.logger.Debug("Upload stored",
		zap.String("ref", ref),
		zap.Int("size", len(content)))

	return ref, nil
}

// Open returns the stored content for a reference.
func (s *LocalFileStore) Open(ctx context.Context, ref string) ([]byte, error) {
	fullPath := filepath.Join(s.baseDir, ref)
	if err := s.validatePath(fullPath); err != nil {
		return nil, err
	}

	content, err := os.ReadFile(fullPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return content, nil
}

// validatePath rejects references that escape the base directory.
func (s *LocalFileStore) validatePath(fullPath string) error {
	absPath, err := filepath.Abs(fullPath)
	if err != nil {
		return fmt.Errorf("failed to resolve path: %w", err)
	}

	absBase, err := filepath.Abs(s.baseDir)
	if err != nil {
		return fmt.Errorf("failed to resolve base path: %w", err)
	}

	if !strings.HasPrefix(absPath, absBase+string(filepath.Separator)) && absPath != absBase {
		return fmt.Errorf("path escapes base directory: %s", fullPath)
	}
	return nil
}

// Verify interface compliance
var _ port.FileStore = (*LocalFileStore)(nil)
