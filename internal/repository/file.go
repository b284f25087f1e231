package repository

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rocketscienceinc/tictactoe-client/internal/entity"
)

// FileSessionRepository keeps the session as a GameState XML document on disk.
type FileSessionRepository struct {
	path string
}

func NewFileSessionRepository(path string) *FileSessionRepository {
	return &FileSessionRepository{
		path: path,
	}
}

// Save replaces the file through a rename so a crash never leaves half a document.
func (that *FileSessionRepository) Save(_ context.Context, snapshot entity.Snapshot) error {
	data, err := marshalSnapshot(snapshot)
	if err != nil {
		return err
	}

	dir := filepath.Dir(that.path)
	if err = os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("could not create session directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(that.path)+".*")
	if err != nil {
		return fmt.Errorf("could not create session file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("could not write session file: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("could not write session file: %w", err)
	}

	if err = os.Rename(tmp.Name(), that.path); err != nil {
		return fmt.Errorf("could not replace session file: %w", err)
	}

	return nil
}

func (that *FileSessionRepository) Load(_ context.Context) (entity.Snapshot, error) {
	data, err := os.ReadFile(that.path)
	if errors.Is(err, fs.ErrNotExist) {
		return entity.Snapshot{}, ErrSessionNotFound
	}

	if err != nil {
		return entity.Snapshot{}, fmt.Errorf("could not read session file: %w", err)
	}

	return unmarshalSnapshot(data)
}
