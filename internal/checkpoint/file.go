package checkpoint

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/model"
	"github.com/goodnatureofminers/blockinsight7000-blockparser/internal/network"
)

// FileStore keeps the checkpoint in a JSON file.
type FileStore struct {
	path  string
	chain chain
}

func NewFileStore(path string, coin network.Coin, net network.Network) *FileStore {
	return &FileStore{path: path, chain: chain{coin: coin, network: net}}
}

func (s *FileStore) Load(_ context.Context) (model.Checkpoint, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return model.Checkpoint{}, ErrNoCheckpointFound
		}
		return model.Checkpoint{}, fmt.Errorf("read checkpoint file: %w", err)
	}
	return s.chain.decode(data)
}

// Save replaces the file atomically.
func (s *FileStore) Save(_ context.Context, cp model.Checkpoint) error {
	data, err := s.chain.encode(cp, time.Now())
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create checkpoint dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create checkpoint temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write checkpoint: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync checkpoint: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close checkpoint: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		return fmt.Errorf("replace checkpoint file: %w", err)
	}
	return nil
}

func (s *FileStore) Close() error {
	return nil
}
