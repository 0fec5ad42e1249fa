package gapy

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/oauth2"
)

// Storage persists OAuth tokens between processes. It is the write-back
// target for tokens refreshed by the oauth2 library.
type Storage interface {
	// Get returns the stored token, or (nil, nil) when none is stored.
	Get() (*oauth2.Token, error)
	// Put stores a token, replacing any previous one.
	Put(*oauth2.Token) error
}

func resolveStorage(store Storage, path string) (Storage, error) {
	if store != nil {
		return store, nil
	}
	if path == "" {
		return nil, fmt.Errorf("%w: must provide either a storage or a storage path", ErrConfig)
	}
	return NewFileStorage(path), nil
}

// NewFileStorage returns a Storage backed by a JSON file at path. The file
// is created with 0600 permissions; a missing file means no stored token.
func NewFileStorage(path string) Storage {
	return &fileStorage{path: path}
}

type fileStorage struct {
	path string
}

func (s *fileStorage) Get() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		return nil, fmt.Errorf("failed to parse token file: %w", err)
	}
	return &tok, nil
}

func (s *fileStorage) Put(tok *oauth2.Token) error {
	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0700); err != nil {
			return fmt.Errorf("failed to create token directory: %w", err)
		}
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// savingTokenSource writes tokens back to storage whenever the underlying
// source hands out a new one, so the next process starts from the newest
// refresh token.
type savingTokenSource struct {
	src   oauth2.TokenSource
	store Storage

	mu   sync.Mutex
	last string // access token already persisted
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.src.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Put(tok); err != nil {
			return nil, fmt.Errorf("failed to store refreshed token: %w", err)
		}
		s.last = tok.AccessToken
	}
	return tok, nil
}
