package web

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gorilla/securecookie"
)

// LoadKeys loads the cookie signing and encryption keys from dir, generating
// and saving them first if they don't exist yet.
func LoadKeys(dir string) (*securecookie.SecureCookie, error) {
	hashKey, err := loadOrGenKey(filepath.Join(dir, "hashKey"))
	if err != nil {
		return nil, err
	}

	blockKey, err := loadOrGenKey(filepath.Join(dir, "blockKey"))
	if err != nil {
		return nil, err
	}

	return securecookie.New(hashKey, blockKey), nil
}

func loadOrGenKey(name string) ([]byte, error) {
	f, err := os.ReadFile(name)
	if err == nil {
		return f, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to read key %q: %w", name, err)
	}

	dat := securecookie.GenerateRandomKey(32)
	if dat == nil {
		return nil, errors.New("failed to generate key")
	}

	if err := os.WriteFile(name, dat, 0600); err != nil {
		return nil, fmt.Errorf("failed to write key %q: %w", name, err)
	}
	return dat, nil
}
