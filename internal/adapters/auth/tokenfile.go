package auth

import (
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"

	"golang.org/x/oauth2"
)

// ErrBadPassphrase indicates the token file exists but does not decrypt
// with the configured passphrase.
var ErrBadPassphrase = errors.New("token file does not decrypt; wrong passphrase")

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32
)

// FileTokenStore keeps the OAuth token in a single file, encrypted with a
// key derived from a passphrase. A refresh token grants full access to
// the spreadsheet, so it never touches disk in the clear.
// File layout: salt (16) | nonce (24) | secretbox ciphertext.
type FileTokenStore struct {
	path       string
	passphrase []byte
}

// NewFileTokenStore creates a store writing to the given path.
// PRE: passphrase is non-empty
func NewFileTokenStore(path, passphrase string) (*FileTokenStore, error) {
	if passphrase == "" {
		return nil, errors.New("token file passphrase is required")
	}
	return &FileTokenStore{path: path, passphrase: []byte(passphrase)}, nil
}

// Load reads and decrypts the stored token. A missing file is not an
// error: it returns (nil, nil), meaning not yet authenticated.
func (s *FileTokenStore) Load() (*oauth2.Token, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read token file: %w", err)
	}
	if len(data) < saltSize+nonceSize+secretbox.Overhead {
		return nil, fmt.Errorf("token file %s is truncated", s.path)
	}

	key, err := s.deriveKey(data[:saltSize])
	if err != nil {
		return nil, err
	}
	var nonce [nonceSize]byte
	copy(nonce[:], data[saltSize:saltSize+nonceSize])

	plain, ok := secretbox.Open(nil, data[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return nil, ErrBadPassphrase
	}
	var tok oauth2.Token
	if err := json.Unmarshal(plain, &tok); err != nil {
		return nil, fmt.Errorf("decode token file: %w", err)
	}
	return &tok, nil
}

// Save encrypts and writes the token with mode 0600, replacing any
// previous contents atomically.
func (s *FileTokenStore) Save(tok *oauth2.Token) error {
	plain, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("encode token: %w", err)
	}

	var salt [saltSize]byte
	var nonce [nonceSize]byte
	if _, err := io.ReadFull(rand.Reader, salt[:]); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}
	key, err := s.deriveKey(salt[:])
	if err != nil {
		return err
	}

	out := make([]byte, 0, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, salt[:]...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, plain, &nonce, key)

	tmp := s.path + ".tmp"
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(tmp, out, 0o600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace token file: %w", err)
	}
	return nil
}

func (s *FileTokenStore) deriveKey(salt []byte) (*[keySize]byte, error) {
	// Interactive-login scrypt parameters.
	raw, err := scrypt.Key(s.passphrase, salt, 1<<15, 8, 1, keySize)
	if err != nil {
		return nil, fmt.Errorf("derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], raw)
	return &key, nil
}
