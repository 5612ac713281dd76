// Package sealer encrypts short secrets with a passphrase-derived key.
package sealer

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/SscSPs/crypto_bookkeeper/internal/utils"
	"golang.org/x/crypto/nacl/secretbox"
	"golang.org/x/crypto/scrypt"
)

// Prefix marks a sealed value.
const Prefix = "enc:v1:"

const (
	saltSize  = 16
	nonceSize = 24
	keySize   = 32

	scryptN = 1 << 15
	scryptR = 8
	scryptP = 1
)

// ErrOpen is returned when a sealed value cannot be decrypted with the passphrase.
var ErrOpen = errors.New("sealed value could not be opened")

// Sealer seals and opens values. Derived keys are cached per salt since scrypt is slow by
// construction.
type Sealer struct {
	passphrase []byte

	mu   sync.Mutex
	keys map[string]*[keySize]byte
	salt []byte
}

// New returns a Sealer for passphrase. An empty passphrase is rejected.
func New(passphrase string) (*Sealer, error) {
	if passphrase == "" {
		return nil, errors.New("passphrase must not be empty")
	}
	return &Sealer{passphrase: []byte(passphrase), keys: map[string]*[keySize]byte{}}, nil
}

// IsSealed reports whether v carries the sealed prefix.
func IsSealed(v string) bool {
	return strings.HasPrefix(v, Prefix)
}

// Seal encrypts plain. Empty and already sealed values are returned unchanged.
func (s *Sealer) Seal(plain string) (string, error) {
	if plain == "" || IsSealed(plain) {
		return plain, nil
	}

	salt, key, err := s.sealingKey()
	if err != nil {
		return "", err
	}
	nonceBytes, err := utils.GenerateSecureRandomBytes(nonceSize)
	if err != nil {
		return "", fmt.Errorf("failed to generate nonce: %w", err)
	}
	var nonce [nonceSize]byte
	copy(nonce[:], nonceBytes)

	out := make([]byte, 0, saltSize+nonceSize+len(plain)+secretbox.Overhead)
	out = append(out, salt...)
	out = append(out, nonce[:]...)
	out = secretbox.Seal(out, []byte(plain), &nonce, key)
	return Prefix + base64.StdEncoding.EncodeToString(out), nil
}

// Open decrypts a sealed value. Values without the prefix are returned unchanged.
func (s *Sealer) Open(v string) (string, error) {
	if !IsSealed(v) {
		return v, nil
	}
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(v, Prefix))
	if err != nil || len(raw) < saltSize+nonceSize+secretbox.Overhead {
		return "", fmt.Errorf("%w: malformed value", ErrOpen)
	}

	salt := raw[:saltSize]
	var nonce [nonceSize]byte
	copy(nonce[:], raw[saltSize:saltSize+nonceSize])

	key, err := s.keyFor(salt)
	if err != nil {
		return "", err
	}
	plain, ok := secretbox.Open(nil, raw[saltSize+nonceSize:], &nonce, key)
	if !ok {
		return "", ErrOpen
	}
	return string(plain), nil
}

// sealingKey returns the salt and key used for new values, deriving them once per Sealer.
func (s *Sealer) sealingKey() ([]byte, *[keySize]byte, error) {
	s.mu.Lock()
	salt := s.salt
	s.mu.Unlock()

	if salt == nil {
		fresh, err := utils.GenerateSecureRandomBytes(saltSize)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
		}
		s.mu.Lock()
		if s.salt == nil {
			s.salt = fresh
		}
		salt = s.salt
		s.mu.Unlock()
	}

	key, err := s.keyFor(salt)
	return salt, key, err
}

func (s *Sealer) keyFor(salt []byte) (*[keySize]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := s.keys[string(salt)]; ok {
		return key, nil
	}
	derived, err := scrypt.Key(s.passphrase, salt, scryptN, scryptR, scryptP, keySize)
	if err != nil {
		return nil, fmt.Errorf("failed to derive key: %w", err)
	}
	var key [keySize]byte
	copy(key[:], derived)
	s.keys[string(salt)] = &key
	return &key, nil
}
