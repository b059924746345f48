package sealer

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"
)

const keySize = 32

var ErrInvalidToken = errors.New("invalid token")

// Sealer produces opaque share tokens for tickets. A token authenticates the
// booking id and the owner uid it was issued for.
type Sealer struct {
	aead cipher.AEAD
}

// New builds a Sealer from a base64 encoded 32 byte key. An empty key yields
// a random one, so tokens do not survive a restart.
func New(encodedKey string) (*Sealer, error) {
	var key []byte
	if encodedKey == "" {
		key = make([]byte, keySize)
		if _, err := io.ReadFull(rand.Reader, key); err != nil {
			return nil, err
		}
	} else {
		decoded, err := base64.StdEncoding.DecodeString(encodedKey)
		if err != nil {
			return nil, fmt.Errorf("decode seal key: %w", err)
		}
		key = decoded
	}
	if len(key) != keySize {
		return nil, fmt.Errorf("seal key must be %d bytes, got %d", keySize, len(key))
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	aesgcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}
	return &Sealer{aead: aesgcm}, nil
}

func (s *Sealer) Seal(bookingID string, uid string) (string, error) {
	plaintext := []byte(bookingID + ":" + uid)

	nonce := make([]byte, s.aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}

	ct := s.aead.Seal(nonce, nonce, plaintext, nil)
	return base64.RawURLEncoding.EncodeToString(ct), nil
}

// Open returns the booking id and uid sealed into token.
func (s *Sealer) Open(token string) (string, string, error) {
	data, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	nonceSize := s.aead.NonceSize()
	if len(data) <= nonceSize {
		return "", "", ErrInvalidToken
	}
	nonce := data[:nonceSize]
	ciphertext := data[nonceSize:]

	pt, err := s.aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", "", ErrInvalidToken
	}

	parts := strings.SplitN(string(pt), ":", 2)
	if len(parts) != 2 || parts[0] == "" {
		return "", "", ErrInvalidToken
	}

	return parts[0], parts[1], nil
}
