package kvstore

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"io"

	"github.com/sentrywaf/engine/pkg/types"
)

// EncryptedBackend wraps another Backend, encrypting Value.Data with
// AES-256-GCM before it reaches the underlying store and decrypting it
// on the way back out. The nonce is prepended to the ciphertext, so no
// separate field is needed on disk.
type EncryptedBackend struct {
	inner Backend
	key   []byte
}

// NewEncryptedBackend wraps inner with AES-256-GCM using key, which
// must be exactly 32 bytes.
func NewEncryptedBackend(inner Backend, key []byte) (*EncryptedBackend, error) {
	if len(key) != 32 {
		return nil, types.NewError(types.Invalid, "kvstore: encryption key must be 32 bytes, got %d", len(key))
	}
	return &EncryptedBackend{inner: inner, key: key}, nil
}

func (b *EncryptedBackend) Connect() error    { return b.inner.Connect() }
func (b *EncryptedBackend) Disconnect() error { return b.inner.Disconnect() }

func (b *EncryptedBackend) gcm() (cipher.AEAD, error) {
	block, err := aes.NewCipher(b.key)
	if err != nil {
		return nil, types.NewError(types.Other, "kvstore: new cipher: %v", err)
	}
	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, types.NewError(types.Other, "kvstore: new gcm: %v", err)
	}
	return gcm, nil
}

func (b *EncryptedBackend) seal(plaintext []byte) ([]byte, error) {
	gcm, err := b.gcm()
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, types.NewError(types.Other, "kvstore: nonce: %v", err)
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

func (b *EncryptedBackend) open(ciphertext []byte) ([]byte, error) {
	gcm, err := b.gcm()
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(ciphertext) < nonceSize {
		return nil, types.NewError(types.Invalid, "kvstore: ciphertext too short")
	}
	nonce, body := ciphertext[:nonceSize], ciphertext[nonceSize:]
	plaintext, err := gcm.Open(nil, nonce, body, nil)
	if err != nil {
		return nil, types.NewError(types.Invalid, "kvstore: decrypt: %v", err)
	}
	return plaintext, nil
}

func (b *EncryptedBackend) Get(key string) ([]*Value, error) {
	values, err := b.inner.Get(key)
	if err != nil {
		return nil, err
	}
	out := make([]*Value, len(values))
	for i, v := range values {
		plain, err := b.open(v.Data)
		if err != nil {
			return nil, err
		}
		cp := *v
		cp.Data = plain
		out[i] = &cp
	}
	return out, nil
}

func (b *EncryptedBackend) Set(key string, v *Value) error {
	sealed, err := b.seal(v.Data)
	if err != nil {
		return err
	}
	cp := *v
	cp.Data = sealed
	return b.inner.Set(key, &cp)
}

func (b *EncryptedBackend) Remove(key string) error {
	return b.inner.Remove(key)
}
