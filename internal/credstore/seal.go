package credstore

import (
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"
)

const keyLen = 32

// sealInfo binds derived keys to this record type so a reused key file
// cannot decrypt unrelated blobs.
var sealInfo = []byte("starview/credential/v1")

func randBytes(n int) ([]byte, error) {
	b := make([]byte, n)
	_, err := rand.Read(b)
	return b, err
}

// deriveSealKey stretches the on-disk key file into an AEAD key via HKDF.
func deriveSealKey(fileKey []byte) ([]byte, error) {
	r := hkdf.New(sha256.New, fileKey, nil, sealInfo)
	key := make([]byte, keyLen)
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, err
	}
	return key, nil
}

// seal encrypts plaintext with XChaCha20-Poly1305, nonce prepended.
func seal(fileKey, plaintext []byte) ([]byte, error) {
	key, err := deriveSealKey(fileKey)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, err := randBytes(chacha20poly1305.NonceSizeX)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, len(nonce)+len(plaintext)+aead.Overhead())
	out = append(out, nonce...)
	out = append(out, aead.Seal(nil, nonce, plaintext, nil)...)
	return out, nil
}

// open decrypts a sealed blob produced by seal.
func open(fileKey, sealed []byte) ([]byte, error) {
	if len(sealed) < chacha20poly1305.NonceSizeX {
		return nil, errors.New("sealed blob too short")
	}
	key, err := deriveSealKey(fileKey)
	if err != nil {
		return nil, err
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, err
	}
	nonce, ct := sealed[:chacha20poly1305.NonceSizeX], sealed[chacha20poly1305.NonceSizeX:]
	return aead.Open(nil, nonce, ct, nil)
}
