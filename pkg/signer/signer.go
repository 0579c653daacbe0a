// Package signer computes the per-segment signature the core stores
// alongside segment content. It derives a per-key-identifier HMAC key via
// HKDF the same way realRicFlair-sc/storage/stateless_chunk.go derives its
// per-file AEAD key, then signs the segment's wire-visible hierarchical
// name concatenated with its content — so a signature is invalid if
// either the bytes or the name the reader thinks they belong to change.
package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"io"

	"golang.org/x/crypto/hkdf"
)

// Signer signs segment content under a fixed master key and key
// identifier, deriving a dedicated signing key via HKDF so the master
// key itself is never used directly as an HMAC key.
type Signer struct {
	key []byte
}

// New derives a Signer's HMAC key from masterKey and keyID. keyID is the
// signing key identifier from configuration; it is folded into the HKDF
// info parameter so rotating it (without rotating masterKey) yields an
// entirely independent signing key.
func New(masterKey []byte, keyID string) *Signer {
	return &Signer{key: deriveKey(masterKey, keyID)}
}

func deriveKey(masterKey []byte, keyID string) []byte {
	h := hkdf.New(sha256.New, masterKey, []byte("ndnfs-segment-signing:v1"), []byte(keyID))
	out := make([]byte, sha256.Size)
	// HKDF-Expand over a SHA-256 based HKDF never fails to fill a buffer
	// this short; io.ReadFull cannot return an error here.
	_, _ = io.ReadFull(h, out)
	return out
}

// Sign computes the HMAC-SHA256 signature of name || content, where name
// is the hierarchical segment name produced by pkg/segname.Name. Binding
// the name into the signed bytes means a segment can't be replayed under
// a different path, version, or index without invalidating it.
func (s *Signer) Sign(name string, content []byte) []byte {
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(name))
	mac.Write(content)
	return mac.Sum(nil)
}

// Verify reports whether signature is the correct signature for name and
// content under this Signer's key.
func (s *Signer) Verify(name string, content, signature []byte) bool {
	expected := s.Sign(name, content)
	return hmac.Equal(expected, signature)
}
