package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Domain prefixes for content-addressed identity.
// The version suffix allows the rendering to evolve without colliding
// with fingerprints recorded by older builds.
const (
	DomainRequest = "searchc/request/v1"
)

// hashWithDomain computes SHA256(domain + 0x00 + data).
// The null separator removes domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// Fingerprint hashes the canonical JSON of v under the given domain.
func Fingerprint(domain string, v Value) (string, error) {
	canonical, err := MarshalCanonical(v)
	if err != nil {
		return "", fmt.Errorf("fingerprint: %w", err)
	}
	return hashWithDomain(domain, canonical), nil
}

// RequestFingerprint identifies a rendered search request.
// Two compilations of the same container must produce the same value.
func RequestFingerprint(rendered Object) (string, error) {
	return Fingerprint(DomainRequest, rendered)
}

// MustRequestFingerprint panics on error. For tests only.
func MustRequestFingerprint(rendered Object) string {
	fp, err := RequestFingerprint(rendered)
	if err != nil {
		panic(err)
	}
	return fp
}
