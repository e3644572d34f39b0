package auth

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"interaction-lab/errors"
	"strconv"
	"time"
)

// Verifier checks the Ed25519 signature the platform puts on every interaction request.
// The signed message is the timestamp header followed by the raw body.
type Verifier struct {
	key     ed25519.PublicKey
	maxSkew time.Duration
	now     func() time.Time
}

// NewVerifier parses the application public key (hex). A positive maxSkew also rejects
// requests whose timestamp is further than maxSkew from now, limiting replays.
func NewVerifier(publicKeyHex string, maxSkew time.Duration) (*Verifier, error) {
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidPublicKey, err)
	}
	if len(key) != ed25519.PublicKeySize {
		return nil, fmt.Errorf("%w: expected %d bytes, got %d", errors.ErrInvalidPublicKey, ed25519.PublicKeySize, len(key))
	}
	return &Verifier{key: key, maxSkew: maxSkew, now: time.Now}, nil
}

func (v *Verifier) Verify(body []byte, signature, timestamp string) bool {
	if signature == "" || timestamp == "" {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	if v.maxSkew > 0 && !v.fresh(timestamp) {
		return false
	}
	msg := make([]byte, 0, len(timestamp)+len(body))
	msg = append(msg, timestamp...)
	msg = append(msg, body...)
	return ed25519.Verify(v.key, msg, sig)
}

func (v *Verifier) fresh(timestamp string) bool {
	seconds, err := strconv.ParseInt(timestamp, 10, 64)
	if err != nil {
		return false
	}
	skew := v.now().Sub(time.Unix(seconds, 0))
	if skew < 0 {
		skew = -skew
	}
	return skew <= v.maxSkew
}

// Sign produces the headers the platform would send for body. Used by tests and local tooling.
func Sign(key ed25519.PrivateKey, body []byte, timestamp string) string {
	msg := append([]byte(timestamp), body...)
	return hex.EncodeToString(ed25519.Sign(key, msg))
}
