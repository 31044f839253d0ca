package jwtx

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	mathrand "math/rand/v2"

	"github.com/greenhollow/stockade/pkg/cryptox"
)

// KeyManager owns the token signing keys for a process. Keys are ephemeral:
// generated at startup, held only in memory, and gone on restart - which
// also means every outstanding token is invalidated by a restart.
//
// Multiple signing keys are generated; signing picks one at random and the
// shared KeySet lets the verifier resolve any of them by kid.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	signers []Signer
}

// KeyManagerOptions configures ephemeral key generation.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) stamped into and validated on tokens.
	Issuer string

	// NumKeys is how many signing keys to generate. Defaults to 3,
	// clamped to [1, 10].
	NumKeys int
}

// NewEphemeralKeyManager generates NumKeys Ed25519 signing keys and wires a
// KeySet and Verifier around them.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	numKeys := opts.NumKeys
	if numKeys <= 0 {
		numKeys = 3
	}
	if numKeys > 10 {
		numKeys = 10
	}

	keyset := NewKeySet()
	signers := make([]Signer, 0, numKeys)

	for i := 0; i < numKeys; i++ {
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key ID: %w", err)
		}

		pemKey, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate key %d: %w", i+1, err)
		}

		signer, err := NewSignerEdDSA(kid, pemKey)
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to load signer %d: %w", i+1, err)
		}

		signers = append(signers, signer)
		keyset.AddSigner(signer)
	}

	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, opts.Issuer),
		KeySet:   keyset,
		signers:  signers,
	}, nil
}

// GetSigner returns a randomly selected signer to distribute signing load.
func (km *KeyManager) GetSigner() Signer {
	if len(km.signers) == 1 {
		return km.signers[0]
	}
	return km.signers[mathrand.IntN(len(km.signers))]
}

func generateRandomKeyID() (string, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}
