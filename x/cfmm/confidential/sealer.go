// Package confidential seals and reveals swap and liquidity amounts so that
// they travel encrypted until the cfmm keeper consumes them.
package confidential

import (
	"context"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"
	"io"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	"github.com/paw-chain/cfmm/x/cfmm/types"
)

const (
	// KeySize is the length of the master key
	KeySize = 32

	encInfo = "cfmm/confidential/enc"
	macInfo = "cfmm/confidential/mac"
)

var (
	ErrInvalidKey   = errors.New("confidential: master key must be 32 bytes")
	ErrInvalidProof = errors.New("confidential: proof does not match ciphertext")
	ErrMalformed    = errors.New("confidential: malformed ciphertext")
)

// Sealer encrypts amounts for an owner with XChaCha20-Poly1305 and attaches a
// keyed BLAKE2b proof binding the ciphertext to that owner. Per-owner keys
// are derived from the master key with HKDF-SHA256.
type Sealer struct {
	master []byte
}

var _ types.AmountDecryptor = (*Sealer)(nil)

// NewSealer creates a Sealer from a 32-byte master key
func NewSealer(masterKey []byte) (*Sealer, error) {
	if len(masterKey) != KeySize {
		return nil, ErrInvalidKey
	}
	return &Sealer{master: append([]byte(nil), masterKey...)}, nil
}

// Seal encrypts amount for owner
func (s *Sealer) Seal(owner sdk.AccAddress, amount math.Int) (types.SealedAmount, error) {
	if amount.IsNil() || amount.IsNegative() {
		return types.SealedAmount{}, fmt.Errorf("confidential: cannot seal amount %s", amount)
	}
	plaintext, err := amount.Marshal()
	if err != nil {
		return types.SealedAmount{}, err
	}

	aead, err := s.aead(owner)
	if err != nil {
		return types.SealedAmount{}, err
	}
	nonce := make([]byte, aead.NonceSize(), aead.NonceSize()+len(plaintext)+aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return types.SealedAmount{}, fmt.Errorf("confidential: nonce: %w", err)
	}
	ciphertext := aead.Seal(nonce, nonce, plaintext, owner)

	proof, err := s.proof(owner, ciphertext)
	if err != nil {
		return types.SealedAmount{}, err
	}
	return types.SealedAmount{Ciphertext: ciphertext, Proof: proof}, nil
}

// Decrypt verifies the proof and reveals the sealed amount
func (s *Sealer) Decrypt(_ context.Context, owner sdk.AccAddress, sealed types.SealedAmount) (math.Int, error) {
	expected, err := s.proof(owner, sealed.Ciphertext)
	if err != nil {
		return math.ZeroInt(), err
	}
	if subtle.ConstantTimeCompare(expected, sealed.Proof) != 1 {
		return math.ZeroInt(), ErrInvalidProof
	}

	aead, err := s.aead(owner)
	if err != nil {
		return math.ZeroInt(), err
	}
	if len(sealed.Ciphertext) < aead.NonceSize()+aead.Overhead() {
		return math.ZeroInt(), ErrMalformed
	}
	nonce, ciphertext := sealed.Ciphertext[:aead.NonceSize()], sealed.Ciphertext[aead.NonceSize():]
	plaintext, err := aead.Open(nil, nonce, ciphertext, owner)
	if err != nil {
		return math.ZeroInt(), fmt.Errorf("confidential: open: %w", err)
	}

	amount := math.ZeroInt()
	if err := amount.Unmarshal(plaintext); err != nil {
		return math.ZeroInt(), fmt.Errorf("confidential: decode amount: %w", err)
	}
	return amount, nil
}

func (s *Sealer) aead(owner sdk.AccAddress) (cipher.AEAD, error) {
	key, err := s.derive(owner, encInfo, chacha20poly1305.KeySize)
	if err != nil {
		return nil, err
	}
	return chacha20poly1305.NewX(key)
}

func (s *Sealer) proof(owner sdk.AccAddress, ciphertext []byte) ([]byte, error) {
	key, err := s.derive(owner, macInfo, blake2b.Size256)
	if err != nil {
		return nil, err
	}
	mac, err := blake2b.New256(key)
	if err != nil {
		return nil, err
	}
	mac.Write(owner)
	mac.Write(ciphertext)
	return mac.Sum(nil), nil
}

func (s *Sealer) derive(owner sdk.AccAddress, info string, size int) ([]byte, error) {
	key := make([]byte, size)
	r := hkdf.New(sha256.New, s.master, owner, []byte(info))
	if _, err := io.ReadFull(r, key); err != nil {
		return nil, fmt.Errorf("confidential: derive key: %w", err)
	}
	return key, nil
}
