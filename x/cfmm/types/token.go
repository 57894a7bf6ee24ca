package types

import (
	"bytes"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

// Token is an opaque fungible-asset identifier.
type Token string

// Compare imposes the canonical total order over tokens: byte-wise
// lexicographic order of the identifier. It returns -1, 0 or +1.
func (t Token) Compare(other Token) int {
	return bytes.Compare([]byte(t), []byte(other))
}

// Less reports whether t sorts before other in the canonical order.
func (t Token) Less(other Token) bool {
	return t.Compare(other) < 0
}

// String implements fmt.Stringer
func (t Token) String() string {
	return string(t)
}

// Validate checks the identifier against the denom rules of the ledger.
func (t Token) Validate() error {
	if err := sdk.ValidateDenom(string(t)); err != nil {
		return ErrInvalidToken.Wrapf("%q: %v", string(t), err)
	}
	return nil
}

// SortTokens returns the two tokens in canonical order.
func SortTokens(tokenA, tokenB Token) (Token, Token) {
	if tokenB.Less(tokenA) {
		return tokenB, tokenA
	}
	return tokenA, tokenB
}

// ValidateTokenPair validates both tokens and rejects identical ones.
func ValidateTokenPair(tokenA, tokenB Token) error {
	if err := tokenA.Validate(); err != nil {
		return err
	}
	if err := tokenB.Validate(); err != nil {
		return err
	}
	if tokenA.Compare(tokenB) == 0 {
		return ErrIdenticalTokens.Wrapf("token %s", tokenA)
	}
	return nil
}
