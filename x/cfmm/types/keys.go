package types

import (
	"fmt"

	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "cfmm"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName

	// RouterKey defines the module's message routing key
	RouterKey = ModuleName

	// FeeDenominator is the basis-point denominator used by every fee rate.
	FeeDenominator = 10000
)

// Store key prefixes
var (
	PairKeyPrefix        = []byte{0x01} // pair id -> Pair
	PairByTokensPrefix   = []byte{0x02} // canonical token0/token1 -> pair id
	PairByAddressPrefix  = []byte{0x03} // pair address -> pair id
	PairCountKey         = []byte{0x04} // number of pairs ever created
	SharesKeyPrefix      = []byte{0x05} // pair id + holder -> share balance
	ProtocolFeeKeyPrefix = []byte{0x06} // recipient + token -> accrued protocol fee
	ParamsKey            = []byte{0x07}
	FlashLoanLockKey     = []byte{0x08} // present only while a flash loan callback runs
	FlashFeeKeyPrefix    = []byte{0x09} // token -> flash fees earned
)

// PairKey returns the store key for a pair
func PairKey(pairID uint64) []byte {
	return append(append([]byte{}, PairKeyPrefix...), sdk.Uint64ToBigEndian(pairID)...)
}

// PairByTokensKey returns the registry key for a token pair. The tokens are
// canonicalized first so the key is the same in either argument order.
func PairByTokensKey(tokenA, tokenB Token) []byte {
	token0, token1 := SortTokens(tokenA, tokenB)
	key := append([]byte{}, PairByTokensPrefix...)
	key = append(key, lengthPrefixed(token0)...)
	return append(key, lengthPrefixed(token1)...)
}

// PairByAddressKey returns the reverse lookup key for a pair address
func PairByAddressKey(addr sdk.AccAddress) []byte {
	return append(append([]byte{}, PairByAddressPrefix...), addr...)
}

// SharesPrefix returns the prefix for every share balance of a pair
func SharesPrefix(pairID uint64) []byte {
	return append(append([]byte{}, SharesKeyPrefix...), sdk.Uint64ToBigEndian(pairID)...)
}

// SharesKey returns the store key for a holder's share balance
func SharesKey(pairID uint64, holder sdk.AccAddress) []byte {
	return append(SharesPrefix(pairID), holder...)
}

// ProtocolFeeKey returns the store key for a recipient's accrued fee in token
func ProtocolFeeKey(recipient sdk.AccAddress, token Token) []byte {
	key := append([]byte{}, ProtocolFeeKeyPrefix...)
	key = append(key, byte(len(recipient)))
	key = append(key, recipient...)
	return append(key, []byte(token)...)
}

// SplitProtocolFeeKey recovers the recipient and token from a ProtocolFeeKey
func SplitProtocolFeeKey(key []byte) (sdk.AccAddress, Token, error) {
	rest := key[len(ProtocolFeeKeyPrefix):]
	if len(rest) == 0 || len(rest) < 1+int(rest[0]) {
		return nil, "", fmt.Errorf("malformed protocol fee key %X", key)
	}
	n := int(rest[0])
	return sdk.AccAddress(rest[1 : 1+n]), Token(rest[1+n:]), nil
}

// FlashFeeKey returns the store key for the flash fees earned in token
func FlashFeeKey(token Token) []byte {
	return append(append([]byte{}, FlashFeeKeyPrefix...), []byte(token)...)
}

func lengthPrefixed(t Token) []byte {
	return append([]byte{byte(len(t))}, []byte(t)...)
}
