package types

import (
	sdk "github.com/cosmos/cosmos-sdk/types"
)

const (
	// ModuleName defines the module name
	ModuleName = "token"

	// StoreKey defines the primary module store key
	StoreKey = ModuleName
)

// Store key prefixes
var (
	BalanceKeyPrefix   = []byte{0x01} // token + account -> balance
	AllowanceKeyPrefix = []byte{0x02} // token + owner + spender -> allowance
	SupplyKeyPrefix    = []byte{0x03} // token -> total supply
)

// BalanceKey returns the store key for an account balance of token
func BalanceKey(token string, account sdk.AccAddress) []byte {
	return append(tokenPrefixed(BalanceKeyPrefix, token), addressPrefixed(account)...)
}

// AllowanceKey returns the store key for the allowance owner granted spender
func AllowanceKey(token string, owner, spender sdk.AccAddress) []byte {
	key := append(tokenPrefixed(AllowanceKeyPrefix, token), addressPrefixed(owner)...)
	return append(key, addressPrefixed(spender)...)
}

// SupplyKey returns the store key for the total supply of token
func SupplyKey(token string) []byte {
	return append(append([]byte{}, SupplyKeyPrefix...), []byte(token)...)
}

// SplitBalanceKey recovers the token and account from a balance key.
func SplitBalanceKey(key []byte) (string, sdk.AccAddress) {
	rest := key[len(BalanceKeyPrefix):]
	tokenLen := int(rest[0])
	token := string(rest[1 : 1+tokenLen])
	rest = rest[1+tokenLen:]
	addrLen := int(rest[0])
	return token, sdk.AccAddress(rest[1 : 1+addrLen])
}

func tokenPrefixed(prefix []byte, token string) []byte {
	key := append([]byte{}, prefix...)
	key = append(key, byte(len(token)))
	return append(key, []byte(token)...)
}

func addressPrefixed(addr sdk.AccAddress) []byte {
	return append([]byte{byte(len(addr))}, addr...)
}
