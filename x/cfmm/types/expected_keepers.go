package types

import (
	"context"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// BankKeeper is the fungible-asset transfer collaborator. Balance and
// allowance shortfalls surface as errors from the transfer calls.
type BankKeeper interface {
	BalanceOf(ctx context.Context, token string, account sdk.AccAddress) math.Int
	Transfer(ctx context.Context, token string, from, to sdk.AccAddress, amount math.Int) error
	TransferFrom(ctx context.Context, token string, spender, from, to sdk.AccAddress, amount math.Int) error
	Approve(ctx context.Context, token string, owner, spender sdk.AccAddress, amount math.Int) error
	Allowance(ctx context.Context, token string, owner, spender sdk.AccAddress) math.Int
}

// FlashBorrower receives a flash loan. OnFlashLoan runs synchronously inside
// the lender's call on the same branched context; it must leave amount+fee of
// token with the lender before returning.
type FlashBorrower interface {
	OnFlashLoan(ctx sdk.Context, initiator sdk.AccAddress, token Token, amount, fee math.Int, data []byte) error
}

// FlashBorrowerFunc adapts a plain function to FlashBorrower.
type FlashBorrowerFunc func(ctx sdk.Context, initiator sdk.AccAddress, token Token, amount, fee math.Int, data []byte) error

// OnFlashLoan implements FlashBorrower
func (f FlashBorrowerFunc) OnFlashLoan(ctx sdk.Context, initiator sdk.AccAddress, token Token, amount, fee math.Int, data []byte) error {
	return f(ctx, initiator, token, amount, fee, data)
}

// SealedAmount is an encrypted amount together with its correctness proof.
type SealedAmount struct {
	Ciphertext []byte `json:"ciphertext"`
	Proof      []byte `json:"proof"`
}

// AmountDecryptor reveals a sealed amount as a plain integer. The keeper
// never operates on ciphertext.
type AmountDecryptor interface {
	Decrypt(ctx context.Context, owner sdk.AccAddress, sealed SealedAmount) (math.Int, error)
}
