package types

import (
	errorsmod "cosmossdk.io/errors"
)

// Token module sentinel errors
var (
	ErrInvalidAmount         = errorsmod.Register(ModuleName, 2, "invalid amount")
	ErrInvalidToken          = errorsmod.Register(ModuleName, 3, "invalid token")
	ErrInvalidAddress        = errorsmod.Register(ModuleName, 4, "invalid address")
	ErrInsufficientBalance   = errorsmod.Register(ModuleName, 5, "insufficient balance")
	ErrInsufficientAllowance = errorsmod.Register(ModuleName, 6, "insufficient allowance")
)
