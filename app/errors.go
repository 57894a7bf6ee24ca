package app

import (
	cfmmtypes "github.com/paw-chain/cfmm/x/cfmm/types"
	tokentypes "github.com/paw-chain/cfmm/x/token/types"
)

func init() {
	cfmmtypes.RegisterErrorClass(cfmmtypes.ClassInsufficientFunds,
		tokentypes.ErrInsufficientBalance,
		tokentypes.ErrInsufficientAllowance,
	)
	cfmmtypes.RegisterErrorClass(cfmmtypes.ClassInvalidInput,
		tokentypes.ErrInvalidAmount,
		tokentypes.ErrInvalidToken,
		tokentypes.ErrInvalidAddress,
	)
}
