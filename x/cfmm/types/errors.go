package types

import (
	"errors"

	errorsmod "cosmossdk.io/errors"
)

// CFMM module sentinel errors
var (
	ErrInvalidSeed              = errorsmod.Register(ModuleName, 2, "invalid pair seed")
	ErrIdenticalTokens          = errorsmod.Register(ModuleName, 3, "identical tokens")
	ErrInvalidPath              = errorsmod.Register(ModuleName, 4, "invalid swap path")
	ErrInvalidToken             = errorsmod.Register(ModuleName, 5, "invalid token")
	ErrInvalidAmount            = errorsmod.Register(ModuleName, 6, "invalid amount")
	ErrInvalidParams            = errorsmod.Register(ModuleName, 7, "invalid params")
	ErrPairExists               = errorsmod.Register(ModuleName, 8, "pair already exists")
	ErrPairNotFound             = errorsmod.Register(ModuleName, 9, "pair not found")
	ErrInsufficientLiquidity    = errorsmod.Register(ModuleName, 10, "insufficient liquidity")
	ErrInsufficientShares       = errorsmod.Register(ModuleName, 11, "insufficient liquidity shares")
	ErrInsufficientOutput       = errorsmod.Register(ModuleName, 12, "insufficient output amount")
	ErrInsufficientReserve      = errorsmod.Register(ModuleName, 13, "insufficient reserve")
	ErrInsufficientOutputAmount = errorsmod.Register(ModuleName, 14, "output below minimum")
	ErrExcessiveInputAmount     = errorsmod.Register(ModuleName, 15, "input above maximum")
	ErrInsufficientAAmount      = errorsmod.Register(ModuleName, 16, "insufficient A amount")
	ErrInsufficientBAmount      = errorsmod.Register(ModuleName, 17, "insufficient B amount")
	ErrExpired                  = errorsmod.Register(ModuleName, 18, "deadline expired")
	ErrRepaymentFailed          = errorsmod.Register(ModuleName, 19, "flash loan not repaid")
	ErrFlashLoanActive          = errorsmod.Register(ModuleName, 20, "flash loan already in progress")
	ErrInvariantViolation       = errorsmod.Register(ModuleName, 21, "invariant violation")
	ErrUnauthorized             = errorsmod.Register(ModuleName, 22, "unauthorized")
	ErrDecryptionFailed         = errorsmod.Register(ModuleName, 23, "confidential amount rejected")
	ErrInvalidState             = errorsmod.Register(ModuleName, 24, "invalid state")
	ErrInsufficientFunds        = errorsmod.Register(ModuleName, 25, "insufficient funds")
)

// ErrorClass is the coarse failure category a caller can act on.
type ErrorClass string

const (
	ClassInvalidInput       ErrorClass = "InvalidInput"
	ClassNotFound           ErrorClass = "NotFound"
	ClassAlreadyExists      ErrorClass = "AlreadyExists"
	ClassSlippageExceeded   ErrorClass = "SlippageExceeded"
	ClassExpired            ErrorClass = "Expired"
	ClassInsufficientFunds  ErrorClass = "InsufficientFunds"
	ClassInvariantViolation ErrorClass = "InvariantViolation"
	ClassUnknown            ErrorClass = "Unknown"
)

var errorClasses = []struct {
	class ErrorClass
	errs  []error
}{
	{ClassInvalidInput, []error{
		ErrInvalidSeed, ErrIdenticalTokens, ErrInvalidPath, ErrInvalidToken,
		ErrInvalidAmount, ErrInvalidParams, ErrDecryptionFailed, ErrUnauthorized,
		ErrFlashLoanActive,
	}},
	{ClassNotFound, []error{ErrPairNotFound}},
	{ClassAlreadyExists, []error{ErrPairExists}},
	{ClassSlippageExceeded, []error{
		ErrInsufficientOutputAmount, ErrExcessiveInputAmount,
		ErrInsufficientAAmount, ErrInsufficientBAmount,
	}},
	{ClassExpired, []error{ErrExpired}},
	{ClassInsufficientFunds, []error{
		ErrInsufficientLiquidity, ErrInsufficientShares, ErrInsufficientOutput,
		ErrInsufficientReserve, ErrRepaymentFailed, ErrInsufficientFunds,
	}},
	{ClassInvariantViolation, []error{ErrInvariantViolation, ErrInvalidState}},
}

// extraClasses lets collaborating modules map their own sentinels into the
// taxonomy without this package importing them. Kept in registration order,
// so the earliest registration decides when an error matches several.
var extraClasses []classifiedError

type classifiedError struct {
	class ErrorClass
	err   error
}

// RegisterErrorClass adds foreign sentinel errors to a class. It is meant to
// be called from package init functions.
func RegisterErrorClass(class ErrorClass, errs ...error) {
	for _, err := range errs {
		extraClasses = append(extraClasses, classifiedError{class: class, err: err})
	}
}

// Classify maps err onto the module's error taxonomy.
func Classify(err error) ErrorClass {
	if err == nil {
		return ""
	}
	for _, c := range errorClasses {
		for _, target := range c.errs {
			if errors.Is(err, target) {
				return c.class
			}
		}
	}
	for _, extra := range extraClasses {
		if errors.Is(err, extra.err) {
			return extra.class
		}
	}
	return ClassUnknown
}
