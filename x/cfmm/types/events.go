package types

// Event types for the CFMM module
const (
	EventTypePairCreated          = "cfmm_pair_created"
	EventTypeSwap                 = "cfmm_swap"
	EventTypeSync                 = "cfmm_sync"
	EventTypeMint                 = "cfmm_mint"
	EventTypeBurn                 = "cfmm_burn"
	EventTypeProtocolFeeAccrued   = "cfmm_protocol_fee_accrued"
	EventTypeProtocolFeeWithdrawn = "cfmm_protocol_fee_withdrawn"
	EventTypeFlashLoan            = "cfmm_flash_loan"
	EventTypeFlashLoanRepaid      = "cfmm_flash_loan_repaid"
	EventTypeFlashReserveFunded   = "cfmm_flash_reserve_funded"
	EventTypeParamsUpdated        = "cfmm_params_updated"
)

// Event attribute keys
const (
	AttributeKeyPairID      = "pair_id"
	AttributeKeyPair        = "pair"
	AttributeKeyToken0      = "token0"
	AttributeKeyToken1      = "token1"
	AttributeKeyToken       = "token"
	AttributeKeyTokenIn     = "token_in"
	AttributeKeyTokenOut    = "token_out"
	AttributeKeyAmount0     = "amount0"
	AttributeKeyAmount1     = "amount1"
	AttributeKeyAmountIn    = "amount_in"
	AttributeKeyAmountOut   = "amount_out"
	AttributeKeyAmount      = "amount"
	AttributeKeyReserve0    = "reserve0"
	AttributeKeyReserve1    = "reserve1"
	AttributeKeyShares      = "shares"
	AttributeKeyTotalShares = "total_shares"
	AttributeKeyLPFee       = "lp_fee"
	AttributeKeyProtocolFee = "protocol_fee"
	AttributeKeyFee         = "fee"
	AttributeKeyPayer       = "payer"
	AttributeKeyRecipient   = "recipient"
	AttributeKeySender      = "sender"
	AttributeKeyCreator     = "creator"
	AttributeKeyBorrower    = "borrower"
)
