package types

// Event types for the token module
const (
	EventTypeTransfer = "token_transfer"
	EventTypeApproval = "token_approval"
	EventTypeMint     = "token_mint"
	EventTypeBurn     = "token_burn"

	AttributeKeyToken   = "token"
	AttributeKeyFrom    = "from"
	AttributeKeyTo      = "to"
	AttributeKeyOwner   = "owner"
	AttributeKeySpender = "spender"
	AttributeKeyAmount  = "amount"
)
