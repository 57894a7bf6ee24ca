package app

import (
	"context"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	sdk "github.com/cosmos/cosmos-sdk/types"
)

// CallInfo identifies one committed top-level call.
type CallInfo struct {
	Height    int64
	BlockTime time.Time
	// Sequence numbers calls within a height, starting at 1.
	Sequence uint64
}

// EventSink receives the events of every committed call. A sink failure is
// logged and never undoes the call.
type EventSink interface {
	Archive(ctx context.Context, call CallInfo, events []abci.Event) error
}

// EventSinkFunc adapts a plain function to EventSink.
type EventSinkFunc func(ctx context.Context, call CallInfo, events []abci.Event) error

// Archive implements EventSink
func (f EventSinkFunc) Archive(ctx context.Context, call CallInfo, events []abci.Event) error {
	return f(ctx, call, events)
}

func toABCI(events sdk.Events) []abci.Event {
	return events.ToABCIEvents()
}
