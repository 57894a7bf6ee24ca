package indexer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	abci "github.com/cometbft/cometbft/abci/types"
	"github.com/google/uuid"

	"github.com/paw-chain/cfmm/app"
	cfmmtypes "github.com/paw-chain/cfmm/x/cfmm/types"
)

// Event is one archived event of a call
type Event struct {
	Index      int
	Type       string
	Attributes json.RawMessage
}

// Swap is a decoded cfmm swap hop
type Swap struct {
	EventIndex  int
	PairID      uint64
	Payer       string
	Recipient   string
	TokenIn     string
	TokenOut    string
	AmountIn    string
	AmountOut   string
	LPFee       string
	ProtocolFee string
}

// Pair is a pair announced by a pair created event
type Pair struct {
	PairID  uint64
	Address string
	Token0  string
	Token1  string
	Creator string
}

// Reserves is the last reserve snapshot of a pair within a call
type Reserves struct {
	PairID   uint64
	Reserve0 string
	Reserve1 string
}

// Batch is everything one committed call writes to the archive
type Batch struct {
	CallID    uuid.UUID
	Height    int64
	Sequence  uint64
	BlockTime time.Time

	Events   []Event
	Swaps    []Swap
	Pairs    []Pair
	Reserves []Reserves
}

// Flatten decodes the events of a call into archive rows. Reserves keeps
// only the final snapshot of each pair, in first-touched order.
func Flatten(callID uuid.UUID, call app.CallInfo, events []abci.Event) (Batch, error) {
	b := Batch{
		CallID:    callID,
		Height:    call.Height,
		Sequence:  call.Sequence,
		BlockTime: call.BlockTime.UTC(),
		Events:    make([]Event, 0, len(events)),
	}
	reserveIdx := make(map[uint64]int)

	for i, ev := range events {
		attrs := make(map[string]string, len(ev.Attributes))
		for _, attr := range ev.Attributes {
			attrs[attr.Key] = attr.Value
		}
		bz, err := json.Marshal(attrs)
		if err != nil {
			return Batch{}, fmt.Errorf("event %d: %w", i, err)
		}
		b.Events = append(b.Events, Event{Index: i, Type: ev.Type, Attributes: bz})

		switch ev.Type {
		case cfmmtypes.EventTypeSwap:
			pairID, err := parsePairID(attrs)
			if err != nil {
				return Batch{}, fmt.Errorf("event %d: %w", i, err)
			}
			b.Swaps = append(b.Swaps, Swap{
				EventIndex:  i,
				PairID:      pairID,
				Payer:       attrs[cfmmtypes.AttributeKeyPayer],
				Recipient:   attrs[cfmmtypes.AttributeKeyRecipient],
				TokenIn:     attrs[cfmmtypes.AttributeKeyTokenIn],
				TokenOut:    attrs[cfmmtypes.AttributeKeyTokenOut],
				AmountIn:    orZero(attrs[cfmmtypes.AttributeKeyAmountIn]),
				AmountOut:   orZero(attrs[cfmmtypes.AttributeKeyAmountOut]),
				LPFee:       orZero(attrs[cfmmtypes.AttributeKeyLPFee]),
				ProtocolFee: orZero(attrs[cfmmtypes.AttributeKeyProtocolFee]),
			})

		case cfmmtypes.EventTypePairCreated:
			pairID, err := parsePairID(attrs)
			if err != nil {
				return Batch{}, fmt.Errorf("event %d: %w", i, err)
			}
			b.Pairs = append(b.Pairs, Pair{
				PairID:  pairID,
				Address: attrs[cfmmtypes.AttributeKeyPair],
				Token0:  attrs[cfmmtypes.AttributeKeyToken0],
				Token1:  attrs[cfmmtypes.AttributeKeyToken1],
				Creator: attrs[cfmmtypes.AttributeKeyCreator],
			})

		case cfmmtypes.EventTypeSync:
			pairID, err := parsePairID(attrs)
			if err != nil {
				return Batch{}, fmt.Errorf("event %d: %w", i, err)
			}
			r := Reserves{
				PairID:   pairID,
				Reserve0: orZero(attrs[cfmmtypes.AttributeKeyReserve0]),
				Reserve1: orZero(attrs[cfmmtypes.AttributeKeyReserve1]),
			}
			if idx, ok := reserveIdx[pairID]; ok {
				b.Reserves[idx] = r
			} else {
				reserveIdx[pairID] = len(b.Reserves)
				b.Reserves = append(b.Reserves, r)
			}
		}
	}
	return b, nil
}

func parsePairID(attrs map[string]string) (uint64, error) {
	raw, ok := attrs[cfmmtypes.AttributeKeyPairID]
	if !ok {
		return 0, fmt.Errorf("missing %s attribute", cfmmtypes.AttributeKeyPairID)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%s %q: %w", cfmmtypes.AttributeKeyPairID, raw, err)
	}
	return id, nil
}

func orZero(s string) string {
	if s == "" {
		return "0"
	}
	return s
}
