package keeper

import (
	"context"
	"math/big"
	"sync"

	"cosmossdk.io/math"
	sdk "github.com/cosmos/cosmos-sdk/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// CFMMMetrics holds all Prometheus metrics for the cfmm module
type CFMMMetrics struct {
	SwapsTotal          *prometheus.CounterVec
	SwapVolume          *prometheus.CounterVec
	PairsTotal          prometheus.Gauge
	LiquidityMinted     *prometheus.CounterVec
	LiquidityBurned     *prometheus.CounterVec
	FlashLoansTotal     *prometheus.CounterVec
	ProtocolFeesAccrued *prometheus.CounterVec
}

var (
	cfmmMetricsOnce sync.Once
	cfmmMetrics     *CFMMMetrics
)

// NewCFMMMetrics creates and registers cfmm metrics (singleton pattern)
func NewCFMMMetrics() *CFMMMetrics {
	cfmmMetricsOnce.Do(func() {
		cfmmMetrics = &CFMMMetrics{
			SwapsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "swaps_total",
					Help:      "Total number of swaps by outcome",
				},
				[]string{"status"},
			),
			SwapVolume: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "swap_volume_total",
					Help:      "Total swap input volume in base units",
				},
				[]string{"token"},
			),
			PairsTotal: promauto.NewGauge(
				prometheus.GaugeOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "pairs_total",
					Help:      "Number of registered pairs",
				},
			),
			LiquidityMinted: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "liquidity_minted_total",
					Help:      "Total liquidity shares minted",
				},
				[]string{"pair_id"},
			),
			LiquidityBurned: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "liquidity_burned_total",
					Help:      "Total liquidity shares burned",
				},
				[]string{"pair_id"},
			),
			FlashLoansTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "flash_loans_total",
					Help:      "Flash loans by outcome",
				},
				[]string{"token", "status"},
			),
			ProtocolFeesAccrued: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Namespace: "paw",
					Subsystem: "cfmm",
					Name:      "protocol_fees_accrued_total",
					Help:      "Protocol fees accrued in base units",
				},
				[]string{"token"},
			),
		}
	})
	return cfmmMetrics
}

// amountFloat converts an amount for metric observation. Precision loss is
// acceptable here; math.Int.Int64 would panic on large values.
func amountFloat(amount math.Int) float64 {
	if amount.IsNil() {
		return 0
	}
	f, _ := new(big.Float).SetInt(amount.BigInt()).Float64()
	return f
}

type pendingMetricsKey struct{}

// pendingMetrics holds the metric updates of a call that has not been
// written yet.
type pendingMetrics struct {
	ops []func()
}

func (p *pendingMetrics) flush() {
	for _, op := range p.ops {
		op()
	}
	p.ops = nil
}

func pendingMetricsFrom(ctx sdk.Context) *pendingMetrics {
	pending, _ := ctx.Value(pendingMetricsKey{}).(*pendingMetrics)
	return pending
}

// DeferMetrics returns a context whose metric updates are held until flush
// is called. Hosts use it to record a call's metrics only once the call is
// committed; dropping flush discards them.
func DeferMetrics(ctx sdk.Context) (sdk.Context, func()) {
	pending := &pendingMetrics{}
	return ctx.WithValue(pendingMetricsKey{}, pending), pending.flush
}

// observe records op with the enclosing call, or right away outside of one.
func observe(ctx context.Context, op func()) {
	if pending := pendingMetricsFrom(sdk.UnwrapSDKContext(ctx)); pending != nil {
		pending.ops = append(pending.ops, op)
		return
	}
	op()
}
