package keeper_test

import (
	"testing"

	"cosmossdk.io/math"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"

	keepertest "github.com/paw-chain/cfmm/testutil/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/keeper"
	"github.com/paw-chain/cfmm/x/cfmm/types"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

type swapCounters struct {
	volume, protocolFees, succeeded, failed float64
}

func readSwapCounters(t *testing.T, token types.Token) swapCounters {
	m := keeper.NewCFMMMetrics()
	return swapCounters{
		volume:       counterValue(t, m.SwapVolume.WithLabelValues(token.String())),
		protocolFees: counterValue(t, m.ProtocolFeesAccrued.WithLabelValues(token.String())),
		succeeded:    counterValue(t, m.SwapsTotal.WithLabelValues("success")),
		failed:       counterValue(t, m.SwapsTotal.WithLabelValues("failed")),
	}
}

func TestMetrics_RecordedOnlyForCommittedSwaps(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator, trader, treasury := keepertest.Addr("creator"), keepertest.Addr("trader"), keepertest.Addr("treasury")
	f.SetParams(t, func(p *types.Params) { p.FeeRecipient = treasury.String() })
	f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	f.Fund(t, trader, math.NewInt(30000), tokenA)
	before := readSwapCounters(t, tokenA)

	// the hop settles, then the minimum rejects it
	_, err := f.Keeper.Swap(f.Ctx, trader, tokenA, tokenB, math.NewInt(10000), math.NewInt(18133), trader)
	require.ErrorIs(t, err, types.ErrInsufficientOutputAmount)
	_, err = f.Keeper.SwapExactTokensForTokens(f.Ctx, trader, math.NewInt(10000), math.NewInt(18133),
		[]types.Token{tokenA, tokenB}, trader, f.Deadline())
	require.ErrorIs(t, err, types.ErrInsufficientOutputAmount)

	afterFailures := readSwapCounters(t, tokenA)
	require.Equal(t, before.volume, afterFailures.volume)
	require.Equal(t, before.protocolFees, afterFailures.protocolFees)
	require.Equal(t, before.succeeded, afterFailures.succeeded)
	require.Equal(t, before.failed+2, afterFailures.failed)

	_, err = f.Keeper.Swap(f.Ctx, trader, tokenA, tokenB, math.NewInt(10000), math.ZeroInt(), trader)
	require.NoError(t, err)

	afterSuccess := readSwapCounters(t, tokenA)
	require.Equal(t, before.volume+10000, afterSuccess.volume)
	require.Equal(t, before.protocolFees+5, afterSuccess.protocolFees)
	require.Equal(t, before.succeeded+1, afterSuccess.succeeded)
	require.Equal(t, afterFailures.failed, afterSuccess.failed)
}

func TestDeferMetrics_HoldsUntilFlush(t *testing.T) {
	f := keepertest.CFMMKeeper(t)
	creator, trader := keepertest.Addr("creator"), keepertest.Addr("trader")
	f.CreatePair(t, creator, tokenA, tokenB, math.NewInt(100000), math.NewInt(200000))
	f.Fund(t, trader, math.NewInt(10000), tokenA)
	before := readSwapCounters(t, tokenA)

	ctx, flush := keeper.DeferMetrics(f.Ctx)
	_, err := f.Keeper.Swap(ctx, trader, tokenA, tokenB, math.NewInt(10000), math.ZeroInt(), trader)
	require.NoError(t, err)
	require.Equal(t, before, readSwapCounters(t, tokenA))

	flush()
	after := readSwapCounters(t, tokenA)
	require.Equal(t, before.volume+10000, after.volume)
	require.Equal(t, before.succeeded+1, after.succeeded)
}
