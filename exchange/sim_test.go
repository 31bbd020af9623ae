package exchange

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBTCSim() *Sim {
	sim := NewSim()
	sim.SetMarket(MarketInfo{Symbol: "BTC", MarkPrice: 50_000, FundingRate: 0.0001})
	return sim
}

func TestSimPlaceOrderOpensPosition(t *testing.T) {
	t.Parallel()

	sim := newBTCSim()
	ctx := context.Background()

	res, err := sim.PlaceOrder(ctx, "BTC", false, 0.2, "market")
	require.NoError(t, err)
	assert.Equal(t, "sell", res.Side)
	assert.Equal(t, "filled", res.Status)
	assert.NotEmpty(t, res.OrderID)

	positions, err := sim.GetPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	assert.InDelta(t, -0.2, positions[0].Size, 1e-9)
	assert.InDelta(t, 50_000, positions[0].EntryPrice, 1e-9)
}

func TestSimPlaceOrderNetsOut(t *testing.T) {
	t.Parallel()

	sim := newBTCSim()
	ctx := context.Background()

	_, err := sim.PlaceOrder(ctx, "BTC", true, 0.3, "market")
	require.NoError(t, err)
	_, err = sim.PlaceOrder(ctx, "BTC", false, 0.3, "market")
	require.NoError(t, err)

	positions, err := sim.GetPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions, "equal and opposite orders cancel")
}

func TestSimPlaceOrderRejectsUnknownMarket(t *testing.T) {
	t.Parallel()

	sim := NewSim()
	_, err := sim.PlaceOrder(context.Background(), "BTC", true, 1, "market")
	require.Error(t, err)

	var xerr *Error
	assert.ErrorAs(t, err, &xerr)
}

func TestSimPlaceOrderRejectsNonPositiveSize(t *testing.T) {
	t.Parallel()

	sim := newBTCSim()
	_, err := sim.PlaceOrder(context.Background(), "BTC", true, 0, "market")
	assert.Error(t, err)
}

func TestSimRemarksPositions(t *testing.T) {
	t.Parallel()

	sim := newBTCSim()
	ctx := context.Background()

	_, err := sim.PlaceOrder(ctx, "BTC", false, 0.1, "market")
	require.NoError(t, err)

	sim.SetMarket(MarketInfo{Symbol: "BTC", MarkPrice: 49_000})

	positions, err := sim.GetPositions(ctx)
	require.NoError(t, err)
	require.Len(t, positions, 1)
	// Short gains as mark falls: -0.1 * (49000 - 50000) = +100.
	assert.InDelta(t, 100, positions[0].UnrealizedPnL, 1e-9)
	assert.InDelta(t, 49_000, positions[0].MarkPrice, 1e-9)
}

func TestSimCloseAllPositions(t *testing.T) {
	t.Parallel()

	sim := newBTCSim()
	ctx := context.Background()

	_, err := sim.PlaceOrder(ctx, "BTC", false, 0.4, "market")
	require.NoError(t, err)

	results, err := sim.CloseAllPositions(ctx, "BTC")
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "buy", results[0].Side)
	assert.InDelta(t, 0.4, results[0].Size, 1e-9)

	positions, err := sim.GetPositions(ctx)
	require.NoError(t, err)
	assert.Empty(t, positions)

	// Closing again is a no-op.
	results, err = sim.CloseAllPositions(ctx, "BTC")
	require.NoError(t, err)
	assert.Empty(t, results)
}
