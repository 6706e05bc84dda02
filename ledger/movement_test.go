package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojmanoj143/assigment/ledger"
	"github.com/manojmanoj143/assigment/ledger/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

const (
	assetHumvee = ledger.AssetID(2)
	assetAmmo   = ledger.AssetID(3)
)

func newTestEngine(t *testing.T) (*ledger.MovementEngine, *ledger.Gateway) {
	t.Helper()

	mem := store.NewTxMemory()
	mem.AddBase(ledger.Base{ID: baseAlpha, Name: "Base Alpha"})
	mem.AddBase(ledger.Base{ID: baseBravo, Name: "Base Bravo"})
	mem.AddAsset(ledger.Asset{ID: assetM4, Name: "M4 Carbine", Category: ledger.CategoryWeapon, UnitCost: decimal.NewFromInt(750)})
	mem.AddAsset(ledger.Asset{ID: assetHumvee, Name: "Humvee", Category: ledger.CategoryVehicle, UnitCost: decimal.NewFromInt(220000)})
	mem.AddAsset(ledger.Asset{ID: assetAmmo, Name: "5.56mm Ammunition", Category: ledger.CategoryAmmo, UnitCost: decimal.RequireFromString("0.4")})

	return ledger.NewMovementEngine(mem), ledger.NewGateway(mem, ledger.NewLedger(mem))
}

// =============================================================================
// SCOPED BALANCE SHEET
// =============================================================================

func TestMovementEngine_Scoped_BalanceSheet(t *testing.T) {
	// GIVEN: Purchase 10 into Alpha, transfer 4 out to Bravo, expend 2
	// WHEN: The scoped balance sheet for Alpha is computed
	// THEN: closing=4, net=6, opening=-2 (the documented derivation,
	//       negative included)

	engine, gw := newTestEngine(t)
	ctx := context.Background()
	admin := asAdmin()

	_, err := gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 10, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Transfer(ctx, admin, ledger.TransferCommand{AssetID: assetM4, SourceBaseID: baseAlpha, DestBaseID: baseBravo, Quantity: 4, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Expend(ctx, admin, ledger.AssignmentCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 2, UserID: 1})
	require.NoError(t, err)

	summary, err := engine.Scoped(ctx, admin, baseAlpha, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.ClosingBalance)
	assert.Equal(t, int64(10), summary.Movements.Purchased)
	assert.Equal(t, int64(0), summary.Movements.TransferIn)
	assert.Equal(t, int64(4), summary.Movements.TransferOut)
	assert.Equal(t, int64(2), summary.Movements.Expended)
	assert.Equal(t, int64(6), summary.NetMovement)
	assert.Equal(t, int64(-2), summary.OpeningBalance, "expend is excluded from net, so opening reconstruction goes negative")
}

func TestMovementEngine_Scoped_ReceivingBase(t *testing.T) {
	// GIVEN: Bravo receives 4 units by transfer and expends nothing
	// WHEN: The scoped balance sheet for Bravo is computed
	// THEN: transfer_in=4, closing=4, opening=0

	engine, gw := newTestEngine(t)
	ctx := context.Background()
	admin := asAdmin()

	_, err := gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 10, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Transfer(ctx, admin, ledger.TransferCommand{AssetID: assetM4, SourceBaseID: baseAlpha, DestBaseID: baseBravo, Quantity: 4, UserID: 1})
	require.NoError(t, err)

	summary, err := engine.Scoped(ctx, admin, baseBravo, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(4), summary.Movements.TransferIn)
	assert.Equal(t, int64(0), summary.Movements.TransferOut)
	assert.Equal(t, int64(4), summary.ClosingBalance)
	assert.Equal(t, int64(0), summary.OpeningBalance)
}

func TestMovementEngine_Scoped_CategoryFilter(t *testing.T) {
	// GIVEN: Weapons and vehicles purchased into the same base
	// WHEN: The balance sheet is narrowed to Weapon
	// THEN: Only weapon movements and balances are counted

	engine, gw := newTestEngine(t)
	ctx := context.Background()
	admin := asAdmin()

	_, err := gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 10, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetHumvee, BaseID: baseAlpha, Quantity: 2, UserID: 1})
	require.NoError(t, err)

	weapon := ledger.CategoryWeapon
	summary, err := engine.Scoped(ctx, admin, baseAlpha, &weapon)
	require.NoError(t, err)

	assert.Equal(t, int64(10), summary.ClosingBalance)
	assert.Equal(t, int64(10), summary.Movements.Purchased)
}

func TestMovementEngine_Scoped_AssignReported_NotNetted(t *testing.T) {
	// GIVEN: 10 purchased and 3 assigned
	// WHEN: The balance sheet is computed
	// THEN: Assigned shows 3 but net movement and closing ignore it

	engine, gw := newTestEngine(t)
	ctx := context.Background()
	admin := asAdmin()

	_, err := gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 10, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Assign(ctx, admin, ledger.AssignmentCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 3, UserID: 1})
	require.NoError(t, err)

	summary, err := engine.Scoped(ctx, admin, baseAlpha, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(3), summary.Movements.Assigned)
	assert.Equal(t, int64(10), summary.NetMovement)
	assert.Equal(t, int64(10), summary.ClosingBalance)
}

// =============================================================================
// GLOBAL VIEW
// =============================================================================

func TestMovementEngine_Global_BalancesAndTotals(t *testing.T) {
	// GIVEN: Purchases across bases plus a transfer
	// WHEN: The global view is computed
	// THEN: Balances sum per asset across bases, kind totals are coarse
	//       quantities with no in/out split

	engine, gw := newTestEngine(t)
	ctx := context.Background()
	admin := asAdmin()

	_, err := gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 10, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseBravo, Quantity: 5, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Transfer(ctx, admin, ledger.TransferCommand{AssetID: assetM4, SourceBaseID: baseAlpha, DestBaseID: baseBravo, Quantity: 4, UserID: 1})
	require.NoError(t, err)

	summary, err := engine.Global(ctx, admin, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(15), summary.Balances[assetM4], "transfer moves stock between bases without changing the total")
	assert.Equal(t, int64(15), summary.KindTotals[ledger.KindPurchase])
	assert.Equal(t, int64(4), summary.KindTotals[ledger.KindTransfer])
}

func TestMovementEngine_Global_Valuation(t *testing.T) {
	// GIVEN: 10 rifles at 750 each and 500 rounds at 0.4 each
	// WHEN: The global view is computed
	// THEN: Total valuation is 7700

	engine, gw := newTestEngine(t)
	ctx := context.Background()
	admin := asAdmin()

	_, err := gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetM4, BaseID: baseAlpha, Quantity: 10, UserID: 1})
	require.NoError(t, err)
	_, err = gw.Purchase(ctx, admin, ledger.PurchaseCommand{AssetID: assetAmmo, BaseID: baseBravo, Quantity: 500, UserID: 1})
	require.NoError(t, err)

	summary, err := engine.Global(ctx, admin, nil)
	require.NoError(t, err)

	assert.True(t, summary.Valuation.Equal(decimal.RequireFromString("7700")), "got %s", summary.Valuation)
}

func TestMovementEngine_RequiresRole(t *testing.T) {
	// GIVEN: A caller with no recognized role
	// WHEN: Either view is requested
	// THEN: Both are rejected as unauthorized

	engine, _ := newTestEngine(t)
	ctx := context.Background()
	anon := ledger.AuthContext{}

	_, err := engine.Scoped(ctx, anon, baseAlpha, nil)
	assert.True(t, ledger.IsUnauthorized(err))

	_, err = engine.Global(ctx, anon, nil)
	assert.True(t, ledger.IsUnauthorized(err))
}
