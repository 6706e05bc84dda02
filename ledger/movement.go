/*
movement.go - Dashboard aggregation over ledger and log

PURPOSE:
  Derives opening/closing balances and movement breakdowns from the
  transaction log, scoped by optional base and category filters. Two
  distinct entry points return two distinct shapes:

    Scoped(base)  -> opening/closing balance + in/out movement split
    Global()      -> per-asset balances + coarse per-kind totals

  Splitting TRANSFER into in/out requires a base as the reference point,
  which is why the global view does not attempt it.

OPENING BALANCE:
  opening = closing - (purchased + transfer_in - transfer_out)

  This is a derived, approximate reconstruction: it ignores assign and
  expend history and scans the full log rather than a time window. It is
  the documented rule of the system and is preserved exactly, including
  when it produces a negative opening balance.

CONSISTENCY:
  Each summary runs inside one store transaction so the balance sum and
  the log scan see the same snapshot.
*/
package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RESULT SHAPES
// =============================================================================

// Movements is the per-bucket quantity breakdown for a base scope.
type Movements struct {
	Purchased   int64
	TransferIn  int64
	TransferOut int64
	Assigned    int64
	Expended    int64
}

// Net is purchased + transferred-in - transferred-out. Assign and expend
// are reported but excluded from net movement.
func (m Movements) Net() int64 {
	return m.Purchased + m.TransferIn - m.TransferOut
}

// ScopedSummary is the balance sheet for one base.
type ScopedSummary struct {
	BaseID         BaseID
	OpeningBalance int64
	ClosingBalance int64
	Movements      Movements
	NetMovement    int64
}

// GlobalSummary is the cross-base view: raw per-asset balances plus
// per-kind transaction totals, with no in/out split.
type GlobalSummary struct {
	Balances   map[AssetID]int64
	KindTotals map[Kind]int64
	Valuation  decimal.Decimal
}

// =============================================================================
// MOVEMENT ENGINE
// =============================================================================

type MovementEngine struct {
	store TxStore
}

func NewMovementEngine(store TxStore) *MovementEngine {
	return &MovementEngine{store: store}
}

// Scoped computes the balance sheet for one base, optionally narrowed to
// an asset category.
func (m *MovementEngine) Scoped(ctx context.Context, auth AuthContext, base BaseID, category *Category) (ScopedSummary, error) {
	if err := auth.require(OpDashboard); err != nil {
		return ScopedSummary{}, err
	}

	summary := ScopedSummary{BaseID: base}
	err := m.store.WithTx(ctx, func(s Store) error {
		balances, err := s.Sum(ctx, StockFilter{BaseID: &base, Category: category})
		if err != nil {
			return err
		}
		for _, qty := range balances {
			summary.ClosingBalance += qty
		}

		txs, err := s.Query(ctx, LogFilter{BaseID: &base, Category: category})
		if err != nil {
			return err
		}
		for _, tx := range txs {
			switch tx.Kind {
			case KindPurchase:
				if tx.DestBaseID != nil && *tx.DestBaseID == base {
					summary.Movements.Purchased += tx.Quantity
				}
			case KindTransfer:
				if tx.DestBaseID != nil && *tx.DestBaseID == base {
					summary.Movements.TransferIn += tx.Quantity
				}
				if tx.SourceBaseID != nil && *tx.SourceBaseID == base {
					summary.Movements.TransferOut += tx.Quantity
				}
			case KindAssign:
				if tx.SourceBaseID != nil && *tx.SourceBaseID == base {
					summary.Movements.Assigned += tx.Quantity
				}
			case KindExpend:
				if tx.SourceBaseID != nil && *tx.SourceBaseID == base {
					summary.Movements.Expended += tx.Quantity
				}
			}
		}
		return nil
	})
	if err != nil {
		return ScopedSummary{}, err
	}

	summary.NetMovement = summary.Movements.Net()
	summary.OpeningBalance = summary.ClosingBalance - summary.NetMovement
	return summary, nil
}

// Global computes the cross-base view, optionally narrowed to a category.
// Without a base reference point there is no in/out split and no opening
// balance reconstruction.
func (m *MovementEngine) Global(ctx context.Context, auth AuthContext, category *Category) (GlobalSummary, error) {
	if err := auth.require(OpDashboard); err != nil {
		return GlobalSummary{}, err
	}

	summary := GlobalSummary{
		Balances:   make(map[AssetID]int64),
		KindTotals: make(map[Kind]int64),
		Valuation:  decimal.Zero,
	}
	err := m.store.WithTx(ctx, func(s Store) error {
		balances, err := s.Sum(ctx, StockFilter{Category: category})
		if err != nil {
			return err
		}
		summary.Balances = balances

		txs, err := s.Query(ctx, LogFilter{Category: category})
		if err != nil {
			return err
		}
		for _, tx := range txs {
			summary.KindTotals[tx.Kind] += tx.Quantity
		}

		assets, err := s.ListAssets(ctx)
		if err != nil {
			return err
		}
		for _, a := range assets {
			qty, ok := balances[a.ID]
			if !ok || qty == 0 {
				continue
			}
			summary.Valuation = summary.Valuation.Add(a.UnitCost.Mul(decimal.NewFromInt(qty)))
		}
		return nil
	})
	if err != nil {
		return GlobalSummary{}, err
	}
	return summary, nil
}
