/*
gateway.go - The four mutating operations

PURPOSE:
  The Gateway is the only writer in the system. Each command runs as a
  single atomic unit against the inventory projection and the transaction
  log: either both move or neither does.

COMMAND TABLE:
  Purchase  admin, logistics   dest qty += n          append PURCHASE
  Transfer  admin, logistics   src -= n, dest += n    append TRANSFER
  Assign    admin, commander   (no quantity effect)   append ASSIGN
  Expend    admin, commander   base qty -= n          append EXPEND

VALIDATION ORDER:
  1. Role check (AuthContext re-validated here, not trusted from transport)
  2. Argument checks: positive quantity, known asset/base ids,
     source != dest on transfer
  3. Optional stock floor when negative stock is disallowed
  All rejections happen before any mutation.

NEGATIVE STOCK:
  By default the gateway records over-withdrawal as-is; resulting
  quantities below zero are accepted. DisallowNegative flips the single
  most consequential rule in the system, so it is an explicit option
  rather than a constant.
*/
package ledger

import "context"

// =============================================================================
// COMMANDS
// =============================================================================

type PurchaseCommand struct {
	AssetID  AssetID
	BaseID   BaseID
	Quantity int64
	UserID   UserID
}

type TransferCommand struct {
	AssetID      AssetID
	SourceBaseID BaseID
	DestBaseID   BaseID
	Quantity     int64
	UserID       UserID
}

// AssignmentCommand covers both ASSIGN and EXPEND: the base is the one
// the asset is assigned from or expended at.
type AssignmentCommand struct {
	AssetID  AssetID
	BaseID   BaseID
	Quantity int64
	UserID   UserID
}

// =============================================================================
// GATEWAY
// =============================================================================

type Gateway struct {
	store         TxStore
	ledger        *Ledger
	allowNegative bool
}

// Option configures a Gateway.
type Option func(*Gateway)

// DisallowNegative makes Transfer and Expend reject operations that would
// drive a quantity below zero, instead of recording the shortfall.
func DisallowNegative() Option {
	return func(g *Gateway) { g.allowNegative = false }
}

func NewGateway(store TxStore, ledger *Ledger, opts ...Option) *Gateway {
	g := &Gateway{store: store, ledger: ledger, allowNegative: true}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Purchase records procurement of stock into a base.
func (g *Gateway) Purchase(ctx context.Context, auth AuthContext, cmd PurchaseCommand) (Transaction, error) {
	if err := auth.require(OpPurchase); err != nil {
		return Transaction{}, err
	}
	if err := g.validate(ctx, cmd.Quantity, cmd.AssetID, cmd.BaseID); err != nil {
		return Transaction{}, err
	}

	release := g.ledger.Guard(StockKey{Base: cmd.BaseID, Asset: cmd.AssetID})
	defer release()

	dest := cmd.BaseID
	var out Transaction
	err := g.store.WithTx(ctx, func(s Store) error {
		if _, err := s.Adjust(ctx, cmd.BaseID, cmd.AssetID, cmd.Quantity); err != nil {
			return err
		}
		tx, err := s.Append(ctx, Transaction{
			Kind:       KindPurchase,
			AssetID:    cmd.AssetID,
			DestBaseID: &dest,
			Quantity:   cmd.Quantity,
			UserID:     cmd.UserID,
		})
		out = tx
		return err
	})
	return out, err
}

// Transfer moves stock between two distinct bases.
func (g *Gateway) Transfer(ctx context.Context, auth AuthContext, cmd TransferCommand) (Transaction, error) {
	if err := auth.require(OpTransfer); err != nil {
		return Transaction{}, err
	}
	if cmd.SourceBaseID == cmd.DestBaseID {
		return Transaction{}, ErrSameBaseTransfer
	}
	if err := g.validate(ctx, cmd.Quantity, cmd.AssetID, cmd.SourceBaseID, cmd.DestBaseID); err != nil {
		return Transaction{}, err
	}

	release := g.ledger.Guard(
		StockKey{Base: cmd.SourceBaseID, Asset: cmd.AssetID},
		StockKey{Base: cmd.DestBaseID, Asset: cmd.AssetID},
	)
	defer release()

	src, dest := cmd.SourceBaseID, cmd.DestBaseID
	var out Transaction
	err := g.store.WithTx(ctx, func(s Store) error {
		if err := g.checkFloor(ctx, s, cmd.SourceBaseID, cmd.AssetID, cmd.Quantity); err != nil {
			return err
		}
		if _, err := s.Adjust(ctx, cmd.SourceBaseID, cmd.AssetID, -cmd.Quantity); err != nil {
			return err
		}
		if _, err := s.Adjust(ctx, cmd.DestBaseID, cmd.AssetID, cmd.Quantity); err != nil {
			return err
		}
		tx, err := s.Append(ctx, Transaction{
			Kind:         KindTransfer,
			AssetID:      cmd.AssetID,
			SourceBaseID: &src,
			DestBaseID:   &dest,
			Quantity:     cmd.Quantity,
			UserID:       cmd.UserID,
		})
		out = tx
		return err
	})
	return out, err
}

// Assign records an assignment of stock to personnel. Assignments are
// logged for the movement report but never change quantities.
func (g *Gateway) Assign(ctx context.Context, auth AuthContext, cmd AssignmentCommand) (Transaction, error) {
	if err := auth.require(OpAssign); err != nil {
		return Transaction{}, err
	}
	if err := g.validate(ctx, cmd.Quantity, cmd.AssetID, cmd.BaseID); err != nil {
		return Transaction{}, err
	}

	src := cmd.BaseID
	var out Transaction
	err := g.store.WithTx(ctx, func(s Store) error {
		tx, err := s.Append(ctx, Transaction{
			Kind:         KindAssign,
			AssetID:      cmd.AssetID,
			SourceBaseID: &src,
			Quantity:     cmd.Quantity,
			UserID:       cmd.UserID,
		})
		out = tx
		return err
	})
	return out, err
}

// Expend records consumption of stock at a base.
func (g *Gateway) Expend(ctx context.Context, auth AuthContext, cmd AssignmentCommand) (Transaction, error) {
	if err := auth.require(OpExpend); err != nil {
		return Transaction{}, err
	}
	if err := g.validate(ctx, cmd.Quantity, cmd.AssetID, cmd.BaseID); err != nil {
		return Transaction{}, err
	}

	release := g.ledger.Guard(StockKey{Base: cmd.BaseID, Asset: cmd.AssetID})
	defer release()

	src := cmd.BaseID
	var out Transaction
	err := g.store.WithTx(ctx, func(s Store) error {
		if err := g.checkFloor(ctx, s, cmd.BaseID, cmd.AssetID, cmd.Quantity); err != nil {
			return err
		}
		if _, err := s.Adjust(ctx, cmd.BaseID, cmd.AssetID, -cmd.Quantity); err != nil {
			return err
		}
		tx, err := s.Append(ctx, Transaction{
			Kind:         KindExpend,
			AssetID:      cmd.AssetID,
			SourceBaseID: &src,
			Quantity:     cmd.Quantity,
			UserID:       cmd.UserID,
		})
		out = tx
		return err
	})
	return out, err
}

// =============================================================================
// VALIDATION
// =============================================================================

// validate rejects non-positive quantities and unknown catalog ids.
func (g *Gateway) validate(ctx context.Context, quantity int64, asset AssetID, bases ...BaseID) error {
	if quantity <= 0 {
		return &ValidationError{Field: "quantity", Message: "must be a positive integer"}
	}
	a, err := g.store.GetAsset(ctx, asset)
	if err != nil {
		return err
	}
	if a == nil {
		return ErrAssetNotFound
	}
	for _, id := range bases {
		b, err := g.store.GetBase(ctx, id)
		if err != nil {
			return err
		}
		if b == nil {
			return ErrBaseNotFound
		}
	}
	return nil
}

// checkFloor enforces the optional zero floor before a withdrawal.
func (g *Gateway) checkFloor(ctx context.Context, s Store, base BaseID, asset AssetID, quantity int64) error {
	if g.allowNegative {
		return nil
	}
	have, err := s.Quantity(ctx, base, asset)
	if err != nil {
		return err
	}
	if have < quantity {
		return &InsufficientStockError{BaseID: base, AssetID: asset, Available: have, Requested: quantity}
	}
	return nil
}
