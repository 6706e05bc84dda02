package sqlite

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/manojmanoj143/assigment/ledger"
)

// Seed provisions the reference catalog on first boot: three bases,
// three asset definitions, and one operator per role. Runs once; a
// populated catalog is left untouched.
func (s *Store) Seed(ctx context.Context) error {
	s.mu.RLock()
	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM bases").Scan(&count)
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count > 0 {
		return nil
	}

	bases := []ledger.Base{
		{Name: "Alpha Base", Location: "Sector 1"},
		{Name: "Bravo Base", Location: "Sector 2"},
		{Name: "Charlie Base", Location: "Sector 3"},
	}
	baseIDs := make([]ledger.BaseID, 0, len(bases))
	for _, b := range bases {
		id, err := s.SaveBase(ctx, b)
		if err != nil {
			return fmt.Errorf("failed to seed base %q: %w", b.Name, err)
		}
		baseIDs = append(baseIDs, id)
	}

	assets := []ledger.Asset{
		{Name: "M4 Carbine", Category: ledger.CategoryWeapon, Description: "Standard issue assault rifle", UnitCost: decimal.NewFromInt(750)},
		{Name: "Humvee", Category: ledger.CategoryVehicle, Description: "High mobility multipurpose wheeled vehicle", UnitCost: decimal.NewFromInt(220000)},
		{Name: "5.56mm Ammo", Category: ledger.CategoryAmmo, Description: "Standard rifle ammunition", UnitCost: decimal.NewFromFloat(0.40)},
	}
	for _, a := range assets {
		if _, err := s.SaveAsset(ctx, a); err != nil {
			return fmt.Errorf("failed to seed asset %q: %w", a.Name, err)
		}
	}

	users := []struct {
		user     ledger.User
		password string
	}{
		{ledger.User{Username: "admin", Role: ledger.RoleAdmin}, "admin123"},
		{ledger.User{Username: "commander_alpha", Role: ledger.RoleCommander, BaseID: &baseIDs[0]}, "pass123"},
		{ledger.User{Username: "logistics_bravo", Role: ledger.RoleLogistics, BaseID: &baseIDs[1]}, "pass123"},
	}
	for _, u := range users {
		if _, err := s.SaveUser(ctx, u.user, u.password); err != nil {
			return fmt.Errorf("failed to seed user %q: %w", u.user.Username, err)
		}
	}

	return nil
}
