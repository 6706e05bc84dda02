/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. These types decouple
  the internal domain model from the external API contract.

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Request types carry go-playground/validator struct tags; handlers run
  them through Handler.Validate before touching the engine. The gateway
  re-validates domain rules regardless, so a handler bug cannot bypass
  them.

SEE ALSO:
  - handlers.go: uses these types
*/
package api

import (
	"time"

	"github.com/manojmanoj143/assigment/ledger"
	"github.com/manojmanoj143/assigment/store/sqlite"
)

// =============================================================================
// AUTH
// =============================================================================

// LoginRequest is the credential pair for POST /api/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// UserDTO is the authenticated identity returned on login.
type UserDTO struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	BaseID   *int64 `json:"base_id"`
}

// LoginResponse wraps the user the way the frontend expects it.
type LoginResponse struct {
	User UserDTO `json:"user"`
}

// =============================================================================
// CATALOG
// =============================================================================

type BaseDTO struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

type AssetDTO struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Type        string `json:"type"`
	Description string `json:"description"`
	UnitCost    string `json:"unit_cost"`
}

// =============================================================================
// MUTATING COMMANDS
// =============================================================================

type PurchaseRequest struct {
	AssetID  int64 `json:"asset_id" validate:"required"`
	BaseID   int64 `json:"base_id" validate:"required"`
	Quantity int64 `json:"quantity" validate:"required,gt=0"`
	UserID   int64 `json:"user_id"`
}

type TransferRequest struct {
	AssetID      int64 `json:"asset_id" validate:"required"`
	SourceBaseID int64 `json:"source_base_id" validate:"required"`
	DestBaseID   int64 `json:"dest_base_id" validate:"required"`
	Quantity     int64 `json:"quantity" validate:"required,gt=0"`
	UserID       int64 `json:"user_id"`
}

// AssignmentRequest covers both ASSIGN and EXPEND, selected by Type.
type AssignmentRequest struct {
	AssetID  int64  `json:"asset_id" validate:"required"`
	BaseID   int64  `json:"base_id" validate:"required"`
	Quantity int64  `json:"quantity" validate:"required,gt=0"`
	Type     string `json:"type" validate:"required,oneof=ASSIGN EXPEND"`
	UserID   int64  `json:"user_id"`
}

// MessageResponse acknowledges a recorded operation.
type MessageResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id,omitempty"`
}

// =============================================================================
// DASHBOARD
// =============================================================================

type MovementsDTO struct {
	Purchased   int64 `json:"purchased"`
	TransferIn  int64 `json:"transfer_in"`
	TransferOut int64 `json:"transfer_out"`
	Assigned    int64 `json:"assigned"`
	Expended    int64 `json:"expended"`
}

// ScopedDashboardDTO is the balance sheet returned when a base scope is
// present.
type ScopedDashboardDTO struct {
	OpeningBalance int64        `json:"opening_balance"`
	ClosingBalance int64        `json:"closing_balance"`
	NetMovement    int64        `json:"net_movement"`
	Movements      MovementsDTO `json:"movements"`
}

// InventoryRowDTO is one asset's total across all bases in the global view.
type InventoryRowDTO struct {
	AssetID        int64  `json:"asset_id"`
	Name           string `json:"name"`
	Type           string `json:"type"`
	CurrentBalance int64  `json:"current_balance"`
}

// KindTotalDTO is a coarse per-kind quantity total; transfers are not
// split into in/out at global scope.
type KindTotalDTO struct {
	Type  string `json:"type"`
	Total int64  `json:"total"`
}

// GlobalDashboardDTO is returned when no base scope is given.
type GlobalDashboardDTO struct {
	Inventory       []InventoryRowDTO `json:"inventory"`
	RawTransactions []KindTotalDTO    `json:"raw_transactions"`
	TotalValuation  string            `json:"total_valuation"`
}

// =============================================================================
// HISTORY
// =============================================================================

type HistoryDTO struct {
	ID           string `json:"id"`
	Type         string `json:"type"`
	AssetID      int64  `json:"asset_id"`
	AssetName    string `json:"asset_name"`
	SourceBaseID *int64 `json:"source_base_id"`
	DestBaseID   *int64 `json:"dest_base_id"`
	SourceBase   string `json:"source_base,omitempty"`
	DestBase     string `json:"dest_base,omitempty"`
	Quantity     int64  `json:"quantity"`
	UserID       int64  `json:"user_id"`
	UserName     string `json:"user_name,omitempty"`
	Status       string `json:"status"`
	Date         string `json:"date"`
}

func toHistoryDTO(e sqlite.HistoryEntry) HistoryDTO {
	dto := HistoryDTO{
		ID:         string(e.ID),
		Type:       string(e.Kind),
		AssetID:    int64(e.AssetID),
		AssetName:  e.AssetName,
		SourceBase: e.SourceBase,
		DestBase:   e.DestBase,
		Quantity:   e.Quantity,
		UserID:     int64(e.UserID),
		UserName:   e.UserName,
		Status:     e.Status,
		Date:       e.CreatedAt.Format(time.RFC3339),
	}
	if e.SourceBaseID != nil {
		id := int64(*e.SourceBaseID)
		dto.SourceBaseID = &id
	}
	if e.DestBaseID != nil {
		id := int64(*e.DestBaseID)
		dto.DestBaseID = &id
	}
	return dto
}

// =============================================================================
// ERRORS
// =============================================================================

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toUserDTO(u ledger.User) UserDTO {
	dto := UserDTO{
		ID:       int64(u.ID),
		Username: u.Username,
		Role:     string(u.Role),
	}
	if u.BaseID != nil {
		id := int64(*u.BaseID)
		dto.BaseID = &id
	}
	return dto
}
