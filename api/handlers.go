/*
handlers.go - HTTP API handlers for the asset inventory system

PURPOSE:
  Exposes the ledger engine via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to domain logic.

ENDPOINTS:
  POST /api/login         Authenticate, return user identity
  GET  /api/bases         List bases
  GET  /api/assets        List asset definitions
  GET  /api/dashboard     Balance sheet (scoped) or global stock view
  POST /api/purchases     Record a purchase
  POST /api/transfers     Record an inter-base transfer
  POST /api/assignments   Record an assignment or expenditure
  GET  /api/history       Enriched transaction history, newest first

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: validation errors, same-base transfer, unknown ids
  - 401: bad credentials on login
  - 403: role not permitted
  - 500: storage failures

SEE ALSO:
  - dto.go: request/response data structures
  - auth.go: caller identity middleware
  - server.go: router setup
*/
package api

import (
	"encoding/json"
	"net/http"
	"sort"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"

	"github.com/manojmanoj143/assigment/ledger"
	"github.com/manojmanoj143/assigment/store/sqlite"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Store    *sqlite.Store
	Gateway  *ledger.Gateway
	Engine   *ledger.MovementEngine
	Validate *validator.Validate
	Log      *logrus.Logger
}

// NewHandler creates a new handler with the given store. Gateway options
// (for example ledger.DisallowNegative) pass through.
func NewHandler(store *sqlite.Store, log *logrus.Logger, opts ...ledger.Option) *Handler {
	return &Handler{
		Store:    store,
		Gateway:  ledger.NewGateway(store, ledger.NewLedger(store), opts...),
		Engine:   ledger.NewMovementEngine(store),
		Validate: validator.New(),
		Log:      log,
	}
}

// =============================================================================
// AUTH HANDLERS
// =============================================================================

// Login authenticates a username/password pair.
// POST /api/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Missing credentials", err)
		return
	}

	user, err := h.Store.GetUserByUsername(r.Context(), req.Username)
	if err != nil {
		h.serverError(w, "login", err)
		return
	}
	if user == nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		writeError(w, http.StatusUnauthorized, "Invalid credentials", nil)
		return
	}

	writeJSON(w, http.StatusOK, LoginResponse{User: toUserDTO(*user)})
}

// =============================================================================
// CATALOG HANDLERS
// =============================================================================

// ListBases returns all bases.
// GET /api/bases
func (h *Handler) ListBases(w http.ResponseWriter, r *http.Request) {
	bases, err := h.Store.ListBases(r.Context())
	if err != nil {
		h.serverError(w, "list bases", err)
		return
	}

	dtos := make([]BaseDTO, len(bases))
	for i, b := range bases {
		dtos[i] = BaseDTO{ID: int64(b.ID), Name: b.Name, Location: b.Location}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ListAssets returns all asset definitions.
// GET /api/assets
func (h *Handler) ListAssets(w http.ResponseWriter, r *http.Request) {
	assets, err := h.Store.ListAssets(r.Context())
	if err != nil {
		h.serverError(w, "list assets", err)
		return
	}

	dtos := make([]AssetDTO, len(assets))
	for i, a := range assets {
		dtos[i] = AssetDTO{
			ID:          int64(a.ID),
			Name:        a.Name,
			Type:        string(a.Category),
			Description: a.Description,
			UnitCost:    a.UnitCost.String(),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DASHBOARD
// =============================================================================

// Dashboard returns the scoped balance sheet when a base is in scope,
// otherwise the global stock view. Non-admin callers are pinned to their
// own base regardless of the query parameter.
// GET /api/dashboard?base_id=&type=
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	if !auth.Authenticated() {
		writeError(w, http.StatusForbidden, "Access denied", nil)
		return
	}

	requested := parseBaseID(r.URL.Query().Get("base_id"))
	category := parseCategory(r.URL.Query().Get("type"))
	base := auth.ScopeBase(requested)

	if base != nil {
		summary, err := h.Engine.Scoped(r.Context(), auth, *base, category)
		if err != nil {
			h.writeDomainError(w, "dashboard", err)
			return
		}
		writeJSON(w, http.StatusOK, ScopedDashboardDTO{
			OpeningBalance: summary.OpeningBalance,
			ClosingBalance: summary.ClosingBalance,
			NetMovement:    summary.NetMovement,
			Movements: MovementsDTO{
				Purchased:   summary.Movements.Purchased,
				TransferIn:  summary.Movements.TransferIn,
				TransferOut: summary.Movements.TransferOut,
				Assigned:    summary.Movements.Assigned,
				Expended:    summary.Movements.Expended,
			},
		})
		return
	}

	summary, err := h.Engine.Global(r.Context(), auth, category)
	if err != nil {
		h.writeDomainError(w, "dashboard", err)
		return
	}

	assets, err := h.Store.ListAssets(r.Context())
	if err != nil {
		h.serverError(w, "dashboard", err)
		return
	}

	inventory := make([]InventoryRowDTO, 0, len(summary.Balances))
	for _, a := range assets {
		qty, ok := summary.Balances[a.ID]
		if !ok {
			continue
		}
		inventory = append(inventory, InventoryRowDTO{
			AssetID:        int64(a.ID),
			Name:           a.Name,
			Type:           string(a.Category),
			CurrentBalance: qty,
		})
	}

	totals := make([]KindTotalDTO, 0, len(summary.KindTotals))
	for kind, total := range summary.KindTotals {
		totals = append(totals, KindTotalDTO{Type: string(kind), Total: total})
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Type < totals[j].Type })

	writeJSON(w, http.StatusOK, GlobalDashboardDTO{
		Inventory:       inventory,
		RawTransactions: totals,
		TotalValuation:  summary.Valuation.String(),
	})
}

// =============================================================================
// MUTATING OPERATIONS
// =============================================================================

// CreatePurchase records a purchase into a base.
// POST /api/purchases
func (h *Handler) CreatePurchase(w http.ResponseWriter, r *http.Request) {
	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid purchase payload", err)
		return
	}

	auth := authFrom(r)
	tx, err := h.Gateway.Purchase(r.Context(), auth, ledger.PurchaseCommand{
		AssetID:  ledger.AssetID(req.AssetID),
		BaseID:   ledger.BaseID(req.BaseID),
		Quantity: req.Quantity,
		UserID:   userID(req.UserID, auth),
	})
	if err != nil {
		h.writeDomainError(w, "purchase", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message:       "Purchase recorded successfully",
		TransactionID: string(tx.ID),
	})
}

// CreateTransfer records an inter-base transfer.
// POST /api/transfers
func (h *Handler) CreateTransfer(w http.ResponseWriter, r *http.Request) {
	var req TransferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid transfer payload", err)
		return
	}

	auth := authFrom(r)
	tx, err := h.Gateway.Transfer(r.Context(), auth, ledger.TransferCommand{
		AssetID:      ledger.AssetID(req.AssetID),
		SourceBaseID: ledger.BaseID(req.SourceBaseID),
		DestBaseID:   ledger.BaseID(req.DestBaseID),
		Quantity:     req.Quantity,
		UserID:       userID(req.UserID, auth),
	})
	if err != nil {
		h.writeDomainError(w, "transfer", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message:       "Transfer successful",
		TransactionID: string(tx.ID),
	})
}

// CreateAssignment records an assignment or an expenditure depending on
// the payload's type field.
// POST /api/assignments
func (h *Handler) CreateAssignment(w http.ResponseWriter, r *http.Request) {
	var req AssignmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if err := h.Validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid assignment payload", err)
		return
	}

	auth := authFrom(r)
	cmd := ledger.AssignmentCommand{
		AssetID:  ledger.AssetID(req.AssetID),
		BaseID:   ledger.BaseID(req.BaseID),
		Quantity: req.Quantity,
		UserID:   userID(req.UserID, auth),
	}

	var (
		tx  ledger.Transaction
		err error
	)
	if req.Type == string(ledger.KindExpend) {
		tx, err = h.Gateway.Expend(r.Context(), auth, cmd)
	} else {
		tx, err = h.Gateway.Assign(r.Context(), auth, cmd)
	}
	if err != nil {
		h.writeDomainError(w, "assignment", err)
		return
	}

	writeJSON(w, http.StatusOK, MessageResponse{
		Message:       req.Type + " recorded successfully",
		TransactionID: string(tx.ID),
	})
}

// =============================================================================
// HISTORY
// =============================================================================

// History returns enriched transactions, newest first. Non-admin callers
// see only their own base.
// GET /api/history?base_id=
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	auth := authFrom(r)
	if !auth.Authenticated() {
		writeError(w, http.StatusForbidden, "Access denied", nil)
		return
	}

	base := auth.ScopeBase(parseBaseID(r.URL.Query().Get("base_id")))
	entries, err := h.Store.History(r.Context(), base)
	if err != nil {
		h.serverError(w, "history", err)
		return
	}

	dtos := make([]HistoryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toHistoryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// DEV HELPERS
// =============================================================================

// Reset wipes the database and reapplies the demo seed. Dev only.
// POST /api/reset
func (h *Handler) Reset(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Reset(r.Context()); err != nil {
		h.serverError(w, "reset", err)
		return
	}
	if err := h.Store.Seed(r.Context()); err != nil {
		h.serverError(w, "reset", err)
		return
	}
	writeJSON(w, http.StatusOK, MessageResponse{Message: "Database reset"})
}

// =============================================================================
// HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeDomainError maps engine errors onto HTTP status codes.
func (h *Handler) writeDomainError(w http.ResponseWriter, op string, err error) {
	switch {
	case ledger.IsUnauthorized(err):
		writeError(w, http.StatusForbidden, "Access denied", err)
	case ledger.IsClientError(err):
		writeError(w, http.StatusBadRequest, "Invalid request", err)
	default:
		h.serverError(w, op, err)
	}
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	h.Log.WithFields(logrus.Fields{"op": op}).WithError(err).Error("request failed")
	writeError(w, http.StatusInternalServerError, "Internal error", err)
}

func parseBaseID(s string) *ledger.BaseID {
	if s == "" {
		return nil
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	id := ledger.BaseID(v)
	return &id
}

func parseCategory(s string) *ledger.Category {
	if s == "" {
		return nil
	}
	c := ledger.Category(s)
	return &c
}

// userID prefers the id declared in the payload, falling back to the
// header identity.
func userID(fromBody int64, auth ledger.AuthContext) ledger.UserID {
	if fromBody != 0 {
		return ledger.UserID(fromBody)
	}
	return auth.UserID
}
