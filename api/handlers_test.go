/*
handlers_test.go - HTTP-level tests for the API

Tests drive the full router via httptest, so middleware, identity
headers, status mapping, and JSON shapes are all covered together.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/manojmanoj143/assigment/ledger"
	"github.com/manojmanoj143/assigment/store/sqlite"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestServer(t *testing.T) (*httptest.Server, *sqlite.Store) {
	t.Helper()

	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.Seed(context.Background()))

	log := logrus.New()
	log.SetOutput(io.Discard)

	srv := httptest.NewServer(NewRouter(NewHandler(store, log)))
	t.Cleanup(srv.Close)
	return srv, store
}

func doJSON(t *testing.T, srv *httptest.Server, method, path string, headers map[string]string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, srv.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })

	var decoded map[string]any
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func adminHeaders() map[string]string {
	return map[string]string{"X-Role": "admin", "X-User-ID": "1"}
}

func commanderHeaders(base ledger.BaseID) map[string]string {
	return map[string]string{"X-Role": "commander", "X-User-ID": "2", "X-Base-ID": fmt.Sprint(base)}
}

func logisticsHeaders(base ledger.BaseID) map[string]string {
	return map[string]string{"X-Role": "logistics", "X-User-ID": "3", "X-Base-ID": fmt.Sprint(base)}
}

// seededIDs pulls the ids the seed created.
func seededIDs(t *testing.T, store *sqlite.Store) ([]ledger.BaseID, []ledger.AssetID) {
	t.Helper()
	ctx := context.Background()

	bases, err := store.ListBases(ctx)
	require.NoError(t, err)
	assets, err := store.ListAssets(ctx)
	require.NoError(t, err)

	baseIDs := make([]ledger.BaseID, len(bases))
	for i, b := range bases {
		baseIDs[i] = b.ID
	}
	assetIDs := make([]ledger.AssetID, len(assets))
	for i, a := range assets {
		assetIDs[i] = a.ID
	}
	return baseIDs, assetIDs
}

// =============================================================================
// LOGIN
// =============================================================================

func TestLogin_Success(t *testing.T) {
	// GIVEN: The seeded admin account
	// WHEN: Logging in with the right password
	// THEN: 200 with the user identity, no password material in the body

	srv, _ := newTestServer(t)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/login", nil, map[string]string{
		"username": "admin", "password": "admin123",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	user, ok := body["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin", user["username"])
	assert.Equal(t, "admin", user["role"])
	assert.NotContains(t, user, "password_hash")
}

func TestLogin_WrongPassword(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/login", nil, map[string]string{
		"username": "admin", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestLogin_UnknownUser(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/login", nil, map[string]string{
		"username": "ghost", "password": "admin123",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

// =============================================================================
// CATALOG
// =============================================================================

func TestListBasesAndAssets(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := srv.Client().Get(srv.URL + "/api/bases")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var bases []BaseDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&bases))
	assert.Len(t, bases, 3)

	resp, err = srv.Client().Get(srv.URL + "/api/assets")
	require.NoError(t, err)
	defer resp.Body.Close()

	var assets []AssetDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&assets))
	require.Len(t, assets, 3)
	assert.NotEmpty(t, assets[0].UnitCost)
}

// =============================================================================
// PURCHASES
// =============================================================================

func TestCreatePurchase_Admin(t *testing.T) {
	// GIVEN: The seeded catalog
	// WHEN: An admin purchases 10 rifles into Alpha
	// THEN: 200 with a transaction id, and the dashboard reflects it

	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, body["transaction_id"])

	qty, err := store.Quantity(context.Background(), bases[0], assets[0])
	require.NoError(t, err)
	assert.Equal(t, int64(10), qty)
}

func TestCreatePurchase_CommanderForbidden(t *testing.T) {
	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", commanderHeaders(bases[0]), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	qty, err := store.Quantity(context.Background(), bases[0], assets[0])
	require.NoError(t, err)
	assert.Equal(t, int64(0), qty, "rejected purchase must not change stock")
}

func TestCreatePurchase_InvalidPayload(t *testing.T) {
	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	// Zero quantity fails struct validation
	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 0,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Unknown asset fails catalog validation
	resp, _ = doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": 999, "base_id": bases[0], "quantity": 1,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// TRANSFERS
// =============================================================================

func TestCreateTransfer_MovesStock(t *testing.T) {
	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", logisticsHeaders(bases[1]), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/transfers", logisticsHeaders(bases[1]), map[string]any{
		"asset_id": assets[0], "source_base_id": bases[0], "dest_base_id": bases[1], "quantity": 4,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx := context.Background()
	src, _ := store.Quantity(ctx, bases[0], assets[0])
	dest, _ := store.Quantity(ctx, bases[1], assets[0])
	assert.Equal(t, int64(6), src)
	assert.Equal(t, int64(4), dest)
}

func TestCreateTransfer_SameBaseRejected(t *testing.T) {
	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, body := doJSON(t, srv, http.MethodPost, "/api/transfers", adminHeaders(), map[string]any{
		"asset_id": assets[0], "source_base_id": bases[0], "dest_base_id": bases[0], "quantity": 4,
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

// =============================================================================
// ASSIGNMENTS
// =============================================================================

func TestCreateAssignment_DispatchesOnType(t *testing.T) {
	// GIVEN: 10 rifles at Alpha
	// WHEN: A commander assigns 3 and expends 2 via the same endpoint
	// THEN: Assignment leaves the balance at 10, expenditure drops it to 8

	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)
	ctx := context.Background()

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/assignments", commanderHeaders(bases[0]), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 3, "type": "ASSIGN",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	qty, _ := store.Quantity(ctx, bases[0], assets[0])
	assert.Equal(t, int64(10), qty, "assignment does not change stock")

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/assignments", commanderHeaders(bases[0]), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 2, "type": "EXPEND",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	qty, _ = store.Quantity(ctx, bases[0], assets[0])
	assert.Equal(t, int64(8), qty)
}

func TestCreateAssignment_RejectsUnknownType(t *testing.T) {
	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/assignments", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 1, "type": "DESTROY",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

// =============================================================================
// DASHBOARD
// =============================================================================

func TestDashboard_GlobalShape(t *testing.T) {
	// GIVEN: An admin with no base scope and some purchased stock
	// WHEN: The dashboard is requested
	// THEN: The global shape: inventory rows, kind totals, total valuation

	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := doJSON(t, srv, http.MethodGet, "/api/dashboard", adminHeaders(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Contains(t, body, "inventory")
	assert.Contains(t, body, "raw_transactions")
	assert.Contains(t, body, "total_valuation")
	assert.NotContains(t, body, "opening_balance")

	inventory, ok := body["inventory"].([]any)
	require.True(t, ok)
	require.Len(t, inventory, 1)
	row := inventory[0].(map[string]any)
	assert.Equal(t, "M4 Carbine", row["name"])
	assert.Equal(t, float64(10), row["current_balance"])
}

func TestDashboard_ScopedShape(t *testing.T) {
	// GIVEN: An admin asking for one base's view
	// WHEN: The dashboard is requested with base_id
	// THEN: The balance sheet shape with opening/closing/net/movements

	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	path := fmt.Sprintf("/api/dashboard?base_id=%d", bases[0])
	resp, body := doJSON(t, srv, http.MethodGet, path, adminHeaders(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(10), body["closing_balance"])
	assert.Equal(t, float64(10), body["net_movement"])
	assert.Equal(t, float64(0), body["opening_balance"])
	movements, ok := body["movements"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, float64(10), movements["purchased"])
}

func TestDashboard_CommanderPinnedToOwnBase(t *testing.T) {
	// GIVEN: Stock at Alpha and Bravo, a commander of Alpha
	// WHEN: The commander asks for Bravo's dashboard
	// THEN: They get Alpha's balance sheet anyway

	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	for i, qty := range []int{10, 99} {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
			"asset_id": assets[0], "base_id": bases[i], "quantity": qty,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	path := fmt.Sprintf("/api/dashboard?base_id=%d", bases[1])
	resp, body := doJSON(t, srv, http.MethodGet, path, commanderHeaders(bases[0]), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, float64(10), body["closing_balance"], "scope must be the commander's own base")
}

func TestDashboard_NoIdentity(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, _ := doJSON(t, srv, http.MethodGet, "/api/dashboard", nil, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// =============================================================================
// HISTORY
// =============================================================================

func TestHistory_NewestFirstAndScoped(t *testing.T) {
	// GIVEN: A purchase at Alpha then one at Charlie
	// WHEN: An admin reads history, then a commander of Alpha does
	// THEN: Admin sees both newest first; the commander sees only Alpha's

	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	for _, base := range []ledger.BaseID{bases[0], bases[2]} {
		resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
			"asset_id": assets[0], "base_id": base, "quantity": 5,
		})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/api/history", nil)
	require.NoError(t, err)
	for k, v := range adminHeaders() {
		req.Header.Set(k, v)
	}
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var all []HistoryDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&all))
	require.Len(t, all, 2)
	require.NotNil(t, all[0].DestBaseID)
	assert.Equal(t, int64(bases[2]), *all[0].DestBaseID, "newest first")
	assert.Equal(t, "M4 Carbine", all[0].AssetName)

	req, err = http.NewRequest(http.MethodGet, srv.URL+"/api/history", nil)
	require.NoError(t, err)
	for k, v := range commanderHeaders(bases[0]) {
		req.Header.Set(k, v)
	}
	resp, err = srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	var scoped []HistoryDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&scoped))
	require.Len(t, scoped, 1)
	require.NotNil(t, scoped[0].DestBaseID)
	assert.Equal(t, int64(bases[0]), *scoped[0].DestBaseID)
}

// =============================================================================
// RESET
// =============================================================================

func TestReset_ReturnsToSeedState(t *testing.T) {
	srv, store := newTestServer(t)
	bases, assets := seededIDs(t, store)

	resp, _ := doJSON(t, srv, http.MethodPost, "/api/purchases", adminHeaders(), map[string]any{
		"asset_id": assets[0], "base_id": bases[0], "quantity": 10,
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = doJSON(t, srv, http.MethodPost, "/api/reset", adminHeaders(), nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	ctx := context.Background()
	freshBases, err := store.ListBases(ctx)
	require.NoError(t, err)
	assert.Len(t, freshBases, 3)

	txs, err := store.Query(ctx, ledger.LogFilter{})
	require.NoError(t, err)
	assert.Empty(t, txs, "reset clears the transaction log")
}
