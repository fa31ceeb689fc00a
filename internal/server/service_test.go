package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/swjin-lab/purchases-tracker/internal/common"
	"github.com/swjin-lab/purchases-tracker/internal/export"
	"github.com/swjin-lab/purchases-tracker/internal/listing"
	"github.com/swjin-lab/purchases-tracker/internal/repository"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	if err := repository.Migrate(context.Background(), db, nil); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	srv := New(
		repository.NewUserRepository(db, nil),
		repository.NewPurchaseRepository(db, nil),
		nil, // scanning disabled
		export.NewService(nil),
		common.ServerConfig{JWTSecret: "test-secret", TokenTTL: time.Hour},
		nil,
	)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encoding body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return v
}

func registerAndLogin(t *testing.T, ts *httptest.Server, email string) string {
	t.Helper()
	creds := map[string]string{"email": email, "password": "correct-horse"}
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/register", "", creds)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/auth/login", "", creds)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login: status %d", resp.StatusCode)
	}
	out := decode[map[string]any](t, resp)
	token, _ := out["token"].(string)
	if token == "" {
		t.Fatalf("login returned no token")
	}
	return token
}

func samplePayload() map[string]any {
	return map[string]any{
		"date":   "2025-09-01T01:30",
		"vendor": "루프",
		"items": []map[string]any{
			{"name": "브이넥t", "unitPrice": 8000, "quantity": 3, "missingQuantity": 3},
			{"name": "와이드슬랙스", "unitPrice": 12000, "quantity": 2},
		},
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("GET /healthz: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
}

func TestAuthRequired(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodGet, ts.URL+"/api/v1/records", "", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 without a token, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records", "not-a-jwt", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 with a bogus token, got %d", resp.StatusCode)
	}
}

func TestRegisterValidation(t *testing.T) {
	ts := newTestServer(t)
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/register",
		"", map[string]string{"email": "a@b.c", "password": "short"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for a short password, got %d", resp.StatusCode)
	}
}

func TestLoginWrongPassword(t *testing.T) {
	ts := newTestServer(t)
	registerAndLogin(t, ts, "jin@example.com")
	resp := doJSON(t, http.MethodPost, ts.URL+"/auth/login",
		"", map[string]string{"email": "jin@example.com", "password": "wrong-horse"})
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestRecordLifecycle(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	// create
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, samplePayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	created := decode[struct {
		ID    string `json:"id"`
		Items []struct {
			ItemID          string  `json:"itemId"`
			TotalAmount     float64 `json:"totalAmount"`
			MissingQuantity int     `json:"missingQuantity"`
		} `json:"items"`
	}](t, resp)
	if created.ID != "202509010130" {
		t.Fatalf("record id derived from the date: got %s", created.ID)
	}
	if len(created.Items) != 2 || created.Items[0].ItemID != "202509010130001" {
		t.Fatalf("item ids wrong: %+v", created.Items)
	}
	if created.Items[0].TotalAmount != 24000 {
		t.Fatalf("total not normalized: %v", created.Items[0].TotalAmount)
	}

	// get
	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// patch one item's outstanding count
	resp = doJSON(t, http.MethodPatch,
		fmt.Sprintf("%s/api/v1/records/%s/items/%s/missing", ts.URL, created.ID, created.Items[0].ItemID),
		token, map[string]int{"missingQuantity": 1})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("patch missing: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// delete
	resp = doJSON(t, http.MethodDelete, ts.URL+"/api/v1/records/"+created.ID, token, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records/"+created.ID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", resp.StatusCode)
	}
}

func TestCreateRejectsInvalidPayload(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"missing vendor", map[string]any{"date": "2025-09-01T01:30", "items": []map[string]any{{"name": "x"}}}},
		{"empty items", map[string]any{"date": "2025-09-01T01:30", "vendor": "루프", "items": []map[string]any{}}},
		{"unknown field", map[string]any{"date": "2025-09-01T01:30", "vendor": "루프", "bogus": 1,
			"items": []map[string]any{{"name": "x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, tt.body)
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
		})
	}
}

func TestCreateClampsMissingToQuantity(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	payload := samplePayload()
	payload["items"] = []map[string]any{
		{"name": "브이넥t", "unitPrice": 8000, "quantity": 3, "missingQuantity": 99},
	}
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, payload)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	created := decode[struct {
		Items []struct {
			MissingQuantity int `json:"missingQuantity"`
		} `json:"items"`
	}](t, resp)
	if created.Items[0].MissingQuantity != 3 {
		t.Fatalf("missing must be clamped to quantity, got %d", created.Items[0].MissingQuantity)
	}
}

func TestSearchPipeline(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, samplePayload())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	second := samplePayload()
	second["date"] = "2025-09-02T01:30"
	second["vendor"] = "안즈"
	second["items"] = []map[string]any{
		{"name": "니트가디건", "unitPrice": 20000, "quantity": 1, "missingQuantity": 1},
	}
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, second)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create second: status %d", resp.StatusCode)
	}
	resp.Body.Close()

	// outstanding rows only, sorted by missing ascending
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records/search", token, map[string]any{
		"criteria": map[string]any{"dateType": "all", "onlyOutstanding": true},
		"sortKey":  "missingQuantity",
		"sortDir":  "asc",
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("search: status %d", resp.StatusCode)
	}
	page := decode[listing.Page](t, resp)
	if page.TotalRows != 2 || page.PerPage != 100 || page.TotalPages != 1 {
		t.Fatalf("page meta wrong: %+v", page)
	}
	if page.Rows[0].MissingQuantity != 1 || page.Rows[1].MissingQuantity != 3 {
		t.Fatalf("sort wrong: %d, %d", page.Rows[0].MissingQuantity, page.Rows[1].MissingQuantity)
	}

	// vendor keyword filter
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records/search", token, map[string]any{
		"criteria": map[string]any{"dateType": "all", "keyword": "루프", "target": "vendor"},
	})
	page = decode[listing.Page](t, resp)
	if page.TotalRows != 2 {
		t.Fatalf("expected the two 루프 rows, got %d", page.TotalRows)
	}
	for _, row := range page.Rows {
		if row.Vendor != "루프" {
			t.Fatalf("wrong vendor in filtered rows: %s", row.Vendor)
		}
	}
}

func TestBulkDeleteAndReceive(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, samplePayload())
	created := decode[struct {
		ID    string `json:"id"`
		Items []struct {
			ItemID string `json:"itemId"`
		} `json:"items"`
	}](t, resp)

	// receive the first item
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records/bulk-receive", token, map[string]any{
		"keys": []map[string]string{
			{"recordId": created.ID, "itemId": created.Items[0].ItemID},
			{"recordId": "999999999999", "itemId": "vanished"}, // no-op
		},
	})
	got := decode[map[string]int](t, resp)
	if got["received"] != 1 {
		t.Fatalf("expected 1 received, got %d", got["received"])
	}

	// delete both items: the record itself must go
	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records/bulk-delete", token, map[string]any{
		"keys": []map[string]string{
			{"recordId": created.ID, "itemId": created.Items[0].ItemID},
			{"recordId": created.ID, "itemId": created.Items[1].ItemID},
		},
	})
	outcome := decode[struct {
		UpdatedRecords int      `json:"updatedRecords"`
		DeletedRecords []string `json:"deletedRecords"`
	}](t, resp)
	if outcome.UpdatedRecords != 0 || len(outcome.DeletedRecords) != 1 {
		t.Fatalf("bulk delete outcome wrong: %+v", outcome)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records/"+created.ID, token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("record must be gone after its last item is deleted, got %d", resp.StatusCode)
	}
}

func TestExport(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	// nothing to export yet
	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records/export", token, nil)
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 with no records, got %d", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", token, samplePayload())
	resp.Body.Close()

	resp = doJSON(t, http.MethodPost, ts.URL+"/api/v1/records/export", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export: status %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("content type: %s", ct)
	}
	if cd := resp.Header.Get("Content-Disposition"); cd == "" {
		t.Fatalf("missing Content-Disposition")
	}
}

func TestScanDisabledWithoutDetector(t *testing.T) {
	ts := newTestServer(t)
	token := registerAndLogin(t, ts, "jin@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/receipts/scan", token, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 with scanning disabled, got %d", resp.StatusCode)
	}
}

func TestRecordsAreScopedPerUser(t *testing.T) {
	ts := newTestServer(t)
	jin := registerAndLogin(t, ts, "jin@example.com")
	min := registerAndLogin(t, ts, "min@example.com")

	resp := doJSON(t, http.MethodPost, ts.URL+"/api/v1/records", jin, samplePayload())
	created := decode[struct {
		ID string `json:"id"`
	}](t, resp)

	resp = doJSON(t, http.MethodGet, ts.URL+"/api/v1/records/"+created.ID, min, nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("another user's record must be invisible, got %d", resp.StatusCode)
	}
}
