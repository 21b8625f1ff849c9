package api

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/erazemk/barang/internal/db"
	"github.com/erazemk/barang/internal/model"
)

const testOrigin = "http://localhost:5173"

func setupTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	database := db.NewTestDB(t)
	server := httptest.NewServer(RequestIDMiddleware(NewRouter(database, testOrigin)))
	t.Cleanup(server.Close)
	return server
}

func doRequest(t *testing.T, method, url string, body any) *http.Response {
	t.Helper()

	var bodyReader io.Reader = bytes.NewReader(nil)
	switch b := body.(type) {
	case nil:
	case string:
		bodyReader = strings.NewReader(b)
	default:
		data, _ := json.Marshal(b)
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, url, bodyReader)
	if err != nil {
		t.Fatalf("building request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func penBody() map[string]any {
	return map[string]any{"name": "Pen", "category": "Stationery", "price": 5, "stock": 10}
}

func decodeItemResponse(t *testing.T, resp *http.Response) itemResponse {
	t.Helper()
	var out itemResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out
}

func decodeMessage(t *testing.T, resp *http.Response) string {
	t.Helper()
	var out map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	return out["message"]
}

func listItems(t *testing.T, server *httptest.Server) []model.Item {
	t.Helper()
	resp := doRequest(t, "GET", server.URL+"/items", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 listing items, got %d", resp.StatusCode)
	}
	var items []model.Item
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		t.Fatalf("decoding items: %v", err)
	}
	return items
}

func TestListEmpty(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "GET", server.URL+"/items", nil)
	data, _ := io.ReadAll(resp.Body)
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("expected empty JSON array, got %q", data)
	}
}

func TestCreateItem(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "POST", server.URL+"/items", penBody())
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	out := decodeItemResponse(t, resp)
	if out.Message == "" {
		t.Error("expected a message")
	}
	if out.Data == nil || out.Data.ID == 0 {
		t.Fatalf("expected data with assigned id, got %+v", out.Data)
	}
	if out.Data.Name != "Pen" || out.Data.Category != "Stationery" || out.Data.Price.String() != "5" || out.Data.Stock != 10 {
		t.Errorf("fields not echoed back: %+v", out.Data)
	}

	items := listItems(t, server)
	if len(items) != 1 || items[0].ID != out.Data.ID {
		t.Errorf("expected the new item in the list, got %+v", items)
	}
}

func TestCreatePriceIsJSONNumber(t *testing.T) {
	server := setupTestServer(t)

	body := penBody()
	body["price"] = 0.01
	resp := doRequest(t, "POST", server.URL+"/items", body)

	var raw struct {
		Data map[string]json.RawMessage `json:"data"`
	}
	json.NewDecoder(resp.Body).Decode(&raw)
	if string(raw.Data["price"]) != "0.01" {
		t.Errorf("expected price as JSON number 0.01, got %s", raw.Data["price"])
	}
}

func TestCreateDuplicateName(t *testing.T) {
	server := setupTestServer(t)

	doRequest(t, "POST", server.URL+"/items", penBody())

	dup := penBody()
	dup["stock"] = 1
	resp := doRequest(t, "POST", server.URL+"/items", dup)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate, got %d", resp.StatusCode)
	}
	if msg := decodeMessage(t, resp); msg != msgDuplicateName {
		t.Errorf("unexpected message %q", msg)
	}

	items := listItems(t, server)
	if len(items) != 1 || items[0].Stock != 10 {
		t.Errorf("store changed after duplicate create: %+v", items)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    any
		message string
	}{
		{"missing stock", map[string]any{"name": "Pen", "category": "Stationery", "price": 5}, model.ErrFieldsRequired.Error()},
		{"empty name", map[string]any{"name": "", "category": "Stationery", "price": 5, "stock": 1}, model.ErrFieldsRequired.Error()},
		{"zero price is present", map[string]any{"name": "Pen", "category": "Stationery", "price": 0, "stock": 1}, model.NewFieldError(model.FieldPrice).Message},
		{"name too long", map[string]any{"name": strings.Repeat("n", 101), "category": "Stationery", "price": 5, "stock": 1}, model.NewFieldError(model.FieldName).Message},
		{"category digit", map[string]any{"name": "Pen", "category": "Food1", "price": 5, "stock": 1}, model.NewFieldError(model.FieldCategory).Message},
		{"negative stock", map[string]any{"name": "Pen", "category": "Food", "price": 5, "stock": -1}, model.NewFieldError(model.FieldStock).Message},
		{"fractional stock", map[string]any{"name": "Pen", "category": "Food", "price": 5, "stock": 1.5}, model.NewFieldError(model.FieldStock).Message},
		{"name not text", map[string]any{"name": 5, "category": "Food", "price": 5, "stock": 1}, model.NewFieldError(model.FieldName).Message},
		{"price not number", map[string]any{"name": "Pen", "category": "Food", "price": true, "stock": 1}, model.NewFieldError(model.FieldPrice).Message},
		{"price not numeric text", map[string]any{"name": "Pen", "category": "Food", "price": "abc", "stock": 1}, model.NewFieldError(model.FieldPrice).Message},
		{"price huge exponent", `{"name":"Pen","category":"Food","price":1e10000000,"stock":1}`, model.NewFieldError(model.FieldPrice).Message},
		{"price tiny exponent", `{"name":"Pen","category":"Food","price":1e-10000000,"stock":1}`, model.NewFieldError(model.FieldPrice).Message},
		{"price too many decimals", map[string]any{"name": "Pen", "category": "Food", "price": "0.001", "stock": 1}, model.NewFieldError(model.FieldPrice).Message},
		{"stock huge exponent", `{"name":"Pen","category":"Food","price":1,"stock":1e10000000}`, model.NewFieldError(model.FieldStock).Message},
		{"wrong type before presence", map[string]any{"name": 5, "price": 5, "stock": 1}, model.ErrFieldsRequired.Error()},
		{"null field is missing", map[string]any{"name": nil, "category": "Food", "price": 5, "stock": 1}, model.ErrFieldsRequired.Error()},
		{"not an object", "[1, 2]", "invalid request body"},
		{"malformed json", "{not json", "invalid request body"},
	}

	server := setupTestServer(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, "POST", server.URL+"/items", tt.body)
			if resp.StatusCode != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d", resp.StatusCode)
			}
			if msg := decodeMessage(t, resp); msg != tt.message {
				t.Errorf("expected message %q, got %q", tt.message, msg)
			}
		})
	}

	if items := listItems(t, server); len(items) != 0 {
		t.Errorf("expected no items after rejected creates, got %d", len(items))
	}
}

func TestCreateBoundaryValuesAccepted(t *testing.T) {
	server := setupTestServer(t)

	body := map[string]any{"name": strings.Repeat("n", 100), "category": "Food", "price": 0.01, "stock": 0}
	resp := doRequest(t, "POST", server.URL+"/items", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
}

func TestCreateIntegralStockForms(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "POST", server.URL+"/items", `{"name":"Pen","category":"Food","price":9999999999999.99,"stock":10.0}`)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}
	out := decodeItemResponse(t, resp)
	if out.Data.Stock != 10 || out.Data.Price.String() != "9999999999999.99" {
		t.Errorf("unexpected item %+v", out.Data)
	}
}

func TestUpdateItem(t *testing.T) {
	server := setupTestServer(t)

	created := decodeItemResponse(t, doRequest(t, "POST", server.URL+"/items", penBody())).Data

	resp := doRequest(t, "PUT", server.URL+"/items/"+itoa(created.ID), map[string]any{
		"name": "Red Pen", "category": "Office", "price": "7.5", "stock": 3,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	out := decodeItemResponse(t, resp)
	if out.Data.ID != created.ID || out.Data.Name != "Red Pen" || out.Data.Price.String() != "7.5" || out.Data.Stock != 3 {
		t.Errorf("unexpected updated item %+v", out.Data)
	}
}

func TestUpdateRoundTripSameFields(t *testing.T) {
	server := setupTestServer(t)

	created := decodeItemResponse(t, doRequest(t, "POST", server.URL+"/items", penBody())).Data

	resp := doRequest(t, "PUT", server.URL+"/items/"+itoa(created.ID), penBody())
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "GET", server.URL+"/items/"+itoa(created.ID), nil)
	var got model.Item
	json.NewDecoder(resp.Body).Decode(&got)
	if got.ID != created.ID || got.Name != created.Name || got.Category != created.Category ||
		!got.Price.Equal(created.Price) || got.Stock != created.Stock {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, created)
	}
}

func TestUpdateMissingItem(t *testing.T) {
	server := setupTestServer(t)

	doRequest(t, "POST", server.URL+"/items", penBody())

	resp := doRequest(t, "PUT", server.URL+"/items/999", map[string]any{
		"name": "Ghost", "category": "Office", "price": 1, "stock": 1,
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.StatusCode)
	}

	items := listItems(t, server)
	if len(items) != 1 || items[0].Name != "Pen" {
		t.Errorf("store changed after update of missing id: %+v", items)
	}
}

func TestUpdateDuplicateName(t *testing.T) {
	server := setupTestServer(t)

	doRequest(t, "POST", server.URL+"/items", penBody())
	other := penBody()
	other["name"] = "Pencil"
	pencil := decodeItemResponse(t, doRequest(t, "POST", server.URL+"/items", other)).Data

	resp := doRequest(t, "PUT", server.URL+"/items/"+itoa(pencil.ID), penBody())
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestUpdateInvalidBody(t *testing.T) {
	server := setupTestServer(t)

	created := decodeItemResponse(t, doRequest(t, "POST", server.URL+"/items", penBody())).Data

	body := penBody()
	body["category"] = "C4"
	resp := doRequest(t, "PUT", server.URL+"/items/"+itoa(created.ID), body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestDeleteTwice(t *testing.T) {
	server := setupTestServer(t)

	doRequest(t, "POST", server.URL+"/items", penBody())

	for i := 0; i < 2; i++ {
		resp := doRequest(t, "DELETE", server.URL+"/items/5", nil)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("delete %d: expected 200, got %d", i+1, resp.StatusCode)
		}
		data, _ := io.ReadAll(resp.Body)
		if string(data) != "Item with ID 5 deleted." {
			t.Errorf("unexpected confirmation %q", data)
		}
	}

	if items := listItems(t, server); len(items) != 1 {
		t.Errorf("expected store unchanged, got %d items", len(items))
	}
}

func TestDeleteItem(t *testing.T) {
	server := setupTestServer(t)

	created := decodeItemResponse(t, doRequest(t, "POST", server.URL+"/items", penBody())).Data

	resp := doRequest(t, "DELETE", server.URL+"/items/"+itoa(created.ID), nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if items := listItems(t, server); len(items) != 0 {
		t.Errorf("expected empty store, got %d items", len(items))
	}
}

func TestGetItem(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "GET", server.URL+"/items/1", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}

	resp = doRequest(t, "GET", server.URL+"/items/abc", nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400 for invalid id, got %d", resp.StatusCode)
	}
}

func TestCORS(t *testing.T) {
	server := setupTestServer(t)

	req, _ := http.NewRequest("OPTIONS", server.URL+"/items", nil)
	req.Header.Set("Origin", testOrigin)
	req.Header.Set("Access-Control-Request-Method", "POST")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("preflight: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204 preflight, got %d", resp.StatusCode)
	}
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != testOrigin {
		t.Errorf("expected allowed origin %q, got %q", testOrigin, got)
	}

	req, _ = http.NewRequest("GET", server.URL+"/items", nil)
	req.Header.Set("Origin", "http://evil.example")
	resp, err = http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get("Access-Control-Allow-Origin"); got != "" {
		t.Errorf("expected no CORS header for foreign origin, got %q", got)
	}
}

func TestRequestID(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "GET", server.URL+"/items", nil)
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Error("expected generated request id")
	}

	req, _ := http.NewRequest("GET", server.URL+"/items", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if got := resp.Header.Get(RequestIDHeader); got != "abc-123" {
		t.Errorf("expected request id echoed, got %q", got)
	}
}

func TestHealth(t *testing.T) {
	server := setupTestServer(t)

	resp := doRequest(t, "GET", server.URL+"/healthz", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
}

func TestLoggingMiddlewareRecordsStatus(t *testing.T) {
	handler := LoggingMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
		w.Write([]byte("short and stout"))
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusTeapot {
		t.Errorf("expected status passed through, got %d", rec.Code)
	}
}
