package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/erazemk/barang/internal/db"
	"github.com/erazemk/barang/internal/model"
	"github.com/erazemk/barang/internal/store"
)

// ItemsHandler handles item CRUD endpoints.
type ItemsHandler struct {
	DB *db.DB
}

type itemResponse struct {
	Message string      `json:"message"`
	Data    *model.Item `json:"data"`
}

// Response messages.
const (
	msgItemCreated   = "Item created."
	msgItemUpdated   = "Item updated."
	msgDuplicateName = "an item with this name already exists, use a different name"
)

// decodeItem reads and validates an item request body. On failure it writes
// the 400 response and returns nil.
func decodeItem(w http.ResponseWriter, r *http.Request) *model.Item {
	var body map[string]json.RawMessage
	if err := decodeJSON(r, &body); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return nil
	}

	in := model.ItemInput{Malformed: make(map[string]bool)}
	in.Name = textField(body, model.FieldName, in.Malformed)
	in.Category = textField(body, model.FieldCategory, in.Malformed)
	in.Price = numberField(body, model.FieldPrice, in.Malformed)
	in.Stock = numberField(body, model.FieldStock, in.Malformed)

	item, err := in.Validate()
	if err != nil {
		jsonError(w, http.StatusBadRequest, err.Error())
		return nil
	}
	return item
}

// textField returns the string under key, or nil when it is absent or null.
// A value of another type is recorded in malformed.
func textField(body map[string]json.RawMessage, key string, malformed map[string]bool) *string {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err != nil {
		malformed[key] = true
		return nil
	}
	return s
}

// numberField returns the literal text of a number under key. Strings are
// passed through for the validation rules to parse, as form values are.
func numberField(body map[string]json.RawMessage, key string, malformed map[string]bool) *string {
	raw, ok := body[key]
	if !ok {
		return nil
	}
	var s *string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		malformed[key] = true
		return nil
	}
	text := n.String()
	return &text
}

// List handles GET /items.
func (h *ItemsHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := store.ListItems(r.Context(), h.DB)
	if err != nil {
		storeError(w, r, "failed to list items", err)
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	jsonResponse(w, http.StatusOK, items)
}

// Create handles POST /items.
func (h *ItemsHandler) Create(w http.ResponseWriter, r *http.Request) {
	item := decodeItem(w, r)
	if item == nil {
		return
	}

	created, err := store.CreateItem(r.Context(), h.DB, *item)
	if errors.Is(err, store.ErrDuplicateName) {
		jsonError(w, http.StatusBadRequest, msgDuplicateName)
		return
	}
	if err != nil {
		storeError(w, r, "failed to create item", err)
		return
	}

	slog.Info("item created", "id", created.ID, "name", created.Name, "request_id", RequestIDFromContext(r.Context()))
	jsonResponse(w, http.StatusCreated, itemResponse{Message: msgItemCreated, Data: created})
}

// Get handles GET /items/{id}.
func (h *ItemsHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item, err := store.GetItem(r.Context(), h.DB, id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, http.StatusNotFound, fmt.Sprintf("item with ID %d not found", id))
		return
	}
	if err != nil {
		storeError(w, r, "failed to get item", err)
		return
	}

	jsonResponse(w, http.StatusOK, item)
}

// Update handles PUT /items/{id}.
func (h *ItemsHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	item := decodeItem(w, r)
	if item == nil {
		return
	}

	updated, err := store.UpdateItem(r.Context(), h.DB, id, *item)
	switch {
	case errors.Is(err, store.ErrNotFound):
		jsonError(w, http.StatusNotFound, fmt.Sprintf("item with ID %d not found", id))
		return
	case errors.Is(err, store.ErrDuplicateName):
		jsonError(w, http.StatusBadRequest, msgDuplicateName)
		return
	case err != nil:
		storeError(w, r, "failed to update item", err)
		return
	}

	slog.Info("item updated", "id", updated.ID, "name", updated.Name, "request_id", RequestIDFromContext(r.Context()))
	jsonResponse(w, http.StatusOK, itemResponse{Message: msgItemUpdated, Data: updated})
}

// Delete handles DELETE /items/{id}. It succeeds whether or not the item existed.
func (h *ItemsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid item id")
		return
	}

	if err := store.DeleteItem(r.Context(), h.DB, id); err != nil {
		storeError(w, r, "failed to delete item", err)
		return
	}

	slog.Info("item deleted", "id", id, "request_id", RequestIDFromContext(r.Context()))
	textResponse(w, http.StatusOK, fmt.Sprintf("Item with ID %d deleted.", id))
}
