package web

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/erazemk/barang/internal/client"
	"github.com/erazemk/barang/internal/model"
)

// ItemForm holds the form fields as typed by the user.
type ItemForm struct {
	Name     string
	Category string
	Price    string
	Stock    string
}

// Input converts the form into validation input.
func (f ItemForm) Input() model.ItemInput {
	return model.ItemInput{
		Name:     &f.Name,
		Category: &f.Category,
		Price:    &f.Price,
		Stock:    &f.Stock,
	}
}

// FormFromItem fills a form with the values of an existing item.
func FormFromItem(item model.Item) ItemForm {
	return ItemForm{
		Name:     item.Name,
		Category: item.Category,
		Price:    item.Price.String(),
		Stock:    strconv.FormatInt(item.Stock, 10),
	}
}

// ItemsView is the complete state of the items page: the fetched list, the
// form being edited, the edit target (0 in create mode) and per-field errors.
type ItemsView struct {
	PageData
	Items  []model.Item
	Form   ItemForm
	EditID int64
	Errors map[string]string
}

// Editing reports whether the form updates an existing item.
func (v *ItemsView) Editing() bool {
	return v.EditID != 0
}

// StartEdit fills the form from the listed item with the given ID and makes
// it the edit target. It reports whether the item is in the list.
func (v *ItemsView) StartEdit(id int64) bool {
	for _, item := range v.Items {
		if item.ID == id {
			v.Form = FormFromItem(item)
			v.EditID = id
			return true
		}
	}
	return false
}

var successMessages = map[string]string{
	"created": "Item added.",
	"updated": "Item updated.",
	"deleted": "Item deleted.",
}

// loadView fetches the full item list into a fresh view.
func (s *Server) loadView(r *http.Request) *ItemsView {
	view := &ItemsView{
		PageData: PageData{Title: "Inventory"},
		Errors:   map[string]string{},
	}

	items, err := s.Items.List(r.Context())
	if err != nil {
		slog.Error("failed to list items", "error", err)
		view.Error = "Failed to load items: " + err.Error()
	}
	view.Items = items
	return view
}

// ItemsPage handles GET /. With ?edit={id} the form is filled from that row.
func (s *Server) ItemsPage(w http.ResponseWriter, r *http.Request) {
	view := s.loadView(r)
	view.Success = successMessages[r.URL.Query().Get("ok")]

	if edit := r.URL.Query().Get("edit"); edit != "" {
		id, err := strconv.ParseInt(edit, 10, 64)
		if err != nil || !view.StartEdit(id) {
			view.Error = fmt.Sprintf("Item %q not found.", edit)
		}
	}

	s.Templates.Render(w, http.StatusOK, "items.html", view)
}

// ItemSubmit handles POST /, creating an item or updating the edit target.
func (s *Server) ItemSubmit(w http.ResponseWriter, r *http.Request) {
	form := ItemForm{
		Name:     r.FormValue("name"),
		Category: r.FormValue("category"),
		Price:    r.FormValue("price"),
		Stock:    r.FormValue("stock"),
	}

	var editID int64
	if v := r.FormValue("edit_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			http.Error(w, "invalid id", http.StatusBadRequest)
			return
		}
		editID = id
	}

	rerender := func(status int, errs map[string]string, message string) {
		view := s.loadView(r)
		view.Form = form
		view.EditID = editID
		view.Errors = errs
		if message != "" {
			view.Error = message
		}
		s.Templates.Render(w, status, "items.html", view)
	}

	input := form.Input()
	if errs := input.ValidateAll(); len(errs) > 0 {
		rerender(http.StatusUnprocessableEntity, errs, "")
		return
	}
	item, err := input.Validate()
	if err != nil {
		rerender(http.StatusUnprocessableEntity, map[string]string{}, err.Error())
		return
	}

	outcome := "created"
	if editID != 0 {
		outcome = "updated"
		_, err = s.Items.Update(r.Context(), editID, *item)
	} else {
		_, err = s.Items.Create(r.Context(), *item)
	}
	if err != nil {
		status, message := serviceFailure(err)
		slog.Warn("item submit rejected", "edit_id", editID, "error", err)
		rerender(status, map[string]string{}, message)
		return
	}

	slog.Info("item "+outcome, "name", item.Name)
	http.Redirect(w, r, "/?ok="+outcome, http.StatusSeeOther)
}

// DeleteConfirmPage handles GET /items/{id}/delete.
func (s *Server) DeleteConfirmPage(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	data := &struct {
		PageData
		ID   int64
		Item *model.Item
	}{
		PageData: PageData{Title: "Delete item"},
		ID:       id,
	}

	item, err := s.Items.Get(r.Context(), id)
	if err != nil {
		// The confirmation still works by ID alone.
		slog.Warn("failed to get item for delete confirmation", "id", id, "error", err)
	} else {
		data.Item = item
	}

	s.Templates.Render(w, http.StatusOK, "delete.html", data)
}

// DeleteSubmit handles POST /items/{id}/delete after the user confirmed.
func (s *Server) DeleteSubmit(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if _, err := s.Items.Delete(r.Context(), id); err != nil {
		status, message := serviceFailure(err)
		slog.Error("failed to delete item", "id", id, "error", err)
		view := s.loadView(r)
		view.Error = message
		s.Templates.Render(w, status, "items.html", view)
		return
	}

	slog.Info("item deleted", "id", id)
	http.Redirect(w, r, "/?ok=deleted", http.StatusSeeOther)
}

// serviceFailure maps an item service error to a page status and banner.
func serviceFailure(err error) (int, string) {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		status := apiErr.StatusCode
		if status >= 500 {
			status = http.StatusBadGateway
		}
		return status, apiErr.Message
	}
	return http.StatusBadGateway, "The item service is unavailable: " + err.Error()
}
