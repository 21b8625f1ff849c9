package web

import (
	"net/http"

	webembed "github.com/erazemk/barang/web"
)

// NewRouter creates the item UI router with all page routes registered.
func NewRouter(items ItemService) (http.Handler, error) {
	templates, err := LoadTemplates()
	if err != nil {
		return nil, err
	}

	s := &Server{
		Items:     items,
		Templates: templates,
	}

	mux := http.NewServeMux()

	// Static assets.
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServer(http.FS(webembed.StaticFS()))))

	mux.HandleFunc("GET /{$}", s.ItemsPage)
	mux.HandleFunc("POST /{$}", s.ItemSubmit)
	mux.HandleFunc("GET /items/{id}/delete", s.DeleteConfirmPage)
	mux.HandleFunc("POST /items/{id}/delete", s.DeleteSubmit)

	return mux, nil
}
