package handlers

import (
	"net/http"
	"strconv"

	"github.com/ramonehamilton/rifty/internal/api/response"
	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/facade"
)

// CatalogHandler serves the read-only reference catalog.
type CatalogHandler struct {
	facade *facade.Collection
}

// NewCatalogHandler creates a new CatalogHandler.
func NewCatalogHandler(f *facade.Collection) *CatalogHandler {
	return &CatalogHandler{facade: f}
}

// GetCatalog returns every printing, or name search results when the
// search query parameter is set.
func (h *CatalogHandler) GetCatalog(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("search")
	limit := 0
	if s := r.URL.Query().Get("limit"); s != "" {
		if l, err := strconv.Atoi(s); err == nil && l > 0 {
			limit = l
		}
	}

	if query == "" {
		cards := h.facade.Catalog().All()
		if limit > 0 && limit < len(cards) {
			cards = cards[:limit]
		}
		response.Success(w, cards)
		return
	}

	results := h.facade.Search(query, limit)
	if results == nil {
		results = []catalog.SearchResult{}
	}
	response.Success(w, results)
}

// GetSets returns the catalog's sets in first-seen order.
func (h *CatalogHandler) GetSets(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.facade.Catalog().Sets())
}
