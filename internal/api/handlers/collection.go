package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ramonehamilton/rifty/internal/api/response"
	"github.com/ramonehamilton/rifty/internal/catalog"
	"github.com/ramonehamilton/rifty/internal/collection"
	"github.com/ramonehamilton/rifty/internal/facade"
)

// CollectionHandler handles collection-related API requests.
type CollectionHandler struct {
	facade *facade.Collection
}

// NewCollectionHandler creates a new CollectionHandler.
func NewCollectionHandler(f *facade.Collection) *CollectionHandler {
	return &CollectionHandler{facade: f}
}

// AddCardRequest names a catalog printing to add.
type AddCardRequest struct {
	CardID string `json:"cardId"`
}

// BulkAddRequest is a set code plus bulk-intent text such as "1 5 7a".
type BulkAddRequest struct {
	SetCode string `json:"setCode"`
	Input   string `json:"input"`
}

// RemoveOneRequest names a printing to remove one copy of.
type RemoveOneRequest struct {
	SetCode         string `json:"setCode"`
	CollectorNumber int    `json:"collectorNumber"`
	IsAlternate     bool   `json:"isAlternate"`
}

// FilterRequest replaces one filter field.
type FilterRequest struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// SortRequest selects or toggles a sort field.
type SortRequest struct {
	Field string `json:"field"`
}

// RemovedResponse reports the instance removed by remove-one.
type RemovedResponse struct {
	InstanceID string `json:"instanceId"`
}

// GetCollection returns the visible items with counts, filter and sort.
func (h *CollectionHandler) GetCollection(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.facade.Snapshot())
}

// GetAll returns every owned card, newest first.
func (h *CollectionHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.facade.AllOwnedItems())
}

// AddCard adds one copy of a catalog printing.
func (h *CollectionHandler) AddCard(w http.ResponseWriter, r *http.Request) {
	var req AddCardRequest
	if err := decode(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}
	if req.CardID == "" {
		response.BadRequest(w, errors.New("cardId is required"))
		return
	}

	item, err := h.facade.AddByID(req.CardID)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Created(w, item)
}

// AddBulk adds every printing named by the bulk input.
func (h *CollectionHandler) AddBulk(w http.ResponseWriter, r *http.Request) {
	var req BulkAddRequest
	if err := decode(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	result, err := h.facade.AddBulk(req.SetCode, req.Input)
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, result)
}

// RemoveItem removes the copy with the given instance id.
func (h *CollectionHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	instanceID := chi.URLParam(r, "instanceID")
	if !h.facade.RemoveByInstance(instanceID) {
		response.NotFound(w, errors.New("instance not found: "+instanceID))
		return
	}
	response.NoContent(w)
}

// RemoveOne removes one owned copy of a printing.
func (h *CollectionHandler) RemoveOne(w http.ResponseWriter, r *http.Request) {
	var req RemoveOneRequest
	if err := decode(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	id, err := h.facade.RemoveOne(catalog.Printing{
		SetCode:         req.SetCode,
		CollectorNumber: req.CollectorNumber,
		IsAlternate:     req.IsAlternate,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, RemovedResponse{InstanceID: id})
}

// UpdateFilter replaces one filter field and returns the new view.
func (h *CollectionHandler) UpdateFilter(w http.ResponseWriter, r *http.Request) {
	var req FilterRequest
	if err := decode(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.facade.UpdateFilter(collection.FilterKey(req.Key), req.Value); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, h.facade.Snapshot())
}

// ResetFilter restores the default filter and returns the new view.
func (h *CollectionHandler) ResetFilter(w http.ResponseWriter, r *http.Request) {
	h.facade.ResetFilter()
	response.Success(w, h.facade.Snapshot())
}

// UpdateSort selects or toggles the sort field and returns the new view.
func (h *CollectionHandler) UpdateSort(w http.ResponseWriter, r *http.Request) {
	var req SortRequest
	if err := decode(w, r, &req); err != nil {
		response.BadRequest(w, err)
		return
	}

	if err := h.facade.UpdateSort(collection.SortField(req.Field)); err != nil {
		writeError(w, err)
		return
	}
	response.Success(w, h.facade.Snapshot())
}

// GetSets returns the catalog grid grouped by set with completion stats.
func (h *CollectionHandler) GetSets(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.facade.CatalogView())
}
