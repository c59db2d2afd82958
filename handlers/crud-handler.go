package handlers

import (
	"encoding/json"
	"net/http"

	"rucja-api/middleware"
	"rucja-api/store"

	"github.com/gorilla/mux"
)

// CrudHandler is the generic gateway: collection-per-resource REST over the
// document store. Bodies arrive already enriched (id, createdAt, userId)
// by the write-normalization middleware.
type CrudHandler struct {
	store *store.Store
}

func NewCrudHandler(st *store.Store) *CrudHandler {
	return &CrudHandler{store: st}
}

func (h *CrudHandler) ListHandler(w http.ResponseWriter, r *http.Request) error {
	records, err := h.store.List(mux.Vars(r)["resource"])
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	return writeJSON(w, http.StatusOK, records)
}

func (h *CrudHandler) GetHandler(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	record, found, err := h.store.Get(vars["resource"], vars["id"])
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	if !found {
		return writeJSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	return writeJSON(w, http.StatusOK, record)
}

func (h *CrudHandler) CreateHandler(w http.ResponseWriter, r *http.Request) error {
	record, err := decodeRecord(r)
	if err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}
	if err := h.store.Insert(mux.Vars(r)["resource"], record); err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	return writeJSON(w, http.StatusCreated, record)
}

func (h *CrudHandler) ReplaceHandler(w http.ResponseWriter, r *http.Request) error {
	record, err := decodeRecord(r)
	if err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}
	vars := mux.Vars(r)
	replaced, found, err := h.store.Replace(vars["resource"], vars["id"], record)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	if !found {
		return writeJSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	return writeJSON(w, http.StatusOK, replaced)
}

func (h *CrudHandler) PatchHandler(w http.ResponseWriter, r *http.Request) error {
	fields, err := decodeRecord(r)
	if err != nil {
		return middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}
	vars := mux.Vars(r)
	patched, found, err := h.store.Patch(vars["resource"], vars["id"], fields)
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	if !found {
		return writeJSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	return writeJSON(w, http.StatusOK, patched)
}

func (h *CrudHandler) DeleteHandler(w http.ResponseWriter, r *http.Request) error {
	vars := mux.Vars(r)
	found, err := h.store.Delete(vars["resource"], vars["id"])
	if err != nil {
		return middleware.NewAppError(http.StatusInternalServerError, "Internal server error", err)
	}
	if !found {
		return writeJSON(w, http.StatusNotFound, map[string]interface{}{})
	}
	return writeJSON(w, http.StatusOK, map[string]interface{}{})
}

func decodeRecord(r *http.Request) (map[string]interface{}, error) {
	record := map[string]interface{}{}
	if err := json.NewDecoder(r.Body).Decode(&record); err != nil {
		return nil, err
	}
	return record, nil
}
