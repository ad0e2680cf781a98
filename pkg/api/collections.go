package api

import (
	"fmt"
	"net/http"

	"github.com/adfharrison1/go-tripdb/pkg/aggregate"
	"github.com/adfharrison1/go-tripdb/pkg/domain"
	"github.com/adfharrison1/go-tripdb/pkg/store"
	"github.com/goccy/go-json"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// DeleteResponse reports whether a delete removed anything
type DeleteResponse struct {
	Deleted bool `json:"deleted"`
}

// collection resolves the {coll} route variable to its store
func (h *Handler) collection(w http.ResponseWriter, r *http.Request) (*store.Store, bool) {
	s, err := h.registry.Get(r.Context(), mux.Vars(r)["coll"])
	if err != nil {
		writeError(w, err)
		return nil, false
	}
	return s, true
}

// decodeRecord reads a JSON object body
func decodeRecord(w http.ResponseWriter, r *http.Request) (domain.Record, bool) {
	var rec domain.Record
	if err := json.NewDecoder(r.Body).Decode(&rec); err != nil || rec == nil {
		zap.S().Debugf("Decoding body failed: %v", err)
		WriteJSONError(w, http.StatusBadRequest, "Invalid request body")
		return nil, false
	}
	if err := domain.ValidateID(rec); err != nil {
		writeError(w, err)
		return nil, false
	}
	return rec, true
}

// HandleInsert handles POST requests to insert records into collections
func (h *Handler) HandleInsert(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	created, err := s.Append(r.Context(), rec)
	if err != nil {
		writeError(w, err)
		return
	}

	zap.S().Infof("Inserted record '%s' into collection '%s'", created.ID(), s.Collection())
	writeJSON(w, http.StatusCreated, created)
}

// HandleQuery handles GET requests to filter, sort and page a collection
func (h *Handler) HandleQuery(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	rs := s.Query(q)
	zap.S().Debugf("Found %d records in collection '%s' with %v", rs.Total, s.Collection(), q.Predicates())
	writeJSON(w, http.StatusOK, rs)
}

// HandleSummary handles GET requests for aggregates over a filtered collection
func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	q, err := parseQuery(r.URL.Query())
	if err != nil {
		writeError(w, err)
		return
	}

	summary := aggregate.Summarize(s.Query(q), parseSummaryFields(r.URL.Query()))
	writeJSON(w, http.StatusOK, summary)
}

// HandleReset handles DELETE requests that clear a whole collection
func (h *Handler) HandleReset(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	if err := s.Reset(r.Context()); err != nil {
		writeError(w, err)
		return
	}

	zap.S().Infof("Reset collection '%s'", s.Collection())
	w.WriteHeader(http.StatusNoContent)
}

// HandleUpsert handles PUT requests that merge a record into the first one
// sharing its "on" field, or insert it when none does
func (h *Handler) HandleUpsert(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	rec, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	conflictKey := r.URL.Query().Get("on")
	if conflictKey == "" {
		conflictKey = domain.FieldID
	}
	if _, present := rec.Lookup(conflictKey); !present && conflictKey != domain.FieldID {
		writeError(w, domain.Invalid(conflictKey, fmt.Sprintf("record has no %s to upsert on", conflictKey)))
		return
	}

	merged, err := s.Upsert(r.Context(), rec, conflictKey)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, merged)
}

// HandleGetById handles GET requests to retrieve a specific record by ID
func (h *Handler) HandleGetById(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	rec, found := s.Get(id)
	if !found {
		writeError(w, fmt.Errorf("record '%s' in collection '%s': %w", id, s.Collection(), domain.ErrRecordNotFound))
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

// HandleUpdateById handles PATCH requests to merge fields into a record
func (h *Handler) HandleUpdateById(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]
	patch, ok := decodeRecord(w, r)
	if !ok {
		return
	}

	updated, found, err := s.Update(r.Context(), id, patch)
	if err != nil {
		writeError(w, err)
		return
	}
	if !found {
		writeError(w, fmt.Errorf("record '%s' in collection '%s': %w", id, s.Collection(), domain.ErrRecordNotFound))
		return
	}

	zap.S().Infof("Updated record '%s' in collection '%s'", id, s.Collection())
	writeJSON(w, http.StatusOK, updated)
}

// HandleDeleteById handles DELETE requests for a single record. Deleting a
// missing record succeeds and reports deleted=false.
func (h *Handler) HandleDeleteById(w http.ResponseWriter, r *http.Request) {
	s, ok := h.collection(w, r)
	if !ok {
		return
	}
	id := mux.Vars(r)["id"]

	removed, err := s.Remove(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if removed {
		zap.S().Infof("Deleted record '%s' from collection '%s'", id, s.Collection())
	}
	writeJSON(w, http.StatusOK, DeleteResponse{Deleted: removed})
}
