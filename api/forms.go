package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"ngfw-form/form"
	"ngfw-form/preset"
	"ngfw-form/session"
	"ngfw-form/uistate"
	"ngfw-form/uisync"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps domain errors onto status codes.
func (h *handler) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, form.ErrUnknownField), errors.Is(err, uisync.ErrUnknownCard):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, preset.ErrUnsupportedDevice):
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
	case errors.Is(err, form.ErrNotCheckbox), errors.Is(err, form.ErrNotNumeric),
		errors.Is(err, uistate.ErrInvalidState), errors.Is(err, uisync.ErrInvalidSection):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		h.logger.Error("form request failed", "err", err)
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

// session resolves the {id} URL parameter, writing a 404 when it is unknown.
func (h *handler) session(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	s, ok := h.manager.Get(chi.URLParam(r, "id"))
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return s, true
}

func (h *handler) listForms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.manager.List())
}

func (h *handler) createForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Device string `json:"device"`
		Query  string `json:"query"`
	}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
	}

	s, err := h.manager.Create(session.CreateRequest{
		ClientID: clientFrom(r),
		Device:   req.Device,
		Query:    req.Query,
	})
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, s.View())
}

func (h *handler) getForm(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, s.View())
}

func (h *handler) killForm(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.manager.Kill(id); err != nil {
		if errors.Is(err, session.ErrNotFound) {
			http.Error(w, "session not found", http.StatusNotFound)
			return
		}
		http.Error(w, "failed to close session", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) selectDevice(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Device string `json:"device"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Device == "" {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	view, err := s.SelectDevice(req.Device)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) setField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Value *form.Value `json:"value"`
		// Patch sets the companion checkbox; omitted leaves it alone.
		Patch *bool `json:"patch"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Value == nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	cs, err := s.SetField(chi.URLParam(r, "name"), *req.Value, patchFlag(req.Patch))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *handler) toggleField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Checked bool `json:"checked"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	cs, err := s.Toggle(chi.URLParam(r, "name"), req.Checked)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *handler) stepField(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		Direction string `json:"direction"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	var up bool
	switch req.Direction {
	case "up":
		up = true
	case "down":
	default:
		http.Error(w, "direction must be up or down", http.StatusBadRequest)
		return
	}
	cs, err := s.Step(chi.URLParam(r, "name"), up)
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, cs)
}

func (h *handler) clickCard(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	view, err := s.ClickCard(chi.URLParam(r, "name"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *handler) setSection(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	var req struct {
		State string `json:"state"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	st, err := uistate.ParseSectionState(req.State)
	if err != nil {
		h.writeError(w, err)
		return
	}
	if err := s.SetSection(chi.URLParam(r, "section"), st); err != nil {
		h.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) acknowledgeDisclaimer(w http.ResponseWriter, r *http.Request) {
	s, ok := h.session(w, r)
	if !ok {
		return
	}
	s.AcknowledgeDisclaimer()
	w.WriteHeader(http.StatusNoContent)
}

// patchFlag maps an optional JSON bool onto a patch mode.
func patchFlag(b *bool) form.Patch {
	switch {
	case b == nil:
		return form.PatchUnchanged
	case *b:
		return form.PatchOn
	default:
		return form.PatchOff
	}
}

var (
	errMissingValue   = errors.New("missing value")
	errUnknownMessage = errors.New("unknown message type")
)
