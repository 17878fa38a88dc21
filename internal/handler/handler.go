// Package handler exposes the session state machine over JSON REST plus a
// websocket event feed.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"fridgechef/internal/session"
	"fridgechef/internal/types"
)

type SessionHandler struct {
	mgr *session.Manager
}

func NewSessionHandler(mgr *session.Manager) *SessionHandler {
	return &SessionHandler{mgr: mgr}
}

// imageView describes a captured image without echoing the payload back.
type imageView struct {
	Index    int    `json:"index"`
	MIMEType string `json:"mime_type"`
	Size     int    `json:"size"`
}

type sessionView struct {
	ID          string             `json:"id"`
	Phase       types.Phase        `json:"phase"`
	Images      []imageView        `json:"images"`
	Ingredients []types.Ingredient `json:"ingredients"`
	Recipes     []types.Recipe     `json:"recipes"`
	Notice      string             `json:"notice,omitempty"`
}

func viewOf(snap session.Snapshot) sessionView {
	images := make([]imageView, 0, len(snap.Images))
	for i, img := range snap.Images {
		images = append(images, imageView{Index: i, MIMEType: img.MIMEType, Size: len(img.Data)})
	}
	if snap.Ingredients == nil {
		snap.Ingredients = []types.Ingredient{}
	}
	if snap.Recipes == nil {
		snap.Recipes = []types.Recipe{}
	}
	return sessionView{
		ID:          snap.ID,
		Phase:       snap.Phase,
		Images:      images,
		Ingredients: snap.Ingredients,
		Recipes:     snap.Recipes,
		Notice:      snap.Notice,
	}
}

func (h *SessionHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	c := h.mgr.Create()
	writeJSON(w, http.StatusCreated, viewOf(c.Snapshot()))
}

func (h *SessionHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}

func (h *SessionHandler) HandleReset(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := c.Reset(); err != nil {
		writeControllerError(w, err, "")
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}

func (h *SessionHandler) lookup(w http.ResponseWriter, r *http.Request) (*session.Controller, bool) {
	id := r.PathValue("id")
	c, ok := h.mgr.Get(id)
	if !ok {
		writeError(w, http.StatusNotFound, "session not found", "")
		return nil, false
	}
	return c, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

type errorBody struct {
	Error  string `json:"error"`
	Notice string `json:"notice,omitempty"`
}

func writeError(w http.ResponseWriter, status int, msg, notice string) {
	writeJSON(w, status, errorBody{Error: msg, Notice: notice})
}

// writeControllerError maps state machine errors onto HTTP statuses.
// notice carries the fixed user-facing message for remote failures.
func writeControllerError(w http.ResponseWriter, err error, notice string) {
	switch {
	case errors.Is(err, session.ErrBusy):
		writeError(w, http.StatusConflict, "a request is already in flight", "")
	case errors.Is(err, session.ErrInvalidPhase):
		writeError(w, http.StatusConflict, "operation not valid in current phase", "")
	case errors.Is(err, session.ErrImageOutOfRange):
		writeError(w, http.StatusBadRequest, "image index out of range", "")
	case errors.Is(err, session.ErrUnknownIngredient):
		writeError(w, http.StatusNotFound, "ingredient not found", "")
	default:
		writeError(w, http.StatusBadGateway, err.Error(), notice)
	}
}
