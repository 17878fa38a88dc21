package handler

import (
	"encoding/json"
	"net/http"
	"strings"
)

type editIngredientRequest struct {
	Name      string `json:"name,omitempty"`
	Alternate string `json:"alternate,omitempty"`
}

func (h *SessionHandler) HandleAddIngredient(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	ing, err := c.AddIngredient()
	if err != nil {
		writeControllerError(w, err, "")
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusCreated, ing)
}

// HandleEditIngredient covers both rename and accept-alternate: exactly one
// of "name" or "alternate" must be set.
func (h *SessionHandler) HandleEditIngredient(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	var req editIngredientRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", "")
		return
	}
	name := strings.TrimSpace(req.Name)
	alt := strings.TrimSpace(req.Alternate)
	if (name == "") == (alt == "") {
		writeError(w, http.StatusBadRequest, "set exactly one of name or alternate", "")
		return
	}

	id := r.PathValue("ingredientID")
	var err error
	if alt != "" {
		err = c.AcceptAlternate(id, alt)
	} else {
		err = c.RenameIngredient(id, name)
	}
	if err != nil {
		writeControllerError(w, err, "")
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}

func (h *SessionHandler) HandleRemoveIngredient(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := c.RemoveIngredient(r.PathValue("ingredientID")); err != nil {
		writeControllerError(w, err, "")
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}
