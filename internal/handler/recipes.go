package handler

import (
	"net/http"

	"fridgechef/internal/session"
)

func (h *SessionHandler) HandleGenerateRecipes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	err := c.GenerateRecipes(r.Context())
	h.mgr.Persist(c)
	if err != nil {
		writeControllerError(w, err, session.NoticeGenerationFailed)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}

func (h *SessionHandler) HandleMoreRecipes(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	err := c.RequestMoreRecipes(r.Context())
	h.mgr.Persist(c)
	if err != nil {
		writeControllerError(w, err, session.NoticeGenerationFailed)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}
