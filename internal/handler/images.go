package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"fridgechef/internal/session"
	"fridgechef/internal/types"
)

type addImagesRequest struct {
	Images []struct {
		Data     []byte `json:"data"` // base64 in JSON
		MIMEType string `json:"mime_type"`
	} `json:"images"`
}

func (h *SessionHandler) HandleAddImages(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}

	var req addImagesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || len(req.Images) == 0 {
		writeError(w, http.StatusBadRequest, "invalid image payload", session.NoticeImageFailed)
		return
	}

	payloads := make([]types.CapturedImage, 0, len(req.Images))
	for _, img := range req.Images {
		payloads = append(payloads, types.CapturedImage{Data: img.Data, MIMEType: img.MIMEType})
	}
	if err := c.AddImages(payloads); err != nil {
		writeControllerError(w, err, "")
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}

func (h *SessionHandler) HandleRemoveImage(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	index, err := strconv.Atoi(r.PathValue("index"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid image index", "")
		return
	}
	if err := c.RemoveImage(index); err != nil {
		writeControllerError(w, err, "")
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}

func (h *SessionHandler) HandleAnalyze(w http.ResponseWriter, r *http.Request) {
	c, ok := h.lookup(w, r)
	if !ok {
		return
	}
	if err := c.StartAnalysis(r.Context()); err != nil {
		h.mgr.Persist(c)
		writeControllerError(w, err, session.NoticeAnalysisFailed)
		return
	}
	h.mgr.Persist(c)
	writeJSON(w, http.StatusOK, viewOf(c.Snapshot()))
}
