package server

import (
	"net/http"

	"fridgechef/internal/handler"
)

func NewMux(sessions *handler.SessionHandler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/sessions", sessions.HandleCreate)
	mux.HandleFunc("GET /api/sessions/{id}", sessions.HandleGet)
	mux.HandleFunc("POST /api/sessions/{id}/reset", sessions.HandleReset)

	// Capture list
	mux.HandleFunc("POST /api/sessions/{id}/images", sessions.HandleAddImages)
	mux.HandleFunc("DELETE /api/sessions/{id}/images/{index}", sessions.HandleRemoveImage)

	// Analysis and ingredient editing
	mux.HandleFunc("POST /api/sessions/{id}/analyze", sessions.HandleAnalyze)
	mux.HandleFunc("POST /api/sessions/{id}/ingredients", sessions.HandleAddIngredient)
	mux.HandleFunc("PATCH /api/sessions/{id}/ingredients/{ingredientID}", sessions.HandleEditIngredient)
	mux.HandleFunc("DELETE /api/sessions/{id}/ingredients/{ingredientID}", sessions.HandleRemoveIngredient)

	// Recipe generation
	mux.HandleFunc("POST /api/sessions/{id}/recipes", sessions.HandleGenerateRecipes)
	mux.HandleFunc("POST /api/sessions/{id}/recipes/more", sessions.HandleMoreRecipes)

	// Live phase feed
	mux.HandleFunc("GET /api/sessions/{id}/events", sessions.HandleEventsWS)

	return CORS(mux)
}
