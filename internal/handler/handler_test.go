package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/websocket"

	"fridgechef/internal/handler"
	"fridgechef/internal/server"
	"fridgechef/internal/session"
	"fridgechef/internal/types"
)

type stubKitchen struct {
	detectErr  error
	suggestErr error
}

func (k *stubKitchen) DetectIngredients(_ context.Context, images []types.CapturedImage) ([]types.Ingredient, error) {
	if k.detectErr != nil {
		return nil, k.detectErr
	}
	return []types.Ingredient{
		{ID: "milk-1", Name: "Milk", PossibleAlternates: []string{"Cream"}},
		{ID: "eggs-1", Name: "Eggs"},
	}, nil
}

func (k *stubKitchen) SuggestRecipes(_ context.Context, names, excludeTitles []string) ([]types.Recipe, error) {
	if k.suggestErr != nil {
		return nil, k.suggestErr
	}
	title := "Scrambled Eggs"
	if len(excludeTitles) > 0 {
		title = "Omelette"
	}
	return []types.Recipe{{
		ID:          "r-" + title,
		Title:       title,
		PrepTime:    "10 min",
		Difficulty:  types.DifficultyEasy,
		Ingredients: names,
	}}, nil
}

type sessionView struct {
	ID     string      `json:"id"`
	Phase  types.Phase `json:"phase"`
	Images []struct {
		Index    int    `json:"index"`
		MIMEType string `json:"mime_type"`
		Size     int    `json:"size"`
	} `json:"images"`
	Ingredients []types.Ingredient `json:"ingredients"`
	Recipes     []types.Recipe     `json:"recipes"`
	Notice      string             `json:"notice,omitempty"`
}

func newTestServer(t *testing.T, kitchen session.Kitchen) *httptest.Server {
	t.Helper()
	mgr := session.NewManager(kitchen, nil)
	srv := httptest.NewServer(server.NewMux(handler.NewSessionHandler(mgr)))
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url string, body any) (*http.Response, sessionView) {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req, err := http.NewRequest(method, url, rd)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()
	var view sessionView
	_ = json.NewDecoder(resp.Body).Decode(&view)
	return resp, view
}

func createSession(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	resp, view := doJSON(t, http.MethodPost, srv.URL+"/api/sessions", nil)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create: status = %d, want 201", resp.StatusCode)
	}
	if view.ID == "" {
		t.Fatalf("create: empty session id")
	}
	if view.Phase != types.PhaseIdle {
		t.Fatalf("create: phase = %q, want idle", view.Phase)
	}
	return view.ID
}

func imagePayload(n int) map[string]any {
	images := make([]map[string]any, 0, n)
	for i := 0; i < n; i++ {
		images = append(images, map[string]any{
			"data":      []byte(fmt.Sprintf("jpeg-bytes-%d", i)),
			"mime_type": "image/jpeg",
		})
	}
	return map[string]any{"images": images}
}

func TestCreateAndGetSession(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)

	resp, view := doJSON(t, http.MethodGet, srv.URL+"/api/sessions/"+id, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get: status = %d, want 200", resp.StatusCode)
	}
	if view.ID != id {
		t.Fatalf("get: id = %q, want %q", view.ID, id)
	}
	if view.Ingredients == nil || view.Recipes == nil {
		t.Fatalf("get: nil slices in view")
	}
}

func TestGetUnknownSession(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/api/sessions/nope", nil)
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestAddImagesAndAnalyze(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	resp, view := doJSON(t, http.MethodPost, base+"/images", imagePayload(2))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("add images: status = %d, want 200", resp.StatusCode)
	}
	if len(view.Images) != 2 {
		t.Fatalf("add images: len = %d, want 2", len(view.Images))
	}
	if view.Images[0].Size == 0 || view.Images[0].MIMEType != "image/jpeg" {
		t.Fatalf("add images: bad view %+v", view.Images[0])
	}

	resp, view = doJSON(t, http.MethodPost, base+"/analyze", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("analyze: status = %d, want 200", resp.StatusCode)
	}
	if view.Phase != types.PhaseEditing {
		t.Fatalf("analyze: phase = %q, want editing", view.Phase)
	}
	if len(view.Ingredients) != 2 || view.Ingredients[0].Name != "Milk" {
		t.Fatalf("analyze: ingredients = %+v", view.Ingredients)
	}
}

func TestAnalyzeFailureReturnsNotice(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{detectErr: errors.New("model unavailable")})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	if resp, _ := doJSON(t, http.MethodPost, base+"/images", imagePayload(1)); resp.StatusCode != http.StatusOK {
		t.Fatalf("add images failed")
	}

	req, _ := http.NewRequest(http.MethodPost, base+"/analyze", bytes.NewReader(nil))
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Fatalf("analyze: status = %d, want 502", resp.StatusCode)
	}
	var body struct {
		Error  string `json:"error"`
		Notice string `json:"notice"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode error body: %v", err)
	}
	if body.Notice != session.NoticeAnalysisFailed {
		t.Fatalf("notice = %q, want %q", body.Notice, session.NoticeAnalysisFailed)
	}

	// Rollback: captures intact, phase back to idle.
	getResp, view := doJSON(t, http.MethodGet, base, nil)
	if getResp.StatusCode != http.StatusOK {
		t.Fatalf("get after failure: %d", getResp.StatusCode)
	}
	if view.Phase != types.PhaseIdle || len(view.Images) != 1 {
		t.Fatalf("after failure: phase = %q images = %d", view.Phase, len(view.Images))
	}
}

func TestAddImagesBadPayload(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)

	resp, err := http.Post(srv.URL+"/api/sessions/"+id+"/images", "application/json", strings.NewReader(`{"images":[]}`))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestRemoveImage(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	doJSON(t, http.MethodPost, base+"/images", imagePayload(3))

	resp, view := doJSON(t, http.MethodDelete, base+"/images/1", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("remove: status = %d, want 200", resp.StatusCode)
	}
	if len(view.Images) != 2 {
		t.Fatalf("remove: len = %d, want 2", len(view.Images))
	}

	if resp, _ := doJSON(t, http.MethodDelete, base+"/images/9", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("out of range: status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodDelete, base+"/images/abc", nil); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("non-numeric: status = %d, want 400", resp.StatusCode)
	}
}

func TestIngredientEditing(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	doJSON(t, http.MethodPost, base+"/images", imagePayload(1))
	_, view := doJSON(t, http.MethodPost, base+"/analyze", nil)
	milkID := view.Ingredients[0].ID

	// Rename.
	resp, view := doJSON(t, http.MethodPatch, base+"/ingredients/"+milkID, map[string]string{"name": "Oat Milk"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rename: status = %d, want 200", resp.StatusCode)
	}
	if view.Ingredients[0].Name != "Oat Milk" {
		t.Fatalf("rename: name = %q", view.Ingredients[0].Name)
	}

	// Accept alternate.
	resp, view = doJSON(t, http.MethodPatch, base+"/ingredients/"+milkID, map[string]string{"alternate": "Cream"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("alternate: status = %d, want 200", resp.StatusCode)
	}
	if view.Ingredients[0].Name != "Cream" {
		t.Fatalf("alternate: name = %q", view.Ingredients[0].Name)
	}

	// Exactly one of name/alternate.
	if resp, _ := doJSON(t, http.MethodPatch, base+"/ingredients/"+milkID, map[string]string{}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("empty edit: status = %d, want 400", resp.StatusCode)
	}
	if resp, _ := doJSON(t, http.MethodPatch, base+"/ingredients/"+milkID, map[string]string{"name": "A", "alternate": "B"}); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("double edit: status = %d, want 400", resp.StatusCode)
	}

	// Unknown ingredient.
	if resp, _ := doJSON(t, http.MethodPatch, base+"/ingredients/ghost", map[string]string{"name": "X"}); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("unknown: status = %d, want 404", resp.StatusCode)
	}

	// Add, then remove.
	addResp, err := http.Post(base+"/ingredients", "application/json", nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	var added types.Ingredient
	if err := json.NewDecoder(addResp.Body).Decode(&added); err != nil {
		t.Fatalf("decode added: %v", err)
	}
	addResp.Body.Close()
	if addResp.StatusCode != http.StatusCreated {
		t.Fatalf("add: status = %d, want 201", addResp.StatusCode)
	}
	if added.Name != session.DefaultIngredientName {
		t.Fatalf("add: name = %q", added.Name)
	}

	resp, view = doJSON(t, http.MethodDelete, base+"/ingredients/"+added.ID, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("delete: status = %d, want 200", resp.StatusCode)
	}
	for _, ing := range view.Ingredients {
		if ing.ID == added.ID {
			t.Fatalf("delete: ingredient still present")
		}
	}
}

func TestIngredientEditsRejectedOutsideEditing(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	resp, err := http.Post(base+"/ingredients", "application/json", nil)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("add in idle: status = %d, want 409", resp.StatusCode)
	}
}

func TestRecipeGenerationAndMore(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	doJSON(t, http.MethodPost, base+"/images", imagePayload(1))
	doJSON(t, http.MethodPost, base+"/analyze", nil)

	resp, view := doJSON(t, http.MethodPost, base+"/recipes", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("recipes: status = %d, want 200", resp.StatusCode)
	}
	if view.Phase != types.PhaseResults {
		t.Fatalf("recipes: phase = %q, want results", view.Phase)
	}
	if len(view.Recipes) != 1 || view.Recipes[0].Title != "Scrambled Eggs" {
		t.Fatalf("recipes: %+v", view.Recipes)
	}

	resp, view = doJSON(t, http.MethodPost, base+"/recipes/more", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("more: status = %d, want 200", resp.StatusCode)
	}
	if len(view.Recipes) != 2 || view.Recipes[1].Title != "Omelette" {
		t.Fatalf("more: %+v", view.Recipes)
	}
}

func TestGenerateRejectedOutsideEditing(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/api/sessions/"+id+"/recipes", nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("status = %d, want 409", resp.StatusCode)
	}
}

func TestReset(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)
	base := srv.URL + "/api/sessions/" + id

	doJSON(t, http.MethodPost, base+"/images", imagePayload(2))
	doJSON(t, http.MethodPost, base+"/analyze", nil)

	resp, view := doJSON(t, http.MethodPost, base+"/reset", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("reset: status = %d, want 200", resp.StatusCode)
	}
	if view.Phase != types.PhaseIdle || len(view.Images) != 0 || len(view.Ingredients) != 0 {
		t.Fatalf("reset: view = %+v", view)
	}
}

func TestEventsWSStreamsPhases(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	id := createSession(t, srv)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/" + id + "/events"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	var evt struct {
		Type   string `json:"type"`
		Phase  string `json:"phase"`
		Notice string `json:"notice"`
	}
	if err := conn.ReadJSON(&evt); err != nil {
		t.Fatalf("read initial event: %v", err)
	}
	if evt.Type != "phase" || evt.Phase != string(types.PhaseIdle) {
		t.Fatalf("initial event = %+v", evt)
	}

	base := srv.URL + "/api/sessions/" + id
	doJSON(t, http.MethodPost, base+"/images", imagePayload(1))
	doJSON(t, http.MethodPost, base+"/analyze", nil)

	// Analyze publishes analyzing then editing.
	for _, want := range []string{string(types.PhaseAnalyzing), string(types.PhaseEditing)} {
		if err := conn.ReadJSON(&evt); err != nil {
			t.Fatalf("read %s event: %v", want, err)
		}
		if evt.Phase != want {
			t.Fatalf("event phase = %q, want %q", evt.Phase, want)
		}
	}
}

func TestEventsWSUnknownSession(t *testing.T) {
	srv := newTestServer(t, &stubKitchen{})
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/sessions/ghost/events"
	if _, resp, err := websocket.DefaultDialer.Dial(wsURL, nil); err == nil {
		t.Fatalf("dial succeeded for unknown session")
	} else if resp != nil && resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
