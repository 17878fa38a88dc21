package llm

import (
	"context"
	"encoding/json"
)

// FakeClient returns deterministic, minimal JSON payloads per operation for
// offline/testing use.
type FakeClient struct{}

func NewFakeClient() *FakeClient { return &FakeClient{} }

func (f *FakeClient) Name() string { return "FakeLLM" }
func (f *FakeClient) Close() error { return nil }

func (f *FakeClient) GenerateJSON(ctx context.Context, prompt string, input any) (json.RawMessage, error) {
	return f.canned(ctx)
}

func (f *FakeClient) GenerateVisionJSON(ctx context.Context, prompt string, images []Blob) (json.RawMessage, error) {
	return f.canned(ctx)
}

func (f *FakeClient) canned(ctx context.Context) (json.RawMessage, error) {
	var obj any
	switch OpFrom(ctx) {
	case "detect":
		obj = map[string]any{
			"ingredients": []any{
				map[string]any{"name": "Milk", "possible_alternates": []string{"Cream"}},
				map[string]any{"name": "Eggs", "possible_alternates": []string{}},
			},
		}
	case "suggest":
		obj = map[string]any{
			"recipes": []any{
				map[string]any{
					"title":        "Scrambled Eggs",
					"description":  "Soft scrambled eggs with milk.",
					"prep_time":    "10 min",
					"difficulty":   "Easy",
					"ingredients":  []string{"Eggs", "Milk"},
					"instructions": []string{"Whisk eggs with milk.", "Cook over low heat."},
				},
			},
		}
	default:
		obj = map[string]any{}
	}
	b, _ := json.Marshal(obj)
	return json.RawMessage(b), nil
}
