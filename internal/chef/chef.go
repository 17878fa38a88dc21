// Package chef fronts the multimodal model with the two domain calls:
// ingredient detection from photos and recipe suggestion from an
// ingredient list.
package chef

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"fridgechef/internal/llm"
	"fridgechef/internal/types"
	"fridgechef/internal/util/jsonutil"
	"fridgechef/internal/utils"
)

const detectCacheSize = 256

// Service implements ingredient detection and recipe suggestion.
type Service struct {
	cli llm.Client

	// detectCache remembers detection results per image-set digest so
	// re-analyzing the same photos skips the model call.
	detectCache *lru.Cache[string, []types.Ingredient]
}

func New(cli llm.Client) (*Service, error) {
	cache, err := lru.New[string, []types.Ingredient](detectCacheSize)
	if err != nil {
		return nil, err
	}
	return &Service{cli: cli, detectCache: cache}, nil
}

type detectedIngredient struct {
	Name               string   `json:"name"`
	PossibleAlternates []string `json:"possible_alternates"`
}

type detectResponse struct {
	Ingredients []detectedIngredient `json:"ingredients"`
}

// DetectIngredients sends the captured images to the model and returns the
// detected ingredient list with client-side IDs assigned.
func (s *Service) DetectIngredients(ctx context.Context, images []types.CapturedImage) ([]types.Ingredient, error) {
	if len(images) == 0 {
		return nil, fmt.Errorf("chef: no images to analyze")
	}

	digest := imageSetDigest(images)
	if cached, ok := s.detectCache.Get(digest); ok {
		return cloneIngredients(cached), nil
	}

	p, err := detectPrompt()
	if err != nil {
		return nil, fmt.Errorf("chef: build detect prompt: %w", err)
	}

	blobs := make([]llm.Blob, 0, len(images))
	for _, img := range images {
		blobs = append(blobs, llm.Blob{MIMEType: img.MIMEType, Data: img.Data})
	}

	raw, err := s.cli.GenerateVisionJSON(llm.WithOp(ctx, "detect"), p, blobs)
	if err != nil {
		return nil, fmt.Errorf("chef: detect ingredients: %w", err)
	}

	var resp detectResponse
	if err := jsonutil.UnmarshalRaw(raw, &resp); err != nil {
		return nil, fmt.Errorf("chef: parse detect response: %w", err)
	}

	gen := utils.NewUIDGenerator()
	out := make([]types.Ingredient, 0, len(resp.Ingredients))
	for _, d := range resp.Ingredients {
		name := strings.TrimSpace(d.Name)
		if name == "" {
			continue
		}
		out = append(out, types.Ingredient{
			ID:                 gen.Generate(name),
			Name:               name,
			PossibleAlternates: trimList(d.PossibleAlternates),
		})
	}

	s.detectCache.Add(digest, cloneIngredients(out))
	return out, nil
}

type suggestedRecipe struct {
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	PrepTime     string   `json:"prep_time"`
	Difficulty   string   `json:"difficulty"`
	Ingredients  []string `json:"ingredients"`
	Instructions []string `json:"instructions"`
}

type suggestResponse struct {
	Recipes []suggestedRecipe `json:"recipes"`
}

type suggestInput struct {
	Ingredients   []string `json:"ingredients"`
	ExcludeTitles []string `json:"exclude_titles,omitempty"`
}

// SuggestRecipes asks the model for recipes from the given ingredient
// names. excludeTitles is an advisory de-duplication hint; it is passed to
// the model but not enforced locally.
func (s *Service) SuggestRecipes(ctx context.Context, names, excludeTitles []string) ([]types.Recipe, error) {
	names = trimList(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("chef: no ingredients to cook with")
	}

	p, err := suggestPrompt(len(excludeTitles) > 0)
	if err != nil {
		return nil, fmt.Errorf("chef: build suggest prompt: %w", err)
	}

	input := suggestInput{Ingredients: names, ExcludeTitles: trimList(excludeTitles)}
	raw, err := s.cli.GenerateJSON(llm.WithOp(ctx, "suggest"), p, input)
	if err != nil {
		return nil, fmt.Errorf("chef: suggest recipes: %w", err)
	}

	var resp suggestResponse
	if err := jsonutil.UnmarshalRaw(raw, &resp); err != nil {
		return nil, fmt.Errorf("chef: parse suggest response: %w", err)
	}

	gen := utils.NewUIDGenerator()
	out := make([]types.Recipe, 0, len(resp.Recipes))
	for _, r := range resp.Recipes {
		title := strings.TrimSpace(r.Title)
		if title == "" {
			continue
		}
		out = append(out, types.Recipe{
			ID:           gen.Generate(title),
			Title:        title,
			Description:  strings.TrimSpace(r.Description),
			PrepTime:     strings.TrimSpace(r.PrepTime),
			Difficulty:   types.NormalizeDifficulty(r.Difficulty),
			Ingredients:  trimList(r.Ingredients),
			Instructions: trimList(r.Instructions),
		})
	}
	return out, nil
}

func imageSetDigest(images []types.CapturedImage) string {
	h := sha256.New()
	for _, img := range images {
		_, _ = h.Write([]byte(img.MIMEType))
		_, _ = h.Write(img.Data)
		_, _ = h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}

func cloneIngredients(in []types.Ingredient) []types.Ingredient {
	out := make([]types.Ingredient, len(in))
	copy(out, in)
	for i := range out {
		out[i].PossibleAlternates = append([]string(nil), out[i].PossibleAlternates...)
	}
	return out
}

func trimList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}
