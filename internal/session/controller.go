// Package session owns the per-session application state machine:
// Idle -> Analyzing -> Editing -> Generating -> Results, with rollback on
// failure and a manual reset back to Idle.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"fridgechef/internal/types"
	"fridgechef/internal/utils"
)

// MaxImages caps the capture list. The client hides capture controls at the
// cap; the controller enforces it silently by truncating.
const MaxImages = 10

// DefaultIngredientName is used for manually added entries until renamed.
const DefaultIngredientName = "New ingredient"

var (
	ErrInvalidPhase      = errors.New("session: operation not valid in current phase")
	ErrBusy              = errors.New("session: request already in flight")
	ErrImageOutOfRange   = errors.New("session: image index out of range")
	ErrUnknownIngredient = errors.New("session: unknown ingredient")
)

// Fixed user-facing notices; every remote failure maps to one of these.
const (
	NoticeImageFailed      = "Something went wrong while processing your photos. Please try again."
	NoticeAnalysisFailed   = "We couldn't analyze your photos. Please try again."
	NoticeGenerationFailed = "We couldn't come up with recipes. Please try again."
)

// Kitchen is the AI collaborator the controller awaits on its two
// suspension points. *chef.Service satisfies it.
type Kitchen interface {
	DetectIngredients(ctx context.Context, images []types.CapturedImage) ([]types.Ingredient, error)
	SuggestRecipes(ctx context.Context, names, excludeTitles []string) ([]types.Recipe, error)
}

// Event is published to subscribers on every phase change or notice.
type Event struct {
	Phase  types.Phase `json:"phase"`
	Notice string      `json:"notice,omitempty"`
}

// Snapshot is a deep-copied view of the controller state.
type Snapshot struct {
	ID          string                `json:"id"`
	Phase       types.Phase           `json:"phase"`
	Images      []types.CapturedImage `json:"images"`
	Ingredients []types.Ingredient    `json:"ingredients"`
	Recipes     []types.Recipe        `json:"recipes"`
	Notice      string                `json:"notice,omitempty"`
}

// Controller is the application state controller for one session. All
// mutation goes through it; the two AI calls run with the lock released
// while the transient phase blocks competing transitions.
type Controller struct {
	id      string
	kitchen Kitchen

	mu          sync.Mutex
	phase       types.Phase
	images      []types.CapturedImage
	ingredients []types.Ingredient
	recipes     []types.Recipe
	notice      string
	idGen       *utils.UIDGenerator

	subMu sync.Mutex
	subs  map[chan Event]struct{}
}

func NewController(id string, kitchen Kitchen) *Controller {
	return &Controller{
		id:      id,
		kitchen: kitchen,
		phase:   types.PhaseIdle,
		idGen:   utils.NewUIDGenerator(),
		subs:    make(map[chan Event]struct{}),
	}
}

func (c *Controller) ID() string { return c.id }

// Phase returns the current phase without copying the rest of the state.
func (c *Controller) Phase() types.Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Snapshot returns a deep copy of the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	images := make([]types.CapturedImage, len(c.images))
	copy(images, c.images)
	ingredients := make([]types.Ingredient, len(c.ingredients))
	copy(ingredients, c.ingredients)
	for i := range ingredients {
		ingredients[i].PossibleAlternates = append([]string(nil), ingredients[i].PossibleAlternates...)
	}
	recipes := make([]types.Recipe, len(c.recipes))
	copy(recipes, c.recipes)
	for i := range recipes {
		recipes[i].Ingredients = append([]string(nil), recipes[i].Ingredients...)
		recipes[i].Instructions = append([]string(nil), recipes[i].Instructions...)
	}
	return Snapshot{
		ID:          c.id,
		Phase:       c.phase,
		Images:      images,
		Ingredients: ingredients,
		Recipes:     recipes,
		Notice:      c.notice,
	}
}

// Restore loads a previously persisted snapshot. A snapshot saved mid-flight
// is normalized back to its rollback phase since the request did not survive
// the restart.
func (c *Controller) Restore(snap Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()

	phase := snap.Phase
	switch {
	case phase == types.PhaseAnalyzing:
		phase = types.PhaseIdle
	case phase == types.PhaseGenerating:
		phase = types.PhaseEditing
	case !phase.Valid():
		phase = types.PhaseIdle
	}
	c.phase = phase
	c.images = append([]types.CapturedImage(nil), snap.Images...)
	c.ingredients = append([]types.Ingredient(nil), snap.Ingredients...)
	c.recipes = append([]types.Recipe(nil), snap.Recipes...)
	c.notice = snap.Notice

	ids := make([]string, 0, len(c.ingredients)+len(c.recipes))
	for _, ing := range c.ingredients {
		ids = append(ids, ing.ID)
	}
	for _, r := range c.recipes {
		ids = append(ids, r.ID)
	}
	c.idGen = utils.NewUIDGenerator(ids...)
}

// AddImages appends payloads to the capture list up to the cap. Extra
// payloads beyond the cap are silently dropped. Valid only while Idle.
func (c *Controller) AddImages(payloads []types.CapturedImage) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePhaseLocked(types.PhaseIdle); err != nil {
		return err
	}
	for _, p := range payloads {
		if len(c.images) >= MaxImages {
			break
		}
		if len(p.Data) == 0 && p.ObjectKey == "" {
			continue
		}
		c.images = append(c.images, p)
	}
	return nil
}

// RemoveImage removes one entry by index. Valid only pre-analysis.
func (c *Controller) RemoveImage(index int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePhaseLocked(types.PhaseIdle); err != nil {
		return err
	}
	if index < 0 || index >= len(c.images) {
		return ErrImageOutOfRange
	}
	c.images = append(c.images[:index], c.images[index+1:]...)
	return nil
}

// StartAnalysis transitions Idle -> Analyzing, awaits the detection call,
// and lands in Editing on success or rolls back to Idle on failure with the
// capture list untouched. With an empty capture list it is a no-op.
func (c *Controller) StartAnalysis(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requirePhaseLocked(types.PhaseIdle); err != nil {
		c.mu.Unlock()
		return err
	}
	if len(c.images) == 0 {
		c.mu.Unlock()
		return nil
	}
	images := make([]types.CapturedImage, len(c.images))
	copy(images, c.images)
	c.phase = types.PhaseAnalyzing
	c.notice = ""
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseAnalyzing})

	ingredients, err := c.kitchen.DetectIngredients(ctx, images)

	c.mu.Lock()
	if err != nil {
		c.phase = types.PhaseIdle
		c.notice = NoticeAnalysisFailed
		c.mu.Unlock()
		c.publish(Event{Phase: types.PhaseIdle, Notice: NoticeAnalysisFailed})
		return fmt.Errorf("session: analysis failed: %w", err)
	}
	c.ingredients = ingredients
	ids := make([]string, 0, len(ingredients))
	for _, ing := range ingredients {
		ids = append(ids, ing.ID)
	}
	c.idGen = utils.NewUIDGenerator(ids...)
	c.phase = types.PhaseEditing
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseEditing})
	return nil
}

// AddIngredient appends a placeholder entry for the user to rename.
func (c *Controller) AddIngredient() (types.Ingredient, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePhaseLocked(types.PhaseEditing); err != nil {
		return types.Ingredient{}, err
	}
	ing := types.Ingredient{
		ID:   c.idGen.Generate(DefaultIngredientName),
		Name: DefaultIngredientName,
	}
	c.ingredients = append(c.ingredients, ing)
	return ing, nil
}

// RenameIngredient sets a new display name.
func (c *Controller) RenameIngredient(id, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("session: ingredient name is empty")
	}
	return c.editIngredient(id, func(ing *types.Ingredient) {
		ing.Name = name
	})
}

// AcceptAlternate replaces the ingredient's name with the chosen alternate.
// Duplicate names across ingredients are allowed; the edit list is the
// user's to curate.
func (c *Controller) AcceptAlternate(id, altName string) error {
	altName = strings.TrimSpace(altName)
	if altName == "" {
		return fmt.Errorf("session: alternate name is empty")
	}
	return c.editIngredient(id, func(ing *types.Ingredient) {
		ing.Name = altName
	})
}

// RemoveIngredient deletes one entry by ID.
func (c *Controller) RemoveIngredient(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePhaseLocked(types.PhaseEditing); err != nil {
		return err
	}
	for i, ing := range c.ingredients {
		if ing.ID == id {
			c.ingredients = append(c.ingredients[:i], c.ingredients[i+1:]...)
			return nil
		}
	}
	return ErrUnknownIngredient
}

func (c *Controller) editIngredient(id string, edit func(*types.Ingredient)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.requirePhaseLocked(types.PhaseEditing); err != nil {
		return err
	}
	for i := range c.ingredients {
		if c.ingredients[i].ID == id {
			edit(&c.ingredients[i])
			return nil
		}
	}
	return ErrUnknownIngredient
}

// GenerateRecipes transitions Editing -> Generating, awaits the suggestion
// call, and lands in Results on success or rolls back to Editing on failure.
func (c *Controller) GenerateRecipes(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requirePhaseLocked(types.PhaseEditing); err != nil {
		c.mu.Unlock()
		return err
	}
	names := c.ingredientNamesLocked()
	c.phase = types.PhaseGenerating
	c.notice = ""
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseGenerating})

	recipes, err := c.kitchen.SuggestRecipes(ctx, names, nil)

	c.mu.Lock()
	if err != nil {
		c.phase = types.PhaseEditing
		c.notice = NoticeGenerationFailed
		c.mu.Unlock()
		c.publish(Event{Phase: types.PhaseEditing, Notice: NoticeGenerationFailed})
		return fmt.Errorf("session: generation failed: %w", err)
	}
	c.recipes = recipes
	c.phase = types.PhaseResults
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseResults})
	return nil
}

// RequestMoreRecipes transitions Results -> Generating and appends new
// suggestions, biasing the model away from titles already shown. On failure
// the existing results remain valid, so the phase returns to Results.
func (c *Controller) RequestMoreRecipes(ctx context.Context) error {
	c.mu.Lock()
	if err := c.requirePhaseLocked(types.PhaseResults); err != nil {
		c.mu.Unlock()
		return err
	}
	names := c.ingredientNamesLocked()
	exclude := make([]string, 0, len(c.recipes))
	for _, r := range c.recipes {
		exclude = append(exclude, r.Title)
	}
	c.phase = types.PhaseGenerating
	c.notice = ""
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseGenerating})

	recipes, err := c.kitchen.SuggestRecipes(ctx, names, exclude)

	c.mu.Lock()
	if err != nil {
		c.phase = types.PhaseResults
		c.notice = NoticeGenerationFailed
		c.mu.Unlock()
		c.publish(Event{Phase: types.PhaseResults, Notice: NoticeGenerationFailed})
		return fmt.Errorf("session: generation failed: %w", err)
	}
	c.recipes = append(c.recipes, recipes...)
	c.phase = types.PhaseResults
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseResults})
	return nil
}

// Reset clears all collected data and returns to Idle. An in-flight request
// must run to completion first.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.phase.Transient() {
		c.mu.Unlock()
		return ErrBusy
	}
	c.phase = types.PhaseIdle
	c.images = nil
	c.ingredients = nil
	c.recipes = nil
	c.notice = ""
	c.idGen = utils.NewUIDGenerator()
	c.mu.Unlock()
	c.publish(Event{Phase: types.PhaseIdle})
	return nil
}

func (c *Controller) ingredientNamesLocked() []string {
	names := make([]string, 0, len(c.ingredients))
	for _, ing := range c.ingredients {
		names = append(names, ing.Name)
	}
	return names
}

func (c *Controller) requirePhaseLocked(want types.Phase) error {
	if c.phase == want {
		return nil
	}
	if c.phase.Transient() {
		return ErrBusy
	}
	return ErrInvalidPhase
}
