package types

// Phase is the controller's UI state. Exactly one phase is active at a time;
// Analyzing and Generating are transient and always resolve to a successor.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseAnalyzing  Phase = "analyzing"
	PhaseEditing    Phase = "editing"
	PhaseGenerating Phase = "generating"
	PhaseResults    Phase = "results"
)

// Transient reports whether the phase has an outstanding AI request.
func (p Phase) Transient() bool {
	return p == PhaseAnalyzing || p == PhaseGenerating
}

// Valid reports whether p is a known phase value.
func (p Phase) Valid() bool {
	switch p {
	case PhaseIdle, PhaseAnalyzing, PhaseEditing, PhaseGenerating, PhaseResults:
		return true
	}
	return false
}
