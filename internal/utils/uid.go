package utils

import (
	"fmt"
	"hash/fnv"
	"strings"
	"unicode"
)

// UIDGenerator creates stable-ish IDs from display names and resolves
// collisions. A generated ID shape is "<slug>-<hash>" (or "<slug>-<hash>-N"
// when the same name appears again).
type UIDGenerator struct {
	used    map[string]struct{}
	counter map[string]int
}

// NewUIDGenerator creates a generator with optional pre-reserved IDs.
func NewUIDGenerator(existing ...string) *UIDGenerator {
	g := &UIDGenerator{
		used:    make(map[string]struct{}, len(existing)+8),
		counter: make(map[string]int, len(existing)+8),
	}
	for _, id := range existing {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		g.used[id] = struct{}{}
	}
	return g
}

// Generate returns a unique ID derived from name.
func (g *UIDGenerator) Generate(name string) string {
	if g == nil {
		g = NewUIDGenerator()
	}
	base := baseUID(name)
	if _, ok := g.used[base]; !ok {
		g.used[base] = struct{}{}
		g.counter[base] = 1
		return base
	}
	n := g.counter[base]
	if n < 1 {
		n = 1
	}
	for {
		n++
		candidate := fmt.Sprintf("%s-%d", base, n)
		if _, exists := g.used[candidate]; exists {
			continue
		}
		g.used[candidate] = struct{}{}
		g.counter[base] = n
		return candidate
	}
}

func baseUID(name string) string {
	name = strings.TrimSpace(name)
	slug := slugify(name)
	if slug == "" {
		slug = "item"
	}
	h := fnv.New64a()
	_, _ = h.Write([]byte(name))
	return fmt.Sprintf("%s-%08x", slug, uint32(h.Sum64()&0xffffffff))
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return ""
	}
	var b strings.Builder
	lastDash := false
	for _, r := range s {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.Trim(b.String(), "-")
}
