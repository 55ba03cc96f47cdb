package pack

import (
	"fmt"
	"sort"
	"strings"
)

// Registry is the process-wide pack catalog. It is built once at startup,
// validated, and never mutated afterwards, so unbounded concurrent reads
// need no locking. Tests construct their own registries.
type Registry struct {
	packs  []*Pack
	byID   map[string]*Pack
	byRule map[string]string // rule id -> pack id, for duplicate detection
}

// NewRegistry builds a registry from the given packs. Duplicate pack ids or
// duplicate rule ids are a startup-fatal error: rule ids must be globally
// unique and stable because allowlists reference them.
func NewRegistry(packs ...*Pack) (*Registry, error) {
	r := &Registry{
		byID:   make(map[string]*Pack, len(packs)),
		byRule: make(map[string]string),
	}
	for _, p := range packs {
		if p.ID == "" {
			return nil, fmt.Errorf("pack %q has no id", p.Name)
		}
		if _, dup := r.byID[p.ID]; dup {
			return nil, fmt.Errorf("duplicate pack id %q", p.ID)
		}
		seen := make(map[string]bool, len(p.DestructivePatterns))
		for _, pat := range p.DestructivePatterns {
			id := p.RuleID(pat.Name)
			if seen[pat.Name] {
				return nil, fmt.Errorf("duplicate rule id %q in pack %q", id, p.ID)
			}
			if owner, dup := r.byRule[id]; dup {
				return nil, fmt.Errorf("rule id %q declared by both %q and %q", id, owner, p.ID)
			}
			if pat.Reason == "" {
				return nil, fmt.Errorf("rule %q has no reason", id)
			}
			seen[pat.Name] = true
			r.byRule[id] = p.ID
		}
		r.byID[p.ID] = p
		r.packs = append(r.packs, p)
	}
	return r, nil
}

// MustRegistry is NewRegistry for the builtin catalog, where a duplicate id
// is a programming error.
func MustRegistry(packs ...*Pack) *Registry {
	r, err := NewRegistry(packs...)
	if err != nil {
		panic(err)
	}
	return r
}

// Packs returns the registered packs in declaration order.
func (r *Registry) Packs() []*Pack {
	return r.packs
}

// Pack returns the pack with the given id, or nil.
func (r *Registry) Pack(id string) *Pack {
	return r.byID[id]
}

// RuleIDs returns every registered rule id, sorted. Used by diagnostics and
// by tests asserting id stability.
func (r *Registry) RuleIDs() []string {
	ids := make([]string, 0, len(r.byRule))
	for id := range r.byRule {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// MatchCommand evaluates the outer command text against every pack whose
// keyword set intersects it. Safe patterns are evaluated first and their
// spans recorded; a destructive match on an overlapping span is suppressed.
// Pure function of (registry, text).
func (r *Registry) MatchCommand(text string) []Match {
	var matches []Match
	for _, p := range r.packs {
		if !keywordHit(p.Keywords, text) {
			continue
		}
		matches = append(matches, matchPack(p, text)...)
	}
	return matches
}

func keywordHit(keywords []string, text string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func matchPack(p *Pack, text string) []Match {
	var safeSpans []Span
	for _, sp := range p.SafePatterns {
		for _, loc := range sp.Regex.FindAllStringIndex(text, -1) {
			safeSpans = append(safeSpans, Span{Start: loc[0], End: loc[1]})
		}
	}

	var matches []Match
	for _, pat := range p.DestructivePatterns {
		loc := pat.Regex.FindStringSubmatchIndex(text)
		if loc == nil {
			continue
		}
		span := Span{Start: loc[0], End: loc[1]}
		if suppressed(span, safeSpans) {
			continue
		}
		m := Match{
			RuleID:     p.RuleID(pat.Name),
			PackID:     p.ID,
			Severity:   pat.Severity,
			Reason:     pat.Reason,
			Suggestion: pat.Suggestion,
			Span:       span,
		}
		if d := pat.Derive; d != nil && d.Kind == DerivePath {
			if arg := captured(text, loc, d.Capture); arg != "" {
				m.RuleID, m.Severity, m.Dynamic = deriveRuleID(m.RuleID, m.Severity, ClassifyTarget(arg))
			}
		}
		matches = append(matches, m)
	}
	return matches
}

func suppressed(span Span, safe []Span) bool {
	for _, s := range safe {
		if span.Overlaps(s) {
			return true
		}
	}
	return false
}

func captured(text string, loc []int, group int) string {
	i := 2 * group
	if i+1 >= len(loc) || loc[i] < 0 {
		return ""
	}
	return text[loc[i]:loc[i+1]]
}
