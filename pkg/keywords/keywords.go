// Package keywords derives normalized domain keyword sets from an object's
// title and body, and scores keyword-set overlap.
//
// Extraction is a pure function: lower-cased title+body are tested against
// a curated domain vocabulary, and structured identifier tokens such as
// "PROJ-123" are matched separately. The union of both is returned.
package keywords

import (
	"regexp"
	"sort"
	"strings"
)

// identifierPattern matches issue-tracker style codes such as PROJ-123 or
// API2-4711.
var identifierPattern = regexp.MustCompile(`\b[A-Z][A-Z0-9]+-[0-9]+\b`)

// DefaultVocabulary is the curated feature/term list for collaboration
// tooling. Callers with a different domain inject their own via New.
var DefaultVocabulary = []string{
	"api", "auth", "backlog", "billing", "blocker", "bug", "calendar",
	"chat", "ci", "dashboard", "deadline", "deploy", "design", "docs",
	"drive", "email", "epic", "escalation", "export", "gmail", "import",
	"incident", "integration", "jira", "kanban", "login", "meeting",
	"migration", "milestone", "notification", "oauth", "onboarding",
	"outage", "permission", "pipeline", "pricing", "release", "report",
	"retro", "review", "roadmap", "rollback", "search", "security",
	"slack", "sprint", "standup", "sync", "ticket", "timeline", "ui",
	"upgrade", "webhook", "workflow",
}

// Extractor tests text against a fixed vocabulary. The zero value is not
// usable; construct with New or Default.
type Extractor struct {
	vocabulary map[string]bool
}

// New creates an Extractor over the given vocabulary. Terms are matched
// case-insensitively as whole words.
func New(vocabulary []string) *Extractor {
	vocab := make(map[string]bool, len(vocabulary))
	for _, term := range vocabulary {
		vocab[strings.ToLower(term)] = true
	}
	return &Extractor{vocabulary: vocab}
}

// Default creates an Extractor over DefaultVocabulary.
func Default() *Extractor {
	return New(DefaultVocabulary)
}

// Extract returns the sorted, deduplicated keyword set for the given title
// and body: vocabulary hits plus identifier tokens. Empty input yields an
// empty set. Deterministic, no side effects.
func (e *Extractor) Extract(title, body string) []string {
	text := title + " " + body
	found := make(map[string]bool)

	for _, token := range tokenize(strings.ToLower(text)) {
		if e.vocabulary[token] {
			found[token] = true
		}
	}

	for _, code := range identifierPattern.FindAllString(text, -1) {
		found[code] = true
	}

	out := make([]string, 0, len(found))
	for kw := range found {
		out = append(out, kw)
	}
	sort.Strings(out)
	return out
}

// tokenize splits lower-cased text into alphanumeric word tokens.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
}

// Overlap returns the Jaccard index |A∩B| / |A∪B| of two keyword sets.
// Symmetric; 0 when either set is empty. Duplicate entries count once.
func Overlap(a, b []string) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}

	setA := make(map[string]bool, len(a))
	for _, kw := range a {
		setA[kw] = true
	}
	setB := make(map[string]bool, len(b))
	for _, kw := range b {
		setB[kw] = true
	}

	intersection := 0
	for kw := range setA {
		if setB[kw] {
			intersection++
		}
	}

	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// Shared returns the sorted intersection of two keyword sets, used for
// relation score provenance.
func Shared(a, b []string) []string {
	setB := make(map[string]bool, len(b))
	for _, kw := range b {
		setB[kw] = true
	}

	seen := make(map[string]bool)
	var out []string
	for _, kw := range a {
		if setB[kw] && !seen[kw] {
			out = append(out, kw)
			seen[kw] = true
		}
	}
	sort.Strings(out)
	return out
}
