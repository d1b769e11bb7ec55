package types

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Validation errors
var (
	ErrEmptyID       = errors.New("id cannot be empty")
	ErrEmptyPlatform = errors.New("platform cannot be empty")
	ErrEmptyType     = errors.New("object_type cannot be empty")
	ErrEmptyContent  = errors.New("content cannot be empty")
	ErrEmptyParentID = errors.New("parent_object_id cannot be empty")
)

// Actor role keys used in CanonicalObject.Actors.
const (
	RoleCreatedBy    = "created_by"
	RoleUpdatedBy    = "updated_by"
	RoleAssignee     = "assignee"
	RoleParticipants = "participants"
)

// Well-known property keys.
const (
	PropertyProjectID       = "project_id"
	PropertyKeywords        = "keywords"
	PropertyStatus          = "status"
	PropertyMatchConfidence = "match_confidence"
)

// Visibility controls who may see an object. Enforcement is an upstream
// concern; the value is carried through unchanged.
type Visibility string

const (
	VisibilityPublic   Visibility = "public"
	VisibilityPrivate  Visibility = "private"
	VisibilityInternal Visibility = "internal"
)

// CanonicalObject is the normalized representation of one source-platform
// record. It is created by ingestion and mutated only by upstream re-sync
// and by match persistence appending to Relations.
type CanonicalObject struct {
	ID         string              `json:"id" mapstructure:"id"`
	Platform   string              `json:"platform" mapstructure:"platform"`
	ObjectType string              `json:"object_type" mapstructure:"object_type"`
	Title      string              `json:"title,omitempty" mapstructure:"title"`
	Body       string              `json:"body,omitempty" mapstructure:"body"`

	// Actors maps a role (created_by, assignee, participants, ...) to one
	// or more identities.
	Actors map[string][]string `json:"actors,omitempty" mapstructure:"actors"`

	CreatedAt time.Time  `json:"created_at" mapstructure:"created_at"`
	UpdatedAt time.Time  `json:"updated_at" mapstructure:"updated_at"`
	ClosedAt  *time.Time `json:"closed_at,omitempty" mapstructure:"closed_at"`

	// Relations maps a relation name to target object ids. Populated by
	// upstream ingestion or by match persistence.
	Relations map[string][]string `json:"relations,omitempty" mapstructure:"relations"`

	// Properties holds free-form typed metadata such as status or keywords.
	Properties map[string]interface{} `json:"properties,omitempty" mapstructure:"properties"`

	ContentHash string     `json:"content_hash,omitempty" mapstructure:"content_hash"`
	Visibility  Visibility `json:"visibility,omitempty" mapstructure:"visibility"`
}

// ComposeID builds the stable object id from platform, workspace, object
// type and the platform-local id. The id is globally unique and immutable
// after creation.
func ComposeID(platform, workspace, objectType, localID string) string {
	return fmt.Sprintf("%s:%s:%s:%s", platform, workspace, objectType, localID)
}

// Validate checks if the CanonicalObject has all required fields set.
func (o *CanonicalObject) Validate() error {
	if o.ID == "" {
		return ErrEmptyID
	}
	if o.Platform == "" {
		return ErrEmptyPlatform
	}
	if o.ObjectType == "" {
		return ErrEmptyType
	}
	return nil
}

// Keywords returns the keyword list stored in Properties, or nil when the
// property is absent. Both []string and []interface{} encodings are
// accepted since objects may round-trip through JSON.
func (o *CanonicalObject) Keywords() []string {
	raw, ok := o.Properties[PropertyKeywords]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// SetKeywords stores the keyword list in Properties.
func (o *CanonicalObject) SetKeywords(keywords []string) {
	if o.Properties == nil {
		o.Properties = make(map[string]interface{})
	}
	o.Properties[PropertyKeywords] = keywords
}

// ProjectID returns the project_id property, or "" when absent.
func (o *CanonicalObject) ProjectID() string {
	if s, ok := o.Properties[PropertyProjectID].(string); ok {
		return s
	}
	return ""
}

// ComputeContentHash derives the duplicate-detection hash from the
// normalized title, body and keyword set. Keyword order does not affect
// the result.
func (o *CanonicalObject) ComputeContentHash() string {
	keywords := append([]string(nil), o.Keywords()...)
	sort.Strings(keywords)

	var b strings.Builder
	b.WriteString(normalizeForHash(o.Title))
	b.WriteByte('\n')
	b.WriteString(normalizeForHash(o.Body))
	b.WriteByte('\n')
	b.WriteString(strings.Join(keywords, ","))

	sum := sha256.Sum256([]byte(b.String()))
	return hex.EncodeToString(sum[:])
}

// normalizeForHash lowercases text and collapses whitespace so trivially
// reformatted copies hash identically.
func normalizeForHash(s string) string {
	return strings.Join(strings.Fields(strings.ToLower(s)), " ")
}

// MergeRelationTargets unions targetIDs into the named relation, keyed by
// target id so re-applying the same match never duplicates entries.
// Returns the number of targets actually added.
func (o *CanonicalObject) MergeRelationTargets(name string, targetIDs []string) int {
	if o.Relations == nil {
		o.Relations = make(map[string][]string)
	}
	existing := make(map[string]bool, len(o.Relations[name]))
	for _, id := range o.Relations[name] {
		existing[id] = true
	}
	added := 0
	for _, id := range targetIDs {
		if id == "" || existing[id] {
			continue
		}
		o.Relations[name] = append(o.Relations[name], id)
		existing[id] = true
		added++
	}
	return added
}
