// Package vectorstore defines the narrow Vector Store Adapter interface the
// core consumes: upsert/query/delete of per-user dense vectors with metadata
// filters. internal/platform/qdrant is the HTTP implementation.
package vectorstore

import "context"

// ProfileNamespace is the vector store namespace holding resonance profile
// embeddings, one vector per user keyed by user id; RPB writes here and
// DFRE reads from here (spec §3 Resonance Profile, §4.4 stage 1).
const ProfileNamespace = "resonance_profiles"

// Metadata is the Vector Metadata record the spec's data model names (spec
// §3 "Vector Metadata (vector store side)"): the fields ANN filtering keys
// on, attached to every upserted vector alongside its dense values. AgeMin/
// AgeMax stay unset today — the relational User row carries no birth date
// or declared age range to source them from — but the fields are kept so a
// future age-range filter has somewhere to read from without reshaping this
// type (spec §3 "optional age range").
type Metadata struct {
	UserID           string
	Archetype        string
	Style            string
	City             string
	SubscriptionTier string
	LastActiveISO    string
	AgeMin           *int
	AgeMax           *int
}

// ToMap flattens Metadata into the generic payload shape the Store
// implementation persists, the way a typed row is flattened to columns.
func (m Metadata) ToMap() map[string]any {
	out := map[string]any{}
	if m.UserID != "" {
		out["userId"] = m.UserID
	}
	if m.Archetype != "" {
		out["archetype"] = m.Archetype
	}
	if m.Style != "" {
		out["style"] = m.Style
	}
	if m.City != "" {
		out["city"] = m.City
	}
	if m.SubscriptionTier != "" {
		out["subscriptionTier"] = m.SubscriptionTier
	}
	if m.LastActiveISO != "" {
		out["lastActiveISO"] = m.LastActiveISO
	}
	if m.AgeMin != nil {
		out["ageMin"] = *m.AgeMin
	}
	if m.AgeMax != nil {
		out["ageMax"] = *m.AgeMax
	}
	return out
}

// CandidateFilter is the typed shape of an ANN query's metadata filter,
// built directly from the Metadata fields above rather than handed to
// callers as an opaque map (spec §3 Vector Metadata, §6 "Filter DSL
// supports {field: {$ne: value}} negation"). Every field is optional and
// AND-composed; ExcludeUserID is the one negated ($ne) condition the core
// currently needs (DFRE stage 1 excludes the viewer from their own
// candidate query).
// Age range is deliberately absent from CandidateFilter: the relational
// User row carries no birth date or declared age, so no caller can ever
// populate an age bound today (see Metadata.AgeMin/AgeMax).
type CandidateFilter struct {
	ExcludeUserID    string
	Archetype        string
	Style            string
	City             string
	SubscriptionTier string
}

// ToMap renders the filter as the generic `{field: {$op: value}}` DSL the
// Store implementation's filter translator understands.
func (f CandidateFilter) ToMap() map[string]any {
	out := map[string]any{}
	if f.ExcludeUserID != "" {
		out["userId"] = map[string]any{"$ne": f.ExcludeUserID}
	}
	if f.Archetype != "" {
		out["archetype"] = map[string]any{"$eq": f.Archetype}
	}
	if f.Style != "" {
		out["style"] = map[string]any{"$eq": f.Style}
	}
	if f.City != "" {
		out["city"] = map[string]any{"$eq": f.City}
	}
	if f.SubscriptionTier != "" {
		out["subscriptionTier"] = map[string]any{"$eq": f.SubscriptionTier}
	}
	return out
}

type Vector struct {
	ID       string
	Values   []float32
	Metadata Metadata
}

type Match struct {
	ID    string
	Score float64
}

type Store interface {
	Upsert(ctx context.Context, namespace string, vectors []Vector) error
	// QueryMatches returns IDs with similarity scores (higher is better).
	QueryMatches(ctx context.Context, namespace string, q []float32, topK int, filter CandidateFilter) ([]Match, error)
	QueryIDs(ctx context.Context, namespace string, q []float32, topK int, filter CandidateFilter) ([]string, error)
	DeleteIDs(ctx context.Context, namespace string, ids []string) error
	// FetchVector returns the raw stored values for a single vector id, and
	// false if no such vector exists. DFRE's candidate-retrieval stage uses
	// this to look up the viewer's own vector before querying ANN (spec §9,
	// "vector retrieval self-query" open question).
	FetchVector(ctx context.Context, namespace, id string) ([]float32, bool, error)
}
