package catalog

import (
	"strings"
	"time"
)

// Architecture describes how a model consumes and produces data.
type Architecture struct {
	Modality         string   `json:"modality,omitempty"`
	Tokenizer        string   `json:"tokenizer,omitempty"`
	InstructType     string   `json:"instruct_type,omitempty"`
	InputModalities  []string `json:"input_modalities,omitempty"`
	OutputModalities []string `json:"output_modalities,omitempty"`
}

// Pricing holds per-token and per-request prices in USD. Upstream transmits
// these as decimal strings; they are parsed into floats at fetch time.
type Pricing struct {
	Prompt            float64 `json:"prompt"`
	Completion        float64 `json:"completion"`
	Request           float64 `json:"request"`
	Image             float64 `json:"image"`
	WebSearch         float64 `json:"web_search"`
	InternalReasoning float64 `json:"internal_reasoning"`
	InputCacheRead    float64 `json:"input_cache_read"`
	InputCacheWrite   float64 `json:"input_cache_write"`
}

// IsFree reports whether every pricing component is zero or absent.
func (p Pricing) IsFree() bool {
	return p.Prompt == 0 && p.Completion == 0 && p.Request == 0 && p.Image == 0 &&
		p.WebSearch == 0 && p.InternalReasoning == 0 &&
		p.InputCacheRead == 0 && p.InputCacheWrite == 0
}

// TopProvider carries the serving limits of the primary upstream provider.
type TopProvider struct {
	ContextLength       int  `json:"context_length,omitempty"`
	MaxCompletionTokens int  `json:"max_completion_tokens,omitempty"`
	IsModerated         bool `json:"is_moderated"`
}

// ModelRecord is an immutable catalog entry. Identity and equality are by
// the upstream identifier.
type ModelRecord struct {
	ID                  string            `json:"id"`
	Provider            string            `json:"provider,omitempty"`
	Model               string            `json:"model,omitempty"`
	CanonicalSlug       string            `json:"canonical_slug,omitempty"`
	HuggingFaceID       string            `json:"hugging_face_id,omitempty"`
	Name                string            `json:"name,omitempty"`
	Created             int64             `json:"created,omitempty"`
	Description         string            `json:"description,omitempty"`
	ContextLength       int               `json:"context_length,omitempty"`
	Architecture        Architecture      `json:"architecture"`
	Pricing             Pricing           `json:"pricing"`
	TopProvider         *TopProvider      `json:"top_provider,omitempty"`
	PerRequestLimits    map[string]string `json:"per_request_limits,omitempty"`
	SupportedParameters []string          `json:"supported_parameters,omitempty"`
}

// SplitModelID derives the provider and bare model name from a catalog
// identifier of the form "provider/model".
func SplitModelID(id string) (provider string, model string) {
	if idx := strings.Index(id, "/"); idx >= 0 {
		return id[:idx], id[idx+1:]
	}
	return "", id
}

// Snapshot is an immutable point-in-time collection of model records plus
// its creation timestamp. A new Snapshot fully replaces the old one; records
// are never mutated in place.
type Snapshot struct {
	Records   []ModelRecord `json:"records"`
	FetchedAt time.Time     `json:"fetched_at"`
}

// Empty reports whether the snapshot predates the first successful fetch.
func (s *Snapshot) Empty() bool {
	return s == nil || s.FetchedAt.IsZero()
}

// Age returns how old the snapshot is at the given instant. An empty
// snapshot is infinitely old.
func (s *Snapshot) Age(now time.Time) time.Duration {
	if s.Empty() {
		return time.Duration(1<<63 - 1)
	}
	return now.Sub(s.FetchedAt)
}

// Len returns the number of records.
func (s *Snapshot) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Records)
}
