package catalog

import (
	"slices"
	"sort"
	"strings"
)

// Sort keys accepted by the search engine.
const (
	SortByName          = "name"
	SortByContextLength = "context_length"
	SortByPromptPrice   = "prompt_price"
	SortByCreated       = "created"
)

const (
	SortOrderAsc  = "asc"
	SortOrderDesc = "desc"
)

// Query captures the filter, sort and pagination criteria of one search.
// The zero value matches every record with default ordering.
type Query struct {
	// NameLike is a case-insensitive substring match against name, id and
	// provider.
	NameLike string `json:"name_like,omitempty"`
	// Company filters by the provider prefix of the model id.
	Company          string   `json:"company,omitempty"`
	InputModality    string   `json:"input_modality,omitempty"`
	OutputModality   string   `json:"output_modality,omitempty"`
	IsFree           *bool    `json:"is_free,omitempty"`
	MinContextLength int      `json:"min_context_length,omitempty"`
	MaxContextLength int      `json:"max_context_length,omitempty"`
	MaxPromptPrice   *float64 `json:"max_prompt_price,omitempty"`
	SortBy           string   `json:"sort_by,omitempty"`
	SortOrder        string   `json:"sort_order,omitempty"`
	Offset           int      `json:"offset,omitempty"`
	Limit            int      `json:"limit,omitempty"`
}

// ResultPage is one page of a deterministic, fully ordered result set.
type ResultPage struct {
	Total   int           `json:"total"`
	Offset  int           `json:"offset"`
	Limit   int           `json:"limit"`
	Records []ModelRecord `json:"records"`
}

var validSortKeys = map[string]bool{
	SortByName:          true,
	SortByContextLength: true,
	SortByPromptPrice:   true,
	SortByCreated:       true,
}

// Validate rejects malformed criteria before any filtering happens, so
// callers never mistake an incomplete filter for an empty result.
func (q *Query) Validate() error {
	if q.SortBy != "" && !validSortKeys[q.SortBy] {
		return NewValidationError("sort_by", "must be one of name, context_length, prompt_price, created")
	}
	if q.SortOrder != "" && q.SortOrder != SortOrderAsc && q.SortOrder != SortOrderDesc {
		return NewValidationError("sort_order", "must be asc or desc")
	}
	if q.Offset < 0 {
		return NewValidationError("offset", "must not be negative")
	}
	if q.Limit < 0 {
		return NewValidationError("limit", "must not be negative")
	}
	if q.MinContextLength < 0 {
		return NewValidationError("min_context_length", "must not be negative")
	}
	if q.MaxContextLength < 0 {
		return NewValidationError("max_context_length", "must not be negative")
	}
	if q.MaxContextLength > 0 && q.MinContextLength > q.MaxContextLength {
		return NewValidationError("min_context_length", "must not exceed max_context_length")
	}
	if q.MaxPromptPrice != nil && *q.MaxPromptPrice < 0 {
		return NewValidationError("max_prompt_price", "must not be negative")
	}
	return nil
}

// Search evaluates the query against the snapshot. It is a pure function of
// (snapshot, query): an empty snapshot or an out-of-range offset yields an
// empty page, never an error. Ordering is deterministic for a fixed
// snapshot and query; ties are broken by model id so pagination is stable
// across repeated calls.
func Search(snap *Snapshot, q Query) (*ResultPage, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	limit := q.Limit
	if limit == 0 {
		limit = 50
	}

	var matched []ModelRecord
	if snap != nil {
		for _, rec := range snap.Records {
			if q.matches(&rec) {
				matched = append(matched, rec)
			}
		}
	}

	sortRecords(matched, q.SortBy, q.SortOrder)

	page := &ResultPage{
		Total:   len(matched),
		Offset:  q.Offset,
		Limit:   limit,
		Records: []ModelRecord{},
	}
	if q.Offset < len(matched) {
		end := q.Offset + limit
		if end > len(matched) {
			end = len(matched)
		}
		page.Records = matched[q.Offset:end]
	}
	return page, nil
}

func (q *Query) matches(rec *ModelRecord) bool {
	if q.Company != "" && !strings.EqualFold(rec.Provider, q.Company) {
		return false
	}
	if q.NameLike != "" {
		needle := strings.ToLower(q.NameLike)
		if !strings.Contains(strings.ToLower(rec.Name), needle) &&
			!strings.Contains(strings.ToLower(rec.ID), needle) &&
			!strings.Contains(strings.ToLower(rec.Provider), needle) {
			return false
		}
	}
	if q.InputModality != "" && !containsFold(rec.Architecture.InputModalities, q.InputModality) {
		return false
	}
	if q.OutputModality != "" && !containsFold(rec.Architecture.OutputModalities, q.OutputModality) {
		return false
	}
	if q.IsFree != nil && rec.Pricing.IsFree() != *q.IsFree {
		return false
	}
	if q.MinContextLength > 0 && rec.ContextLength < q.MinContextLength {
		return false
	}
	if q.MaxContextLength > 0 && rec.ContextLength > q.MaxContextLength {
		return false
	}
	if q.MaxPromptPrice != nil && rec.Pricing.Prompt > *q.MaxPromptPrice {
		return false
	}
	return true
}

func containsFold(haystack []string, needle string) bool {
	return slices.ContainsFunc(haystack, func(s string) bool {
		return strings.EqualFold(s, needle)
	})
}

func sortRecords(records []ModelRecord, sortBy, sortOrder string) {
	desc := sortOrder == SortOrderDesc

	less := func(a, b *ModelRecord) bool {
		switch sortBy {
		case SortByContextLength:
			if a.ContextLength != b.ContextLength {
				return a.ContextLength < b.ContextLength
			}
		case SortByPromptPrice:
			if a.Pricing.Prompt != b.Pricing.Prompt {
				return a.Pricing.Prompt < b.Pricing.Prompt
			}
		case SortByCreated:
			if a.Created != b.Created {
				return a.Created < b.Created
			}
		default: // SortByName or unset
			an, bn := strings.ToLower(a.Name), strings.ToLower(b.Name)
			if an != bn {
				return an < bn
			}
		}
		// Tie-break by id keeps pagination stable.
		return a.ID < b.ID
	}

	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})
}
