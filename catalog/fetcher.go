package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Laisky/errors/v2"
)

// Fetcher wraps a single upstream catalog call. Implementations do not
// retry; retry policy lives in the Refresher.
type Fetcher interface {
	Fetch(ctx context.Context) ([]ModelRecord, error)
}

// HTTPFetcher fetches the OpenRouter-style model listing over HTTP.
type HTTPFetcher struct {
	url    string
	client *http.Client
}

// NewHTTPFetcher creates a fetcher for the given catalog endpoint. The
// client's timeout bounds the whole attempt.
func NewHTTPFetcher(url string, client *http.Client) *HTTPFetcher {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPFetcher{url: url, client: client}
}

// wire types mirror the upstream JSON; prices arrive as decimal strings.
type wireEnvelope struct {
	Data []wireModel `json:"data"`
}

type wireModel struct {
	ID                  string         `json:"id"`
	CanonicalSlug       string         `json:"canonical_slug"`
	HuggingFaceID       string         `json:"hugging_face_id"`
	Name                string         `json:"name"`
	Created             int64          `json:"created"`
	Description         string         `json:"description"`
	ContextLength       int            `json:"context_length"`
	Architecture        *Architecture  `json:"architecture"`
	Pricing             *wirePricing   `json:"pricing"`
	TopProvider         *TopProvider   `json:"top_provider"`
	PerRequestLimits    map[string]any `json:"per_request_limits"`
	SupportedParameters []string       `json:"supported_parameters"`
}

type wirePricing struct {
	Prompt            string `json:"prompt"`
	Completion        string `json:"completion"`
	Request           string `json:"request"`
	Image             string `json:"image"`
	WebSearch         string `json:"web_search"`
	InternalReasoning string `json:"internal_reasoning"`
	InputCacheRead    string `json:"input_cache_read"`
	InputCacheWrite   string `json:"input_cache_write"`
}

// Fetch performs one upstream call and returns the parsed model records.
func (f *HTTPFetcher) Fetch(ctx context.Context) ([]ModelRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return nil, errors.Wrap(err, "build catalog request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstream, "fetch catalog from %s: %v", f.url, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Wrapf(ErrUpstream, "fetch catalog from %s: unexpected status %d", f.url, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrapf(ErrUpstream, "read catalog response body: %v", err)
	}

	records, err := DecodeCatalog(body)
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DecodeCatalog parses the raw upstream payload into model records.
func DecodeCatalog(payload []byte) ([]ModelRecord, error) {
	var envelope wireEnvelope
	if err := json.Unmarshal(payload, &envelope); err != nil {
		return nil, errors.Wrapf(ErrUpstream, "decode catalog payload: %v", err)
	}

	records := make([]ModelRecord, 0, len(envelope.Data))
	for _, wm := range envelope.Data {
		if wm.ID == "" {
			continue
		}
		records = append(records, wm.toRecord())
	}
	return records, nil
}

func (wm wireModel) toRecord() ModelRecord {
	provider, model := SplitModelID(wm.ID)
	rec := ModelRecord{
		ID:                  wm.ID,
		Provider:            provider,
		Model:               model,
		CanonicalSlug:       wm.CanonicalSlug,
		HuggingFaceID:       wm.HuggingFaceID,
		Name:                wm.Name,
		Created:             wm.Created,
		Description:         wm.Description,
		ContextLength:       wm.ContextLength,
		TopProvider:         wm.TopProvider,
		SupportedParameters: wm.SupportedParameters,
	}
	if wm.Architecture != nil {
		rec.Architecture = *wm.Architecture
	}
	if wm.Pricing != nil {
		rec.Pricing = wm.Pricing.toPricing()
	}
	if len(wm.PerRequestLimits) > 0 {
		limits := make(map[string]string, len(wm.PerRequestLimits))
		for key, value := range wm.PerRequestLimits {
			limits[key] = stringifyLimit(value)
		}
		rec.PerRequestLimits = limits
	}
	return rec
}

func (wp *wirePricing) toPricing() Pricing {
	return Pricing{
		Prompt:            parsePrice(wp.Prompt),
		Completion:        parsePrice(wp.Completion),
		Request:           parsePrice(wp.Request),
		Image:             parsePrice(wp.Image),
		WebSearch:         parsePrice(wp.WebSearch),
		InternalReasoning: parsePrice(wp.InternalReasoning),
		InputCacheRead:    parsePrice(wp.InputCacheRead),
		InputCacheWrite:   parsePrice(wp.InputCacheWrite),
	}
}

// parsePrice tolerates empty and malformed price strings; the upstream
// occasionally sends "" for unpriced components.
func parsePrice(raw string) float64 {
	if raw == "" {
		return 0
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0
	}
	return price
}

func stringifyLimit(value any) string {
	switch v := value.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", v)
	}
}
