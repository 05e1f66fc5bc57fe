package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Laisky/errors/v2"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/Laisky/openrouter-mcp/catalog"
	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/common/metrics"
)

// SearchModelsArgs are the arguments of the search_models tool. All fields
// are optional; an empty call returns the first page of the whole catalog.
type SearchModelsArgs struct {
	NameLike         string   `json:"name_like,omitempty" jsonschema_description:"Case-insensitive substring matched against model name, id and provider"`
	Company          string   `json:"company,omitempty" jsonschema_description:"Provider slug, e.g. openai or anthropic"`
	InputModality    string   `json:"input_modality,omitempty" jsonschema_description:"Required input modality, e.g. text or image"`
	OutputModality   string   `json:"output_modality,omitempty" jsonschema_description:"Required output modality, e.g. text"`
	IsFree           *bool    `json:"is_free,omitempty" jsonschema_description:"Only models whose pricing components are all zero (true) or not (false)"`
	MinContextLength int      `json:"min_context_length,omitempty" jsonschema_description:"Minimum context window size in tokens"`
	MaxContextLength int      `json:"max_context_length,omitempty" jsonschema_description:"Maximum context window size in tokens"`
	MaxPromptPrice   *float64 `json:"max_prompt_price,omitempty" jsonschema_description:"Maximum prompt price per token in USD"`
	SortBy           string   `json:"sort_by,omitempty" jsonschema_description:"Sort key: name, context_length, prompt_price or created"`
	SortOrder        string   `json:"sort_order,omitempty" jsonschema_description:"Sort order: asc or desc"`
	Offset           int      `json:"offset,omitempty" jsonschema_description:"Number of matching records to skip"`
	Limit            int      `json:"limit,omitempty" jsonschema_description:"Maximum number of records to return"`
}

// RebuildDatabaseArgs are the arguments of the rebuild_database_tool tool.
type RebuildDatabaseArgs struct {
	Wait *bool `json:"wait,omitempty" jsonschema_description:"Wait for the rebuild to complete before returning (default true)"`
}

type searchModelsResult struct {
	Freshness string                `json:"freshness"`
	FetchedAt time.Time             `json:"fetched_at"`
	Total     int                   `json:"total"`
	Offset    int                   `json:"offset"`
	Limit     int                   `json:"limit"`
	Records   []catalog.ModelRecord `json:"records"`
}

type rebuildDatabaseResult struct {
	Status    string    `json:"status"`
	FetchedAt time.Time `json:"fetched_at,omitempty"`
	Records   int       `json:"records,omitempty"`
}

func (s *Server) addCatalogTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name: "search_models",
		Description: "Search the mirrored OpenRouter model catalog with filters for provider, " +
			"modality, pricing and context length, plus sorting and pagination.",
	}, s.handleSearchModels)

	mcp.AddTool(s.server, &mcp.Tool{
		Name: "rebuild_database_tool",
		Description: "Force a refresh of the model catalog from the upstream OpenRouter API. " +
			"Concurrent rebuilds are coalesced into a single upstream fetch.",
	}, s.handleRebuildDatabase)
}

func (s *Server) handleSearchModels(ctx context.Context, req *mcp.CallToolRequest, args SearchModelsArgs) (*mcp.CallToolResult, any, error) {
	query := catalog.Query{
		NameLike:         args.NameLike,
		Company:          args.Company,
		InputModality:    args.InputModality,
		OutputModality:   args.OutputModality,
		IsFree:           args.IsFree,
		MinContextLength: args.MinContextLength,
		MaxContextLength: args.MaxContextLength,
		MaxPromptPrice:   args.MaxPromptPrice,
		SortBy:           args.SortBy,
		SortOrder:        args.SortOrder,
		Offset:           args.Offset,
		Limit:            args.Limit,
	}
	if query.Limit > config.MaxItemsPerPage {
		query.Limit = config.MaxItemsPerPage
	}
	state := s.refresher.EnsureFresh()
	snap := s.store.Current()

	start := time.Now()
	page, err := catalog.Search(snap, query)
	if err != nil {
		metrics.GlobalRecorder.RecordToolCall("search_models", false)
		return toolError(err), nil, nil
	}
	metrics.GlobalRecorder.RecordSearch(start, page.Total)
	metrics.GlobalRecorder.RecordToolCall("search_models", true)

	result := searchModelsResult{
		Freshness: string(state),
		FetchedAt: snap.FetchedAt,
		Total:     page.Total,
		Offset:    page.Offset,
		Limit:     page.Limit,
		Records:   page.Records,
	}
	return toolJSON(result)
}

func (s *Server) handleRebuildDatabase(ctx context.Context, req *mcp.CallToolRequest, args RebuildDatabaseArgs) (*mcp.CallToolResult, any, error) {
	wait := true
	if args.Wait != nil {
		wait = *args.Wait
	}

	if !wait {
		_, _ = s.refresher.Rebuild(ctx, false)
		metrics.GlobalRecorder.RecordToolCall("rebuild_database_tool", true)
		return toolJSON(rebuildDatabaseResult{Status: "rebuild started"})
	}

	waitCtx, cancel := context.WithTimeout(ctx, config.RebuildWaitTimeout)
	defer cancel()

	result, err := s.refresher.Rebuild(waitCtx, true)
	if err != nil {
		metrics.GlobalRecorder.RecordToolCall("rebuild_database_tool", false)
		if errors.Is(err, catalog.ErrRebuildTimeout) {
			return toolError(errors.Wrap(err, "rebuild is still running upstream")), nil, nil
		}
		return toolError(errors.Wrap(err, "rebuild catalog")), nil, nil
	}

	metrics.GlobalRecorder.RecordToolCall("rebuild_database_tool", true)
	return toolJSON(rebuildDatabaseResult{
		Status:    "ok",
		FetchedAt: result.FetchedAt,
		Records:   result.Records,
	})
}

// toolJSON wraps a value into a successful text result.
func toolJSON(v any) (*mcp.CallToolResult, any, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, nil, errors.Wrap(err, "marshal tool result")
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
	}, nil, nil
}

// toolError wraps an error into a tool-level error result so MCP clients
// receive it as tool output instead of a protocol failure.
func toolError(err error) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: fmt.Sprintf("Error: %v", err)}},
		IsError: true,
	}
}
