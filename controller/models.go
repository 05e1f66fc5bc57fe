package controller

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	gmw "github.com/Laisky/gin-middlewares/v7"
	"github.com/Laisky/zap"
	"github.com/gin-gonic/gin"

	"github.com/Laisky/openrouter-mcp/catalog"
	"github.com/Laisky/openrouter-mcp/common/config"
	"github.com/Laisky/openrouter-mcp/common/metrics"
)

// knownModelQueryKeys is the closed set of query parameters ListModels
// accepts. Anything else is rejected so a typo never silently matches
// the whole catalog.
var knownModelQueryKeys = map[string]bool{
	"name_like":          true,
	"company":            true,
	"input_modality":     true,
	"output_modality":    true,
	"is_free":            true,
	"min_context_length": true,
	"max_context_length": true,
	"max_prompt_price":   true,
	"sort_by":            true,
	"sort_order":         true,
	"offset":             true,
	"limit":              true,
}

// ListModels serves GET /models: filter, sort and paginate the current
// snapshot. A stale snapshot is still served; the refresher is probed so
// a background rebuild starts when needed.
func (s *Server) ListModels(c *gin.Context) {
	query, err := parseModelQuery(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}

	state := s.refresher.EnsureFresh()
	snap := s.store.Current()

	start := time.Now()
	page, err := catalog.Search(snap, *query)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": err.Error(),
		})
		return
	}
	metrics.GlobalRecorder.RecordSearch(start, page.Total)

	gmw.GetLogger(c).Debug("list models",
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Records)),
		zap.String("freshness", string(state)))

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "",
		"data": gin.H{
			"freshness":  string(state),
			"fetched_at": snap.FetchedAt.UTC().Format(time.RFC3339),
			"total":      page.Total,
			"offset":     page.Offset,
			"limit":      page.Limit,
			"records":    page.Records,
		},
	})
}

// GetModel serves GET /models/*id. Model ids contain a slash
// (provider/model), so the route uses a wildcard parameter.
func (s *Server) GetModel(c *gin.Context) {
	id := strings.TrimPrefix(c.Param("id"), "/")
	if id == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "model id is required",
		})
		return
	}

	s.refresher.EnsureFresh()
	snap := s.store.Current()
	for i := range snap.Records {
		if snap.Records[i].ID == id {
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "",
				"data":    snap.Records[i],
			})
			return
		}
	}

	c.JSON(http.StatusNotFound, gin.H{
		"success": false,
		"message": "model not found: " + id,
	})
}

func parseModelQuery(c *gin.Context) (*catalog.Query, error) {
	values := c.Request.URL.Query()
	for key := range values {
		if !knownModelQueryKeys[key] {
			return nil, catalog.NewValidationError(key, "unknown query parameter")
		}
	}

	query := &catalog.Query{
		NameLike:       values.Get("name_like"),
		Company:        values.Get("company"),
		InputModality:  values.Get("input_modality"),
		OutputModality: values.Get("output_modality"),
		SortBy:         values.Get("sort_by"),
		SortOrder:      values.Get("sort_order"),
		Limit:          config.DefaultItemsPerPage,
	}

	var err error
	if query.IsFree, err = parseOptionalBool(values.Get("is_free"), "is_free"); err != nil {
		return nil, err
	}
	if query.MinContextLength, err = parseOptionalInt(values.Get("min_context_length"), "min_context_length"); err != nil {
		return nil, err
	}
	if query.MaxContextLength, err = parseOptionalInt(values.Get("max_context_length"), "max_context_length"); err != nil {
		return nil, err
	}
	if query.MaxPromptPrice, err = parseOptionalFloat(values.Get("max_prompt_price"), "max_prompt_price"); err != nil {
		return nil, err
	}
	if query.Offset, err = parseOptionalInt(values.Get("offset"), "offset"); err != nil {
		return nil, err
	}
	if raw := values.Get("limit"); raw != "" {
		if query.Limit, err = parseOptionalInt(raw, "limit"); err != nil {
			return nil, err
		}
		if query.Limit > config.MaxItemsPerPage {
			query.Limit = config.MaxItemsPerPage
		}
	}

	return query, nil
}

func parseOptionalBool(raw, field string) (*bool, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return nil, catalog.NewValidationError(field, "must be a boolean")
	}
	return &v, nil
}

func parseOptionalInt(raw, field string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, catalog.NewValidationError(field, "must be an integer")
	}
	return v, nil
}

func parseOptionalFloat(raw, field string) (*float64, error) {
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, catalog.NewValidationError(field, "must be a number")
	}
	return &v, nil
}
