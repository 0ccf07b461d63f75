// File: internal/response/pagination.go
package response

import (
	"fmt"
	"net/url"
	"strconv"
)

// PaginationConfig holds pagination configuration
type PaginationConfig struct {
	MaxPageSize int
	PageParam   string
	SizeParam   string
}

// DefaultPaginationConfig returns default pagination configuration
func DefaultPaginationConfig() *PaginationConfig {
	return &PaginationConfig{
		MaxPageSize: 100,
		PageParam:   "page",
		SizeParam:   "limit",
	}
}

// PaginationParams represents pagination parameters. A zero Limit means unpaginated.
type PaginationParams struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// ParsePagination reads page and limit from the query string. Limits
// above the maximum are capped rather than rejected.
func ParsePagination(query url.Values, config *PaginationConfig) (PaginationParams, error) {
	if config == nil {
		config = DefaultPaginationConfig()
	}
	params := PaginationParams{}

	if pageStr := query.Get(config.PageParam); pageStr != "" {
		page, err := strconv.Atoi(pageStr)
		if err != nil {
			return params, fmt.Errorf("invalid %s parameter: %s", config.PageParam, pageStr)
		}
		if page < 1 {
			return params, fmt.Errorf("%s must be greater than 0", config.PageParam)
		}
		params.Page = page
	}

	if sizeStr := query.Get(config.SizeParam); sizeStr != "" {
		size, err := strconv.Atoi(sizeStr)
		if err != nil {
			return params, fmt.Errorf("invalid %s parameter: %s", config.SizeParam, sizeStr)
		}
		if size < 1 {
			return params, fmt.Errorf("%s must be greater than 0", config.SizeParam)
		}
		if size > config.MaxPageSize {
			size = config.MaxPageSize
		}
		params.Limit = size
	}

	return params, nil
}
