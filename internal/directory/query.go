package directory

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
	"rwa-directory/project-portal/project-portal-backend/internal/projects"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
	MaxLimit     = 100
)

// Query is a validated directory request.
type Query struct {
	Filter projects.Filter
	Page   int
	Limit  int
}

// Offset is the number of rows before the page. ok is false when the page
// starts beyond any offset an int can hold; such a page is always empty.
func (q Query) Offset() (offset int, ok bool) {
	if q.Page < 1 || q.Limit < 1 {
		return 0, true
	}
	if q.Page-1 > math.MaxInt/q.Limit {
		return 0, false
	}
	return (q.Page - 1) * q.Limit, true
}

// ParseQuery reads page, limit, assetType, blockchain, minRoi and maxRoi.
// Absent values take their defaults; malformed ones are rejected.
func ParseQuery(values url.Values) (Query, error) {
	q := Query{Page: DefaultPage, Limit: DefaultLimit}

	var err error
	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil || q.Page < 1 {
			return Query{}, apperror.InvalidInput("invalid_page", "page must be a positive integer")
		}
	}
	if raw := strings.TrimSpace(values.Get("limit")); raw != "" {
		if q.Limit, err = strconv.Atoi(raw); err != nil || q.Limit < 1 || q.Limit > MaxLimit {
			return Query{}, apperror.InvalidInput("invalid_limit", "limit must be between 1 and 100")
		}
	}

	q.Filter.AssetType = exactOrAll(values.Get("assetType"), "all-types")
	q.Filter.Blockchain = exactOrAll(values.Get("blockchain"), "all-blockchains")

	if q.Filter.MinROI, err = roiBound(values.Get("minRoi")); err != nil {
		return Query{}, err
	}
	if q.Filter.MaxROI, err = roiBound(values.Get("maxRoi")); err != nil {
		return Query{}, err
	}
	if q.Filter.MinROI != nil && q.Filter.MaxROI != nil && *q.Filter.MinROI > *q.Filter.MaxROI {
		return Query{}, apperror.InvalidInput("invalid_roi_range", "minRoi must not exceed maxRoi")
	}

	return q, nil
}

// exactOrAll maps the "match everything" sentinels to the empty filter.
func exactOrAll(raw, sentinel string) string {
	v := strings.TrimSpace(raw)
	if v == "" || strings.EqualFold(v, "all") || strings.EqualFold(v, sentinel) {
		return ""
	}
	return v
}

func roiBound(raw string) (*float64, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil, apperror.InvalidInput("invalid_roi", "roi bounds must be numbers")
	}
	return &v, nil
}
