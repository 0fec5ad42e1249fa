package gapy

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

const (
	gaPath  = "/data/ga"
	mcfPath = "/data/mcf"

	gaPrefix  = "ga:"
	mcfPrefix = "mcf:"
)

// Query holds the caller-facing report parameters. Metrics is required but
// deliberately unvalidated here: an empty metrics list is sent as-is and
// rejected by the backend. List fields accept nil for "not set".
type Query struct {
	IDs        List      `yaml:"ids" json:"ids"`
	StartDate  time.Time `yaml:"-" json:"-"`
	EndDate    time.Time `yaml:"-" json:"-"`
	Metrics    List      `yaml:"metrics" json:"metrics"`
	Dimensions List      `yaml:"dimensions,omitempty" json:"dimensions,omitempty"`
	Filters    List      `yaml:"filters,omitempty" json:"filters,omitempty"`
	Sort       List      `yaml:"sort,omitempty" json:"sort,omitempty"`
	MaxResults int       `yaml:"max_results,omitempty" json:"max_results,omitempty"`
	Segment    string    `yaml:"segment,omitempty" json:"segment,omitempty"`
}

// QueryClient runs report queries against the core reporting and
// multi-channel funnels endpoints. The two entry points differ only in the
// target endpoint and the namespace applied to metrics, dimensions,
// filters and sort.
type QueryClient struct {
	service *service
	hook    Hook
}

// GetGA runs a core reporting query.
func (q *QueryClient) GetGA(ctx context.Context, query Query) (*QueryResponse, error) {
	return q.get(ctx, gaPath, gaPrefix, query)
}

// GetMCF runs a multi-channel funnels query.
func (q *QueryClient) GetMCF(ctx context.Context, query Query) (*QueryResponse, error) {
	return q.get(ctx, mcfPath, mcfPrefix, query)
}

func (q *QueryClient) get(ctx context.Context, path, ns string, query Query) (*QueryResponse, error) {
	metrics := normalize(query.Metrics)
	dimensions := normalize(query.Dimensions)

	params := url.Values{}
	// Ids stay in the ga: namespace for both report families.
	params.Set("ids", joinPrefixed(normalize(query.IDs), gaPrefix))
	params.Set("start-date", formatDate(query.StartDate))
	params.Set("end-date", formatDate(query.EndDate))
	params.Set("metrics", joinPrefixed(metrics, ns))

	// Optional parameters are omitted entirely when empty; the API rejects
	// explicit empty values for them.
	setNonEmpty(params, "dimensions", joinPrefixed(dimensions, ns))
	setNonEmpty(params, "filters", joinPrefixed(normalize(query.Filters), ns))
	setNonEmpty(params, "sort", joinPrefixed(normalize(query.Sort), ns))
	setNonEmpty(params, "segment", query.Segment)
	if query.MaxResults > 0 {
		params.Set("max-results", strconv.Itoa(query.MaxResults))
	}

	return q.execute(ctx, path, params, metrics, dimensions)
}

// execute runs an assembled parameter set and wraps the raw document.
// Pagination continuation re-enters here with an advanced start-index.
func (q *QueryClient) execute(ctx context.Context, path string, params url.Values, metrics, dimensions List) (*QueryResponse, error) {
	q.hook(params)

	var data reportData
	if err := q.service.execute(ctx, path, params, &data); err != nil {
		return nil, err
	}

	return &QueryResponse{
		client:     q,
		path:       path,
		params:     params,
		data:       data,
		metrics:    metrics,
		dimensions: dimensions,
	}, nil
}

func setNonEmpty(params url.Values, key, value string) {
	if value != "" {
		params.Set(key, value)
	}
}
