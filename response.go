package gapy

import (
	"context"
	"encoding/json"
	"fmt"
	"iter"
	"net/url"
	"strconv"
)

// reportData is the raw report document shared by the core reporting and
// MCF endpoints. Metadata fields are passed through unmodified.
type reportData struct {
	Kind                string            `json:"kind"`
	ID                  string            `json:"id"`
	Query               reportQuery       `json:"query"`
	ItemsPerPage        int               `json:"itemsPerPage"`
	TotalResults        int               `json:"totalResults"`
	ContainsSampledData bool              `json:"containsSampledData"`
	ColumnHeaders       []ColumnHeader    `json:"columnHeaders"`
	TotalsForAllResults map[string]string `json:"totalsForAllResults"`
	Rows                [][]Value         `json:"rows"`
}

// reportQuery echoes the paging fields of the executed query.
type reportQuery struct {
	StartIndex int `json:"start-index"`
	MaxResults int `json:"max-results"`
}

// ColumnHeader describes one report column, passed through from the backend.
type ColumnHeader struct {
	Name       string `json:"name"`       // "ga:pageviews"
	ColumnType string `json:"columnType"` // "DIMENSION" or "METRIC"
	DataType   string `json:"dataType"`   // "STRING", "INTEGER", ...
}

// Value is one report cell. Core reporting rows carry plain strings; MCF
// rows carry objects with either a primitive value or a conversion path.
type Value struct {
	Value          string     `json:"primitiveValue"`
	ConversionPath []PathNode `json:"conversionPathValue"`
}

// PathNode is one interaction in an MCF conversion path.
type PathNode struct {
	InteractionType string `json:"interactionType"`
	NodeValue       string `json:"nodeValue"`
}

func (v *Value) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		return json.Unmarshal(data, &v.Value)
	}
	type plain Value
	return json.Unmarshal(data, (*plain)(v))
}

func (v Value) String() string {
	return v.Value
}

// Row is one report row with cells labelled by the dimension and metric
// names the caller supplied.
type Row struct {
	Dimensions map[string]Value
	Metrics    map[string]Value
}

// QueryResponse wraps one page of a report query. It is an immutable view
// over the raw document; continuation fetches are new, independent calls.
type QueryResponse struct {
	client     *QueryClient
	path       string
	params     url.Values
	data       reportData
	metrics    List
	dimensions List
}

// Kind identifies the report family of the document.
func (r *QueryResponse) Kind() string { return r.data.Kind }

// TotalResults is the backend's total row count across all pages.
func (r *QueryResponse) TotalResults() int { return r.data.TotalResults }

// ContainsSampledData reports whether the backend sampled the data.
func (r *QueryResponse) ContainsSampledData() bool { return r.data.ContainsSampledData }

// ColumnHeaders returns the backend's column metadata, unmodified.
func (r *QueryResponse) ColumnHeaders() []ColumnHeader { return r.data.ColumnHeaders }

// Totals returns the backend's totals-for-all-results map, unmodified.
func (r *QueryResponse) Totals() map[string]string { return r.data.TotalsForAllResults }

// DimensionNames returns the dimension names the rows are labelled with,
// in column order.
func (r *QueryResponse) DimensionNames() List { return r.dimensions }

// MetricNames returns the metric names the rows are labelled with, in
// column order.
func (r *QueryResponse) MetricNames() List { return r.metrics }

// Rows returns the rows of this page. The sequence may be iterated any
// number of times; each row pairs the leading cells with the dimension
// names and the remaining cells with the metric names.
func (r *QueryResponse) Rows() iter.Seq[Row] {
	return func(yield func(Row) bool) {
		for _, raw := range r.data.Rows {
			if !yield(r.label(raw)) {
				return
			}
		}
	}
}

func (r *QueryResponse) label(raw []Value) Row {
	row := Row{
		Dimensions: make(map[string]Value, len(r.dimensions)),
		Metrics:    make(map[string]Value, len(r.metrics)),
	}
	for i, name := range r.dimensions {
		if i < len(raw) {
			row.Dimensions[name] = raw[i]
		}
	}
	for i, name := range r.metrics {
		if j := len(r.dimensions) + i; j < len(raw) {
			row.Metrics[name] = raw[j]
		}
	}
	return row
}

// HasNext reports whether the backend holds more rows beyond this page.
func (r *QueryResponse) HasNext() bool {
	return r.startIndex()+r.data.ItemsPerPage <= r.data.TotalResults
}

// Next fetches the next page by re-issuing the original parameter set with
// an advanced start-index. The server applies its ordering before paging,
// so sequential pages are disjoint and gap-free.
func (r *QueryResponse) Next(ctx context.Context) (*QueryResponse, error) {
	if !r.HasNext() {
		return nil, fmt.Errorf("no page beyond row %d of %d", r.startIndex()+len(r.data.Rows)-1, r.data.TotalResults)
	}

	params := url.Values{}
	for k, vs := range r.params {
		params[k] = append([]string(nil), vs...)
	}
	params.Set("start-index", strconv.Itoa(r.startIndex()+r.data.ItemsPerPage))

	return r.client.execute(ctx, r.path, params, r.metrics, r.dimensions)
}

// startIndex is 1-based; the backend omits it from the first page's echo.
func (r *QueryResponse) startIndex() int {
	if r.data.Query.StartIndex == 0 {
		return 1
	}
	return r.data.Query.StartIndex
}

// Item is one management resource: a mapping keyed by its "id" field.
type Item map[string]any

// ID returns the resource's id field, or "" when absent.
func (i Item) ID() string {
	id, _ := i["id"].(string)
	return id
}

type managementData struct {
	Items []Item `json:"items"`
}

// ManagementResponse wraps a management listing.
type ManagementResponse struct {
	items []Item
}

// Items returns the listed resources in backend order.
func (r *ManagementResponse) Items() []Item {
	return r.items
}

// Get looks up a resource by id with a linear scan over the listing.
func (r *ManagementResponse) Get(id string) (Item, error) {
	for _, item := range r.items {
		if item.ID() == id {
			return item, nil
		}
	}
	return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
}
