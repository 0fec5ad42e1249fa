package gapy

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestPrefix(t *testing.T) {
	tests := []struct {
		name  string
		value string
		ns    string
		want  string
	}{
		{name: "plain value", value: "pageviews", ns: "ga:", want: "ga:pageviews"},
		{name: "already prefixed", value: "ga:pageviews", ns: "ga:", want: "ga:pageviews"},
		{name: "negated", value: "-pageviews", ns: "ga:", want: "-ga:pageviews"},
		{name: "negated and prefixed", value: "-ga:pageviews", ns: "ga:", want: "-ga:pageviews"},
		{name: "mcf namespace", value: "totalConversions", ns: "mcf:", want: "mcf:totalConversions"},
		{name: "mcf negated", value: "-totalConversions", ns: "mcf:", want: "-mcf:totalConversions"},
		{name: "numeric id", value: "12345", ns: "ga:", want: "ga:12345"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := prefix(tt.value, tt.ns)
			assert.Equal(t, tt.want, got)

			// Applying the prefix twice must be a fixed point.
			assert.Equal(t, got, prefix(got, tt.ns))
		})
	}
}

func TestNormalize(t *testing.T) {
	t.Run("nil becomes empty", func(t *testing.T) {
		got := normalize(nil)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("single value passes through", func(t *testing.T) {
		assert.Equal(t, List{"pageviews"}, normalize(One("pageviews")))
	})

	t.Run("multiple values keep order", func(t *testing.T) {
		l := List{"b", "a", "b"}
		assert.Equal(t, l, normalize(l))
	})
}

func TestJoinPrefixed(t *testing.T) {
	tests := []struct {
		name   string
		values List
		ns     string
		want   string
	}{
		{name: "empty list joins to empty string", values: List{}, ns: "ga:", want: ""},
		{name: "single value", values: List{"pageviews"}, ns: "ga:", want: "ga:pageviews"},
		{name: "multiple ids", values: List{"123", "456"}, ns: "ga:", want: "ga:123,ga:456"},
		{name: "mixed negation", values: List{"-pageviews", "visits"}, ns: "ga:", want: "-ga:pageviews,ga:visits"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, joinPrefixed(tt.values, tt.ns))
		})
	}
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2026, time.August, 3, 14, 30, 0, 0, time.UTC)
	assert.Equal(t, "2026-08-03", formatDate(d))
}

func TestListUnmarshalYAML(t *testing.T) {
	type doc struct {
		Metrics    List `yaml:"metrics"`
		Dimensions List `yaml:"dimensions"`
	}

	t.Run("scalar becomes one-element list", func(t *testing.T) {
		var d doc
		require.NoError(t, yaml.Unmarshal([]byte("metrics: pageviews"), &d))
		assert.Equal(t, List{"pageviews"}, d.Metrics)
		assert.Nil(t, d.Dimensions)
	})

	t.Run("sequence passes through", func(t *testing.T) {
		var d doc
		require.NoError(t, yaml.Unmarshal([]byte("metrics: [pageviews, visits]"), &d))
		assert.Equal(t, List{"pageviews", "visits"}, d.Metrics)
	})

	t.Run("invalid node fails", func(t *testing.T) {
		var d doc
		assert.Error(t, yaml.Unmarshal([]byte("metrics: {a: b}"), &d))
	})
}

func TestListUnmarshalJSON(t *testing.T) {
	type doc struct {
		Metrics List `json:"metrics"`
	}

	t.Run("scalar becomes one-element list", func(t *testing.T) {
		var d doc
		require.NoError(t, json.Unmarshal([]byte(`{"metrics":"pageviews"}`), &d))
		assert.Equal(t, List{"pageviews"}, d.Metrics)
	})

	t.Run("array passes through", func(t *testing.T) {
		var d doc
		require.NoError(t, json.Unmarshal([]byte(`{"metrics":["pageviews","visits"]}`), &d))
		assert.Equal(t, List{"pageviews", "visits"}, d.Metrics)
	})
}
