package gapy

import (
	"encoding/json"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Date layout the reporting API expects.
const dateFormat = "2006-01-02"

// List is an ordered list of query parameter values. In YAML and JSON it
// decodes from either a single scalar or a sequence, so a saved query can
// say `metrics: pageviews` as well as `metrics: [pageviews, visits]`.
type List []string

// One wraps a single value in a List.
func One(v string) List {
	return List{v}
}

func (l *List) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		*l = List{s}
		return nil
	}
	var vs []string
	if err := value.Decode(&vs); err != nil {
		return err
	}
	*l = vs
	return nil
}

func (l *List) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '[' {
		var vs []string
		if err := json.Unmarshal(data, &vs); err != nil {
			return err
		}
		*l = vs
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*l = List{s}
	return nil
}

// normalize canonicalises an optional list: nil becomes the empty list,
// anything else passes through unchanged. No deduplication, no reordering.
func normalize(l List) List {
	if l == nil {
		return List{}
	}
	return l
}

// prefix namespaces a dimension, metric or sort value with ns ("ga:" or
// "mcf:"). Values already carrying the namespace pass through; a leading
// "-" negation is kept in front of the namespace. Idempotent.
func prefix(value, ns string) string {
	switch {
	case strings.HasPrefix(value, ns):
		return value
	case strings.HasPrefix(value, "-"+ns):
		return value
	case strings.HasPrefix(value, "-"):
		return "-" + ns + value[1:]
	default:
		return ns + value
	}
}

// joinPrefixed builds the comma-joined namespaced form of a value list. An
// empty list joins to "", which callers must treat as parameter-absent.
func joinPrefixed(values List, ns string) string {
	prefixed := make([]string, len(values))
	for i, v := range values {
		prefixed[i] = prefix(v, ns)
	}
	return strings.Join(prefixed, ",")
}

func formatDate(t time.Time) string {
	return t.Format(dateFormat)
}
