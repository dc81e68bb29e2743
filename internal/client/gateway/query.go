package gateway

import (
	"net/url"
	"strconv"
	"strings"
)

// Operator is a filter suffix understood by the content API.
type Operator string

const (
	OpEq          Operator = "eq"
	OpNe          Operator = "ne"
	OpLt          Operator = "lt"
	OpLte         Operator = "lte"
	OpGt          Operator = "gt"
	OpGte         Operator = "gte"
	OpIn          Operator = "in"
	OpNotIn       Operator = "nin"
	OpContains    Operator = "contains"
	OpNotContains Operator = "ncontains"
	OpContainsCS  Operator = "containss"
	OpNull        Operator = "null"
)

// Query builds filter, sort and pagination parameters:
//
//	NewQuery().Where("title", OpContains, "go").Sort("published_at", true).Limit(10)
//
// encodes as title_contains=go&_sort=published_at:DESC&_limit=10.
// A nil *Query is an empty query.
type Query struct {
	v     url.Values
	sorts []string
}

func NewQuery() *Query { return &Query{v: url.Values{}} }

// Where adds a filter. OpEq filters on the bare field name; OpIn and OpNotIn
// repeat the parameter once per value.
func (q *Query) Where(field string, op Operator, values ...string) *Query {
	key := field
	if op != "" && op != OpEq {
		key = field + "_" + string(op)
	}
	for _, v := range values {
		q.v.Add(key, v)
	}
	return q
}

// Sort appends a sort key; earlier keys take precedence.
func (q *Query) Sort(field string, desc bool) *Query {
	dir := "ASC"
	if desc {
		dir = "DESC"
	}
	q.sorts = append(q.sorts, field+":"+dir)
	return q
}

// Limit caps the number of results; -1 asks for all of them.
func (q *Query) Limit(n int) *Query {
	q.v.Set("_limit", strconv.Itoa(n))
	return q
}

func (q *Query) Start(n int) *Query {
	q.v.Set("_start", strconv.Itoa(n))
	return q
}

// Set adds a raw parameter.
func (q *Query) Set(key, value string) *Query {
	q.v.Set(key, value)
	return q
}

// Values returns the parameters as a fresh url.Values.
func (q *Query) Values() url.Values {
	out := url.Values{}
	if q == nil {
		return out
	}
	for k, vs := range q.v {
		out[k] = append([]string(nil), vs...)
	}
	if len(q.sorts) > 0 {
		out.Set("_sort", strings.Join(q.sorts, ","))
	}
	return out
}

func (q *Query) Encode() string { return q.Values().Encode() }

// ParseQuery reads "key=value" pairs, as typed on a command line, into a Query.
// Keys may carry an operator suffix ("views_gt=10").
func ParseQuery(pairs []string) (*Query, error) {
	q := NewQuery()
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || k == "" {
			return nil, errInvalid("query parameter %q must be key=value", p)
		}
		if k == "_sort" {
			for _, s := range strings.Split(v, ",") {
				field, dir, _ := strings.Cut(s, ":")
				q.Sort(field, strings.EqualFold(dir, "DESC"))
			}
			continue
		}
		q.v.Add(k, v)
	}
	return q, nil
}
