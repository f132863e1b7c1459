package osdsl

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"maps"
	"reflect"
	"slices"

	jsoniter "github.com/json-iterator/go"
)

type QueryKindString = string
type FieldNameString = string

const boolQueryKind QueryKindString = "bool"
const matchAllQueryKind QueryKindString = "match_all"

var ErrInvalidQueryMapping = errors.New("query mapping must contain exactly one query kind")
var ErrInvalidQueryBody = errors.New("query body must be a mapping")
var ErrInvalidBoolClause = errors.New("bool clause must be a query mapping or a list of query mappings")

// Query is an immutable boolean-query expression tree node.
//
// The zero value is the empty marker: it matches everything, serializes to
// nothing and is the identity element for And. Leaf nodes carry a query kind
// (term, match, ...) with its parameters; compound nodes combine children
// under the bool operators must, filter, should and must_not.
//
// All combinators return new values and never modify their receiver, so a
// Query can be shared freely between request builders.
type Query struct {
	name    QueryKindString
	params  map[string]any
	must    []Query
	filter  []Query
	should  []Query
	mustNot []Query
}

// BoolClauses enumerates the children of a compound bool query, plus any
// bool-level parameters (minimum_should_match, boost, ...) passed through
// verbatim.
type BoolClauses struct {
	Must    []Query
	Filter  []Query
	Should  []Query
	MustNot []Query
	Params  map[string]any
}

// Q builds a leaf query of the given kind, e.g. Q("term", map[string]any{"published": true}).
// The params mapping is copied, not retained.
func Q(name QueryKindString, params map[string]any) Query {
	return Query{name: name, params: maps.Clone(params)}
}

// Term builds a term query matching field exactly against value.
func Term(field FieldNameString, value any) Query {
	return Q("term", map[string]any{field: value})
}

// Match builds a match query for field against value.
func Match(field FieldNameString, value any) Query {
	return Q("match", map[string]any{field: value})
}

// MatchAll builds the explicit match_all query. Unlike the zero Query it is
// serialized, but it behaves as an identity element for And just the same.
func MatchAll() Query {
	return Query{name: matchAllQueryKind}
}

// Bool builds a compound bool query from the given clauses.
// Clause slices and the params mapping are copied, not retained.
func Bool(clauses BoolClauses) Query {
	return Query{
		name:    boolQueryKind,
		params:  maps.Clone(clauses.Params),
		must:    slices.Clone(clauses.Must),
		filter:  slices.Clone(clauses.Filter),
		should:  slices.Clone(clauses.Should),
		mustNot: slices.Clone(clauses.MustNot),
	}
}

// IsEmpty reports whether q is the empty marker.
func (q Query) IsEmpty() bool {
	return q.name == ""
}

// Kind returns the query kind ("term", "bool", ...), or "" for the empty marker.
func (q Query) Kind() QueryKindString {
	return q.name
}

func (q Query) isBool() bool {
	return q.name == boolQueryKind
}

func (q Query) isMatchAll() bool {
	return q.name == matchAllQueryKind
}

// And combines q with other under logical AND and returns the result as a new
// Query. The empty marker and match_all are identity elements. When both
// operands are bool queries their clause lists are merged instead of nested,
// keeping the serialized form minimal; a leaf operand is lifted into a
// bool{must: [leaf]} wrapper first.
func (q Query) And(other Query) Query {
	if q.IsEmpty() || q.isMatchAll() {
		if other.IsEmpty() {
			return q
		}

		return other
	}

	if other.IsEmpty() || other.isMatchAll() {
		return q
	}

	left := q.asBool()
	right := other.asBool()

	merged := Query{
		name:    boolQueryKind,
		params:  mergeQueryParams(left.params, right.params),
		must:    concatClauses(left.must, right.must),
		filter:  concatClauses(left.filter, right.filter),
		should:  concatClauses(left.should, right.should),
		mustNot: concatClauses(left.mustNot, right.mustNot),
	}

	return merged
}

// Negate returns the logical complement of q as a new Query, wrapping it as
// the sole must_not child of a bool query. A bool query whose only content is
// a single must_not child unwraps instead, so double negation cancels.
// Negating the empty marker is a no-op.
func (q Query) Negate() Query {
	if q.IsEmpty() {
		return q
	}

	if q.isBool() &&
		len(q.mustNot) == 1 &&
		len(q.must) == 0 && len(q.filter) == 0 && len(q.should) == 0 &&
		len(q.params) == 0 {

		return q.mustNot[0]
	}

	return Query{name: boolQueryKind, mustNot: []Query{q}}
}

// asBool lifts a leaf into a single-clause bool query; bool queries pass through.
func (q Query) asBool() Query {
	if q.isBool() {
		return q
	}

	return Query{name: boolQueryKind, must: []Query{q}}
}

// ToDict serializes q into its wire mapping, or nil for the empty marker.
func (q Query) ToDict() map[string]any {
	if q.IsEmpty() {
		return nil
	}

	body := make(map[string]any, len(q.params)+4)
	for key, value := range q.params {
		body[key] = value
	}

	if q.isBool() {
		if len(q.must) > 0 {
			body["must"] = clausesToDicts(q.must)
		}

		if len(q.filter) > 0 {
			body["filter"] = clausesToDicts(q.filter)
		}

		if len(q.should) > 0 {
			body["should"] = clausesToDicts(q.should)
		}

		if len(q.mustNot) > 0 {
			body["must_not"] = clausesToDicts(q.mustNot)
		}
	}

	return map[string]any{q.name: body}
}

// EqualTo reports structural equality: two queries are equal when their
// serialized forms are identical.
func (q Query) EqualTo(other Query) bool {
	return reflect.DeepEqual(q.ToDict(), other.ToDict())
}

// Hash returns a stable hex digest of the serialized form, suitable as a
// cache key for derived results.
func (q Query) Hash() string {
	serialized, err := jsoniter.ConfigCompatibleWithStandardLibrary.Marshal(q.ToDict())
	if err != nil {
		return ""
	}

	digest := sha256.Sum256(serialized)

	return hex.EncodeToString(digest[:])
}

// ParseQuery builds a Query from its wire mapping.
// It fails fast on mappings that cannot denote a single query; unknown query
// kinds are accepted as leaves and their body is carried verbatim.
func ParseQuery(mapping map[string]any) (Query, error) {
	if len(mapping) != 1 {
		return Query{}, ErrInvalidQueryMapping
	}

	for name, rawBody := range mapping {
		body, ok := rawBody.(map[string]any)
		if !ok {
			if rawBody == nil {
				body = map[string]any{}
			} else {
				return Query{}, ErrInvalidQueryBody
			}
		}

		if name == boolQueryKind {
			return parseBoolQuery(body)
		}

		return Q(name, body), nil
	}

	return Query{}, ErrInvalidQueryMapping // unreachable
}

func parseBoolQuery(body map[string]any) (Query, error) {
	parsed := Query{name: boolQueryKind}

	for key, rawValue := range body {
		switch key {
		case "must", "filter", "should", "must_not":
			children, err := parseClauseList(rawValue)
			if err != nil {
				return Query{}, err
			}

			switch key {
			case "must":
				parsed.must = children
			case "filter":
				parsed.filter = children
			case "should":
				parsed.should = children
			case "must_not":
				parsed.mustNot = children
			}

		default:
			if parsed.params == nil {
				parsed.params = make(map[string]any)
			}
			parsed.params[key] = rawValue
		}
	}

	return parsed, nil
}

// parseClauseList accepts either a list of query mappings or a single query
// mapping, the two shapes the wire format allows for a bool clause.
func parseClauseList(rawValue any) ([]Query, error) {
	switch value := rawValue.(type) {
	case []any:
		children := make([]Query, 0, len(value))

		for _, rawChild := range value {
			childMapping, ok := rawChild.(map[string]any)
			if !ok {
				return nil, ErrInvalidBoolClause
			}

			child, err := ParseQuery(childMapping)
			if err != nil {
				return nil, err
			}

			children = append(children, child)
		}

		return children, nil

	case map[string]any:
		child, err := ParseQuery(value)
		if err != nil {
			return nil, err
		}

		return []Query{child}, nil

	default:
		return nil, ErrInvalidBoolClause
	}
}

func clausesToDicts(clauses []Query) []any {
	dicts := make([]any, 0, len(clauses))
	for _, clause := range clauses {
		dicts = append(dicts, clause.ToDict())
	}

	return dicts
}

func concatClauses(left []Query, right []Query) []Query {
	if len(left) == 0 && len(right) == 0 {
		return nil
	}

	combined := make([]Query, 0, len(left)+len(right))
	combined = append(combined, left...)
	combined = append(combined, right...)

	return combined
}

func mergeQueryParams(left map[string]any, right map[string]any) map[string]any {
	if len(left) == 0 && len(right) == 0 {
		return nil
	}

	merged := make(map[string]any, len(left)+len(right))
	maps.Copy(merged, left)
	maps.Copy(merged, right)

	return merged
}
