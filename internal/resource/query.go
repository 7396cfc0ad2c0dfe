package resource

import (
	"sort"
	"strings"

	"GrestAPI/internal/logger"
)

// Condition is one node of the predicate tree: a single value means
// equality, several mean membership.
type Condition struct {
	Field  string
	Values []any
}

// SearchSpec is a case-insensitive substring match OR'd across Fields.
type SearchSpec struct {
	Term   string
	Fields []string
}

// Query is the engine-neutral result-set description handed to a Collection.
// Conditions form a conjunction; Excludes form a conjunction whose matches
// are subtracted as a whole. No SQL appears at this layer.
type Query struct {
	Conditions []Condition
	Excludes   []Condition
	Search     *SearchSpec
	OrderBy    string
	Desc       bool
	Offset     int
	Limit      int // negative means unbounded
}

// BuildQuery turns a parsed directive into a Query. Filter and exclude keys
// must name declared fields; anything else is dropped so that client input
// can never reach the storage engine as an identifier. The sort key accepts
// a leading "-" for descending order and is validated the same way.
func BuildQuery(d *Directive, res *Resource) Query {
	q := Query{Limit: -1}

	q.Conditions = buildConditions(d.Filters, res)
	q.Excludes = buildConditions(d.Excludes, res)

	if d.Search != "" && len(res.SearchFields) > 0 {
		q.Search = &SearchSpec{Term: d.Search, Fields: res.SearchFields}
	}

	if d.OrderBy != "" {
		key := d.OrderBy
		desc := false
		if strings.HasPrefix(key, "-") {
			key = key[1:]
			desc = true
		}
		if res.HasField(key) {
			q.OrderBy = key
			q.Desc = desc
		} else {
			logger.Debug("order_by_dropped", map[string]any{
				"resource": res.Name,
				"key":      d.OrderBy,
			})
		}
	}

	if res.SoftDelete() {
		q.Conditions = append(q.Conditions, Condition{Field: SoftDeleteField, Values: []any{false}})
	}

	return q
}

func buildConditions(m map[string]any, res *Resource) []Condition {
	if len(m) == 0 {
		return nil
	}
	fields := make([]string, 0, len(m))
	for field := range m {
		fields = append(fields, field)
	}
	// stable condition order regardless of map iteration
	sort.Strings(fields)

	conds := make([]Condition, 0, len(m))
	for _, field := range fields {
		value := m[field]
		if !res.HasField(field) {
			logger.Debug("filter_dropped", map[string]any{
				"resource": res.Name,
				"field":    field,
			})
			continue
		}
		if list, ok := value.([]any); ok {
			conds = append(conds, Condition{Field: field, Values: list})
		} else {
			conds = append(conds, Condition{Field: field, Values: []any{value}})
		}
	}
	return conds
}
