package resource

import (
	"encoding/json"
	"net/url"
	"strconv"
	"strings"

	"GrestAPI/internal/logger"
)

const excludePrefix = "exclude__"

// reserved parameter names are extracted as directives, never data filters.
var reservedParams = map[string]bool{
	"page":     true,
	"top":      true,
	"bottom":   true,
	"order_by": true,
	"fields":   true,
	"search":   true,
}

// Directive is the parsed shape of one request's query parameters. It is
// built fresh per request and never persisted.
type Directive struct {
	Filters  map[string]any
	Excludes map[string]any
	Search   string
	OrderBy  string
	Page     int  // 1-based; 0 means absent
	Top      int  // offset; derived from page when page is present
	Bottom   *int // non-nil switches the pager to offset-window mode
	Fields   []string
}

// ParseQueryParams turns raw query parameters into a Directive. Filter and
// exclude fields are gated by the resource's filter allow-list; rejected
// fields are silently dropped. The parser never fails: unparseable values
// degrade to the raw string and malformed numeric directives are ignored.
func ParseQueryParams(params url.Values, res *Resource) *Directive {
	d := &Directive{
		Filters:  map[string]any{},
		Excludes: map[string]any{},
	}

	for key := range params {
		value := params.Get(key)
		switch {
		case reservedParams[key]:
			d.setDirective(key, value)
		case strings.HasPrefix(key, excludePrefix):
			field := key[len(excludePrefix):]
			if !res.AllowsFilter(field) {
				continue
			}
			d.Excludes[field] = parseValue(value)
		default:
			if !res.AllowsFilter(key) {
				continue
			}
			d.Filters[key] = parseValue(value)
		}
	}

	// page wins over an explicit top
	if d.Page > 0 {
		d.Top = (d.Page - 1) * res.PageSize
	}

	return d
}

// setDirective handles one reserved key. Malformed numeric values fall
// through to the debug log and leave the directive at its zero value.
func (d *Directive) setDirective(key, value string) {
	switch key {
	case "page":
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			d.Page = n
			return
		}
	case "top":
		if n, err := strconv.Atoi(value); err == nil && n >= 0 {
			d.Top = n
			return
		}
	case "bottom":
		if n, err := strconv.Atoi(value); err == nil {
			d.Bottom = &n
			return
		}
	case "order_by":
		d.OrderBy = value
		return
	case "search":
		d.Search = value
		return
	case "fields":
		d.Fields = splitList(value)
		return
	}
	logger.Debug("param_ignored", map[string]any{"key": key, "value": value})
}

// parseValue coerces a raw parameter string. A comma means a list of trimmed
// tokens (one element collapses to a scalar); otherwise the value is parsed
// as a strict JSON literal so that "true", "42" or "null" carry their type.
// Anything unparseable stays a plain string.
func parseValue(value string) any {
	if strings.Contains(value, ",") {
		tokens := splitList(value)
		switch len(tokens) {
		case 0:
			return nil
		case 1:
			return tokens[0]
		default:
			list := make([]any, len(tokens))
			for i, t := range tokens {
				list[i] = t
			}
			return list
		}
	}
	var parsed any
	if err := json.Unmarshal([]byte(value), &parsed); err != nil {
		return value
	}
	return parsed
}

func splitList(value string) []string {
	parts := strings.Split(strings.TrimRight(value, ","), ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
