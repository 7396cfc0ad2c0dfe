package resource

import "fmt"

var knownOps = map[string]bool{
	OpList:     true,
	OpRetrieve: true,
	OpCreate:   true,
	OpUpdate:   true,
	OpDelete:   true,
}

// ValidateRegistry runs cross-field checks over every registered resource:
// the primary key and every allow-listed name must refer to a declared field,
// methods must be known operations, and sizes must be positive.
func ValidateRegistry() error {
	for name, res := range Registry {
		if err := validateResource(res); err != nil {
			return fmt.Errorf("resource %q: %w", name, err)
		}
	}
	return nil
}

func validateResource(res *Resource) error {
	if res.Table == "" {
		return fmt.Errorf("table is required")
	}
	if len(res.Fields) == 0 {
		return fmt.Errorf("at least one field is required")
	}
	seen := map[string]bool{}
	for _, f := range res.Fields {
		if f.Name == "" {
			return fmt.Errorf("field with empty name")
		}
		if seen[f.Name] {
			return fmt.Errorf("duplicate field %q", f.Name)
		}
		seen[f.Name] = true
	}
	if !res.HasField(res.PrimaryKey) {
		return fmt.Errorf("primary key %q is not a declared field", res.PrimaryKey)
	}
	if res.PageSize <= 0 {
		return fmt.Errorf("page_size must be positive")
	}
	for _, m := range res.Methods {
		if !knownOps[m] {
			return fmt.Errorf("unknown method %q", m)
		}
	}
	for _, list := range [][]string{res.FilterFields, res.UpdateFields, res.SelectFields} {
		for _, f := range list {
			if f != "*" && !res.HasField(f) {
				return fmt.Errorf("allow-list references undeclared field %q", f)
			}
		}
	}
	for _, f := range res.SearchFields {
		if !res.HasField(f) {
			return fmt.Errorf("search field %q is not declared", f)
		}
	}
	if res.Cache.TTLSeconds < 0 {
		return fmt.Errorf("cache ttl must not be negative")
	}
	return nil
}
