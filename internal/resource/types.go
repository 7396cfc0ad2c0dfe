package resource

import "time"

// Record is the dynamic shape of a stored row: column name -> value.
type Record map[string]any

// Operation names as they appear in a resource's methods list.
const (
	OpList     = "list"
	OpRetrieve = "retrieve"
	OpCreate   = "create"
	OpUpdate   = "update"
	OpDelete   = "delete"
)

// SoftDeleteField is the boolean column that switches delete to a soft delete
// when a resource declares it.
const SoftDeleteField = "removed"

// Resource describes one configured collection of records. Declarations are
// loaded from YAML at startup and are immutable afterwards.
type Resource struct {
	Name         string      `yaml:"-"` // logical name, taken from the file name
	Table        string      `yaml:"table"`
	PrimaryKey   string      `yaml:"primary_key"` // defaults to "id"
	Fields       []Field     `yaml:"fields"`
	Methods      []string    `yaml:"methods"`       // defaults to all five operations
	FilterFields []string    `yaml:"filter_fields"` // "*" allows everything
	UpdateFields []string    `yaml:"update_fields"`
	SelectFields []string    `yaml:"select_fields"`
	SearchFields []string    `yaml:"search_fields"`
	PageSize     int         `yaml:"page_size"` // defaults to 20
	Cache        CacheConfig `yaml:"cache"`
}

// Field declares one column of the record shape.
type Field struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"` // "string", "int", "float", "bool", "time", "any"
	Required bool   `yaml:"required"`
	ReadOnly bool   `yaml:"readonly"` // accepted on input but silently dropped
	Internal bool   `yaml:"internal"` // never included in responses
}

// CacheConfig controls response caching. An empty KeyPrefix disables it.
type CacheConfig struct {
	KeyPrefix  string `yaml:"key_prefix"`
	TTLSeconds int    `yaml:"ttl"` // 0 falls back to the server-wide default
}

func (r *Resource) applyDefaults() {
	if r.PrimaryKey == "" {
		r.PrimaryKey = "id"
	}
	if len(r.Methods) == 0 {
		r.Methods = []string{OpList, OpRetrieve, OpCreate, OpUpdate, OpDelete}
	}
	if len(r.FilterFields) == 0 {
		r.FilterFields = []string{"*"}
	}
	if len(r.UpdateFields) == 0 {
		r.UpdateFields = []string{"*"}
	}
	if len(r.SelectFields) == 0 {
		r.SelectFields = []string{"*"}
	}
	if r.PageSize == 0 {
		r.PageSize = 20
	}
}

func (r *Resource) MethodAllowed(op string) bool {
	for _, m := range r.Methods {
		if m == op {
			return true
		}
	}
	return false
}

func (r *Resource) FieldByName(name string) *Field {
	for i := range r.Fields {
		if r.Fields[i].Name == name {
			return &r.Fields[i]
		}
	}
	return nil
}

func (r *Resource) HasField(name string) bool {
	return r.FieldByName(name) != nil
}

// FieldNames returns the declared column names in declaration order.
func (r *Resource) FieldNames() []string {
	names := make([]string, len(r.Fields))
	for i, f := range r.Fields {
		names[i] = f.Name
	}
	return names
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}

func isWildcard(list []string) bool {
	return contains(list, "*")
}

func (r *Resource) AllowsFilter(field string) bool {
	return isWildcard(r.FilterFields) || contains(r.FilterFields, field)
}

func (r *Resource) AllowsUpdate(field string) bool {
	return isWildcard(r.UpdateFields) || contains(r.UpdateFields, field)
}

func (r *Resource) AllowsSelect(field string) bool {
	return isWildcard(r.SelectFields) || contains(r.SelectFields, field)
}

// SoftDelete reports whether delete should flag the record instead of
// removing it. The convention is a declared boolean "removed" column.
func (r *Resource) SoftDelete() bool {
	f := r.FieldByName(SoftDeleteField)
	return f != nil && f.Type == "bool"
}

func (r *Resource) CacheTTL() time.Duration {
	return time.Duration(r.Cache.TTLSeconds) * time.Second
}
