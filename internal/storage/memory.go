package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"GrestAPI/internal/resource"

	"github.com/google/uuid"
)

// MemoryCollection is an in-process Collection used by the unit tests. It
// interprets the same Query tree as the Postgres implementation.
type MemoryCollection struct {
	mu      sync.Mutex
	res     *resource.Resource
	records []resource.Record
	nextID  int64
}

var _ resource.Collection = (*MemoryCollection)(nil)

func NewMemoryCollection(res *resource.Resource) *MemoryCollection {
	return &MemoryCollection{res: res, nextID: 1}
}

// Seed inserts fixtures without touching primary key assignment.
func (c *MemoryCollection) Seed(recs ...resource.Record) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, rec := range recs {
		c.records = append(c.records, cloneRecord(rec))
		if n, ok := toFloat(rec[c.res.PrimaryKey]); ok && int64(n) >= c.nextID {
			c.nextID = int64(n) + 1
		}
	}
}

func (c *MemoryCollection) List(_ context.Context, q resource.Query) ([]resource.Record, int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	var matched []resource.Record
	for _, rec := range c.records {
		if matches(rec, q) {
			matched = append(matched, rec)
		}
	}
	total := len(matched)

	if q.OrderBy != "" {
		key, desc := q.OrderBy, q.Desc
		sort.SliceStable(matched, func(i, j int) bool {
			less := lessValue(matched[i][key], matched[j][key])
			if desc {
				return !less && !looseEqual(matched[i][key], matched[j][key])
			}
			return less
		})
	}

	lo := q.Offset
	if lo > len(matched) {
		lo = len(matched)
	}
	hi := len(matched)
	if q.Limit >= 0 && lo+q.Limit < hi {
		hi = lo + q.Limit
	}

	out := make([]resource.Record, 0, hi-lo)
	for _, rec := range matched[lo:hi] {
		out = append(out, cloneRecord(rec))
	}
	return out, total, nil
}

func (c *MemoryCollection) GetByKey(_ context.Context, pk any) (resource.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i := c.indexOf(pk); i >= 0 {
		return cloneRecord(c.records[i]), nil
	}
	return nil, resource.ErrNotFound
}

func (c *MemoryCollection) Insert(_ context.Context, rec resource.Record) (resource.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := cloneRecord(rec)
	if _, ok := stored[c.res.PrimaryKey]; !ok {
		f := c.res.FieldByName(c.res.PrimaryKey)
		if f != nil && f.Type == "string" {
			stored[c.res.PrimaryKey] = uuid.NewString()
		} else {
			stored[c.res.PrimaryKey] = c.nextID
			c.nextID++
		}
	}
	if c.res.SoftDelete() {
		if _, ok := stored[resource.SoftDeleteField]; !ok {
			stored[resource.SoftDeleteField] = false
		}
	}
	c.records = append(c.records, stored)
	return cloneRecord(stored), nil
}

func (c *MemoryCollection) Update(_ context.Context, pk any, changes resource.Record) (resource.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(pk)
	if i < 0 {
		return nil, resource.ErrNotFound
	}
	for k, v := range changes {
		c.records[i][k] = v
	}
	return cloneRecord(c.records[i]), nil
}

func (c *MemoryCollection) Delete(_ context.Context, pk any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	i := c.indexOf(pk)
	if i < 0 {
		return resource.ErrNotFound
	}
	c.records = append(c.records[:i], c.records[i+1:]...)
	return nil
}

func (c *MemoryCollection) indexOf(pk any) int {
	for i, rec := range c.records {
		if looseEqual(rec[c.res.PrimaryKey], pk) {
			return i
		}
	}
	return -1
}

func matches(rec resource.Record, q resource.Query) bool {
	for _, cond := range q.Conditions {
		if !conditionMatches(rec, cond) {
			return false
		}
	}
	if q.Search != nil {
		term := strings.ToLower(q.Search.Term)
		found := false
		for _, field := range q.Search.Fields {
			if s, ok := rec[field].(string); ok && strings.Contains(strings.ToLower(s), term) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(q.Excludes) > 0 {
		all := true
		for _, cond := range q.Excludes {
			if !conditionMatches(rec, cond) {
				all = false
				break
			}
		}
		if all {
			return false
		}
	}
	return true
}

func conditionMatches(rec resource.Record, cond resource.Condition) bool {
	for _, v := range cond.Values {
		if looseEqual(rec[cond.Field], v) {
			return true
		}
	}
	return false
}

// looseEqual compares stored and parsed values across representations:
// query parameters carry numbers as float64 while fixtures may use ints.
func looseEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af == bf
		}
		return false
	}
	if ab, ok := a.(bool); ok {
		bb, ok := b.(bool)
		return ok && ab == bb
	}
	return fmt.Sprint(a) == fmt.Sprint(b)
}

func lessValue(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok := toFloat(b); ok {
			return af < bf
		}
	}
	return fmt.Sprint(a) < fmt.Sprint(b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

func cloneRecord(rec resource.Record) resource.Record {
	out := make(resource.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}
