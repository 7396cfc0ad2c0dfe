package resource

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"GrestAPI/internal/cache"
	"GrestAPI/internal/logger"
)

// Controller composes the parsing, projection, query, paging and caching
// pipeline into the five CRUD operations for one resource. Errors are
// translated to HTTP at the handler boundary via HTTPStatus.
type Controller struct {
	res   *Resource
	col   Collection
	cache *cache.Gateway
}

func NewController(res *Resource, col Collection, gw *cache.Gateway) *Controller {
	return &Controller{res: res, col: col, cache: gw}
}

func (c *Controller) Resource() *Resource { return c.res }

// ListResult is the list response body. Page metadata is present only in
// page-number mode; offset-window requests carry objects and total count.
type ListResult struct {
	Objects     []map[string]any `json:"objects"`
	TotalCount  int              `json:"total_count"`
	NumPages    int              `json:"num_pages,omitempty"`
	CurrentPage int              `json:"current_page,omitempty"`
}

// List handles GET / with filtering, search, ordering, pagination and
// field selection. Responses are served read-through from the cache.
func (c *Controller) List(ctx context.Context, params url.Values) ([]byte, error) {
	if !c.res.MethodAllowed(OpList) {
		return nil, ErrMethodNotAllowed
	}

	d := ParseQueryParams(params, c.res)
	fields := ProjectFields(d.Fields, c.res)

	key := c.cache.ListKey(d.Filters, d.Excludes, d.Search, d.Top, d.Bottom, d.OrderBy, fields)
	if payload, ok := c.cache.ReadThrough(ctx, key); ok {
		return payload, nil
	}

	q := BuildQuery(d, c.res)
	result := ListResult{Objects: []map[string]any{}}

	page := 0
	if d.Bottom != nil {
		// offset-window mode: raw [top:bottom) slice, count only.
		// bottom <= top is an empty window, not an error.
		limit := *d.Bottom - d.Top
		if limit < 0 {
			limit = 0
		}
		q.Offset = d.Top
		q.Limit = limit
	} else {
		// a raw top is quantized to its containing page so the returned
		// window and current_page agree
		page = d.Top/c.res.PageSize + 1
		q.Offset = (page - 1) * c.res.PageSize
		q.Limit = c.res.PageSize
	}

	items, total, err := c.col.List(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", c.res.Name, err)
	}

	for _, rec := range items {
		result.Objects = append(result.Objects, c.res.Serialize(rec, fields))
	}
	result.TotalCount = total
	if d.Bottom == nil {
		result.CurrentPage = page
		result.NumPages = (total + c.res.PageSize - 1) / c.res.PageSize
		if result.NumPages < 1 {
			result.NumPages = 1
		}
	}

	payload, err := json.Marshal(result)
	if err != nil {
		return nil, err
	}
	c.cache.Write(ctx, key, payload)
	return payload, nil
}

// Retrieve handles GET /{id}, honoring the fields directive.
func (c *Controller) Retrieve(ctx context.Context, pk string, params url.Values) ([]byte, error) {
	if !c.res.MethodAllowed(OpRetrieve) {
		return nil, ErrMethodNotAllowed
	}

	fields := ProjectFields(splitList(params.Get("fields")), c.res)
	key := c.cache.ObjectKey(pk, fields)
	if payload, ok := c.cache.ReadThrough(ctx, key); ok {
		return payload, nil
	}

	rec, err := c.col.GetByKey(ctx, c.res.CoercePK(pk))
	if err != nil {
		return nil, err
	}
	payload, err := json.Marshal(c.res.Serialize(rec, fields))
	if err != nil {
		return nil, err
	}
	c.cache.Write(ctx, key, payload)
	return payload, nil
}

// Create handles POST /: validate, persist atomically, cache the new
// object and invalidate cached lists. The list cache is protected by
// invalidation only; no list entry is written here.
func (c *Controller) Create(ctx context.Context, body []byte) ([]byte, error) {
	if !c.res.MethodAllowed(OpCreate) {
		return nil, ErrMethodNotAllowed
	}
	hooks := hooksFor(c.res.Name)

	input, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	if hooks.PreCreate != nil {
		if err := hooks.PreCreate(ctx, Record(input)); err != nil {
			return nil, err
		}
	}

	rec, err := c.res.Deserialize(input, false)
	if err != nil {
		return nil, err
	}
	created, err := c.col.Insert(ctx, rec)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", c.res.Name, err)
	}

	payload, err := json.Marshal(c.res.Serialize(created, nil))
	if err != nil {
		return nil, err
	}
	c.cache.Write(ctx, c.cache.ObjectKey(c.pkString(created), nil), payload)
	c.cache.InvalidateList(ctx)

	if hooks.PostCreate != nil {
		hooks.PostCreate(ctx, created)
	}
	return payload, nil
}

// Update handles PUT /{id} with partial semantics. A single field outside
// the update allow-list rejects the whole request before anything mutates.
func (c *Controller) Update(ctx context.Context, pk string, body []byte) ([]byte, error) {
	if !c.res.MethodAllowed(OpUpdate) {
		return nil, ErrMethodNotAllowed
	}
	hooks := hooksFor(c.res.Name)

	existing, err := c.col.GetByKey(ctx, c.res.CoercePK(pk))
	if err != nil {
		return nil, err
	}

	input, err := decodeBody(body)
	if err != nil {
		return nil, err
	}
	if hooks.PreUpdate != nil {
		if err := hooks.PreUpdate(ctx, existing, Record(input)); err != nil {
			return nil, err
		}
	}

	if !isWildcard(c.res.UpdateFields) {
		submitted := make([]string, 0, len(input))
		for field := range input {
			submitted = append(submitted, field)
		}
		sort.Strings(submitted)
		for _, field := range submitted {
			if !c.res.AllowsUpdate(field) {
				return nil, &ForbiddenFieldError{Field: field}
			}
		}
	}

	changes, err := c.res.Deserialize(input, true)
	if err != nil {
		return nil, err
	}
	updated, err := c.col.Update(ctx, c.res.CoercePK(pk), changes)
	if err != nil {
		return nil, fmt.Errorf("update %s: %w", c.res.Name, err)
	}

	c.cache.InvalidateObject(ctx, pk)
	c.cache.InvalidateList(ctx)

	if hooks.PostUpdate != nil {
		hooks.PostUpdate(ctx, updated)
	}
	return json.Marshal(c.res.Serialize(updated, nil))
}

// Delete handles DELETE /{id}. Caches are invalidated before the mutation
// so a mid-delete failure never leaves stale reads behind. Resources with a
// removal flag get a soft delete; anything else is removed physically.
func (c *Controller) Delete(ctx context.Context, pk string) error {
	if !c.res.MethodAllowed(OpDelete) {
		return ErrMethodNotAllowed
	}
	hooks := hooksFor(c.res.Name)

	existing, err := c.col.GetByKey(ctx, c.res.CoercePK(pk))
	if err != nil {
		return err
	}

	c.cache.InvalidateObject(ctx, pk)
	c.cache.InvalidateList(ctx)

	if hooks.PreDelete != nil {
		if err := hooks.PreDelete(ctx, existing); err != nil {
			return err
		}
	}

	if c.res.SoftDelete() {
		_, err = c.col.Update(ctx, c.res.CoercePK(pk), Record{SoftDeleteField: true})
	} else {
		err = c.col.Delete(ctx, c.res.CoercePK(pk))
	}
	if err != nil {
		return fmt.Errorf("delete %s: %w", c.res.Name, err)
	}

	if hooks.PostDelete != nil {
		hooks.PostDelete(ctx, existing)
	}
	logger.Info("record_deleted", map[string]any{
		"resource": c.res.Name,
		"pk":       pk,
		"soft":     c.res.SoftDelete(),
	})
	return nil
}

func (c *Controller) pkString(rec Record) string {
	return fmt.Sprint(rec[c.res.PrimaryKey])
}

func decodeBody(body []byte) (map[string]any, error) {
	var input map[string]any
	if err := json.Unmarshal(body, &input); err != nil {
		return nil, &ValidationError{Fields: map[string]string{
			"_body": "invalid JSON payload",
		}}
	}
	return input, nil
}

// CoercePK converts the path segment to the declared primary key type so
// the storage layer compares values, not strings.
func (r *Resource) CoercePK(pk string) any {
	f := r.FieldByName(r.PrimaryKey)
	if f == nil {
		return pk
	}
	switch f.Type {
	case "int":
		if n, err := strconv.ParseInt(pk, 10, 64); err == nil {
			return n
		}
	case "float":
		if n, err := strconv.ParseFloat(pk, 64); err == nil {
			return n
		}
	}
	return pk
}
