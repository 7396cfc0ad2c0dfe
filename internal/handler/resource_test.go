package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"GrestAPI/internal/resource"
	"GrestAPI/internal/storage"
)

func newHandler(t *testing.T) (http.HandlerFunc, *storage.MemoryCollection) {
	t.Helper()
	res := &resource.Resource{
		Name:       "notes",
		Table:      "notes",
		PrimaryKey: "id",
		Fields: []resource.Field{
			{Name: "id", Type: "int", ReadOnly: true},
			{Name: "text", Type: "string", Required: true},
		},
		Methods:      []string{resource.OpList, resource.OpRetrieve, resource.OpCreate, resource.OpUpdate, resource.OpDelete},
		FilterFields: []string{"*"},
		UpdateFields: []string{"*"},
		SelectFields: []string{"*"},
		PageSize:     20,
	}
	col := storage.NewMemoryCollection(res)
	ctrl := resource.NewController(res, col, nil)
	return Resource("/api/notes", ctrl), col
}

func serve(h http.HandlerFunc, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec
}

func TestDispatch(t *testing.T) {
	h, col := newHandler(t)
	col.Seed(resource.Record{"id": int64(1), "text": "hello"})

	cases := []struct {
		method, path, body string
		wantStatus         int
	}{
		{http.MethodGet, "/api/notes", "", http.StatusOK},
		{http.MethodGet, "/api/notes/", "", http.StatusOK},
		{http.MethodGet, "/api/notes/1", "", http.StatusOK},
		{http.MethodPost, "/api/notes", `{"text":"x"}`, http.StatusCreated},
		{http.MethodPut, "/api/notes/1", `{"text":"y"}`, http.StatusOK},
		{http.MethodDelete, "/api/notes/1", "", http.StatusNoContent},
		{http.MethodPatch, "/api/notes/1", `{}`, http.StatusMethodNotAllowed},
		{http.MethodPost, "/api/notes/1", `{}`, http.StatusMethodNotAllowed},
		{http.MethodDelete, "/api/notes", "", http.StatusMethodNotAllowed},
		{http.MethodGet, "/api/notes/1/sub", "", http.StatusNotFound},
	}
	for _, tc := range cases {
		rec := serve(h, tc.method, tc.path, tc.body)
		if rec.Code != tc.wantStatus {
			t.Errorf("%s %s = %d, want %d (body %q)", tc.method, tc.path, rec.Code, tc.wantStatus, rec.Body.String())
		}
	}
}

func TestErrorBodies(t *testing.T) {
	h, _ := newHandler(t)

	rec := serve(h, http.MethodGet, "/api/notes/42", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["error"] != "not found" {
		t.Errorf("body = %v", body)
	}

	rec = serve(h, http.MethodPost, "/api/notes", `{}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if problems, ok := body["error"].(map[string]any); !ok || problems["text"] == nil {
		t.Errorf("validation body = %v", body)
	}

	// 405 carries no body
	res := &resource.Resource{
		Name:       "notes",
		Table:      "notes",
		PrimaryKey: "id",
		Fields:     []resource.Field{{Name: "id", Type: "int"}},
		Methods:    []string{resource.OpRetrieve},
		PageSize:   20,
	}
	gated := Resource("/api/notes", resource.NewController(res, storage.NewMemoryCollection(res), nil))
	rec = serve(gated, http.MethodGet, "/api/notes", "")
	if rec.Code != http.StatusMethodNotAllowed || rec.Body.Len() != 0 {
		t.Errorf("gated list: status=%d body=%q", rec.Code, rec.Body.String())
	}
}
