package itests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"GrestAPI/internal/db"
)

var itestClient = &http.Client{Timeout: 5 * time.Second}

func callAPI(t *testing.T, method, path, payload string) (int, map[string]any) {
	t.Helper()
	var body io.Reader
	if payload != "" {
		body = bytes.NewReader([]byte(payload))
	}
	req, err := http.NewRequest(method, testBaseURL+path, body)
	if err != nil {
		t.Fatalf("build request failed: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := itestClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s failed: %v", method, path, err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)
	var out map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &out); err != nil {
			t.Fatalf("invalid JSON response for %s %s: %v; body=%s", method, path, err, raw)
		}
	}
	return resp.StatusCode, out
}

func Test_Tasks_CRUDCycle(t *testing.T) {
	requireBootstrap(t)

	status, created := callAPI(t, http.MethodPost, "/api/tasks", `{"title":"integration task","status":"active","priority":2}`)
	if status != http.StatusCreated {
		t.Fatalf("create: expected 201, got %d body=%v", status, created)
	}
	id := fmt.Sprint(int64(created["id"].(float64)))

	status, got := callAPI(t, http.MethodGet, "/api/tasks/"+id, "")
	if status != http.StatusOK || got["title"] != "integration task" {
		t.Fatalf("retrieve: status=%d body=%v", status, got)
	}

	status, got = callAPI(t, http.MethodPut, "/api/tasks/"+id, `{"status":"done"}`)
	if status != http.StatusOK || got["status"] != "done" {
		t.Fatalf("update: status=%d body=%v", status, got)
	}
	if got["title"] != "integration task" {
		t.Fatalf("partial update dropped a field: %v", got)
	}

	status, list := callAPI(t, http.MethodGet, "/api/tasks?status=done&search=integration", "")
	if status != http.StatusOK {
		t.Fatalf("list: status=%d", status)
	}
	if n := int(list["total_count"].(float64)); n < 1 {
		t.Fatalf("list does not see the updated record: %v", list)
	}

	status, _ = callAPI(t, http.MethodDelete, "/api/tasks/"+id, "")
	if status != http.StatusNoContent {
		t.Fatalf("delete: expected 204, got %d", status)
	}

	// tasks declare a removal flag, so the row survives the delete
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	var removed bool
	if err := db.Pool.QueryRow(ctx,
		`SELECT removed FROM tasks WHERE id = $1`, id,
	).Scan(&removed); err != nil {
		t.Fatalf("row missing after soft delete: %v", err)
	}
	if !removed {
		t.Fatal("removed flag not set after delete")
	}

	status, got = callAPI(t, http.MethodGet, "/api/tasks/"+id, "")
	if status != http.StatusOK || got["removed"] != true {
		t.Fatalf("soft-deleted retrieve: status=%d body=%v", status, got)
	}
	_, list = callAPI(t, http.MethodGet, "/api/tasks?status=done&search=integration", "")
	for _, o := range list["objects"].([]any) {
		if fmt.Sprint(int64(o.(map[string]any)["id"].(float64))) == id {
			t.Fatal("soft-deleted record still listed")
		}
	}
}

func Test_Tasks_Pagination(t *testing.T) {
	requireBootstrap(t)

	for i := 0; i < 25; i++ {
		payload := fmt.Sprintf(`{"title":"page fixture %02d","status":"paging"}`, i)
		if status, body := callAPI(t, http.MethodPost, "/api/tasks", payload); status != http.StatusCreated {
			t.Fatalf("seed create %d: status=%d body=%v", i, status, body)
		}
	}

	status, body := callAPI(t, http.MethodGet, "/api/tasks?status=paging&page=2", "")
	if status != http.StatusOK {
		t.Fatalf("list: status=%d", status)
	}
	if body["total_count"] != float64(25) || body["num_pages"] != float64(2) || body["current_page"] != float64(2) {
		t.Fatalf("page meta: %v", body)
	}
	if n := len(body["objects"].([]any)); n != 5 {
		t.Fatalf("page 2 length = %d, want 5", n)
	}

	// offset window over the same rows
	status, body = callAPI(t, http.MethodGet, "/api/tasks?status=paging&top=20&bottom=25", "")
	if status != http.StatusOK || len(body["objects"].([]any)) != 5 {
		t.Fatalf("offset window: status=%d body=%v", status, body)
	}
}

func Test_Articles_MethodGating(t *testing.T) {
	requireBootstrap(t)

	status, created := callAPI(t, http.MethodPost, "/api/articles", `{"title":"hello","body":"text","author":"kim"}`)
	if status != http.StatusCreated {
		t.Fatalf("create article: status=%d body=%v", status, created)
	}
	id := fmt.Sprint(int64(created["id"].(float64)))

	// articles do not declare delete
	status, _ = callAPI(t, http.MethodDelete, "/api/articles/"+id, "")
	if status != http.StatusMethodNotAllowed {
		t.Fatalf("delete article: expected 405, got %d", status)
	}

	// update allow-list covers title and body only
	status, body := callAPI(t, http.MethodPut, "/api/articles/"+id, `{"author":"someone else"}`)
	if status != http.StatusBadRequest {
		t.Fatalf("forbidden update: expected 400, got %d body=%v", status, body)
	}
}
