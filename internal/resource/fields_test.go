package resource

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestProjectFields_Wildcard(t *testing.T) {
	res := testResource()
	got := ProjectFields([]string{"id", "title"}, res)
	if diff := cmp.Diff([]string{"id", "title"}, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectFields_DropsUnknownAndDisallowed(t *testing.T) {
	res := testResource()
	res.SelectFields = []string{"id", "title"}

	got := ProjectFields([]string{"id", "status", "nope"}, res)
	if diff := cmp.Diff([]string{"id"}, got); diff != "" {
		t.Fatalf("projection mismatch (-want +got):\n%s", diff)
	}
}

func TestProjectFields_EmptyMeansDefaultShape(t *testing.T) {
	res := testResource()
	res.SelectFields = []string{"id"}

	if got := ProjectFields(nil, res); got != nil {
		t.Fatalf("nil request should stay nil, got %v", got)
	}
	// everything filtered away also falls back to the full shape
	if got := ProjectFields([]string{"status"}, res); got != nil {
		t.Fatalf("fully-dropped request should be nil, got %v", got)
	}
}
