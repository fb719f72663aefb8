package kobo

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/bbdaniels/kobo-mcp/internal/kobotest"
)

func TestGetSubmissions_Empty(t *testing.T) {
	srv := kobotest.NewServer(t)
	uid := srv.AddForm("empty", 0)

	page, err := NewSubmissionService(newTestClient(t, srv)).GetSubmissions(context.Background(), uid, SubmissionQuery{})
	if err != nil {
		t.Fatalf("GetSubmissions error: %v", err)
	}
	if page.Count != 0 {
		t.Errorf("count: got %d", page.Count)
	}
	data, _ := json.Marshal(page)
	if string(data) != `{"count":0,"results":[]}` {
		t.Errorf("encoding: got %s", data)
	}
}

func TestGetSubmissions_Paging(t *testing.T) {
	srv := kobotest.NewServer(t)
	uid := srv.AddForm("household", 25)
	subs := NewSubmissionService(newTestClient(t, srv))

	seen := make(map[int]bool)
	const limit = 10
	for start := 0; start < 25; start += limit {
		page, err := subs.GetSubmissions(context.Background(), uid, SubmissionQuery{Limit: limit, Start: start})
		if err != nil {
			t.Fatalf("GetSubmissions(start=%d) error: %v", start, err)
		}
		if page.Count != 25 {
			t.Errorf("count: got %d", page.Count)
		}
		for i, r := range page.Results {
			id := r.Int("_id")
			if seen[id] {
				t.Errorf("submission %d returned twice", id)
			}
			seen[id] = true
			if id != start+i+1 {
				t.Errorf("offset %d: got _id %d", start+i, id)
			}
		}
	}
	if len(seen) != 25 {
		t.Errorf("pages should cover all submissions, saw %d", len(seen))
	}
}

func TestGetSubmissions_Query(t *testing.T) {
	srv := kobotest.NewServer(t)
	uid := srv.AddForm("household", 1)
	subs := NewSubmissionService(newTestClient(t, srv))

	filter := `{"answer":"response-1"}`
	if _, err := subs.GetSubmissions(context.Background(), uid, SubmissionQuery{Filter: filter}); err != nil {
		t.Fatalf("GetSubmissions error: %v", err)
	}
	if srv.LastQuery() != filter {
		t.Errorf("query: got %q", srv.LastQuery())
	}
}

func TestGetSubmissions_InvalidArguments(t *testing.T) {
	srv := kobotest.NewServer(t)
	uid := srv.AddForm("household", 1)
	subs := NewSubmissionService(newTestClient(t, srv))

	tests := []struct {
		name string
		uid  string
		q    SubmissionQuery
	}{
		{"bad json", uid, SubmissionQuery{Filter: "{not json"}},
		{"negative start", uid, SubmissionQuery{Start: -1}},
		{"limit too large", uid, SubmissionQuery{Limit: MaxSubmissionLimit + 1}},
		{"negative limit", uid, SubmissionQuery{Limit: -5}},
		{"missing uid", "", SubmissionQuery{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := subs.GetSubmissions(context.Background(), tt.uid, tt.q)
			if KindOf(err) != KindInvalidArgument {
				t.Errorf("kind: got %q (%v)", KindOf(err), err)
			}
		})
	}
}

func TestGetSubmissions_NotFound(t *testing.T) {
	srv := kobotest.NewServer(t)
	_, err := NewSubmissionService(newTestClient(t, srv)).GetSubmissions(context.Background(), "nonexistent", SubmissionQuery{})
	if KindOf(err) != KindNotFound {
		t.Fatalf("kind: got %q (%v)", KindOf(err), err)
	}
}
