package steam

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func serveJSON(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_FetchBatch(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{
		"success": 1,
		"events": [
			{"gid": "evt-2", "announcement_body": {"gid": "ann-2", "headline": "Release Notes for today", "posttime": 200, "body": "[h1]notes[/h1]"}},
			{"gid": "evt-skip", "announcement_body": {"gid": "ann-skip", "headline": "Weekend sale", "posttime": 150, "body": ""}},
			{"gid": "evt-bad", "announcement_body": {"gid": "", "headline": "Update", "posttime": 100}},
			{"gid": "evt-1", "announcement_body": {"gid": "ann-1", "headline": "Patch notes", "posttime": 100, "body": "fixes"}}
		]
	}`)

	client := NewClient(Config{Endpoint: srv.URL, AppID: 730})

	batch, err := client.FetchBatch(context.Background())
	if err != nil {
		t.Fatalf("FetchBatch() error = %v", err)
	}

	// Sale entry filtered, malformed entry dropped, order preserved.
	if len(batch) != 2 {
		t.Fatalf("FetchBatch() returned %d announcements, want 2", len(batch))
	}
	if batch[0].GID != "ann-2" || batch[1].GID != "ann-1" {
		t.Errorf("batch order = [%s %s], want [ann-2 ann-1]", batch[0].GID, batch[1].GID)
	}
}

func TestClient_FetchBatch_APIFailure(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"success": 0, "err_msg": "partner events unavailable"}`)
	client := NewClient(Config{Endpoint: srv.URL})

	_, err := client.FetchBatch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchBatch() error = %v, want *FetchError", err)
	}
	if fetchErr.Msg != "partner events unavailable" {
		t.Errorf("Msg = %q", fetchErr.Msg)
	}
}

func TestClient_FetchBatch_HTTPError(t *testing.T) {
	srv := serveJSON(t, http.StatusForbidden, `denied`)
	client := NewClient(Config{Endpoint: srv.URL})

	_, err := client.FetchBatch(context.Background())

	var fetchErr *FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("FetchBatch() error = %v, want *FetchError", err)
	}
	if fetchErr.Status != http.StatusForbidden {
		t.Errorf("Status = %d, want 403", fetchErr.Status)
	}
}

func TestClient_FetchBatch_AllMalformed(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{
		"success": 1,
		"events": [
			{"gid": "evt-1", "announcement_body": {"gid": "", "headline": "Update", "posttime": 100}},
			{"gid": "evt-2"}
		]
	}`)
	client := NewClient(Config{Endpoint: srv.URL})

	if _, err := client.FetchBatch(context.Background()); err == nil {
		t.Fatal("FetchBatch() with only malformed events should fail")
	}
}

func TestClient_FetchBatch_EmptyFeed(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{"success": 1, "events": []}`)
	client := NewClient(Config{Endpoint: srv.URL})

	batch, err := client.FetchBatch(context.Background())
	if err != nil {
		t.Fatalf("FetchBatch() error = %v", err)
	}
	if len(batch) != 0 {
		t.Errorf("empty feed should yield empty batch, got %d", len(batch))
	}
}

func TestClient_FetchBatch_IgnoresUnknownFields(t *testing.T) {
	srv := serveJSON(t, http.StatusOK, `{
		"success": 1,
		"extra_top_level": true,
		"events": [
			{"gid": "evt-1", "future_field": {"nested": 1},
			 "announcement_body": {"gid": "ann-1", "headline": "Update", "posttime": 100, "body": "b", "votes_up": 9}}
		]
	}`)
	client := NewClient(Config{Endpoint: srv.URL})

	batch, err := client.FetchBatch(context.Background())
	if err != nil {
		t.Fatalf("FetchBatch() error = %v", err)
	}
	if len(batch) != 1 || batch[0].GID != "ann-1" {
		t.Errorf("unknown fields should be ignored, got %v", batch)
	}
}
