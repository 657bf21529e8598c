package handlers_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/quillhub/quill/backend/internal/handlers"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/router"
)

func TestActivityLog(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	_, bob := s.user(t, "bob", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	answer := s.createAnswer(t, bob, post.ID, "a")

	expect(t, s.do(t, http.MethodPost, path("/post/%d/like/", answer.ID), bob, nil), http.StatusCreated)
	expect(t, s.do(t, http.MethodPost, path("/post/%d/set-rating/", answer.ID), bob, map[string]int{"rating": 4}), http.StatusCreated)

	expect(t, s.do(t, http.MethodGet, "/activity/", "", nil), http.StatusUnauthorized)

	rec := s.do(t, http.MethodGet, "/activity/", bob, nil)
	expect(t, rec, http.StatusOK)
	var entries []models.Activity
	decode(t, rec, &entries)
	if len(entries) != 3 {
		t.Fatalf("entries = %+v, want 3", entries)
	}
	want := []string{models.ActivityRate, models.ActivityLike, models.ActivityAnswer}
	for i, e := range entries {
		if e.Type != want[i] {
			t.Errorf("entries[%d].Type = %q, want %q", i, e.Type, want[i])
		}
	}
	if entries[0].Value != 4 || entries[0].TargetID != answer.ID || entries[0].TargetType != "answer" {
		t.Errorf("rate entry = %+v", entries[0])
	}

	rec = s.do(t, http.MethodGet, "/activity/?limit=1", bob, nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &entries)
	if len(entries) != 1 {
		t.Fatalf("limited entries = %d, want 1", len(entries))
	}

	rec = s.do(t, http.MethodGet, "/activity/", alice, nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &entries)
	if len(entries) != 0 {
		t.Fatalf("alice entries = %+v, want none", entries)
	}
}

func TestHealthCheck(t *testing.T) {
	s := newTestServer(t)
	expect(t, s.do(t, http.MethodGet, "/health/", "", nil), http.StatusOK)

	degraded := newTestServer(t, func(d *router.Deps) {
		d.HealthChecks = map[string]handlers.Pinger{
			"redis": func(context.Context) error { return errUnavailable },
		}
	})
	rec := degraded.do(t, http.MethodGet, "/health/", "", nil)
	expect(t, rec, http.StatusServiceUnavailable)
	var body struct {
		Status   string            `json:"status"`
		Backends map[string]string `json:"backends"`
	}
	decode(t, rec, &body)
	if body.Status != "degraded" || body.Backends["redis"] != "down" || body.Backends["database"] != "up" {
		t.Fatalf("health = %+v", body)
	}
}
