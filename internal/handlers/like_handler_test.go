package handlers_test

import (
	"net/http"
	"testing"

	"github.com/quillhub/quill/backend/internal/models"
)

func TestLikeStateMachine(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	_, bob := s.user(t, "bob", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	answer := s.createAnswer(t, alice, post.ID, "a")
	url := path("/post/%d/like/", answer.ID)

	expect(t, s.do(t, http.MethodPost, url, bob, nil), http.StatusCreated)

	rec := s.do(t, http.MethodPost, url, bob, nil)
	expect(t, rec, http.StatusConflict)
	if got := detail(t, rec); got != "Already liked" {
		t.Fatalf("detail = %q", got)
	}
	if n := s.count(t, &models.Like{}, ""); n != 1 {
		t.Fatalf("likes = %d, want 1", n)
	}

	expect(t, s.do(t, http.MethodDelete, url, bob, nil), http.StatusOK)

	rec = s.do(t, http.MethodDelete, url, bob, nil)
	expect(t, rec, http.StatusConflict)
	if got := detail(t, rec); got != "Not liked yet" {
		t.Fatalf("detail = %q", got)
	}

	// liking again after unliking is a fresh transition
	expect(t, s.do(t, http.MethodPost, path("/answer/%d/like/", answer.ID), bob, nil), http.StatusCreated)
}

func TestLikeTargetComesFromPath(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	bob, bobToken := s.user(t, "bob", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	first := s.createAnswer(t, alice, post.ID, "first")
	second := s.createAnswer(t, alice, post.ID, "second")

	rec := s.do(t, http.MethodPost, path("/post/%d/like/", first.ID), bobToken, map[string]interface{}{
		"post":      second.ID,
		"answer_id": second.ID,
		"user":      alice,
	})
	expect(t, rec, http.StatusCreated)

	var like models.Like
	s.db.First(&like)
	if like.AnswerID != first.ID || like.UserID != bob.ID {
		t.Fatalf("like = %+v, want answer %d by user %d", like, first.ID, bob.ID)
	}
	expect(t, s.do(t, http.MethodPost, "/post/999/like/", bobToken, nil), http.StatusNotFound)
}

func TestListLiked(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	_, bob := s.user(t, "bob", false)
	first := s.createPost(t, alice, map[string]interface{}{"title": "First post"})
	second := s.createPost(t, alice, map[string]interface{}{"title": "Second post"})
	a1 := s.createAnswer(t, alice, first.ID, "x")
	a2 := s.createAnswer(t, alice, second.ID, "y")

	expect(t, s.do(t, http.MethodGet, "/liked/", "", nil), http.StatusUnauthorized)

	expect(t, s.do(t, http.MethodPost, path("/post/%d/like/", a2.ID), bob, nil), http.StatusCreated)
	expect(t, s.do(t, http.MethodPost, path("/post/%d/like/", a1.ID), bob, nil), http.StatusCreated)
	expect(t, s.do(t, http.MethodPost, path("/post/%d/like/", a1.ID), alice, nil), http.StatusCreated)

	rec := s.do(t, http.MethodGet, "/liked/", bob, nil)
	expect(t, rec, http.StatusOK)
	var liked []struct {
		Post string `json:"post"`
		User string `json:"user"`
		URL  string `json:"url"`
	}
	decode(t, rec, &liked)
	if len(liked) != 2 {
		t.Fatalf("liked = %+v, want 2 entries", liked)
	}
	if liked[0].Post != "Second post" || liked[0].User != "bob" || liked[0].URL != path("/post/%d/", second.ID) {
		t.Errorf("liked[0] = %+v", liked[0])
	}
	if liked[1].Post != "First post" || liked[1].URL != path("/post/%d/", first.ID) {
		t.Errorf("liked[1] = %+v", liked[1])
	}

	rec = s.do(t, http.MethodGet, "/liked/", alice, nil)
	expect(t, rec, http.StatusOK)
	decode(t, rec, &liked)
	if len(liked) != 1 || liked[0].User != "alice" {
		t.Fatalf("alice liked = %+v", liked)
	}
}
