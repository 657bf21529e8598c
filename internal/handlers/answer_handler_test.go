package handlers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/quillhub/quill/backend/internal/models"
)

func TestCreateAnswerInjectsAuthorAndPost(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	bob, bobToken := s.user(t, "bob", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	other := s.createPost(t, alice, map[string]interface{}{"title": "elsewhere"})

	// user and post in the payload are ignored
	rec := s.do(t, http.MethodPost, path("/post/%d/answer/", post.ID), bobToken, map[string]interface{}{
		"text":    "an answer",
		"user":    "alice",
		"user_id": 1,
		"post":    other.ID,
	})
	expect(t, rec, http.StatusCreated)

	var body map[string]interface{}
	decode(t, rec, &body)
	if body["user"] != "bob" || body["text"] != "an answer" {
		t.Fatalf("answer = %v", body)
	}
	for _, field := range []string{"id", "post", "post_id"} {
		if _, ok := body[field]; ok {
			t.Errorf("answer representation exposes %q", field)
		}
	}
	if rating, ok := body["rating"]; !ok || rating != 0.0 {
		t.Errorf("rating = %v (present %v), want 0", rating, ok)
	}
	if likedBy, ok := body["liked_by"].([]interface{}); !ok || len(likedBy) != 0 {
		t.Errorf("liked_by = %v, want empty list", body["liked_by"])
	}

	var stored models.Answer
	s.db.First(&stored)
	if stored.UserID != bob.ID || stored.PostID != post.ID {
		t.Fatalf("stored answer = %+v", stored)
	}
}

func TestCreateAnswerErrors(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})

	expect(t, s.do(t, http.MethodPost, path("/post/%d/answer/", post.ID), "", map[string]string{"text": "x"}), http.StatusUnauthorized)
	expect(t, s.do(t, http.MethodPost, path("/post/%d/answer/", post.ID), alice, map[string]string{"text": ""}), http.StatusBadRequest)
	expect(t, s.do(t, http.MethodPost, "/post/404/answer/", alice, map[string]string{"text": "x"}), http.StatusNotFound)
}

func TestDeleteAnswerIsOwnerOnly(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	_, bob := s.user(t, "bob", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	answer := s.createAnswer(t, bob, post.ID, "bob's answer")
	expect(t, s.do(t, http.MethodPost, path("/post/%d/like/", answer.ID), alice, nil), http.StatusCreated)

	url := path("/post/%d/answer/?answer_id=%d", post.ID, answer.ID)

	// the post owner does not own the answer
	expect(t, s.do(t, http.MethodDelete, url, alice, nil), http.StatusForbidden)
	expect(t, s.do(t, http.MethodDelete, url, "", nil), http.StatusUnauthorized)
	expect(t, s.do(t, http.MethodDelete, path("/post/%d/answer/", post.ID), bob, nil), http.StatusBadRequest)

	other := s.createPost(t, alice, map[string]interface{}{"title": "other"})
	expect(t, s.do(t, http.MethodDelete, path("/post/%d/answer/?answer_id=%d", other.ID, answer.ID), bob, nil), http.StatusNotFound)

	expect(t, s.do(t, http.MethodDelete, url, bob, nil), http.StatusNoContent)
	if n := s.count(t, &models.Answer{}, ""); n != 0 {
		t.Fatalf("answers = %d, want 0", n)
	}
	if n := s.count(t, &models.Like{}, ""); n != 0 {
		t.Fatalf("likes = %d, want 0 after answer delete", n)
	}
	expect(t, s.do(t, http.MethodDelete, url, bob, nil), http.StatusNotFound)
}

func TestDeleteAnswerFromBody(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	answer := s.createAnswer(t, alice, post.ID, "mine")

	rec := s.do(t, http.MethodDelete, path("/post/%d/answer/", post.ID), alice, map[string]uint{"answer_id": answer.ID})
	expect(t, rec, http.StatusNoContent)
}

func TestStandaloneAnswerResource(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	_, bob := s.user(t, "bob", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})

	expect(t, s.do(t, http.MethodPost, "/answer/", bob, map[string]interface{}{"text": "no post"}), http.StatusBadRequest)
	expect(t, s.do(t, http.MethodPost, "/answer/", bob, map[string]interface{}{"post": 999, "text": "x"}), http.StatusNotFound)

	rec := s.do(t, http.MethodPost, "/answer/", bob, map[string]interface{}{"post": post.ID, "text": "standalone"})
	expect(t, rec, http.StatusCreated)

	got := s.getPost(t, post.ID)
	if len(got.Answers) != 1 || got.Answers[0].Text != "standalone" || got.Answers[0].User != "bob" {
		t.Fatalf("answers = %+v", got.Answers)
	}

	var answer models.Answer
	s.db.First(&answer)
	expect(t, s.do(t, http.MethodDelete, path("/answer/%d/", answer.ID), alice, nil), http.StatusForbidden)
	expect(t, s.do(t, http.MethodDelete, path("/answer/%d/", answer.ID), bob, nil), http.StatusNoContent)
}

func TestPostDetailAggregatesAnswers(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", false)
	_, bob := s.user(t, "bob", false)
	_, carol := s.user(t, "carol", false)
	post := s.createPost(t, alice, map[string]interface{}{"title": "q"})
	first := s.createAnswer(t, bob, post.ID, "first")
	s.createAnswer(t, carol, post.ID, "second")

	for _, token := range []string{alice, carol} {
		expect(t, s.do(t, http.MethodPost, path("/post/%d/like/", first.ID), token, nil), http.StatusCreated)
	}
	for token, value := range map[string]int{alice: 4, bob: 5, carol: 4} {
		expect(t, s.do(t, http.MethodPost, path("/post/%d/set-rating/", first.ID), token, map[string]int{"rating": value}), http.StatusCreated)
	}

	got := s.getPost(t, post.ID)
	if len(got.Answers) != 2 {
		t.Fatalf("answers = %+v", got.Answers)
	}
	a, b := got.Answers[0], got.Answers[1]
	if a.Text != "first" || b.Text != "second" {
		t.Fatalf("answers out of order: %q, %q", a.Text, b.Text)
	}
	if a.Rating == nil || *a.Rating != 4.3 {
		t.Errorf("first rating = %v, want 4.3", a.Rating)
	}
	if a.Like != 2 || strings.Join(a.LikedBy, ",") != "alice,carol" {
		t.Errorf("first likes = %d %v", a.Like, a.LikedBy)
	}
	if b.Rating == nil || *b.Rating != 0 {
		t.Errorf("second rating = %v, want 0", b.Rating)
	}
	if b.Like != 0 || b.LikedBy == nil || len(b.LikedBy) != 0 {
		t.Errorf("second likes = %d %v", b.Like, b.LikedBy)
	}
}
