package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"firebase.google.com/go/v4/auth"

	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/router"
)

type tokenBody struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

func TestSignupAndSignin(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/auth/signup/", "", map[string]string{
		"username": "dana",
		"email":    "dana@example.com",
		"password": "correct horse",
	})
	expect(t, rec, http.StatusCreated)
	var signup tokenBody
	decode(t, rec, &signup)
	if signup.Token == "" || signup.Username != "dana" {
		t.Fatalf("signup = %+v", signup)
	}

	var stored models.User
	s.db.Where("username = ?", "dana").First(&stored)
	if stored.Password == "" || stored.Password == "correct horse" {
		t.Fatal("password not hashed")
	}

	// the issued token authenticates
	s.createPost(t, signup.Token, map[string]interface{}{"title": "by dana"})

	cases := []struct {
		name   string
		path   string
		body   map[string]string
		status int
	}{
		{"duplicate username", "/auth/signup/", map[string]string{"username": "dana", "email": "other@example.com", "password": "12345678"}, http.StatusBadRequest},
		{"duplicate email", "/auth/signup/", map[string]string{"username": "dana2", "email": "dana@example.com", "password": "12345678"}, http.StatusBadRequest},
		{"short password", "/auth/signup/", map[string]string{"username": "eve", "email": "eve@example.com", "password": "short"}, http.StatusBadRequest},
		{"bad email", "/auth/signup/", map[string]string{"username": "eve", "email": "eve", "password": "12345678"}, http.StatusBadRequest},
		{"wrong password", "/auth/signin/", map[string]string{"username": "dana", "password": "wrong horse"}, http.StatusUnauthorized},
		{"unknown user", "/auth/signin/", map[string]string{"username": "nobody", "password": "whatever1"}, http.StatusUnauthorized},
		{"signin", "/auth/signin/", map[string]string{"username": "dana", "password": "correct horse"}, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expect(t, s.do(t, http.MethodPost, tc.path, "", tc.body), tc.status)
		})
	}
}

// fakeVerifier accepts the ID tokens it knows
type fakeVerifier map[string]*auth.Token

func (f fakeVerifier) VerifyIDToken(_ context.Context, idToken string) (*auth.Token, error) {
	tok, ok := f[idToken]
	if !ok {
		return nil, errors.New("token has expired")
	}
	return tok, nil
}

func TestFirebaseLogin(t *testing.T) {
	verifier := fakeVerifier{
		"new-user": {UID: "uid-new", Claims: map[string]interface{}{"email": "fresh@example.com", "name": "Fresh Face"}},
		"existing": {UID: "uid-existing", Claims: map[string]interface{}{"email": "alice@example.com"}},
	}
	s := newTestServer(t, func(d *router.Deps) { d.FirebaseAuth = verifier })
	alice, _ := s.user(t, "alice", false)

	login := func(idToken string) tokenBody {
		t.Helper()
		rec := s.do(t, http.MethodPost, "/auth/firebase-login/", "", map[string]string{"idToken": idToken})
		expect(t, rec, http.StatusOK)
		var body tokenBody
		decode(t, rec, &body)
		return body
	}

	first := login("new-user")
	if first.Username != "Fresh_Face" || first.Token == "" {
		t.Fatalf("first login = %+v", first)
	}
	again := login("new-user")
	if again.Username != first.Username {
		t.Fatalf("second login created another account: %+v", again)
	}
	if n := s.count(t, &models.User{}, "firebase_uid = ?", "uid-new"); n != 1 {
		t.Fatalf("users with uid = %d, want 1", n)
	}

	linked := login("existing")
	if linked.Username != alice.Username {
		t.Fatalf("email match not linked: %+v", linked)
	}
	var stored models.User
	s.db.First(&stored, alice.ID)
	if stored.FirebaseUID == nil || *stored.FirebaseUID != "uid-existing" {
		t.Fatalf("firebase uid = %v", stored.FirebaseUID)
	}

	expect(t, s.do(t, http.MethodPost, "/auth/firebase-login/", "", map[string]string{"idToken": "forged"}), http.StatusUnauthorized)
	expect(t, s.do(t, http.MethodPost, "/auth/firebase-login/", "", map[string]string{}), http.StatusBadRequest)
}

func TestFirebaseLoginDisabled(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodPost, "/auth/firebase-login/", "", map[string]string{"idToken": "x"})
	expect(t, rec, http.StatusServiceUnavailable)
}
