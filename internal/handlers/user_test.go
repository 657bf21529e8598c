package handlers_test

import (
	"net/http"
	"testing"
)

func TestProfiles(t *testing.T) {
	s := newTestServer(t)
	_, alice := s.user(t, "alice", true)

	expect(t, s.do(t, http.MethodGet, "/users/me/", "", nil), http.StatusUnauthorized)

	rec := s.do(t, http.MethodGet, "/users/me/", alice, nil)
	expect(t, rec, http.StatusOK)
	var me map[string]interface{}
	decode(t, rec, &me)
	if me["username"] != "alice" || me["email"] != "alice@example.com" || me["is_admin"] != true {
		t.Fatalf("me = %v", me)
	}

	rec = s.do(t, http.MethodGet, "/users/alice/", "", nil)
	expect(t, rec, http.StatusOK)
	var public map[string]interface{}
	decode(t, rec, &public)
	if public["username"] != "alice" {
		t.Fatalf("profile = %v", public)
	}
	if _, ok := public["email"]; ok {
		t.Fatal("public profile exposes email")
	}

	expect(t, s.do(t, http.MethodGet, "/users/nobody/", "", nil), http.StatusNotFound)
}
