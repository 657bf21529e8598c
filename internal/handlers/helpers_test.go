package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/quillhub/quill/backend/internal/middleware"
	"github.com/quillhub/quill/backend/internal/models"
	"github.com/quillhub/quill/backend/internal/router"
	"github.com/quillhub/quill/backend/pkg/cache"
	"github.com/quillhub/quill/backend/pkg/config"
)

const testSecret = "test-secret"

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T, configure ...func(*router.Deps)) *testServer {
	t.Helper()

	db, err := config.OpenSQL("sqlite://"+filepath.Join(t.TempDir(), "quill.db"), logger.Silent)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := config.Migrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	deps := router.Deps{
		SQL:       db,
		JWTSecret: testSecret,
		JWTTTL:    time.Hour,
	}
	for _, fn := range configure {
		fn(&deps)
	}

	e := echo.New()
	router.SetupRoutes(e, deps)
	return &testServer{e: e, db: db}
}

// user inserts an account and returns it with a valid token
func (s *testServer) user(t *testing.T, username string, admin bool) (*models.User, string) {
	t.Helper()
	u := &models.User{Username: username, Email: username + "@example.com", IsAdmin: admin}
	if err := s.db.Create(u).Error; err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	token, err := middleware.SignToken(testSecret, u, time.Hour)
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return u, token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	return rec
}

// expect fails the test unless the response has the given status
func expect(t *testing.T, rec *httptest.ResponseRecorder, status int) {
	t.Helper()
	if rec.Code != status {
		t.Fatalf("status = %d, want %d; body: %s", rec.Code, status, rec.Body.String())
	}
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func detail(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Detail string `json:"detail"`
	}
	decode(t, rec, &body)
	return body.Detail
}

type postBody struct {
	ID       uint         `json:"id"`
	User     string       `json:"user"`
	Title    string       `json:"title"`
	Slug     string       `json:"slug"`
	Status   string       `json:"status"`
	Tag      []uint       `json:"tag"`
	Answers  []answerBody `json:"answers"`
	Carousel []string     `json:"carousel"`
}

type answerBody struct {
	User    string   `json:"user"`
	Text    string   `json:"text"`
	Rating  *float64 `json:"rating"`
	Like    int      `json:"like"`
	LikedBy []string `json:"liked_by"`
}

func (s *testServer) createPost(t *testing.T, token string, body map[string]interface{}) postBody {
	t.Helper()
	rec := s.do(t, "POST", "/post/", token, body)
	expect(t, rec, 201)
	var post postBody
	decode(t, rec, &post)
	return post
}

func (s *testServer) getPost(t *testing.T, id uint) postBody {
	t.Helper()
	rec := s.do(t, "GET", path("/post/%d/", id), "", nil)
	expect(t, rec, 200)
	var post postBody
	decode(t, rec, &post)
	return post
}

func (s *testServer) createAnswer(t *testing.T, token string, postID uint, text string) models.Answer {
	t.Helper()
	rec := s.do(t, "POST", path("/post/%d/answer/", postID), token, map[string]string{"text": text})
	expect(t, rec, 201)

	var answer models.Answer
	if err := s.db.Where("post_id = ? AND text = ?", postID, text).Order("id DESC").First(&answer).Error; err != nil {
		t.Fatalf("load created answer: %v", err)
	}
	return answer
}

func (s *testServer) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := s.db.Model(model)
	if query != "" {
		q = q.Where(query, args...)
	}
	if err := q.Count(&n).Error; err != nil {
		t.Fatalf("count: %v", err)
	}
	return n
}

// memoryCache records writes and invalidations of the post cache
type memoryCache struct {
	mu      sync.Mutex
	items   map[string]string
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{items: map[string]string{}}
}

func (m *memoryCache) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.items[key]
	if !ok {
		return "", cache.ErrMiss
	}
	return v, nil
}

func (m *memoryCache) Set(_ context.Context, key, val string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[key] = val
	return nil
}

func (m *memoryCache) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
		m.deleted = append(m.deleted, k)
	}
	return nil
}

func (m *memoryCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.items[key]
	return ok
}

func path(format string, args ...interface{}) string {
	return fmt.Sprintf(format, args...)
}

var errUnavailable = errors.New("backend unavailable")
