package httpadapter

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/clipsense/retrieval/internal/core/domain"
)

type fakeAnswerer struct {
	answer     domain.Answer
	err        error
	transcript string
	question   string
}

func (f *fakeAnswerer) AnswerQuestion(_ context.Context, _, transcript, question string, _ []domain.ChatMessage) (domain.Answer, error) {
	f.transcript = transcript
	f.question = question
	return f.answer, f.err
}

type fakePurger struct {
	purged []string
	err    error
}

func (f *fakePurger) Purge(_ context.Context, documentID string) error {
	f.purged = append(f.purged, documentID)
	return f.err
}

type fakeQueue struct {
	published []string
	err       error
}

func (f *fakeQueue) PublishCachePurge(_ context.Context, documentID string) error {
	f.published = append(f.published, documentID)
	return f.err
}

func (f *fakeQueue) SubscribeCachePurge(context.Context, func(context.Context, string) error) error {
	return nil
}

func newTestHandler(answerer *fakeAnswerer, purger *fakePurger, queue *fakeQueue) http.Handler {
	return NewRouter(answerer, purger, queue, nil, nil).Handler()
}

func TestChatReturnsAnswer(t *testing.T) {
	answerer := &fakeAnswerer{answer: domain.Answer{Text: "the speaker covers it at 2:35", Method: domain.MethodVector}}
	handler := newTestHandler(answerer, &fakePurger{}, &fakeQueue{})

	body := `{"video_id":"vid-1","transcript":"long transcript","question":"when?"}`
	req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Answer string `json:"answer"`
		Method string `json:"method"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Answer != "the speaker covers it at 2:35" || resp.Method != "vector" {
		t.Fatalf("got %+v", resp)
	}
	if answerer.question != "when?" {
		t.Fatalf("question passed through = %q", answerer.question)
	}
}

func TestChatValidatesRequest(t *testing.T) {
	handler := newTestHandler(&fakeAnswerer{}, &fakePurger{}, &fakeQueue{})

	cases := []struct {
		name string
		body string
	}{
		{"invalid json", `{`},
		{"missing video_id", `{"transcript":"t","question":"q"}`},
		{"missing question", `{"video_id":"vid-1","transcript":"t"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d", rec.Code)
			}
		})
	}
}

func TestChatRejectsNonPost(t *testing.T) {
	handler := newTestHandler(&fakeAnswerer{}, &fakePurger{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/v1/chat", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestChatMapsDomainErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"invalid input", domain.WrapError(domain.ErrInvalidInput, "answer", errors.New("empty question")), http.StatusBadRequest},
		{"no context", domain.WrapError(domain.ErrNoContext, "chunk", errors.New("zero chunks")), http.StatusUnprocessableEntity},
		{"no answer", domain.WrapError(domain.ErrNoAnswer, "answer", errors.New("exhausted")), http.StatusUnprocessableEntity},
		{"backend unavailable", domain.WrapError(domain.ErrBackendUnavailable, "rank", errors.New("down")), http.StatusServiceUnavailable},
		{"provider timeout", domain.WrapError(domain.ErrProviderTimeout, "embed", errors.New("deadline")), http.StatusServiceUnavailable},
		{"generation failed", domain.WrapError(domain.ErrGenerationFailed, "generate", errors.New("model error")), http.StatusBadGateway},
		{"unknown", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := newTestHandler(&fakeAnswerer{err: tc.err}, &fakePurger{}, &fakeQueue{})
			body := `{"video_id":"vid-1","transcript":"t","question":"q"}`
			req := httptest.NewRequest(http.MethodPost, "/v1/chat", strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, req)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if strings.Contains(rec.Body.String(), "boom") {
				t.Fatal("internal error detail must not leak to callers")
			}
		})
	}
}

func TestPurgeCacheDeletesAndPublishes(t *testing.T) {
	purger := &fakePurger{}
	queue := &fakeQueue{}
	handler := newTestHandler(&fakeAnswerer{}, purger, queue)

	req := httptest.NewRequest(http.MethodDelete, "/v1/cache/vid-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("status = %d", rec.Code)
	}
	if len(purger.purged) != 1 || purger.purged[0] != "vid-1" {
		t.Fatalf("purged = %v", purger.purged)
	}
	if len(queue.published) != 1 || queue.published[0] != "vid-1" {
		t.Fatalf("published = %v", queue.published)
	}
}

func TestPurgeCachePublishFailureIsNotFatal(t *testing.T) {
	purger := &fakePurger{}
	queue := &fakeQueue{err: errors.New("nats down")}
	handler := newTestHandler(&fakeAnswerer{}, purger, queue)

	req := httptest.NewRequest(http.MethodDelete, "/v1/cache/vid-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Fatalf("publish failure must not fail the purge, status = %d", rec.Code)
	}
}

func TestPurgeCacheValidation(t *testing.T) {
	handler := newTestHandler(&fakeAnswerer{}, &fakePurger{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/cache/", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("empty id: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodDelete, "/v1/cache/a/b", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("nested path: status = %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/v1/cache/vid-1", nil)
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("wrong method: status = %d", rec.Code)
	}
}

func TestPurgeCacheBackendFailure(t *testing.T) {
	handler := newTestHandler(&fakeAnswerer{}, &fakePurger{err: errors.New("db down")}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodDelete, "/v1/cache/vid-1", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	handler := newTestHandler(&fakeAnswerer{}, &fakePurger{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestRequestIDHeader(t *testing.T) {
	handler := newTestHandler(&fakeAnswerer{}, &fakePurger{}, &fakeQueue{})

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("response must carry a generated request id")
	}

	req = httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-Id", "caller-supplied")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-Id"); got != "caller-supplied" {
		t.Fatalf("caller request id must be kept, got %q", got)
	}
}
