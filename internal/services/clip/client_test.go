package clip

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"phototagger/internal/media/preview"
	"phototagger/internal/services"
	"phototagger/internal/testsupport"
)

type recordedRequest struct {
	Path      string
	Auth      string
	RequestID string
	Body      embeddingRequest
}

func newEmbeddingServer(t *testing.T, requests *[]recordedRequest, vector func(i int, input string) []float32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		*requests = append(*requests, recordedRequest{
			Path:      r.URL.Path,
			Auth:      r.Header.Get("Authorization"),
			RequestID: r.Header.Get("X-Request-ID"),
			Body:      body,
		})
		data := make([]map[string]any, 0, len(body.Input))
		// Reverse order to exercise index sorting.
		for i := len(body.Input) - 1; i >= 0; i-- {
			data = append(data, map[string]any{"index": i, "embedding": vector(i, body.Input[i])})
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
	}))
}

func TestEmbedTextsOrdersByIndex(t *testing.T) {
	var requests []recordedRequest
	server := newEmbeddingServer(t, &requests, func(i int, _ string) []float32 {
		return []float32{float32(i), 1}
	})
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL + "/", APIKey: "secret", Model: "clip-demo"})
	ctx := services.WithRequestID(context.Background(), "req-1")
	vectors, err := client.EmbedTexts(ctx, []string{"Bird", "Landscape", "Portrait"})
	if err != nil {
		t.Fatalf("EmbedTexts returned error: %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	for i, v := range vectors {
		if v[0] != float32(i) {
			t.Fatalf("vector %d out of order: %v", i, v)
		}
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	req := requests[0]
	if req.Path != "/embeddings" {
		t.Fatalf("unexpected path %q", req.Path)
	}
	if req.Auth != "Bearer secret" {
		t.Fatalf("unexpected auth header %q", req.Auth)
	}
	if req.RequestID != "req-1" {
		t.Fatalf("unexpected request id %q", req.RequestID)
	}
	if req.Body.Model != "clip-demo" || req.Body.Modality != "" {
		t.Fatalf("unexpected body %+v", req.Body)
	}
}

func TestEmbedTextsRejectsBlankInput(t *testing.T) {
	client := NewClient(Config{BaseURL: "http://127.0.0.1:1"})
	if _, err := client.EmbedTexts(context.Background(), []string{"ok", "  "}); err == nil {
		t.Fatal("expected error for blank input")
	}
	vectors, err := client.EmbedTexts(context.Background(), nil)
	if err != nil || vectors != nil {
		t.Fatalf("expected nil result for empty input, got %v, %v", vectors, err)
	}
}

func TestEmbedImageSendsDataURL(t *testing.T) {
	var requests []recordedRequest
	server := newEmbeddingServer(t, &requests, func(int, string) []float32 {
		return []float32{0.5, 0.5}
	})
	defer server.Close()

	path := filepath.Join(t.TempDir(), "photo.jpg")
	testsupport.WriteImage(t, path, 300, 200)

	client := NewClient(Config{BaseURL: server.URL, Model: "clip-demo"}, WithPreviewOptions(preview.Options{MaxEdge: 64}))
	vector, err := client.EmbedImage(context.Background(), path)
	if err != nil {
		t.Fatalf("EmbedImage returned error: %v", err)
	}
	if len(vector) != 2 {
		t.Fatalf("unexpected vector %v", vector)
	}
	if len(requests) != 1 {
		t.Fatalf("expected 1 request, got %d", len(requests))
	}
	body := requests[0].Body
	if body.Modality != "image" {
		t.Fatalf("expected image modality, got %q", body.Modality)
	}
	if len(body.Input) != 1 || !strings.HasPrefix(body.Input[0], "data:image/jpeg;base64,") {
		t.Fatalf("expected jpeg data url input, got %v", body.Input)
	}
	if requests[0].Auth != "" {
		t.Fatalf("expected no auth header without api key, got %q", requests[0].Auth)
	}
}

func TestEmbedImageUnreadable(t *testing.T) {
	var calls atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "broken.jpg")
	testsupport.WriteFile(t, path, []byte("nope"))

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.EmbedImage(context.Background(), path); !errors.Is(err, services.ErrImageUnreadable) {
		t.Fatalf("expected ErrImageUnreadable, got %v", err)
	}
	if calls.Load() != 0 {
		t.Fatalf("expected no request for unreadable image, got %d", calls.Load())
	}
}

func TestEmbedImageRejectedByModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":{"message":"bad image"}}`))
	}))
	defer server.Close()

	path := filepath.Join(t.TempDir(), "photo.png")
	testsupport.WriteImage(t, path, 16, 16)

	client := NewClient(Config{BaseURL: server.URL})
	_, err := client.EmbedImage(context.Background(), path)
	if !errors.Is(err, services.ErrImageUnreadable) {
		t.Fatalf("expected ErrImageUnreadable, got %v", err)
	}
	var statusErr *httpStatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected wrapped http 400, got %v", err)
	}
}

func TestClientRetriesOnHTTP429(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.Header().Set("Retry-After", "1")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"index": 0, "embedding": []float32{1}}},
		})
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryBackoff(0, 10*time.Second),
		WithRetryMaxAttempts(5),
	)
	if _, err := client.EmbedTexts(context.Background(), []string{"sky"}); err != nil {
		t.Fatalf("EmbedTexts returned error: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 calls, got %d", calls)
	}
	if len(slept) != 1 || slept[0] != time.Second {
		t.Fatalf("expected single sleep of 1s, got %v", slept)
	}
}

func TestClientGivesUpAfterMaxAttempts(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	var slept []time.Duration
	client := NewClient(
		Config{BaseURL: server.URL},
		WithSleeper(func(d time.Duration) { slept = append(slept, d) }),
		WithRetryMaxAttempts(3),
	)
	_, err := client.EmbedTexts(context.Background(), []string{"sky"})
	if !errors.Is(err, services.ErrTransient) {
		t.Fatalf("expected ErrTransient, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 calls, got %d", calls)
	}
	want := []time.Duration{time.Second, 2 * time.Second}
	if len(slept) != len(want) || slept[0] != want[0] || slept[1] != want[1] {
		t.Fatalf("expected sleeps %v, got %v", want, slept)
	}
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	if err := client.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected health check to fail")
	}
	if calls != 1 {
		t.Fatalf("expected 1 call, got %d", calls)
	}
}

func TestClientRejectsVectorCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": []any{map[string]any{"index": 0, "embedding": []float32{1}}},
		})
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL})
	if _, err := client.EmbedTexts(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatal("expected mismatch error")
	}
}

func TestHealthCheck(t *testing.T) {
	var requests []recordedRequest
	server := newEmbeddingServer(t, &requests, func(int, string) []float32 { return []float32{1, 0} })
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL, Model: "clip-demo"}, WithRequestsPerSecond(100))
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if len(requests) != 1 || requests[0].Body.Input[0] != healthCheckLabel {
		t.Fatalf("unexpected requests %+v", requests)
	}
}

func TestMissingBaseURLIsConfigurationError(t *testing.T) {
	client := NewClient(Config{})
	_, err := client.EmbedTexts(context.Background(), []string{"sky"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected ErrConfiguration, got %v", err)
	}
}

func TestCancelledContextStopsRetries(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		cancel()
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{BaseURL: server.URL}, WithSleeper(func(time.Duration) {}))
	_, err := client.EmbedTexts(ctx, []string{"sky"})
	if err == nil {
		t.Fatal("expected error after cancellation")
	}
}

func TestParseRetryAfter(t *testing.T) {
	if d, ok := parseRetryAfter("3"); !ok || d != 3*time.Second {
		t.Fatalf("expected 3s, got %v %v", d, ok)
	}
	if _, ok := parseRetryAfter("-1"); ok {
		t.Fatal("expected negative value to be rejected")
	}
	if _, ok := parseRetryAfter(""); ok {
		t.Fatal("expected empty value to be rejected")
	}
}

func TestNewFromConfig(t *testing.T) {
	var requests []recordedRequest
	server := newEmbeddingServer(t, &requests, func(int, string) []float32 { return []float32{1} })
	defer server.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithEmbeddingURL(server.URL))
	cfg.Embedding.APIKey = "k"
	client := NewFromConfig(cfg)
	if client.Model() != cfg.Embedding.Model {
		t.Fatalf("expected model %q, got %q", cfg.Embedding.Model, client.Model())
	}
	if err := client.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck returned error: %v", err)
	}
	if len(requests) != 1 || requests[0].Auth != "Bearer k" {
		t.Fatalf("unexpected requests %+v", requests)
	}
}
