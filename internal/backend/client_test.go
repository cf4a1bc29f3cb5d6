package backend_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/meetvaani/vaani/internal/backend"
)

func TestQueryDecodesReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/query" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		var req backend.QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.Query != "What is my account balance?" || req.Language != "en" {
			t.Fatalf("unexpected request payload: %+v", req)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"status": "success",
			"response": map[string]any{
				"text":       "Your balance is ₹156.50",
				"intent":     "balance",
				"confidence": 0.91,
			},
			"metrics": map[string]any{
				"processing_time_seconds": 1.6,
				"intent_confidence":       0.91,
				"containment":             true,
				"cost_usd":                0.02,
			},
		})
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	resp, err := client.Query(context.Background(), backend.QueryRequest{
		Query:      "What is my account balance?",
		Language:   "en",
		CustomerID: "CUST12345",
	})
	if err != nil {
		t.Fatalf("Query err: %v", err)
	}

	if !resp.Succeeded() {
		t.Fatalf("expected success status, got %q", resp.Status)
	}
	if resp.Response.Text != "Your balance is ₹156.50" {
		t.Fatalf("unexpected reply text: %q", resp.Response.Text)
	}
	if resp.Response.Intent != "balance" || resp.Response.Confidence != 0.91 {
		t.Fatalf("unexpected intent payload: %+v", resp.Response)
	}
	if resp.Metrics.ProcessingTimeSeconds != 1.6 || !resp.Metrics.Containment {
		t.Fatalf("unexpected metrics payload: %+v", resp.Metrics)
	}
}

func TestQueryServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	_, err := client.Query(context.Background(), backend.QueryRequest{Query: "hello"})
	if err == nil {
		t.Fatal("expected error on 500 response")
	}

	var statusErr *backend.StatusError
	if !errors.As(err, &statusErr) {
		t.Fatalf("expected StatusError, got %T", err)
	}
	if statusErr.Code != http.StatusInternalServerError {
		t.Fatalf("unexpected status code: %d", statusErr.Code)
	}
}

func TestQueryRejectsEmptyText(t *testing.T) {
	client := backend.NewClient(backend.Config{BaseURL: "http://localhost:0"})
	if _, err := client.Query(context.Background(), backend.QueryRequest{Query: "  "}); !errors.Is(err, backend.ErrEmptyQuery) {
		t.Fatalf("expected ErrEmptyQuery, got %v", err)
	}
}

func TestSynthesizeReturnsAudio(t *testing.T) {
	audio := []byte("RIFF-fake-wav-bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/tts" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Header().Set("Content-Type", "audio/wav")
		w.Write(audio)
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	got, err := client.Synthesize(context.Background(), backend.TTSRequest{Text: "hello", Language: "en", VoiceID: "priya"})
	if err != nil {
		t.Fatalf("Synthesize err: %v", err)
	}
	if string(got) != string(audio) {
		t.Fatal("audio bytes mismatch")
	}
}

func TestSynthesizeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "synthesis unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	if _, err := client.Synthesize(context.Background(), backend.TTSRequest{Text: "hello"}); err == nil {
		t.Fatal("expected error on 502 response")
	}
}

func TestVoicesCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"voices": map[string]any{
				"en": []map[string]string{
					{"id": "priya", "name": "Priya", "description": "Warm female voice"},
				},
			},
		})
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	voices, err := client.Voices(context.Background())
	if err != nil {
		t.Fatalf("Voices err: %v", err)
	}
	if len(voices["en"]) != 1 || voices["en"][0].ID != "priya" {
		t.Fatalf("unexpected catalog: %+v", voices)
	}
}

func TestGenerateVisual(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req backend.VisualRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if req.VisualType != "plan_comparison" {
			t.Fatalf("unexpected visual type: %s", req.VisualType)
		}
		json.NewEncoder(w).Encode(map[string]string{"image": "aGVsbG8=", "type": "plan_comparison"})
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	visual, err := client.GenerateVisual(context.Background(), backend.VisualRequest{VisualType: "plan_comparison"})
	if err != nil {
		t.Fatalf("GenerateVisual err: %v", err)
	}
	if visual.Image != "aGVsbG8=" || visual.Type != "plan_comparison" {
		t.Fatalf("unexpected visual: %+v", visual)
	}
}

func TestGenerateVisualEmptyImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"image": "", "type": "plan_comparison"})
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	if _, err := client.GenerateVisual(context.Background(), backend.VisualRequest{VisualType: "plan_comparison"}); err == nil {
		t.Fatal("expected error for empty image payload")
	}
}

func TestHealthProbe(t *testing.T) {
	up := true
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !up {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	client := backend.NewClient(backend.Config{BaseURL: srv.URL})
	if err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health err: %v", err)
	}

	up = false
	if err := client.Health(context.Background()); err == nil {
		t.Fatal("expected error when backend reports 503")
	}
}
