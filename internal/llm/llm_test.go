package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/suykerbuyk/blue/internal/config"
)

func TestOpenAI_Complete(t *testing.T) {
	var got chatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer sk-test" {
			t.Errorf("Authorization = %q", auth)
		}
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"YES, confidence 8"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(srv.URL+"/v1/", "test-model", "sk-test")
	out, err := c.Complete(context.Background(), Request{
		System:      "be brief",
		Prompt:      "now?",
		MaxTokens:   50,
		Temperature: 0.3,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "YES, confidence 8" {
		t.Errorf("out = %q", out)
	}

	if got.Model != "test-model" {
		t.Errorf("model = %q", got.Model)
	}
	if got.MaxTokens != 50 {
		t.Errorf("max_tokens = %d, want 50", got.MaxTokens)
	}
	if len(got.Messages) != 2 || got.Messages[0].Role != "system" || got.Messages[1].Content != "now?" {
		t.Errorf("messages = %+v", got.Messages)
	}
}

func TestOpenAI_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"http status", http.StatusTooManyRequests, `{"error":{"message":"slow down"}}`, "status 429"},
		{"api error", http.StatusOK, `{"error":{"message":"bad model"}}`, "bad model"},
		{"no choices", http.StatusOK, `{"choices":[]}`, "empty choices"},
		{"garbage", http.StatusOK, `not json`, "unmarshal"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := NewOpenAI(srv.URL, "m", "k").Complete(context.Background(), Request{Prompt: "x"})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %q, want %q", err, tt.want)
			}
		})
	}
}

func TestOpenAI_ContextTimeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := NewOpenAI(srv.URL, "m", "k").Complete(ctx, Request{Prompt: "x"})
	if err == nil {
		t.Fatal("expected timeout error")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestNew_MissingKey(t *testing.T) {
	t.Setenv("BLUE_TEST_KEY", "")
	_, err := New(context.Background(), config.LLMConfig{Provider: "openai", APIKeyEnv: "BLUE_TEST_KEY"})
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("error = %v, want ErrUnavailable", err)
	}
}

func TestNew_Providers(t *testing.T) {
	t.Setenv("BLUE_TEST_KEY", "k")

	c, err := New(context.Background(), config.LLMConfig{Provider: "openai", APIKeyEnv: "BLUE_TEST_KEY"})
	if err != nil {
		t.Fatalf("openai: %v", err)
	}
	if oc, ok := c.(*OpenAI); !ok || oc.baseURL != DefaultOpenAIURL {
		t.Errorf("openai client = %#v", c)
	}

	c, err = New(context.Background(), config.LLMConfig{Provider: "gemini", APIKeyEnv: "BLUE_TEST_KEY"})
	if err != nil {
		t.Fatalf("gemini: %v", err)
	}
	if _, ok := c.(*Gemini); !ok {
		t.Errorf("gemini client = %T", c)
	}

	_, err = New(context.Background(), config.LLMConfig{Provider: "carrier-pigeon", APIKeyEnv: "BLUE_TEST_KEY"})
	if err == nil || errors.Is(err, ErrUnavailable) {
		t.Errorf("unknown provider error = %v", err)
	}
}

func TestGemini_Complete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-test:generateContent") {
			t.Errorf("path = %q", r.URL.Path)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"YES 9"}]}}]}`))
	}))
	defer srv.Close()

	g, err := NewGemini(context.Background(), "gemini-test", "k", srv.URL)
	if err != nil {
		t.Fatalf("NewGemini: %v", err)
	}
	out, err := g.Complete(context.Background(), Request{System: "s", Prompt: "p", MaxTokens: 50, Temperature: 0.3})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != "YES 9" {
		t.Errorf("out = %q, want YES 9", out)
	}
}
