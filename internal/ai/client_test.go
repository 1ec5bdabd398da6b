package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"question-bank/internal/config"
)

func modelServer(t *testing.T, replyText string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if !strings.Contains(r.URL.RawQuery, "key=") {
			t.Error("request should carry the api key")
		}

		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if len(req.Contents) != 1 || len(req.Contents[0].Parts) != 2 {
			t.Errorf("request should have one content with prompt and inline data")
		}

		resp := map[string]interface{}{
			"candidates": []map[string]interface{}{{
				"content": map[string]interface{}{
					"parts": []map[string]string{{"text": replyText}},
				},
			}},
		}
		json.NewEncoder(w).Encode(resp)
	}))
}

func testClient(t *testing.T, baseURL string) *Client {
	t.Helper()
	c, err := NewClient(config.AIConfig{APIKey: "test-key", BaseURL: baseURL})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestNewClientRequiresKey(t *testing.T) {
	if _, err := NewClient(config.AIConfig{}); err == nil {
		t.Error("NewClient without api key should fail")
	}
}

func TestExtractBareArray(t *testing.T) {
	srv := modelServer(t, `[{"title":"Q1","body":"B1","difficulty":"Easy"}]`)
	defer srv.Close()

	questions, err := testClient(t, srv.URL).Extract(context.Background(), "", "notes.pdf", []byte("doc"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(questions) != 1 || questions[0].Title != "Q1" {
		t.Errorf("questions = %+v, want one titled Q1", questions)
	}
}

func TestExtractWrappedObject(t *testing.T) {
	srv := modelServer(t, `{"questions":[{"title":"Q1","body":"B1"},{"title":"Q2","body":"B2"}]}`)
	defer srv.Close()

	questions, err := testClient(t, srv.URL).Extract(context.Background(), "", "notes.pdf", []byte("doc"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(questions) != 2 {
		t.Errorf("questions = %d, want 2", len(questions))
	}
}

func TestExtractCodeFencedJSON(t *testing.T) {
	srv := modelServer(t, "```json\n[{\"title\":\"Q1\",\"body\":\"B1\"}]\n```")
	defer srv.Close()

	questions, err := testClient(t, srv.URL).Extract(context.Background(), "", "notes.pdf", []byte("doc"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(questions) != 1 || questions[0].Title != "Q1" {
		t.Errorf("questions = %+v, want one titled Q1", questions)
	}
}

func TestExtractUnstructuredFallsBack(t *testing.T) {
	srv := modelServer(t, "Sorry, I cannot produce JSON today.")
	defer srv.Close()

	questions, err := testClient(t, srv.URL).Extract(context.Background(), "", "intro-to-go.pdf", []byte("doc"))
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if len(questions) != 1 {
		t.Fatalf("questions = %d, want 1 fallback", len(questions))
	}
	if !strings.Contains(questions[0].Title, "intro to go") {
		t.Errorf("fallback title = %q, want file name derived", questions[0].Title)
	}
}

func TestExtractProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "quota exceeded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testClient(t, srv.URL).Extract(context.Background(), "", "notes.pdf", []byte("doc")); err == nil {
		t.Error("provider error should surface to the caller")
	}
}

func TestMimeTypeForFile(t *testing.T) {
	cases := map[string]string{
		"a.pdf":  "application/pdf",
		"a.docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"a.xlsx": "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		"a.txt":  "text/plain",
		"a":      "text/plain",
	}
	for name, want := range cases {
		if got := MimeTypeForFile(name); got != want {
			t.Errorf("MimeTypeForFile(%q) = %q, want %q", name, got, want)
		}
	}
}
