package judge

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func stubJudge0(t *testing.T, stdout, stderr string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("Expected POST, got %s", r.Method)
		}
		if r.URL.Path != "/submissions" {
			t.Errorf("Expected /submissions, got %s", r.URL.Path)
		}
		if r.URL.Query().Get("wait") != "true" {
			t.Error("Expected wait=true query parameter")
		}

		var req submissionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("Failed to decode submission: %v", err)
		}
		if req.LanguageID == 0 {
			t.Error("Submission should carry a language ID")
		}

		json.NewEncoder(w).Encode(submissionResponse{Stdout: stdout, Stderr: stderr})
	}))
}

func TestCompileStdout(t *testing.T) {
	server := stubJudge0(t, "1\n", "")
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	output, err := client.Compile(context.Background(), "print(1)", "python")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "1\n" {
		t.Errorf("Expected output '1\\n', got %q", output)
	}
}

func TestCompileStderrFallback(t *testing.T) {
	server := stubJudge0(t, "", "SyntaxError: invalid syntax")
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	output, err := client.Compile(context.Background(), "print(", "python")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "SyntaxError: invalid syntax" {
		t.Errorf("Expected stderr output, got %q", output)
	}
}

func TestCompileNoOutput(t *testing.T) {
	server := stubJudge0(t, "", "")
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	output, err := client.Compile(context.Background(), "pass", "python")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "No output." {
		t.Errorf("Expected 'No output.', got %q", output)
	}
}

func TestCompileUnsupportedLanguage(t *testing.T) {
	client := NewClient("http://judge0.invalid", "test-key")

	_, err := client.Compile(context.Background(), "print(1)", "cobol")
	if !errors.Is(err, ErrUnsupportedLanguage) {
		t.Errorf("Expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestCompileLanguageCaseInsensitive(t *testing.T) {
	server := stubJudge0(t, "ok", "")
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	output, err := client.Compile(context.Background(), "print(1)", "Python")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if output != "ok" {
		t.Errorf("Expected output 'ok', got %q", output)
	}
}

func TestCompileUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "internal error", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, "test-key")
	if _, err := client.Compile(context.Background(), "print(1)", "python"); err == nil {
		t.Error("Expected error for upstream failure")
	}
}

func TestCompileUnreachable(t *testing.T) {
	server := stubJudge0(t, "", "")
	server.Close()

	client := NewClient(server.URL, "test-key")
	if _, err := client.Compile(context.Background(), "print(1)", "python"); err == nil {
		t.Error("Expected error for unreachable service")
	}
}

func TestLanguageIDs(t *testing.T) {
	expected := map[string]int{
		"c":          50,
		"cpp":        54,
		"java":       62,
		"javascript": 63,
		"python":     71,
		"typescript": 74,
	}

	for language, id := range expected {
		got, ok := LanguageID(language)
		if !ok {
			t.Errorf("Language %q should be supported", language)
			continue
		}
		if got != id {
			t.Errorf("Language %q: expected ID %d, got %d", language, id, got)
		}
	}

	if _, ok := LanguageID("brainfuck"); ok {
		t.Error("Unknown language should not resolve")
	}
}
