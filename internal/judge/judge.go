package judge

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const defaultBaseURL = "https://judge0-ce.p.rapidapi.com"

// Judge0 language IDs for the supported language keys
var languageIDs = map[string]int{
	"c":          50,
	"cpp":        54,
	"java":       62,
	"javascript": 63,
	"python":     71,
	"typescript": 74,
}

var ErrUnsupportedLanguage = errors.New("unsupported language")

// Client proxies code execution to the Judge0 API. Calls are synchronous:
// the submission is created with wait=true and the captured output comes
// back in the same response.
type Client struct {
	baseURL    string
	apiKey     string
	apiHost    string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimSuffix(baseURL, "/")

	apiHost := ""
	if u, err := url.Parse(baseURL); err == nil {
		apiHost = u.Host
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		apiHost: apiHost,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// LanguageID maps a language key to its Judge0 ID. The lookup is
// case-insensitive.
func LanguageID(language string) (int, bool) {
	id, ok := languageIDs[strings.ToLower(language)]
	return id, ok
}

type submissionRequest struct {
	SourceCode string `json:"source_code"`
	LanguageID int    `json:"language_id"`
}

type submissionResponse struct {
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
}

// Compile runs code under the given language and returns the captured
// output: stdout, else stderr, else "No output.". Any failure, including
// an unsupported language key, comes back as an error for the caller to
// collapse into its generic failure indicator.
func (c *Client) Compile(ctx context.Context, code, language string) (string, error) {
	languageID, ok := LanguageID(language)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedLanguage, language)
	}

	body, err := json.Marshal(submissionRequest{
		SourceCode: code,
		LanguageID: languageID,
	})
	if err != nil {
		return "", err
	}

	endpoint := c.baseURL + "/submissions?base64_encoded=false&wait=true"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("judge0 returned status %d", resp.StatusCode)
	}

	var result submissionResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", err
	}

	if result.Stdout != "" {
		return result.Stdout, nil
	}
	if result.Stderr != "" {
		return result.Stderr, nil
	}
	return "No output.", nil
}
