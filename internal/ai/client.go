// Package ai talks to the Gemini generateContent endpoint to turn an
// uploaded document into structured assessment questions. The provider
// is treated as best-effort: transport failures surface as errors so
// the caller can log them, while an unparseable reply degrades into a
// placeholder question.
package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"question-bank/internal/config"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// defaultPrompt mirrors the product's extraction instructions.
const defaultPrompt = "Extract structured assessment questions in JSON. Include title, body, " +
	"difficulty (Easy|Medium|Hard|Expert), category, tags, options (label, value, isCorrect), " +
	"correct answer explanation. Limit to 5 high-quality questions."

// ExtractedQuestion is one question as returned by the model.
type ExtractedQuestion struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	Explanation string   `json:"explanation,omitempty"`
	Answer      string   `json:"answer,omitempty"`
	Difficulty  string   `json:"difficulty,omitempty"`
	Category    string   `json:"category,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Options     []Option `json:"options,omitempty"`
}

type Option struct {
	Label     string `json:"label"`
	Value     string `json:"value"`
	IsCorrect bool   `json:"isCorrect"`
}

type Client struct {
	apiKey  string
	model   string
	baseURL string
	http    *http.Client
}

// NewClient builds a client from config. A missing API key is a startup
// error, not a per-request one.
func NewClient(cfg config.AIConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("ai: api key missing in configuration")
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	model := cfg.Model
	if model == "" {
		model = "models/gemini-1.5-flash"
	}
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		apiKey:  cfg.APIKey,
		model:   model,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}, nil
}

// generateContent request/response shapes (the subset we use).

type generateRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type generationConfig struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Extract sends the document to the model and parses the reply. The
// returned questions are never empty: if the model answers with
// something unstructured, a placeholder derived from the file name is
// returned instead.
func (c *Client) Extract(ctx context.Context, prompt, fileName string, data []byte) ([]ExtractedQuestion, error) {
	if prompt == "" {
		prompt = defaultPrompt
	}

	reqBody := generateRequest{
		Contents: []content{{
			Parts: []part{
				{Text: prompt},
				{InlineData: &inlineData{
					MimeType: MimeTypeForFile(fileName),
					Data:     base64.StdEncoding.EncodeToString(data),
				}},
			},
		}},
		GenerationConfig: generationConfig{Temperature: 0.4},
	}

	raw, err := json.Marshal(&reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("call model: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("model returned %d: %s", resp.StatusCode, strings.TrimSpace(string(payload)))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	text := joinParts(genResp)
	if text == "" {
		return FallbackQuestions(fileName), nil
	}
	return parseQuestions(text, fileName), nil
}

func joinParts(resp generateResponse) string {
	if len(resp.Candidates) == 0 {
		return ""
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	return strings.TrimSpace(strings.Join(parts, "\n"))
}

// parseQuestions accepts either a bare JSON array or an object with a
// "questions" field; models wrap their output both ways. Markdown code
// fences around the JSON are stripped first.
func parseQuestions(text, fileName string) []ExtractedQuestion {
	text = stripCodeFence(text)

	var list []ExtractedQuestion
	if err := json.Unmarshal([]byte(text), &list); err == nil && len(list) > 0 {
		return list
	}

	var wrapped struct {
		Questions []ExtractedQuestion `json:"questions"`
	}
	if err := json.Unmarshal([]byte(text), &wrapped); err == nil && len(wrapped.Questions) > 0 {
		return wrapped.Questions
	}

	return FallbackQuestions(fileName)
}

func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}

// FallbackQuestions builds the placeholder returned when the provider
// fails or replies with something unstructured.
func FallbackQuestions(fileName string) []ExtractedQuestion {
	title := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	title = strings.NewReplacer("-", " ", "_", " ").Replace(title)
	if title == "" {
		title = "Document"
	}
	return []ExtractedQuestion{{
		Title:      fmt.Sprintf("What is the primary concept discussed in %s?", title),
		Body:       fmt.Sprintf("Summarise the main learning objective covered in %s.", title),
		Difficulty: "Medium",
		Category:   "General",
		Tags:       []string{"ai", "fallback"},
		Options: []Option{
			{Label: "A", Value: "Concept A"},
			{Label: "B", Value: "Concept B", IsCorrect: true},
			{Label: "C", Value: "Concept C"},
			{Label: "D", Value: "Concept D"},
		},
		Explanation: "This is a placeholder generated because the AI provider did not return a structured payload.",
	}}
}

// MimeTypeForFile infers the upload mime type from the file extension.
func MimeTypeForFile(fileName string) string {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".pdf":
		return "application/pdf"
	case ".docx":
		return "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	case ".xlsx":
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/plain"
	}
}
