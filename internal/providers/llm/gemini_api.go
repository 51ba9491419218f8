package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const genLanguageBaseURL = "https://generativelanguage.googleapis.com"

// GeminiAPI talks to the Google Generative Language API with a caller's API
// key. This is the per-request provider: each optimize call carries its own
// credential, so the client is built per request and is cheap to construct.
type GeminiAPI struct {
	hc     *http.Client
	url    string
	apiKey string
}

// NewGeminiAPI builds a client for model using the given key. baseURL is
// overridable for tests; empty means the public endpoint.
func NewGeminiAPI(apiKey, model, baseURL string) *GeminiAPI {
	if model == "" {
		model = DefaultModel
	}
	if baseURL == "" {
		baseURL = genLanguageBaseURL
	}
	u := strings.TrimRight(baseURL, "/") + "/v1beta/models/" + url.PathEscape(model) + ":generateContent"
	return &GeminiAPI{
		hc:     &http.Client{Timeout: 120 * time.Second},
		url:    u,
		apiKey: apiKey,
	}
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

func (g *GeminiAPI) Complete(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: []geminiPart{{Text: prompt}}}},
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", g.apiKey)

	resp, err := g.hc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return "", err
	}

	var out geminiResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		if resp.StatusCode != http.StatusOK {
			return "", fmt.Errorf("gemini upstream %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
		}
		return "", fmt.Errorf("gemini: undecodable response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || out.Error != nil {
		msg := http.StatusText(resp.StatusCode)
		if out.Error != nil {
			msg = out.Error.Message
		}
		return "", fmt.Errorf("gemini upstream %d: %s", resp.StatusCode, msg)
	}

	var b strings.Builder
	for _, cand := range out.Candidates {
		for _, part := range cand.Content.Parts {
			b.WriteString(part.Text)
		}
	}
	if b.Len() == 0 {
		return "", fmt.Errorf("gemini: empty completion")
	}
	return b.String(), nil
}

func (g *GeminiAPI) Close() error { return nil }

var _ Provider = (*GeminiAPI)(nil)
