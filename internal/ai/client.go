// Package ai is a thin client for the resume analysis service. Payloads pass
// through verbatim in both directions; this process never interprets them.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"huntboard/internal/middleware"
	"huntboard/internal/models"
)

const target = "ai-service"

// Client talks to the AI service over HTTP. No retries: a slow upstream is
// surfaced to the caller, not amplified.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the AI service at baseURL.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
	}
}

// Analyze submits a resume/job-description pair for scoring.
func (c *Client) Analyze(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.postJSON(ctx, "/analyze", payload)
}

// OptimizeResume requests a rewritten resume targeted at a job description.
func (c *Client) OptimizeResume(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.postJSON(ctx, "/optimize/resume", payload)
}

// GenerateSummary requests a professional summary from resume text.
func (c *Client) GenerateSummary(ctx context.Context, payload json.RawMessage) (json.RawMessage, error) {
	return c.postJSON(ctx, "/generate/summary", payload)
}

func (c *Client) postJSON(ctx context.Context, path string, payload json.RawMessage) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

// ParseResumeFile uploads a resume file and returns the upstream response,
// which carries the extracted text.
func (c *Client) ParseResumeFile(ctx context.Context, filename string, file io.Reader, size int64) (json.RawMessage, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, models.NewInternalError(err)
	}
	if err := writer.Close(); err != nil {
		return nil, models.NewInternalError(err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/parse-resume-file", &body)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	return c.do(req)
}

// ExtractResumeText implements service.ResumeTextExtractor on top of
// ParseResumeFile, pulling the text field out of the upstream response.
func (c *Client) ExtractResumeText(ctx context.Context, filename string, file io.Reader, size int64) (string, error) {
	raw, err := c.ParseResumeFile(ctx, filename, file, size)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Text string `json:"text"`
	}
	if err := json.Unmarshal(raw, &parsed); err != nil {
		return "", models.NewUpstreamError("AI service", err)
	}
	return parsed.Text, nil
}

func (c *Client) do(req *http.Request) (json.RawMessage, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		middleware.UpstreamCalls.WithLabelValues(target, "error").Inc()
		return nil, models.NewUpstreamError("AI service", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		middleware.UpstreamCalls.WithLabelValues(target, "error").Inc()
		return nil, models.NewUpstreamError("AI service", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		middleware.UpstreamCalls.WithLabelValues(target, "error").Inc()
		return nil, models.NewUpstreamError("AI service",
			fmt.Errorf("unexpected status %d: %s", resp.StatusCode, truncate(data, 256)))
	}

	middleware.UpstreamCalls.WithLabelValues(target, "success").Inc()
	return json.RawMessage(data), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
