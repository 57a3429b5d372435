package resumeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"
	"time"

	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/telemetry"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:8000/api"

	maxResponseBytes = 10 << 20
)

// Client talks to the remote resume API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient constructs a Client. A zero timeout leaves the request context in charge.
func NewClient(baseURL string, timeout time.Duration) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL }

// ListResumes fetches every resume.
func (c *Client) ListResumes(ctx context.Context) ([]Resume, error) {
	var out []Resume
	if err := c.doJSON(ctx, http.MethodGet, "/resumes/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetResume fetches one resume.
func (c *Client) GetResume(ctx context.Context, id ID) (Resume, error) {
	var out Resume
	err := c.doJSON(ctx, http.MethodGet, resumePath(id), nil, &out)
	return out, err
}

// CreateResume submits payload as a multipart form.
func (c *Client) CreateResume(ctx context.Context, payload Payload) (Resume, error) {
	var out Resume
	err := c.doMultipart(ctx, http.MethodPost, "/resumes/", payload, &out)
	return out, err
}

// UpdateResume replaces a resume with payload, submitted as a multipart form.
func (c *Client) UpdateResume(ctx context.Context, id ID, payload Payload) (Resume, error) {
	var out Resume
	err := c.doMultipart(ctx, http.MethodPut, resumePath(id), payload, &out)
	return out, err
}

// DeleteResume removes a resume.
func (c *Client) DeleteResume(ctx context.Context, id ID) error {
	return c.doJSON(ctx, http.MethodDelete, resumePath(id), nil, nil)
}

// RateResume records a rating for a resume and returns the API's response object.
func (c *Client) RateResume(ctx context.Context, id ID, rating int) (map[string]any, error) {
	var out map[string]any
	body := map[string]int{"rating": rating}
	if err := c.doJSON(ctx, http.MethodPost, resumePath(id)+"rate_resume/", body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListTemplates fetches the API's template catalogue.
func (c *Client) ListTemplates(ctx context.Context) ([]Template, error) {
	var out []Template
	if err := c.doJSON(ctx, http.MethodGet, "/resumes/templates/", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// FetchPhoto downloads an image served by the API.
func (c *Client) FetchPhoto(ctx context.Context, photoURL string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, photoURL, nil)
	if err != nil {
		return nil, "", err
	}
	resp, err := c.send(req, photoURL)
	if err != nil {
		return nil, "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, "", fmt.Errorf("read photo: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

func resumePath(id ID) string {
	return "/resumes/" + url.PathEscape(string(id)) + "/"
}

func (c *Client) doJSON(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(raw)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.execute(req, path, out)
}

func (c *Client) doMultipart(ctx context.Context, method, path string, payload Payload, out any) error {
	body, contentType, err := EncodeMultipart(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Accept", "application/json")
	return c.execute(req, path, out)
}

func (c *Client) execute(req *http.Request, path string, out any) error {
	resp, err := c.send(req, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		logFailure(req.Method, path, resp.StatusCode, err)
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// send performs req and converts transport failures and non-2xx statuses into errors.
func (c *Client) send(req *http.Request, path string) (*http.Response, error) {
	start := time.Now()
	resp, err := c.httpClient.Do(req)
	metrics.ObserveAPIDurationMs(metrics.SinceMillis(start))
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("resume api timeout: %w", err)
		}
		logFailure(req.Method, path, 0, err)
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxResponseBytes))
		resp.Body.Close()
		statusErr := &StatusError{Status: resp.StatusCode, Method: req.Method, Path: path}
		logFailure(req.Method, path, resp.StatusCode, statusErr)
		return nil, statusErr
	}
	return resp, nil
}

func logFailure(method, path string, status int, err error) {
	fields := map[string]any{
		"method": method,
		"path":   path,
		"error":  err,
	}
	if status > 0 {
		fields["status"] = status
	}
	telemetry.Warn("resumeapi.request_failed", fields)
}

// EncodeMultipart writes every text field of payload followed by the photo
// part when one is attached.
func EncodeMultipart(payload Payload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	for _, f := range payload.Fields() {
		if err := w.WriteField(f.Name, f.Value); err != nil {
			return nil, "", fmt.Errorf("write field %s: %w", f.Name, err)
		}
	}
	if p := payload.Photo; p != nil && len(p.Data) > 0 {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="photo"; filename=%q`, photoFileName(p)))
		contentType := p.ContentType
		if contentType == "" {
			contentType = http.DetectContentType(p.Data)
		}
		header.Set("Content-Type", contentType)
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("create photo part: %w", err)
		}
		if _, err := part.Write(p.Data); err != nil {
			return nil, "", fmt.Errorf("write photo: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return body, w.FormDataContentType(), nil
}

func photoFileName(p *Photo) string {
	if name := strings.TrimSpace(p.FileName); name != "" {
		return name
	}
	return "photo"
}
