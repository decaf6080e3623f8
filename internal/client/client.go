// Package client provides the HTTP side of the backend interface: the
// multipart upload endpoint and the report download endpoint.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"
)

// UploadConfig is the JSON configuration sent alongside an uploaded file.
type UploadConfig struct {
	UUID     string `json:"UUID"`
	Advanced bool   `json:"advanced"`
	Model    string `json:"model"`
}

// Client talks to the backend's HTTP endpoints.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New creates a client for the given base URL, e.g. http://localhost:8080.
func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 2 * time.Minute,
		},
	}
}

// Upload submits a file for processing. The upload identifier in cfg.UUID
// correlates this submission with later snapshot rows. Transport failures
// are terminal: the caller surfaces the error and the user retries.
func (c *Client) Upload(ctx context.Context, path string, cfg UploadConfig) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open upload file: %w", err)
	}
	defer file.Close()

	pr, pw := io.Pipe()
	writer := multipart.NewWriter(pw)

	go func() {
		part, err := writer.CreateFormFile("file", filepath.Base(path))
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if _, err := io.Copy(part, file); err != nil {
			pw.CloseWithError(err)
			return
		}

		configJSON, err := json.Marshal(cfg)
		if err != nil {
			pw.CloseWithError(err)
			return
		}
		if err := writer.WriteField("config", string(configJSON)); err != nil {
			pw.CloseWithError(err)
			return
		}

		pw.CloseWithError(writer.Close())
	}()

	endpoint := fmt.Sprintf("%s/upload/%s", c.baseURL, url.PathEscape(cfg.UUID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return fmt.Errorf("create upload request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("upload: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload failed: %s - %s", resp.Status, string(body))
	}
	return nil
}

// Download fetches a generated report and writes it into destDir under its
// own filename, returning the written path. The reference may be a bare
// filename or a server-relative URL as delivered by the report message.
func (c *Client) Download(ctx context.Context, reference, destDir string) (string, error) {
	endpoint := reference
	if u, err := url.Parse(reference); err != nil || u.Scheme == "" {
		if len(reference) > 0 && reference[0] == '/' {
			endpoint = c.baseURL + reference
		} else {
			endpoint = fmt.Sprintf("%s/download/%s", c.baseURL, url.PathEscape(reference))
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", fmt.Errorf("create download request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download failed: %s", resp.Status)
	}

	name := filepath.Base(endpoint)
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}

	if err := os.MkdirAll(destDir, 0755); err != nil {
		return "", fmt.Errorf("create download dir: %w", err)
	}

	dest := filepath.Join(destDir, name)
	out, err := os.Create(dest)
	if err != nil {
		return "", fmt.Errorf("create download file: %w", err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return "", fmt.Errorf("write download: %w", err)
	}
	return dest, nil
}
