// Package ipfs talks to an IPFS node's HTTP RPC API.
package ipfs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"casevault/internal/blob"
	"casevault/pkg/platform/sentinel"
)

type Client struct {
	baseURL string
	http    *http.Client
}

type Option func(*Client)

func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.http = c
	}
}

// New targets the API root, e.g. http://127.0.0.1:5001/api/v0.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type addResponse struct {
	Name string `json:"Name"`
	Hash string `json:"Hash"`
	Size string `json:"Size"`
}

type errorResponse struct {
	Message string `json:"Message"`
	Code    int    `json:"Code"`
	Type    string `json:"Type"`
}

// StoreBlob uploads data as a multipart "file" part and returns its CID.
func (c *Client) StoreBlob(ctx context.Context, name string, data []byte) (string, error) {
	if name == "" {
		name = "blob"
	}
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/add?pin=true", &body)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("ipfs add: %w: %w", err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "add"); err != nil {
		return "", err
	}

	var out addResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("ipfs add: decode response: %w: %w", err, sentinel.ErrRejected)
	}
	if out.Hash == "" {
		return "", fmt.Errorf("ipfs add: response has no hash: %w", sentinel.ErrRejected)
	}
	return out.Hash, nil
}

func (c *Client) FetchBlob(ctx context.Context, hash string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/cat?arg="+url.QueryEscape(hash), nil)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ipfs cat: %w: %w", err, sentinel.ErrUnavailable)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp, "cat"); err != nil {
		return nil, err
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, blob.MaxSize+1))
	if err != nil {
		return nil, fmt.Errorf("ipfs cat: read body: %w: %w", err, sentinel.ErrUnavailable)
	}
	if len(data) > blob.MaxSize {
		return nil, fmt.Errorf("ipfs cat: blob exceeds %d bytes: %w", blob.MaxSize, sentinel.ErrRejected)
	}
	return data, nil
}

// checkStatus maps RPC errors. The node answers 500 with a JSON message for
// requests it refuses and 5xx gateway codes when it is unhealthy.
func checkStatus(resp *http.Response, op string) error {
	if resp.StatusCode == http.StatusOK {
		return nil
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
	var apiErr errorResponse
	if json.Unmarshal(raw, &apiErr) == nil && apiErr.Message != "" {
		if strings.Contains(apiErr.Message, "not found") {
			return fmt.Errorf("ipfs %s: %s: %w", op, apiErr.Message, sentinel.ErrNotFound)
		}
		return fmt.Errorf("ipfs %s: %s: %w", op, apiErr.Message, sentinel.ErrRejected)
	}
	return fmt.Errorf("ipfs %s: status %d: %w", op, resp.StatusCode, sentinel.ErrUnavailable)
}
