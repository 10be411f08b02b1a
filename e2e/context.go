package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"
)

// TestContext carries HTTP state between the steps of one scenario.
type TestContext struct {
	baseURL    string
	client     *http.Client
	token      string
	tokens     map[string]string
	saved      map[string]string
	lastStatus int
	lastBody   []byte
}

func NewTestContext() *TestContext {
	base := os.Getenv("CASEVAULT_URL")
	if base == "" {
		base = "http://localhost:8080"
	}
	tc := &TestContext{
		baseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 30 * time.Second},
		tokens:  make(map[string]string),
		saved:   make(map[string]string),
	}
	// {run} keeps usernames unique across runs against a long-lived server.
	tc.saved["run"] = strconv.FormatInt(time.Now().UnixNano(), 36)
	return tc
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(raw)
	}
	req, err := http.NewRequest(method, tc.baseURL+tc.Expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tc.token != "" {
		req.Header.Set("Authorization", "Bearer "+tc.token)
	}
	resp, err := tc.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	tc.lastStatus = resp.StatusCode
	tc.lastBody, err = io.ReadAll(resp.Body)
	return err
}

func (tc *TestContext) GET(path string) error {
	return tc.do(http.MethodGet, path, nil)
}

func (tc *TestContext) POST(path string, body any) error {
	return tc.do(http.MethodPost, path, body)
}

func (tc *TestContext) PUT(path string, body any) error {
	return tc.do(http.MethodPut, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) GetLastResponseStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastResponseBody() []byte {
	return tc.lastBody
}

func (tc *TestContext) SetAccessToken(token string) {
	tc.token = token
}

func (tc *TestContext) GetAccessToken() string {
	return tc.token
}

func (tc *TestContext) Save(name, value string) {
	tc.saved[name] = value
}

func (tc *TestContext) Saved(name string) string {
	return tc.saved[name]
}

func (tc *TestContext) RememberToken(user, token string) {
	tc.tokens[user] = token
}

func (tc *TestContext) TokenFor(user string) (string, bool) {
	t, ok := tc.tokens[user]
	return t, ok
}

// Expand replaces {name} placeholders with saved values.
func (tc *TestContext) Expand(s string) string {
	for k, v := range tc.saved {
		s = strings.ReplaceAll(s, "{"+k+"}", v)
	}
	return s
}

// GetResponseField reads a dotted path such as "user.id" from the last JSON
// response body.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var doc any
	if err := json.Unmarshal(tc.lastBody, &doc); err != nil {
		return nil, fmt.Errorf("response is not JSON: %w", err)
	}
	cur := doc
	for _, part := range strings.Split(field, ".") {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("field %q: %q is not an object", field, part)
		}
		if cur, ok = obj[part]; !ok {
			return nil, fmt.Errorf("field %q not found in %s", field, tc.lastBody)
		}
	}
	return cur, nil
}

// GetResponseList decodes the last response body as a JSON array.
func (tc *TestContext) GetResponseList() ([]map[string]any, error) {
	var rows []map[string]any
	if err := json.Unmarshal(tc.lastBody, &rows); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %w", err)
	}
	return rows, nil
}
