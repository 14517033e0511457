// Package e2e drives a running gamelib server through Cucumber scenarios.
package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is used when E2E_BASE_URL is unset.
const DefaultBaseURL = "http://localhost:8080"

var placeholder = regexp.MustCompile(`\{([^}]+)\}`)

// TestContext carries HTTP state between the steps of one scenario.
type TestContext struct {
	BaseURL string
	client  *http.Client

	lastStatus int
	lastBody   []byte
	ids        map[string]string
	suffix     string
}

// NewTestContext builds a context for one scenario.
func NewTestContext() *TestContext {
	base := os.Getenv("E2E_BASE_URL")
	if base == "" {
		base = DefaultBaseURL
	}
	return &TestContext{
		BaseURL: strings.TrimRight(base, "/"),
		client:  &http.Client{Timeout: 10 * time.Second},
		ids:     map[string]string{},
		suffix:  strconv.FormatInt(time.Now().UnixNano(), 36),
	}
}

// Unique makes a console name unique to this scenario so reruns against the
// same server do not collide.
func (tc *TestContext) Unique(name string) string {
	return name + " #" + tc.suffix
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

func (tc *TestContext) PATCH(path string, body any) error {
	return tc.do(http.MethodPatch, path, body)
}

func (tc *TestContext) DELETE(path string) error {
	return tc.do(http.MethodDelete, path, nil)
}

func (tc *TestContext) do(method, path string, body any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, tc.BaseURL+tc.Expand(path), reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
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

// Expand replaces {name} placeholders with IDs saved by Remember.
func (tc *TestContext) Expand(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		if v, ok := tc.ids[m[1:len(m)-1]]; ok {
			return v
		}
		return m
	})
}

// Remember saves the "id" of the last response under name.
func (tc *TestContext) Remember(name string) error {
	v, err := tc.GetResponseField("id")
	if err != nil {
		return err
	}
	s, ok := v.(string)
	if !ok || s == "" {
		return fmt.Errorf("response has no id: %s", tc.lastBody)
	}
	tc.ids[name] = s
	return nil
}

func (tc *TestContext) GetLastStatus() int {
	return tc.lastStatus
}

func (tc *TestContext) GetLastBody() []byte {
	return tc.lastBody
}

// GetResponseField reads a top level field of a JSON object response.
func (tc *TestContext) GetResponseField(field string) (any, error) {
	var obj map[string]any
	if err := json.Unmarshal(tc.lastBody, &obj); err != nil {
		return nil, fmt.Errorf("response is not a JSON object: %s", tc.lastBody)
	}
	v, ok := obj[field]
	if !ok {
		return nil, fmt.Errorf("field %q missing from response: %s", field, tc.lastBody)
	}
	return v, nil
}

// GetResponseList decodes a JSON array response.
func (tc *TestContext) GetResponseList() ([]map[string]any, error) {
	var list []map[string]any
	if err := json.Unmarshal(tc.lastBody, &list); err != nil {
		return nil, fmt.Errorf("response is not a JSON array: %s", tc.lastBody)
	}
	return list, nil
}
