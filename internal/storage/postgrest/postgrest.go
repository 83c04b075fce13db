// Package postgrest реализует backend.Client поверх REST API Supabase (PostgREST).
package postgrest

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

	"mpsite/internal/backend"
)

const (
	restPath     = "/rest/v1/"
	maxErrorBody = 64 << 10
)

// HTTPDoer описывает HTTP-клиент, которым пользуется PostgREST-клиент
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type Client struct {
	baseURL string
	apiKey  string
	client  HTTPDoer
}

func New(baseURL, apiKey string, client HTTPDoer) (*Client, error) {
	const op = "storage.postgrest.New"

	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if _, err := url.ParseRequestURI(baseURL); err != nil {
		return nil, fmt.Errorf("%s: invalid base url: %w", op, err)
	}

	if client == nil {
		client = &http.Client{Timeout: 15 * time.Second}
	}

	return &Client{
		baseURL: baseURL,
		apiKey:  strings.TrimSpace(apiKey),
		client:  client,
	}, nil
}

// Constructor адаптер для backend.Factory
func Constructor(client HTTPDoer) backend.Constructor {
	return func(s backend.Settings) (backend.Client, error) {
		return New(s.URL, s.Key, client)
	}
}

func (c *Client) Query(ctx context.Context, q backend.Query) ([]backend.Row, error) {
	const op = "storage.postgrest.Query"

	params := url.Values{}
	params.Set("select", q.Selection())
	for _, f := range q.Filters {
		params.Add(f.Column, encodeFilter(f))
	}
	if q.Order != nil {
		dir := "asc"
		if q.Order.Descending {
			dir = "desc"
		}
		params.Set("order", q.Order.Column+"."+dir)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(q.Source)+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	c.authorize(req)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, decodeError(resp)
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()

	var rows []backend.Row
	if err := dec.Decode(&rows); err != nil {
		return nil, fmt.Errorf("%s: decode rows from %s: %w", op, q.Source, err)
	}
	if rows == nil {
		rows = []backend.Row{}
	}

	return rows, nil
}

func (c *Client) Insert(ctx context.Context, source string, rows []backend.Row) error {
	const op = "storage.postgrest.Insert"

	body, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("%s: encode rows: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(source), bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	c.authorize(req)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Prefer", "return=minimal")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusMultipleChoices {
		return decodeError(resp)
	}

	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

func (c *Client) endpoint(source string) string {
	return c.baseURL + restPath + url.PathEscape(source)
}

func (c *Client) authorize(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
}

func encodeFilter(f backend.Filter) string {
	if f.Op == backend.OpIn {
		quoted := make([]string, 0, len(f.Values))
		for _, v := range f.Values {
			s := strings.ReplaceAll(fmt.Sprint(v), `\`, `\\`)
			quoted = append(quoted, `"`+strings.ReplaceAll(s, `"`, `\"`)+`"`)
		}
		return "in.(" + strings.Join(quoted, ",") + ")"
	}

	if len(f.Values) == 0 {
		return "is.null"
	}
	return "eq." + fmt.Sprint(f.Values[0])
}

// decodeError переводит тело ответа PostgREST в *backend.Error.
// Если тело не JSON, сообщение строится из статуса.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	e := &backend.Error{Status: resp.StatusCode}
	if err := json.Unmarshal(raw, e); err != nil || e.Message == "" {
		e.Message = strings.TrimSpace(fmt.Sprintf("%d %s: %s",
			resp.StatusCode, http.StatusText(resp.StatusCode), strings.TrimSpace(string(raw))))
	}

	return e
}
