package runtime

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog"
	"github.com/spf13/cast"
)

// DefaultTimeout bounds one HTTP round trip.
const DefaultTimeout = 30 * time.Second

// Client is the outbound HTTP client. Every request carries a normalized
// bearer authorization header.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	log     zerolog.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.httpc = h }
}

// WithLogger attaches a structured logger.
func WithLogger(log zerolog.Logger) ClientOption {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the given API base URL and token. The
// token may be entered with or without a Bearer prefix.
func NewClient(baseURL, apiToken string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   NormalizeBearer(apiToken),
		httpc:   &http.Client{Timeout: DefaultTimeout},
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NormalizeBearer normalizes a stored API token so the authorization
// header always starts with exactly one "Bearer " prefix, however the
// token was entered.
func NormalizeBearer(token string) string {
	t := strings.TrimSpace(token)
	if len(t) >= 7 && strings.EqualFold(t[:7], "bearer ") {
		t = strings.TrimSpace(t[7:])
	}
	return "Bearer " + t
}

// Do issues one JSON request and decodes the response. Non-2xx statuses
// surface as *APIError; transport errors propagate as-is.
func (c *Client) Do(ctx context.Context, method, path string, query map[string]any, body any) (any, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := c.newRequest(ctx, method, path, query, reqBody)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req)
}

// DoMultipart issues one multipart/form-data request carrying a single
// file part under fieldName.
func (c *Client) DoMultipart(ctx context.Context, method, path string, query map[string]any, fieldName, fileName string, data []byte) (any, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile(fieldName, fileName)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}

	req, err := c.newRequest(ctx, method, path, query, &buf)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	return c.send(req)
}

func (c *Client) newRequest(ctx context.Context, method, path string, query map[string]any, body io.Reader) (*http.Request, error) {
	u := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if qs := encodeQuery(query); qs != "" {
		u += "?" + qs
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", c.token)
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func (c *Client) send(req *http.Request) (any, error) {
	c.log.Debug().Str("method", req.Method).Str("url", req.URL.String()).Msg("dispatching request")
	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{Status: resp.StatusCode, Body: strings.TrimSpace(string(raw))}
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	var decoded any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		// Non-JSON payloads are passed through as text.
		return string(raw), nil
	}
	return decoded, nil
}

// encodeQuery renders a nested query object in bracket notation, e.g.
// filter[custom_fields][uuid]=v, the convention of the target APIs.
func encodeQuery(q map[string]any) string {
	vals := url.Values{}
	for k, v := range q {
		addQueryValue(vals, k, v)
	}
	return vals.Encode()
}

func addQueryValue(vals url.Values, key string, v any) {
	switch x := v.(type) {
	case map[string]any:
		for k, val := range x {
			addQueryValue(vals, key+"["+k+"]", val)
		}
	case map[string]string:
		for k, val := range x {
			vals.Add(key+"["+k+"]", val)
		}
	case []any:
		for _, item := range x {
			addQueryValue(vals, key+"[]", item)
		}
	case []string:
		for _, item := range x {
			vals.Add(key+"[]", item)
		}
	default:
		vals.Add(key, cast.ToString(v))
	}
}
