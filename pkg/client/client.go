// Package client calls the API through the endpoint descriptors of pkg/api/v1.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"

	v1 "github.com/dpweb/dpweb/pkg/api/v1"
	"github.com/dpweb/dpweb/pkg/endpoint"
	"github.com/dpweb/dpweb/pkg/response"
)

// TelegramService is the microservice name the Telegram bridge authenticates as.
const TelegramService = "Internal-TelegramMicroservice"

// Client holds the connection settings shared by all calls.
type Client struct {
	baseURL       string
	prefix        string
	httpClient    *http.Client
	authorization string
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) { c.httpClient = h }
}

// WithTimeout sets the timeout of the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient = &http.Client{Timeout: d} }
}

// WithPrefix overrides the API version prefix, "/v1" by default.
func WithPrefix(prefix string) Option {
	return func(c *Client) { c.prefix = prefix }
}

// WithBearer authenticates calls as a user session.
func WithBearer(userID int64, secret string) Option {
	return func(c *Client) { c.authorization = BearerAuthorization(userID, secret) }
}

// WithMicroservice authenticates calls as a trusted service.
func WithMicroservice(service, secret string) Option {
	return func(c *Client) { c.authorization = service + " " + secret }
}

// BearerAuthorization formats the Authorization header of a user session.
func BearerAuthorization(userID int64, secret string) string {
	return "Bearer " + strconv.FormatInt(userID, 10) + ":" + secret
}

// New builds a client for the server at baseURL, e.g. "http://127.0.0.1:3000".
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		prefix:     v1.Prefix,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// With returns a copy of c with extra options applied.
func (c *Client) With(opts ...Option) *Client {
	cpy := *c
	for _, opt := range opts {
		opt(&cpy)
	}
	return &cpy
}

// Do performs the operation described by d. params fill the ":param" segments
// of the path in order. An error envelope is returned as *errors.AppError.
func Do[Q, B, R any](ctx context.Context, c *Client, d endpoint.Descriptor[Q, B, R], query Q, body B, params ...any) (R, error) {
	var zero R

	path, err := d.BuildPath(params...)
	if err != nil {
		return zero, err
	}

	target := c.baseURL + c.prefix + path
	values, err := EncodeQuery(query)
	if err != nil {
		return zero, fmt.Errorf("encode query for %s: %w", d.Name(), err)
	}
	if len(values) > 0 {
		target += "?" + values.Encode()
	}

	var reader io.Reader
	if _, empty := any(body).(endpoint.Empty); !empty {
		raw, err := json.Marshal(body)
		if err != nil {
			return zero, fmt.Errorf("encode body for %s: %w", d.Name(), err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, d.Method(), target, reader)
	if err != nil {
		return zero, err
	}
	req.Header.Set("Accept", "application/json")
	if reader != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.authorization != "" {
		req.Header.Set("Authorization", c.authorization)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return zero, fmt.Errorf("%s: %w", d, err)
	}
	defer resp.Body.Close()

	var envelope response.Response[R]
	if err := json.NewDecoder(resp.Body).Decode(&envelope); err != nil {
		return zero, fmt.Errorf("%s: decode envelope (status %d): %w", d, resp.StatusCode, err)
	}
	if !envelope.OK {
		return zero, envelope.Err()
	}
	return envelope.Result, nil
}

// EncodeQuery turns a query struct into URL values using its `form` tags.
// Nil pointers are omitted and the unit shape encodes to nothing.
func EncodeQuery(query any) (url.Values, error) {
	values := url.Values{}
	if _, empty := query.(endpoint.Empty); empty || query == nil {
		return values, nil
	}

	fields := map[string]any{}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName: "form",
		Result:  &fields,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(query); err != nil {
		return nil, err
	}

	for key, value := range fields {
		rv := reflect.ValueOf(value)
		if !rv.IsValid() {
			continue
		}
		if rv.Kind() == reflect.Pointer {
			if rv.IsNil() {
				continue
			}
			rv = rv.Elem()
		}
		values.Set(key, fmt.Sprint(rv.Interface()))
	}
	return values, nil
}
