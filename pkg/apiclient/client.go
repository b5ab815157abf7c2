// Package apiclient talks to the storefront HTTP API. The session cookie set
// by Login is the only credential and is kept in the client's cookie jar.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/Skotchmaster/storefront/pkg/localstore"
)

// Tag groups cached queries so a mutation can drop everything it affects.
type Tag string

const (
	TagProduct Tag = "Product"
	TagUser    Tag = "User"
)

var allTags = []Tag{TagProduct, TagUser}

type Client struct {
	baseURL    *url.URL
	httpClient *http.Client

	mu    sync.Mutex
	cache map[Tag]map[string][]byte
}

type Option func(*options)

type options struct {
	timeout time.Duration
	cookies localstore.Storage
}

func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithCookieStorage keeps the session cookie in s so it survives restarts.
func WithCookieStorage(s localstore.Storage) Option {
	return func(o *options) { o.cookies = s }
}

func New(baseURL string, opts ...Option) (*Client, error) {
	o := options{timeout: 10 * time.Second}
	for _, opt := range opts {
		opt(&o)
	}

	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base url %q must be absolute", baseURL)
	}

	inner, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("create cookie jar: %w", err)
	}
	var jar http.CookieJar = inner
	if o.cookies != nil {
		pj := &persistentJar{Jar: inner, storage: o.cookies, base: u}
		if err := pj.load(); err != nil {
			return nil, err
		}
		jar = pj
	}

	return &Client{
		baseURL: u,
		httpClient: &http.Client{
			Timeout: o.timeout,
			Jar:     jar,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		cache: make(map[Tag]map[string][]byte),
	}, nil
}

// Invalidate drops every cached query under the given tags.
func (c *Client) Invalidate(tags ...Tag) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, t := range tags {
		delete(c.cache, t)
	}
}

func (c *Client) cached(tag Tag, key string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.cache[tag][key]
	return b, ok
}

func (c *Client) store(tag Tag, key string, body []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cache[tag] == nil {
		c.cache[tag] = make(map[string][]byte)
	}
	c.cache[tag][key] = body
}

// query is a cached GET.
func (c *Client) query(ctx context.Context, tag Tag, path string, out any) error {
	if body, ok := c.cached(tag, path); ok {
		return decode(body, out)
	}
	body, err := c.do(ctx, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	if err := decode(body, out); err != nil {
		return err
	}
	c.store(tag, path, body)
	return nil
}

// mutate sends a write and invalidates tags once it succeeds.
func (c *Client) mutate(ctx context.Context, method, path string, in, out any, tags ...Tag) error {
	body, err := c.do(ctx, method, path, in)
	if err != nil {
		return err
	}
	c.Invalidate(tags...)
	if out == nil {
		return nil
	}
	return decode(body, out)
}

func (c *Client) do(ctx context.Context, method, path string, in any) ([]byte, error) {
	var reader io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL.String()+path, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newError(resp.StatusCode, body)
	}
	return body, nil
}

func decode(body []byte, out any) error {
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
