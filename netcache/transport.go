package netcache

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/refina/finance_client/ware_cache"
	"github.com/rs/zerolog"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Str("component", "netcache").Logger()

// Config declares the offline strategies: cache-first for static assets,
// network-first with a short timeout for named read endpoints, and a
// persistent retry queue for named write endpoints.
type Config struct {
	CacheFirstSuffixes   []string
	NetworkFirstPrefixes []string
	QueuePrefixes        []string

	NetworkTimeout time.Duration
	StaticTTL      time.Duration
	ReadTTL        time.Duration
}

func (c *Config) defaults() {
	if len(c.CacheFirstSuffixes) == 0 {
		c.CacheFirstSuffixes = []string{
			".png", ".jpg", ".jpeg", ".svg", ".webp", ".gif",
			".woff", ".woff2", ".ttf",
		}
	}
	if c.NetworkTimeout == 0 {
		c.NetworkTimeout = 3 * time.Second
	}
	if c.StaticTTL == 0 {
		c.StaticTTL = 7 * 24 * time.Hour
	}
	if c.ReadTTL == 0 {
		c.ReadTTL = 24 * time.Hour
	}
}

func NewTransport(base http.RoundTripper, cache ware_cache.Cache, queue *RetryQueue, cfg *Config) *Transport {
	if base == nil {
		base = http.DefaultTransport
	}
	if cfg == nil {
		cfg = &Config{}
	}
	cfg.defaults()

	return &Transport{
		base:  base,
		cache: cache,
		queue: queue,
		cfg:   *cfg,
	}
}

// Transport is an http.RoundTripper applying the configured strategy per
// request. Requests matching no strategy pass straight through.
type Transport struct {
	base  http.RoundTripper
	cache ware_cache.Cache
	queue *RetryQueue
	cfg   Config
}

type cachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	switch {
	case req.Method == http.MethodGet && t.matchSuffix(req.URL.Path):
		return t.cacheFirst(req)
	case req.Method == http.MethodGet && matchPrefix(t.cfg.NetworkFirstPrefixes, req.URL.Path):
		return t.networkFirst(req)
	case t.queue != nil && isWrite(req.Method) && matchPrefix(t.cfg.QueuePrefixes, req.URL.Path):
		return t.queuedWrite(req)
	default:
		return t.base.RoundTrip(req)
	}
}

func (t *Transport) cacheFirst(req *http.Request) (*http.Response, error) {
	key := cacheKey(req)
	raw, err := t.cache.Get(req.Context(), key)
	if err == nil {
		return rebuildResponse(req, raw)
	}

	res, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	return t.storeAndReplay(req, res, key, t.cfg.StaticTTL)
}

func (t *Transport) networkFirst(req *http.Request) (*http.Response, error) {
	ctx, cancel := context.WithTimeout(req.Context(), t.cfg.NetworkTimeout)
	defer cancel()

	key := cacheKey(req)
	res, err := t.base.RoundTrip(req.WithContext(ctx))
	if err == nil && res.StatusCode < 500 {
		return t.storeAndReplay(req, res, key, t.cfg.ReadTTL)
	}
	if res != nil {
		res.Body.Close()
	}

	raw, cerr := t.cache.Get(req.Context(), key)
	if cerr == nil {
		logger.Warn().Str("url", req.URL.String()).Msg("network failed, serving cached copy")
		return rebuildResponse(req, raw)
	}

	if err == nil {
		err = fmt.Errorf("upstream error %d and no cached copy for %s", res.StatusCode, req.URL.Path)
	}
	return nil, err
}

// queuedWrite tries the network once; a network-level failure enqueues the
// request for background replay and reports a synthetic accepted envelope so
// the caller can proceed.
func (t *Transport) queuedWrite(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		var err error
		body, err = io.ReadAll(req.Body)
		req.Body.Close()
		if err != nil {
			return nil, err
		}
		req.Body = io.NopCloser(bytes.NewReader(body))
	}

	res, err := t.base.RoundTrip(req)
	if err == nil {
		return res, nil
	}

	qerr := t.queue.Enqueue(req.Context(), &QueuedRequest{
		Method:     req.Method,
		URL:        req.URL.String(),
		Header:     req.Header,
		Body:       body,
		EnqueuedAt: time.Now(),
	})
	if qerr != nil {
		return nil, err
	}

	logger.Warn().Str("url", req.URL.String()).Msg("write queued for background sync")

	envelope := `{"status":true,"message":"queued for background sync","data":null}`
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", http.StatusAccepted, http.StatusText(http.StatusAccepted)),
		StatusCode:    http.StatusAccepted,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        http.Header{"X-Background-Sync": []string{"queued"}},
		Body:          io.NopCloser(strings.NewReader(envelope)),
		ContentLength: int64(len(envelope)),
		Request:       req,
	}, nil
}

// storeAndReplay drains the live response into the cache and hands back an
// equivalent response the caller can still read.
func (t *Transport) storeAndReplay(req *http.Request, res *http.Response, key string, ttl time.Duration) (*http.Response, error) {
	body, err := io.ReadAll(res.Body)
	res.Body.Close()
	if err != nil {
		return nil, err
	}

	if res.StatusCode == http.StatusOK {
		raw, merr := json.Marshal(&cachedResponse{
			Status: res.StatusCode,
			Header: res.Header,
			Body:   body,
		})
		if merr == nil {
			merr = t.cache.Set(req.Context(), key, raw, ttl)
		}
		if merr != nil {
			logger.Error().Err(merr).Str("key", key).Msg("caching response failed")
		}
	}

	res.Body = io.NopCloser(bytes.NewReader(body))
	res.ContentLength = int64(len(body))
	return res, nil
}

func (t *Transport) matchSuffix(path string) bool {
	lower := strings.ToLower(path)
	for _, suffix := range t.cfg.CacheFirstSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func matchPrefix(prefixes []string, path string) bool {
	for _, prefix := range prefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

func cacheKey(req *http.Request) string {
	return "res:" + req.URL.String()
}

func rebuildResponse(req *http.Request, raw []byte) (*http.Response, error) {
	var cached cachedResponse
	err := json.Unmarshal(raw, &cached)
	if err != nil {
		return nil, err
	}

	header := cached.Header
	if header == nil {
		header = http.Header{}
	}
	header.Set("X-From-Cache", "1")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.Status, http.StatusText(cached.Status)),
		StatusCode:    cached.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}, nil
}
