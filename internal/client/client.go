// Package client talks to the marketplace backend over its REST contract.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/domain"
	"marketplace/internal/metrics"
	"marketplace/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const maxBodySize = 4 << 20

// DecodeError means the response arrived but its body did not match the
// expected shape.
type DecodeError struct {
	Endpoint string
	Err      error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s response: %v", e.Endpoint, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

var (
	_ domain.BookingAPI = (*Client)(nil)
	_ domain.CatalogAPI = (*Client)(nil)
	_ domain.WalletAPI  = (*Client)(nil)
	_ domain.AuthAPI    = (*Client)(nil)
)

// Client implements the booking, catalog, wallet and auth contracts.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	retry      RetryPolicy
	logger     *zerolog.Logger

	redis    *redis.Client
	cacheTTL time.Duration
}

// New constructs a client for cfg.BaseURL.
func New(cfg config.APIConfig, logger *zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		retry: RetryPolicy{
			MaxRetries:    cfg.Retry.MaxRetries,
			InitialDelay:  cfg.Retry.InitialDelay,
			MaxDelay:      cfg.Retry.MaxDelay,
			BackoffFactor: cfg.Retry.BackoffFactor,
		},
		logger: logger,
	}
	if cfg.RPS > 0 {
		burst := cfg.Burst
		if burst <= 0 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RPS), burst)
	}
	return c
}

// UseRedisCache configures optional Redis caching for catalog reads.
func (c *Client) UseRedisCache(redisClient *redis.Client, ttl time.Duration) {
	c.redis = redisClient
	c.cacheTTL = ttl
}

// UseHTTPClient replaces the transport, mainly for tests.
func (c *Client) UseHTTPClient(h *http.Client) {
	c.httpClient = h
}

type request struct {
	name    string // metrics/log label, e.g. "bookings.confirm"
	method  string
	path    string
	query   url.Values
	body    any
	session *models.Session
}

// call performs req and decodes the response data into out. GET requests are
// retried per the retry policy; everything else is sent once.
func (c *Client) call(ctx context.Context, req request, out any) (*models.Pagination, error) {
	attempts := 1
	if req.method == http.MethodGet && c.retry.MaxRetries > 0 {
		attempts += c.retry.MaxRetries
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			delay := c.retry.NextDelay(attempt - 1)
			c.logger.Debug().Err(lastErr).Str("endpoint", req.name).Int("attempt", attempt).Dur("delay", delay).Msg("Retrying request")
			if err := sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		pagination, err := c.once(ctx, req, out)
		if err == nil {
			return pagination, nil
		}
		lastErr = err
		if !retryable(err) {
			break
		}
	}
	return nil, lastErr
}

func (c *Client) once(ctx context.Context, req request, out any) (*models.Pagination, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	endpoint := c.baseURL + req.path
	if len(req.query) > 0 {
		endpoint += "?" + req.query.Encode()
	}

	var body io.Reader
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return nil, fmt.Errorf("encode %s request: %w", req.name, err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, endpoint, body)
	if err != nil {
		return nil, err
	}
	requestID := uuid.NewString()
	c.addHeaders(httpReq, req.session, requestID)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveRequest(req.name, "error", time.Since(start))
		c.logger.Warn().Err(err).Str("endpoint", req.name).Str("request_id", requestID).Msg("Request failed")
		return nil, fmt.Errorf("%s: %w", req.name, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		metrics.ObserveRequest(req.name, "error", time.Since(start))
		return nil, fmt.Errorf("read %s response: %w", req.name, err)
	}

	if resp.StatusCode >= 300 {
		metrics.ObserveRequest(req.name, fmt.Sprintf("%dxx", resp.StatusCode/100), time.Since(start))
		apiErr := parseAPIError(resp.StatusCode, raw, requestID)
		c.logger.Info().
			Str("endpoint", req.name).
			Int("status", resp.StatusCode).
			Str("request_id", requestID).
			Str("message", apiErr.Message).
			Msg("Request rejected")
		return nil, apiErr
	}
	metrics.ObserveRequest(req.name, "ok", time.Since(start))

	pagination, err := decodeBody(raw, out)
	if err != nil {
		return nil, &DecodeError{Endpoint: req.name, Err: err}
	}
	return pagination, nil
}

// decodeBody accepts both the {success, data, pagination} envelope and a
// bare payload.
func decodeBody(raw []byte, out any) (*models.Pagination, error) {
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}

	trimmed := bytes.TrimSpace(raw)
	if trimmed[0] == '{' {
		var probe map[string]json.RawMessage
		if err := json.Unmarshal(trimmed, &probe); err != nil {
			return nil, err
		}
		_, hasData := probe["data"]
		_, hasSuccess := probe["success"]
		if hasData && hasSuccess {
			var env models.Envelope
			if err := json.Unmarshal(trimmed, &env); err != nil {
				return nil, err
			}
			if len(env.Data) == 0 || bytes.Equal(env.Data, []byte("null")) {
				return env.Pagination, nil
			}
			return env.Pagination, json.Unmarshal(env.Data, out)
		}
	}
	return nil, json.Unmarshal(trimmed, out)
}

func (c *Client) addHeaders(req *http.Request, session *models.Session, requestID string) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if session != nil && session.Token != "" {
		req.Header.Set("Authorization", "Bearer "+session.Token)
	}
}

func (c *Client) readCache(ctx context.Context, key string, out any) bool {
	if c.redis == nil || c.cacheTTL <= 0 {
		return false
	}
	val, err := c.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(val), out); err != nil {
		return false
	}
	return true
}

func (c *Client) writeCache(ctx context.Context, key string, val any) {
	if c.redis == nil || c.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(val)
	if err != nil {
		return
	}
	if err := c.redis.Set(ctx, key, data, c.cacheTTL).Err(); err != nil {
		c.logger.Debug().Err(err).Str("key", key).Msg("Cache write failed")
	}
}

// invalidateCatalog drops every cached catalog response.
func (c *Client) invalidateCatalog(ctx context.Context) {
	if c.redis == nil {
		return
	}
	iter := c.redis.Scan(ctx, 0, catalogCachePrefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil && !errors.Is(err, redis.Nil) {
		c.logger.Debug().Err(err).Msg("Catalog cache scan failed")
		return
	}
	if len(keys) > 0 {
		_ = c.redis.Del(ctx, keys...).Err()
	}
}
