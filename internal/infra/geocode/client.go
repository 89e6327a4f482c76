// Package geocode implements usecase.GeocoderUsecase against an HTTP
// geocoding service, following the fasthttp + goccy/go-json client shape
// used by the pack's Valhalla routing client.
package geocode

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"radar/config"
	"radar/internal/domain/entity"
	"radar/internal/usecase"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/valyala/fasthttp"
	"golang.org/x/time/rate"
)

type forwardRequest struct {
	Text string `json:"text"`
}

type forwardResponse struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
	Ok  bool    `json:"ok"`
}

type reverseResponse struct {
	Street     string `json:"street"`
	Number     string `json:"number"`
	City       string `json:"city"`
	Country    string `json:"country"`
	PostalCode string `json:"postal_code"`
}

type cacheEntry struct {
	coord     entity.Coordinate
	ok        bool
	expiresAt time.Time
}

// Client is the geocoder HTTP adapter. It rate-limits outbound forward
// lookups with a token bucket (spec §5) and caches resolved results for
// the configured TTL.
type Client struct {
	cfg        *config.GeocoderConfig
	httpClient *fasthttp.Client
	limiter    *rate.Limiter
	logger     *slog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// New is the constructor for Client.
func New(cfg *config.GeocoderConfig, logger *slog.Logger) usecase.GeocoderUsecase {
	if logger == nil {
		logger = slog.Default()
	}

	limit := rate.Limit(cfg.RateLimitPerSec)
	if cfg.RateLimitPerSec <= 0 {
		limit = rate.Limit(1)
	}
	burst := cfg.RateLimitBurst
	if burst <= 0 {
		burst = 1
	}

	return &Client{
		cfg: cfg,
		httpClient: &fasthttp.Client{
			Name: "radar-geocoder-client",
		},
		limiter: rate.NewLimiter(limit, burst),
		logger:  logger,
		cache:   make(map[string]cacheEntry),
	}
}

func (c *Client) Forward(ctx context.Context, addr entity.OrderAddress) (entity.Coordinate, bool, error) {
	if addr.Structured != nil && addr.Structured.Coordinate != nil && addr.Structured.Coordinate.Valid() {
		return *addr.Structured.Coordinate, true, nil
	}

	cacheKey := addressCacheKey(addr)
	if cached, found := c.lookupCache(cacheKey); found {
		return cached.coord, cached.ok, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return entity.Coordinate{}, false, errors.Wrap(err, "geocoder rate limiter wait")
	}

	text := addr.FreeText
	if text == "" && addr.Structured != nil {
		text = fmt.Sprintf("%s %s, %s, %s", addr.Structured.Street, addr.Structured.Number, addr.Structured.City, addr.Structured.Country)
	}

	req, resp, err := c.buildRequest(ctx, "forward", forwardRequest{Text: text})
	if err != nil {
		return entity.Coordinate{}, false, err
	}
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	var decoded forwardResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return entity.Coordinate{}, false, errors.Wrap(err, "decode forward geocode response")
	}

	coord := entity.Coordinate{Lat: decoded.Lat, Lng: decoded.Lng}
	ok := decoded.Ok && coord.Valid()
	c.storeCache(cacheKey, coord, ok)

	return coord, ok, nil
}

func (c *Client) Reverse(ctx context.Context, coord entity.Coordinate) (*entity.Address, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.Wrap(err, "geocoder rate limiter wait")
	}

	req, resp, err := c.buildRequest(ctx, "reverse", coord)
	if err != nil {
		return nil, err
	}
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	var decoded reverseResponse
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		return nil, errors.Wrap(err, "decode reverse geocode response")
	}

	return &entity.Address{
		Street:     decoded.Street,
		Number:     decoded.Number,
		City:       decoded.City,
		Country:    decoded.Country,
		PostalCode: decoded.PostalCode,
		Coordinate: &coord,
	}, nil
}

func (c *Client) buildRequest(ctx context.Context, path string, body any) (*fasthttp.Request, *fasthttp.Response, error) {
	req := fasthttp.AcquireRequest()
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	if err := req.URI().Parse(nil, []byte(c.cfg.BaseURL+"/"+path)); err != nil {
		fasthttp.ReleaseRequest(req)

		return nil, nil, errors.Wrap(err, "build geocoder request uri")
	}

	bodyBytes, err := json.Marshal(body)
	if err != nil {
		fasthttp.ReleaseRequest(req)

		return nil, nil, errors.Wrap(err, "encode geocoder request body")
	}
	req.SetBody(bodyBytes)

	resp := fasthttp.AcquireResponse()

	timeout := time.Duration(c.cfg.TimeoutMs) * time.Millisecond
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	if deadline, ok := ctx.Deadline(); ok {
		if remaining := time.Until(deadline); remaining < timeout {
			timeout = remaining
		}
	}

	if err := c.httpClient.DoTimeout(req, resp, timeout); err != nil {
		fasthttp.ReleaseRequest(req)
		fasthttp.ReleaseResponse(resp)

		return nil, nil, errors.Wrap(err, "geocoder request failed")
	}

	return req, resp, nil
}

func (c *Client) lookupCache(key string) (cacheEntry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, found := c.cache[key]
	if !found || time.Now().After(entry.expiresAt) {
		return cacheEntry{}, false
	}

	return entry, true
}

func (c *Client) storeCache(key string, coord entity.Coordinate, ok bool) {
	ttl := c.cfg.CacheTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cache[key] = cacheEntry{coord: coord, ok: ok, expiresAt: time.Now().Add(ttl)}
}

func addressCacheKey(addr entity.OrderAddress) string {
	if addr.Structured != nil {
		return fmt.Sprintf("s:%s|%s|%s|%s", addr.Structured.Street, addr.Structured.Number, addr.Structured.City, addr.Structured.Country)
	}

	return "f:" + addr.FreeText
}
