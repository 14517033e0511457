// Package rawg is a minimal client for the RAWG video game database.
//
// The API key is sent as the "key" query parameter on every call. Calls are
// never retried; repeated outages open a circuit breaker so requests fail
// fast instead of waiting out the HTTP timeout.
package rawg

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"gamelib/internal/catalog/models"
)

const (
	DefaultBaseURL   = "https://api.rawg.io/api"
	SearchPageSize   = 20
	platformPageSize = 40
	maxPlatformPages = 3
	maxErrorBody     = 4 << 10
)

// Client talks to the RAWG REST API.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	breaker    *Breaker
	tracer     trace.Tracer
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

func WithBreaker(b *Breaker) Option {
	return func(c *Client) {
		c.breaker = b
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New builds a client. An empty apiKey is accepted; every call then fails
// with an authentication error without touching the network.
func New(apiKey, baseURL string, timeout time.Duration, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	c := &Client{
		apiKey:  strings.TrimSpace(apiKey),
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		tracer: otel.Tracer("gamelib/catalog/rawg"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewBreaker(5, 30*time.Second)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Configured reports whether an API key is present.
func (c *Client) Configured() bool {
	return c.apiKey != ""
}

type gameResult struct {
	ID              int     `json:"id"`
	Name            string  `json:"name"`
	BackgroundImage *string `json:"background_image"`
	Released        *string `json:"released"`
	Metacritic      *int    `json:"metacritic"`
}

type gameListResponse struct {
	Count   int          `json:"count"`
	Next    *string      `json:"next"`
	Results []gameResult `json:"results"`
}

type platformListResponse struct {
	Next    *string           `json:"next"`
	Results []models.Platform `json:"results"`
}

type namedRef struct {
	Name string `json:"name"`
}

type gameDetailResponse struct {
	gameResult
	DescriptionRaw string `json:"description_raw"`
	Website        string `json:"website"`
	Platforms      []struct {
		Platform namedRef `json:"platform"`
	} `json:"platforms"`
	Genres []namedRef `json:"genres"`
}

// SearchGames searches titles, optionally filtered by platform. Results keep
// provider order; zero hits is an empty slice.
func (c *Client) SearchGames(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error) {
	params := url.Values{}
	params.Set("search", q.Query)
	params.Set("page_size", strconv.Itoa(SearchPageSize))
	if q.Page > 1 {
		params.Set("page", strconv.Itoa(q.Page))
	}
	if q.PlatformID != nil {
		params.Set("platforms", strconv.Itoa(*q.PlatformID))
	}

	var resp gameListResponse
	if err := c.get(ctx, "search_games", "/games", params, &resp); err != nil {
		return nil, err
	}

	results := make([]models.SearchResult, 0, len(resp.Results))
	for _, r := range resp.Results {
		results = append(results, toSearchResult(r))
	}
	return results, nil
}

// ListPlatforms fetches the platform list, following "next" for at most
// three pages.
func (c *Client) ListPlatforms(ctx context.Context) ([]models.Platform, error) {
	var platforms []models.Platform
	for page := 1; page <= maxPlatformPages; page++ {
		params := url.Values{}
		params.Set("page_size", strconv.Itoa(platformPageSize))
		params.Set("page", strconv.Itoa(page))

		var resp platformListResponse
		if err := c.get(ctx, "list_platforms", "/platforms", params, &resp); err != nil {
			return nil, err
		}
		platforms = append(platforms, resp.Results...)
		if resp.Next == nil || *resp.Next == "" {
			break
		}
	}
	return platforms, nil
}

// GameDetails fetches one game by its catalog id.
func (c *Client) GameDetails(ctx context.Context, externalID int) (*models.GameDetails, error) {
	var resp gameDetailResponse
	if err := c.get(ctx, "game_details", "/games/"+strconv.Itoa(externalID), url.Values{}, &resp); err != nil {
		return nil, err
	}

	details := &models.GameDetails{
		ExternalID:  resp.ID,
		Title:       resp.Name,
		Description: resp.DescriptionRaw,
		Cover:       nonEmpty(resp.BackgroundImage),
		ReleaseDate: nonEmpty(resp.Released),
		CriticScore: resp.Metacritic,
		Website:     nonEmpty(&resp.Website),
	}
	for _, p := range resp.Platforms {
		details.Platforms = append(details.Platforms, p.Platform.Name)
	}
	for _, g := range resp.Genres {
		details.Genres = append(details.Genres, g.Name)
	}
	return details, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, out any) (err error) {
	if c.apiKey == "" {
		return newProviderError(ErrorAuthentication, op, "RAWG_API_KEY is not configured", nil)
	}
	if !c.breaker.Allow() {
		return newProviderError(ErrorProviderOutage, op, "circuit open", nil)
	}

	ctx, span := c.tracer.Start(ctx, "rawg."+op, trace.WithAttributes(
		attribute.String("rawg.path", path),
	))
	start := time.Now()
	defer func() {
		category := Category(err)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, string(category))
		}
		if tripsBreaker(category) {
			c.breaker.RecordFailure()
		} else {
			c.breaker.RecordSuccess()
		}
		c.logger.DebugContext(ctx, "rawg call finished",
			"operation", op,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		span.End()
	}()

	params.Set("key", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return newProviderError(ErrorBadData, op, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return classifyTransportErr(op, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return classifyStatus(op, resp.StatusCode, body)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return newProviderError(ErrorBadData, op, "decode response", err)
	}
	return nil
}

func classifyTransportErr(op string, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return newProviderError(ErrorTimeout, op, "request timed out", err)
	}
	return newProviderError(ErrorProviderOutage, op, "request failed", err)
}

func classifyStatus(op string, status int, body []byte) error {
	msg := fmt.Sprintf("unexpected status %d", status)
	if len(body) > 0 {
		msg += ": " + strings.TrimSpace(string(body))
	}
	switch {
	case status == http.StatusNotFound:
		return newProviderError(ErrorNotFound, op, msg, nil)
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return newProviderError(ErrorAuthentication, op, msg, nil)
	case status == http.StatusTooManyRequests:
		return newProviderError(ErrorRateLimited, op, msg, nil)
	case status >= 500:
		return newProviderError(ErrorProviderOutage, op, msg, nil)
	}
	return newProviderError(ErrorContractMismatch, op, msg, nil)
}

func toSearchResult(r gameResult) models.SearchResult {
	return models.SearchResult{
		ExternalID:  r.ID,
		Title:       r.Name,
		Cover:       nonEmpty(r.BackgroundImage),
		ReleaseDate: nonEmpty(r.Released),
		CriticScore: r.Metacritic,
	}
}

func nonEmpty(s *string) *string {
	if s == nil || strings.TrimSpace(*s) == "" {
		return nil
	}
	v := *s
	return &v
}
