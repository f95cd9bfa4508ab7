package nflverse

import (
	"compress/gzip"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/gridstats/nfl-efficiency-hub/internal/domain/play"
	"github.com/gridstats/nfl-efficiency-hub/internal/domain/shared"
	"github.com/gridstats/nfl-efficiency-hub/pkg/circuitbreaker"
	"github.com/gridstats/nfl-efficiency-hub/pkg/logger"
	"github.com/gridstats/nfl-efficiency-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the nflverse client.
type ClientConfig struct {
	// BaseURL is the release asset base URL. Season files are addressed
	// as <BaseURL>/play_by_play_<year>.csv.gz.
	BaseURL string

	// Timeout is the HTTP request timeout. Season files run tens of
	// megabytes, so this is much longer than a typical API timeout.
	Timeout time.Duration

	// MinRequestInterval spaces requests to the release host.
	MinRequestInterval time.Duration

	// UserAgent identifies this client to the release host.
	UserAgent string

	// Logger for structured logging.
	Logger *logger.Logger
}

// DefaultClientConfig returns conservative defaults for the public
// nflverse release host.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:            "https://github.com/nflverse/nflverse-data/releases/download/pbp",
		Timeout:            2 * time.Minute,
		MinRequestInterval: 500 * time.Millisecond,
		UserAgent:          "nfl-efficiency-hub/1.0",
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client downloads and parses nflverse season play-by-play files with
// rate limiting, retries and circuit breaking.
type Client struct {
	config  ClientConfig
	http    *http.Client
	log     *logger.Logger
	retrier *retry.Retrier
	breaker *circuitbreaker.CircuitBreaker
	mapper  *Mapper

	// Request spacing
	mu          sync.Mutex
	lastRequest time.Time
}

// NewClient creates a nflverse client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = logger.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultClientConfig().BaseURL
	}
	if config.Timeout <= 0 {
		config.Timeout = DefaultClientConfig().Timeout
	}

	log := config.Logger.With(logger.Component("nflverse.client"))

	return &Client{
		config: config,
		http: &http.Client{
			Timeout: config.Timeout,
		},
		log:     log,
		retrier: retry.NFLVerseRetrier(),
		breaker: circuitbreaker.NFLVerseBreaker(func(name string, from, to circuitbreaker.State) {
			log.Warn("circuit breaker state change",
				logger.String("breaker", name),
				logger.String("from", from.String()),
				logger.String("to", to.String()),
			)
		}),
		mapper: NewMapper(),
	}
}

// FetchSeason downloads one season's play-by-play file and maps it into a
// domain table. Seasons not yet published return shared.ErrNotFound.
func (c *Client) FetchSeason(ctx context.Context, season shared.SeasonYear) (play.Table, error) {
	var table play.Table

	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		return c.retrier.Do(ctx, func(ctx context.Context) error {
			t, err := c.fetchSeasonOnce(ctx, season)
			if err != nil {
				return err
			}
			table = t
			return nil
		})
	})
	if err != nil {
		return play.Table{}, shared.WrapError("nflverse", "fetch_season", shared.ErrExternalService,
			fmt.Sprintf("season %d play-by-play", season.Int()), err)
	}

	c.log.Info("season file fetched",
		logger.SeasonYear(season.Int()),
		logger.PlayCount(table.Len()),
	)
	return table, nil
}

// IsHealthy reports whether the release host answers a HEAD request for the
// earliest published season.
func (c *Client) IsHealthy(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, c.seasonURL(shared.MinSeasonYear), nil)
	if err != nil {
		return false
	}
	req.Header.Set("User-Agent", c.config.UserAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode < 500
}

// BreakerState exposes the circuit breaker state for health reporting.
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// ══════════════════════════════════════════════════════════════════════════════
// HTTP HELPERS
// ══════════════════════════════════════════════════════════════════════════════

func (c *Client) seasonURL(season shared.SeasonYear) string {
	return fmt.Sprintf("%s/play_by_play_%d.csv.gz", c.config.BaseURL, season.Int())
}

func (c *Client) fetchSeasonOnce(ctx context.Context, season shared.SeasonYear) (play.Table, error) {
	if err := c.waitInterval(ctx); err != nil {
		return play.Table{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.seasonURL(season), nil)
	if err != nil {
		return play.Table{}, retry.Permanent(fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.http.Do(req)
	if err != nil {
		return play.Table{}, retry.Retryable(fmt.Errorf("http request: %w", err))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return play.Table{}, retry.Permanent(shared.WrapError("nflverse", "fetch_season", shared.ErrNotFound,
			fmt.Sprintf("no play-by-play published for season %d", season.Int()), nil))
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return play.Table{}, retry.Retryable(fmt.Errorf("release host returned status %d", resp.StatusCode))
	default:
		return play.Table{}, retry.Permanent(fmt.Errorf("release host returned status %d", resp.StatusCode))
	}

	table, err := c.decode(resp.Body)
	if err != nil {
		return play.Table{}, retry.Permanent(shared.WrapError("nflverse", "fetch_season", shared.ErrInvalidFormat,
			"decoding season file", err))
	}
	return table, nil
}

// decode reads a season payload, transparently handling gzip. Test servers
// and some proxies hand back plain CSV, so the magic bytes are sniffed
// instead of trusting the file extension.
func (c *Client) decode(body io.Reader) (play.Table, error) {
	buffered := newPeekReader(body)

	magic, err := buffered.peek(2)
	if err != nil {
		return play.Table{}, fmt.Errorf("read payload: %w", err)
	}

	var payload io.Reader = buffered
	if magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(buffered)
		if err != nil {
			return play.Table{}, fmt.Errorf("gzip: %w", err)
		}
		defer gz.Close()
		payload = gz
	}

	reader := csv.NewReader(payload)
	reader.FieldsPerRecord = -1
	reader.ReuseRecord = false

	records, err := reader.ReadAll()
	if err != nil {
		return play.Table{}, fmt.Errorf("parse csv: %w", err)
	}

	doc, err := newCSVDocument(records)
	if err != nil {
		return play.Table{}, err
	}
	return c.mapper.TableFromDocument(doc), nil
}

// waitInterval enforces the minimum spacing between requests.
func (c *Client) waitInterval(ctx context.Context) error {
	c.mu.Lock()
	wait := c.config.MinRequestInterval - time.Since(c.lastRequest)
	c.lastRequest = time.Now().Add(wait)
	c.mu.Unlock()

	if wait <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}

// peekReader lets the decoder sniff magic bytes without consuming them.
type peekReader struct {
	r      io.Reader
	buf    []byte
	offset int
}

func newPeekReader(r io.Reader) *peekReader {
	return &peekReader{r: r}
}

func (p *peekReader) peek(n int) ([]byte, error) {
	for len(p.buf) < n {
		chunk := make([]byte, n-len(p.buf))
		read, err := p.r.Read(chunk)
		p.buf = append(p.buf, chunk[:read]...)
		if err != nil {
			if err == io.EOF && len(p.buf) >= n {
				break
			}
			return nil, err
		}
	}
	return p.buf[:n], nil
}

func (p *peekReader) Read(out []byte) (int, error) {
	if p.offset < len(p.buf) {
		n := copy(out, p.buf[p.offset:])
		p.offset += n
		return n, nil
	}
	return p.r.Read(out)
}
