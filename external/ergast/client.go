package ergast

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	sonic "github.com/bytedance/sonic"
	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/grid-manager/internal/domain/entrant"
	"github.com/riskibarqy/grid-manager/internal/domain/scoring"
	"github.com/riskibarqy/grid-manager/internal/domain/session"
	"github.com/riskibarqy/grid-manager/internal/platform/logging"
	"github.com/riskibarqy/grid-manager/internal/platform/resilience"
	"github.com/riskibarqy/grid-manager/internal/usecase"
	"github.com/valyala/bytebufferpool"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultBaseURL   = "https://api.jolpi.ca/ergast/f1"
	maxResponseBytes = 6 << 20
	pageLimit        = "100"
	maxLoggedBody    = 240
)

var errErgastTransient = crerr.New("ergast transient failure")

var sessionPaths = map[session.Type]string{
	session.TypeRace:       "/current/last/results/",
	session.TypeQualifying: "/current/last/qualifying/",
	session.TypeSprint:     "/current/last/sprint/",
}

var standingsPaths = map[entrant.Kind]string{
	entrant.KindDriver:      "/current/driverstandings/",
	entrant.KindConstructor: "/current/constructorstandings/",
}

type ClientConfig struct {
	HTTPClient     *http.Client
	BaseURL        string
	Timeout        time.Duration
	MaxRetries     int
	RetryBackoff   time.Duration
	Logger         *logging.Logger
	CircuitBreaker resilience.CircuitBreakerConfig
}

// Client reads session results and standings from an Ergast-compatible API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	maxRetries   int
	retryBackoff time.Duration
	logger       *logging.Logger
	breaker      *resilience.CircuitBreaker
	flight       resilience.SingleFlight[[]byte]
}

var _ usecase.ResultsFeed = (*Client)(nil)

func NewClient(cfg ClientConfig) *Client {
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		}
	}
	if httpClient.Timeout <= 0 {
		httpClient.Timeout = 15 * time.Second
	}

	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	backoff := cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}
	breakerCfg := cfg.CircuitBreaker
	if breakerCfg.OnStateChange == nil {
		breakerCfg.OnStateChange = func(from, to resilience.CircuitState) {
			logger.Warn("ergast circuit breaker state changed", "from", from, "to", to)
		}
	}

	return &Client{
		httpClient:   httpClient,
		baseURL:      baseURL,
		maxRetries:   maxInt(cfg.MaxRetries, 0),
		retryBackoff: backoff,
		logger:       logger,
		breaker:      resilience.NewCircuitBreaker(breakerCfg),
	}
}

// FetchLatestSession returns the most recent classified session of sessionType.
func (c *Client) FetchLatestSession(ctx context.Context, sessionType session.Type) (usecase.SessionResults, error) {
	path, ok := sessionPaths[sessionType]
	if !ok {
		return usecase.SessionResults{}, crerr.Mark(crerr.Newf("unknown session type %q", sessionType), usecase.ErrInvalidInput)
	}

	var envelope raceEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return usecase.SessionResults{}, crerr.Wrapf(err, "fetch %s results", sessionType)
	}

	out := usecase.SessionResults{Session: sessionType}
	table := envelope.MRData.RaceTable
	if len(table.Races) == 0 {
		return out, nil
	}

	latest := table.Races[0]
	results := mapResults(sessionType, latest)
	if len(results) == 0 {
		return out, nil
	}

	season, err := parseRequiredInt(firstNonEmpty(latest.Season, table.Season), "season")
	if err != nil {
		return usecase.SessionResults{}, err
	}
	round, err := parseRequiredInt(firstNonEmpty(latest.Round, table.Round), "round")
	if err != nil {
		return usecase.SessionResults{}, err
	}

	out.HasResults = true
	out.Identity = session.Identity{Season: season, Round: round, RaceName: strings.TrimSpace(latest.RaceName)}
	out.Results = results
	return out, nil
}

// FetchStandings returns the current championship standings of kind in standings order.
func (c *Client) FetchStandings(ctx context.Context, kind entrant.Kind) ([]usecase.StandingRow, error) {
	path, ok := standingsPaths[kind]
	if !ok {
		return nil, crerr.Mark(crerr.Newf("unknown entrant kind %q", kind), usecase.ErrInvalidInput)
	}

	var envelope standingsEnvelope
	if err := c.doJSON(ctx, path, &envelope); err != nil {
		return nil, crerr.Wrapf(err, "fetch %s standings", kind)
	}

	lists := envelope.MRData.StandingsTable.StandingsLists
	if len(lists) == 0 {
		return nil, nil
	}

	list := lists[0]
	if kind == entrant.KindConstructor {
		out := make([]usecase.StandingRow, 0, len(list.ConstructorStandings))
		for _, item := range list.ConstructorStandings {
			out = append(out, usecase.StandingRow{
				Position:    parseInt(item.Position),
				Points:      parseFloat(item.Points),
				EntrantID:   strings.TrimSpace(item.Constructor.ConstructorID),
				Name:        strings.TrimSpace(item.Constructor.Name),
				Nationality: item.Constructor.Nationality,
			})
		}
		return out, nil
	}

	out := make([]usecase.StandingRow, 0, len(list.DriverStandings))
	for _, item := range list.DriverStandings {
		row := usecase.StandingRow{
			Position:    parseInt(item.Position),
			Points:      parseFloat(item.Points),
			EntrantID:   strings.TrimSpace(item.Driver.DriverID),
			Name:        driverName(item.Driver),
			Code:        item.Driver.Code,
			Nationality: item.Driver.Nationality,
		}
		// Drivers who switched teams list every constructor; the latest is last.
		if n := len(item.Constructors); n > 0 {
			row.ConstructorID = item.Constructors[n-1].ConstructorID
		}
		out = append(out, row)
	}
	return out, nil
}

func mapResults(sessionType session.Type, latest race) []scoring.Result {
	if sessionType == session.TypeQualifying {
		out := make([]scoring.Result, 0, len(latest.QualifyingResults))
		for _, item := range latest.QualifyingResults {
			out = append(out, scoring.Result{
				DriverID:        strings.TrimSpace(item.Driver.DriverID),
				DriverName:      driverName(item.Driver),
				ConstructorID:   strings.TrimSpace(item.Constructor.ConstructorID),
				ConstructorName: strings.TrimSpace(item.Constructor.Name),
				Position:        parseInt(item.Position),
			})
		}
		return out
	}

	items := latest.Results
	if sessionType == session.TypeSprint {
		items = latest.SprintResults
	}
	out := make([]scoring.Result, 0, len(items))
	for _, item := range items {
		out = append(out, scoring.Result{
			DriverID:        strings.TrimSpace(item.Driver.DriverID),
			DriverName:      driverName(item.Driver),
			ConstructorID:   strings.TrimSpace(item.Constructor.ConstructorID),
			ConstructorName: strings.TrimSpace(item.Constructor.Name),
			Points:          parseFloat(item.Points),
			Grid:            parseInt(item.Grid),
			Position:        parseInt(item.Position),
		})
	}
	return out
}

func (c *Client) doJSON(ctx context.Context, path string, target any) error {
	values := url.Values{}
	values.Set("limit", pageLimit)
	fullURL := c.baseURL + path + "?" + values.Encode()

	raw, err, _ := c.flight.Do(fullURL, func() ([]byte, error) {
		var body []byte
		execErr := c.breaker.Execute(func() error {
			var reqErr error
			body, reqErr = c.executeRequest(ctx, fullURL)
			return reqErr
		}, isTransient)
		return body, execErr
	})
	if crerr.Is(err, resilience.ErrCircuitOpen) {
		c.logger.WarnContext(ctx, "ergast circuit breaker rejected request", "state", c.breaker.State(), "path", path)
		return crerr.Mark(crerr.Wrap(err, "results feed is temporarily unavailable"), usecase.ErrFeedUnavailable)
	}
	if err != nil {
		return crerr.Mark(err, usecase.ErrFeedUnavailable)
	}

	if err := sonic.Unmarshal(raw, target); err != nil {
		return crerr.Mark(crerr.Wrap(err, "decode feed payload"), usecase.ErrFeedDataMalformed)
	}
	return nil
}

func isTransient(err error) bool {
	return crerr.Is(err, errErgastTransient)
}

func (c *Client) executeRequest(ctx context.Context, fullURL string) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("%w: send request: %v", errErgastTransient, err)
		} else {
			raw, readErr := readBody(resp.Body)
			_ = resp.Body.Close()
			switch {
			case readErr != nil:
				lastErr = fmt.Errorf("%w: read response body: %v", errErgastTransient, readErr)
			case resp.StatusCode >= 200 && resp.StatusCode < 300:
				return raw, nil
			case isRetryableStatus(resp.StatusCode):
				lastErr = fmt.Errorf("%w: feed status=%d body=%s", errErgastTransient, resp.StatusCode, abbreviateBody(raw))
			default:
				return nil, fmt.Errorf("feed status=%d body=%s", resp.StatusCode, abbreviateBody(raw))
			}
		}

		if attempt == c.maxRetries {
			break
		}
		timer := time.NewTimer(time.Duration(attempt+1) * c.retryBackoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	c.logger.WarnContext(ctx, "ergast request failed", "url", fullURL, "error", lastErr)
	return nil, lastErr
}

func readBody(body io.Reader) ([]byte, error) {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	if _, err := buf.ReadFrom(io.LimitReader(body, maxResponseBytes)); err != nil {
		return nil, err
	}
	return append([]byte(nil), buf.B...), nil
}

func parseRequiredInt(raw feedValue, field string) (int, error) {
	value, err := strconv.Atoi(raw.trimmed())
	if err != nil || value <= 0 {
		return 0, crerr.Mark(crerr.Newf("invalid %s %q", field, raw), usecase.ErrFeedDataMalformed)
	}
	return value, nil
}

// parseInt reads an optional integer; missing or non-numeric values are 0.
func parseInt(raw feedValue) int {
	value, err := strconv.Atoi(raw.trimmed())
	if err != nil {
		return 0
	}
	return value
}

func parseFloat(raw feedValue) float64 {
	value, err := strconv.ParseFloat(raw.trimmed(), 64)
	if err != nil {
		return 0
	}
	return value
}

func driverName(d driver) string {
	return strings.TrimSpace(d.GivenName + " " + d.FamilyName)
}

func firstNonEmpty(values ...feedValue) feedValue {
	for _, value := range values {
		if value.trimmed() != "" {
			return value
		}
	}
	return ""
}

func isRetryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= http.StatusInternalServerError
}

func abbreviateBody(body []byte) string {
	text := strings.TrimSpace(string(body))
	if len(text) <= maxLoggedBody {
		return text
	}
	cut := maxLoggedBody
	for cut > 0 && !utf8.RuneStart(text[cut]) {
		cut--
	}
	return text[:cut] + "..."
}

func maxInt(left, right int) int {
	if left > right {
		return left
	}
	return right
}
