package registry

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	hdrhistogram "github.com/HdrHistogram/hdrhistogram-go"
	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	// DefaultBaseURL is the Modrinth v2 API root.
	DefaultBaseURL = "https://api.modrinth.com/v2"
	// DefaultUserAgent identifies the tool to the registry.
	DefaultUserAgent = "ModEnvironmentChecker/1.0"
	// DefaultRequestDelay is the courtesy pause applied after every attempt.
	DefaultRequestDelay = 500 * time.Millisecond
	// DefaultTimeout bounds a single classification call.
	DefaultTimeout = 30 * time.Second

	// projectIDMarker is the path segment preceding the project ID in CDN
	// download URLs (cdn.modrinth.com/data/<id>/versions/...).
	projectIDMarker = "data"
)

// ClientConfig holds the injectable parameters for a registry client.
type ClientConfig struct {
	BaseURL      string
	UserAgent    string
	RequestDelay time.Duration
	Timeout      time.Duration
}

// SetDefaults fills zero-valued fields with the package defaults.
func (c *ClientConfig) SetDefaults() {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}
	if c.RequestDelay <= 0 {
		c.RequestDelay = DefaultRequestDelay
	}
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}
}

// Client performs side-classification lookups against a Modrinth-compatible
// registry. All failure paths resolve to SideUnknown; the caller never sees
// an error from a single lookup.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userAgent  string
	delay      time.Duration
	logger     *slog.Logger

	statsMu  sync.Mutex
	latency  *hdrhistogram.Histogram
	failures map[FailureKind]int64
}

// NewClient creates a registry client with the given configuration.
func NewClient(cfg ClientConfig, logger *slog.Logger) *Client {
	cfg.SetDefaults()
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		userAgent:  cfg.UserAgent,
		delay:      cfg.RequestDelay,
		logger:     logger.With("component", "registry"),
		// 1ms..60s at 3 significant figures covers any sane API call.
		latency:  hdrhistogram.New(1, 60_000, 3),
		failures: make(map[FailureKind]int64),
	}
}

// ProjectIDFromURL derives the registry project ID from a download URL by
// scanning the path segments for the marker and taking the next segment.
func ProjectIDFromURL(rawURL string) (string, error) {
	if strings.TrimSpace(rawURL) == "" {
		return "", fmt.Errorf("download url is empty")
	}

	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid download url: %w", err)
	}

	segments := strings.Split(parsed.Path, "/")
	for i, segment := range segments {
		if segment == projectIDMarker && i+1 < len(segments) && segments[i+1] != "" {
			return segments[i+1], nil
		}
	}

	return "", fmt.Errorf("no %q segment in download url path", projectIDMarker)
}

// projectResponse is the slice of the registry project document we care
// about.
type projectResponse struct {
	ClientSide string `json:"client_side"`
	ServerSide string `json:"server_side"`
}

// Classify looks up the side classification for one download reference.
// It performs at most one HTTP call, applies the courtesy delay after the
// attempt, and soft-fails to SideUnknown on every error path.
func (c *Client) Classify(ctx context.Context, downloadURL string) Side {
	if ctx.Err() != nil {
		return SideUnknown
	}

	projectID, err := ProjectIDFromURL(downloadURL)
	if err != nil {
		c.recordFailure(FailureNoProjectID)
		c.logger.Debug("cannot derive project id", "url", downloadURL, "error", err)
		return SideUnknown
	}

	side, err := c.fetchProjectSides(projectID)
	c.pause(ctx)
	if err != nil {
		kind := classifyFailure(err)
		c.recordFailure(kind)
		c.logger.Warn("classification lookup failed",
			"project_id", projectID,
			"kind", kind.String(),
			"error", err)
		return SideUnknown
	}

	return side
}

// fetchProjectSides performs the single GET against the registry. The
// request deliberately carries no run context: an in-flight call is allowed
// to finish after a stop, bounded by the client timeout.
func (c *Client) fetchProjectSides(projectID string) (Side, error) {
	apiURL := fmt.Sprintf("%s/project/%s", c.baseURL, projectID)

	req, err := http.NewRequest(http.MethodGet, apiURL, nil)
	if err != nil {
		return SideUnknown, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.recordLatency(time.Since(start))
	if err != nil {
		return SideUnknown, &lookupError{kind: FailureNetwork, err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return SideUnknown, &lookupError{
			kind: FailureStatus,
			err:  fmt.Errorf("unexpected status %d", resp.StatusCode),
		}
	}

	var project projectResponse
	if err := json.NewDecoder(resp.Body).Decode(&project); err != nil {
		return SideUnknown, &lookupError{kind: FailureDecode, err: err}
	}

	clientSide := project.ClientSide
	serverSide := project.ServerSide
	if clientSide == "" {
		clientSide = "unknown"
	}
	if serverSide == "" {
		serverSide = "unknown"
	}

	return MapSides(clientSide, serverSide), nil
}

// pause applies the fixed inter-call delay. The sleep yields early when the
// context is cancelled so shutdown is not held up by it.
func (c *Client) pause(ctx context.Context) {
	if c.delay <= 0 {
		return
	}
	select {
	case <-ctx.Done():
	case <-time.After(c.delay):
	}
}

func (c *Client) recordLatency(d time.Duration) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	ms := d.Milliseconds()
	if ms < 1 {
		ms = 1
	}
	// RecordValue only fails outside the histogram range; clamp instead.
	if ms > 60_000 {
		ms = 60_000
	}
	_ = c.latency.RecordValue(ms)
}

func (c *Client) recordFailure(kind FailureKind) {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()
	c.failures[kind]++
}

// Stats is a snapshot of the client's call statistics.
type Stats struct {
	Calls     int64
	MeanMs    float64
	P99Ms     int64
	Failures  int64
	ByFailure map[FailureKind]int64
}

// Stats returns a copy of the current latency and failure counters.
func (c *Client) Stats() Stats {
	c.statsMu.Lock()
	defer c.statsMu.Unlock()

	stats := Stats{
		Calls:     c.latency.TotalCount(),
		MeanMs:    c.latency.Mean(),
		P99Ms:     c.latency.ValueAtQuantile(99),
		ByFailure: make(map[FailureKind]int64, len(c.failures)),
	}
	for kind, count := range c.failures {
		stats.ByFailure[kind] = count
		stats.Failures += count
	}
	return stats
}
