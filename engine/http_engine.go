package engine

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sync"
	"time"

	tls "github.com/refraction-networking/utls"
	"golang.org/x/time/rate"

	"github.com/use-agent/serprank/models"
)

// DefaultUserAgent is the constant browser-like User-Agent sent to providers.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36"

// maxBody caps how much of a result page is read into memory.
const maxBody = 10 << 20

// chromeH1Spec is a Chrome-like TLS ClientHello with ALPN forced to http/1.1
// only. Computed once at init time and reused for every connection.
var chromeH1Spec tls.ClientHelloSpec

func init() {
	spec, err := tls.UTLSIdToSpec(tls.HelloChrome_Auto)
	if err != nil {
		return
	}
	// Go's http.Transport cannot speak h2 over a utls connection.
	for i, ext := range spec.Extensions {
		if alpn, ok := ext.(*tls.ALPNExtension); ok {
			alpn.AlpnProtocols = []string{"http/1.1"}
			spec.Extensions[i] = alpn
			break
		}
	}
	chromeH1Spec = spec
}

// Options configures an HTTPEngine. Zero values fall back to defaults.
type Options struct {
	// Timeout bounds a single page fetch. Default: 15s.
	Timeout time.Duration

	// UserAgent overrides DefaultUserAgent.
	UserAgent string

	// Proxy is an optional http(s) proxy URL.
	Proxy string

	// RequestsPerSecond paces outbound requests per provider host.
	// Zero disables pacing.
	RequestsPerSecond float64

	// Burst is the pacing bucket size. Default: 1.
	Burst int
}

// HTTPEngine fetches result pages over net/http with a Chrome-like TLS
// fingerprint. It is safe for concurrent use.
type HTTPEngine struct {
	client    *http.Client
	userAgent string

	rps      rate.Limit
	burst    int
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
}

// NewHTTPEngine creates an HTTPEngine.
func NewHTTPEngine(opts Options) *HTTPEngine {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	if opts.Burst <= 0 {
		opts.Burst = 1
	}

	transport := &http.Transport{
		DialTLSContext:    dialTLSChrome,
		ForceAttemptHTTP2: false,
	}
	if opts.Proxy != "" {
		if proxyURL, err := url.Parse(opts.Proxy); err == nil && (proxyURL.Scheme == "http" || proxyURL.Scheme == "https") {
			transport.Proxy = http.ProxyURL(proxyURL)
		}
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &HTTPEngine{
		client: &http.Client{
			Transport: transport,
			Timeout:   opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return fmt.Errorf("too many redirects")
				}
				return nil
			},
		},
		userAgent: opts.UserAgent,
		rps:       limit,
		burst:     opts.Burst,
		limiters:  make(map[string]*rate.Limiter),
	}
}

// Fetch issues one GET for req.URL. A non-2xx status or a transport failure
// yields a FETCH_FAILED error; caller cancellation yields CANCELED or TIMEOUT.
func (e *HTTPEngine) Fetch(ctx context.Context, req *FetchRequest) (*FetchResult, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, req.URL, nil)
	if err != nil {
		return nil, models.NewRankError(models.ErrCodeFetch, "build request", err)
	}

	if err := e.limiter(httpReq.URL.Host).Wait(ctx); err != nil {
		return nil, contextError(ctx, err)
	}

	httpReq.Header.Set("User-Agent", e.userAgent)
	httpReq.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8")
	httpReq.Header.Set("Accept-Language", "en-US,en;q=0.9")
	httpReq.Header.Set("Accept-Encoding", "identity")
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	resp, err := e.client.Do(httpReq)
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx, err)
		}
		return nil, models.NewRankError(models.ErrCodeFetch, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain a little so the connection can be reused.
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &models.RankError{
			Code:       models.ErrCodeFetch,
			Message:    fmt.Sprintf("provider returned HTTP %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		if ctx.Err() != nil {
			return nil, contextError(ctx, err)
		}
		return nil, models.NewRankError(models.ErrCodeFetch, "read body", err)
	}

	return &FetchResult{
		HTML:       string(body),
		StatusCode: resp.StatusCode,
		FinalURL:   resp.Request.URL.String(),
	}, nil
}

// limiter returns the pacing limiter for host, creating it on first use.
func (e *HTTPEngine) limiter(host string) *rate.Limiter {
	e.mu.Lock()
	defer e.mu.Unlock()
	l, ok := e.limiters[host]
	if !ok {
		l = rate.NewLimiter(e.rps, e.burst)
		e.limiters[host] = l
	}
	return l
}

// contextError maps a cancelled or expired ctx to CANCELED or TIMEOUT.
func contextError(ctx context.Context, cause error) error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return models.NewRankError(models.ErrCodeTimeout, "deadline exceeded while fetching", ctx.Err())
	}
	if ctx.Err() != nil {
		return models.NewRankError(models.ErrCodeCanceled, "request canceled", ctx.Err())
	}
	// rate.Limiter refuses waits that would overrun the deadline.
	return models.NewRankError(models.ErrCodeTimeout, "pacing delay would exceed deadline", cause)
}

// dialTLSChrome establishes a TLS connection using the Chrome fingerprint.
func dialTLSChrome(ctx context.Context, network, addr string) (net.Conn, error) {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, network, addr)
	if err != nil {
		return nil, err
	}
	host, _, _ := net.SplitHostPort(addr)
	tlsConn := tls.UClient(conn, &tls.Config{ServerName: host}, tls.HelloCustom)
	if err := tlsConn.ApplyPreset(&chromeH1Spec); err != nil {
		conn.Close()
		return nil, fmt.Errorf("http_engine: apply tls spec: %w", err)
	}
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		conn.Close()
		return nil, err
	}
	return tlsConn, nil
}
