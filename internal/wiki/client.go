package wiki

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/proxy"
)

// Client builds HTTP clients for talking to a wiki, optionally through a
// SOCKS5 proxy.
type Client struct {
	// proxyAddress is the SOCKS5 proxy in "host:port" format, or empty for
	// direct connections.
	proxyAddress string

	// proxyAuth holds proxy credentials parsed from the address.
	proxyAuth *proxy.Auth

	// dialer is the SOCKS5 dialer. Nil for direct connections.
	dialer proxy.Dialer

	// timeout is the overall timeout of one HTTP request.
	timeout time.Duration

	// userAgent is sent with every request.
	userAgent string

	// headers are extra headers sent with every request.
	headers map[string]string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithProxy routes every connection through a SOCKS5 proxy.
// The address may carry a "socks5://" scheme and "user:pass@" credentials.
func WithProxy(address string) ClientOption {
	return func(c *Client) {
		c.proxyAddress = address
	}
}

// WithUserAgent sets the User-Agent header.
// Wikimedia asks bots to identify themselves with contact information.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// WithHeaders sets extra headers sent with every request.
func WithHeaders(headers map[string]string) ClientOption {
	return func(c *Client) {
		c.headers = headers
	}
}

// NewClient creates a Client with the given request timeout.
//
// A proxy address is validated here but no connection is made; the first
// request is the first contact with the proxy.
func NewClient(timeout time.Duration, opts ...ClientOption) (*Client, error) {
	c := &Client{timeout: timeout}
	for _, opt := range opts {
		opt(c)
	}

	if c.proxyAddress == "" {
		return c, nil
	}

	hostPort, auth, err := parseProxyAddress(c.proxyAddress)
	if err != nil {
		return nil, err
	}

	dialer, err := proxy.SOCKS5("tcp", hostPort, auth, proxy.Direct)
	if err != nil {
		return nil, fmt.Errorf("failed to create SOCKS5 dialer: %w", err)
	}

	c.proxyAddress = hostPort
	c.proxyAuth = auth
	c.dialer = dialer
	return c, nil
}

// parseProxyAddress splits "[socks5://][user:pass@]host:port" into its parts.
func parseProxyAddress(address string) (string, *proxy.Auth, error) {
	rest := strings.TrimPrefix(strings.TrimSpace(address), "socks5://")

	var auth *proxy.Auth
	if at := strings.LastIndexByte(rest, '@'); at >= 0 {
		user, password, _ := strings.Cut(rest[:at], ":")
		if user == "" {
			return "", nil, ErrInvalidProxyAddress
		}
		auth = &proxy.Auth{User: user, Password: password}
		rest = rest[at+1:]
	}

	host, port, err := net.SplitHostPort(rest)
	if err != nil || host == "" {
		return "", nil, ErrInvalidProxyAddress
	}
	portNum, err := strconv.Atoi(port)
	if err != nil || portNum < 1 || portNum > 65535 {
		return "", nil, ErrInvalidProxyAddress
	}

	return net.JoinHostPort(host, port), auth, nil
}

// ProxyAddress returns the proxy "host:port", or empty for direct connections.
func (c *Client) ProxyAddress() string {
	return c.proxyAddress
}

// NewHTTPClient creates an HTTP client for wiki requests.
//
// Redirects are never followed: the Fetcher resolves them itself so that it
// can record the chain and stop cycles.
func (c *Client) NewHTTPClient() *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        32,
		MaxIdleConnsPerHost: 16,
		IdleConnTimeout:     90 * time.Second,
		TLSHandshakeTimeout: 10 * time.Second,
	}

	if c.dialer != nil {
		transport.Proxy = nil
		transport.DialContext = c.dialContext
	}

	return &http.Client{
		Transport: &headerInjectingTransport{
			base:      transport,
			userAgent: c.userAgent,
			headers:   c.headers,
		},
		Timeout: c.timeout,
		CheckRedirect: func(_ *http.Request, _ []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// dialContext dials through the SOCKS5 proxy, honouring ctx when the dialer
// supports it.
func (c *Client) dialContext(ctx context.Context, network, addr string) (net.Conn, error) {
	if cd, ok := c.dialer.(proxy.ContextDialer); ok {
		return cd.DialContext(ctx, network, addr)
	}

	type dialResult struct {
		conn net.Conn
		err  error
	}
	resultCh := make(chan dialResult, 1)

	go func() {
		conn, err := c.dialer.Dial(network, addr)
		resultCh <- dialResult{conn, err}
	}()

	select {
	case result := <-resultCh:
		return result.conn, result.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// headerInjectingTransport wraps an http.RoundTripper to inject the
// User-Agent and custom headers into every request.
type headerInjectingTransport struct {
	base      http.RoundTripper
	userAgent string
	headers   map[string]string
}

// RoundTrip implements http.RoundTripper.
func (t *headerInjectingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clone := req.Clone(req.Context())

	if t.userAgent != "" {
		clone.Header.Set("User-Agent", t.userAgent)
	}
	for key, value := range t.headers {
		clone.Header.Set(key, value)
	}

	return t.base.RoundTrip(clone)
}
