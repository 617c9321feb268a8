package source_resolver

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"time"

	_ "github.com/bdandy/go-socks4"
	"github.com/kkdai/youtube/v2"
	"github.com/rs/zerolog"
	"golang.org/x/net/proxy"
)

const clientTimeout = 15 * time.Second

// NewClient builds a kkdai client, optionally routed through proxyStr
// (http, https, socks5 or socks4 URL).
func NewClient(proxyStr string, logger zerolog.Logger) (*youtube.Client, error) {
	log := logger.With().Str("component", "resolver").Logger()
	if proxyStr == "" {
		return &youtube.Client{HTTPClient: &http.Client{Timeout: clientTimeout}}, nil
	}

	proxyURL, err := url.Parse(proxyStr)
	if err != nil {
		return nil, fmt.Errorf("invalid proxy %q: %w", proxyStr, err)
	}

	transport, err := proxyTransport(proxyURL)
	if err != nil {
		return nil, err
	}

	log.Info().Str("scheme", proxyURL.Scheme).Str("host", proxyURL.Host).Msg("Using proxy for YouTube")
	return &youtube.Client{
		HTTPClient: &http.Client{
			Timeout:   clientTimeout,
			Transport: transport,
		},
	}, nil
}

func proxyTransport(proxyURL *url.URL) (*http.Transport, error) {
	switch proxyURL.Scheme {
	case "http", "https":
		return &http.Transport{Proxy: http.ProxyURL(proxyURL)}, nil

	case "socks5":
		auth := &proxy.Auth{}
		if proxyURL.User != nil {
			auth.User = proxyURL.User.Username()
			if pass, ok := proxyURL.User.Password(); ok {
				auth.Password = pass
			}
		}
		dialer, err := proxy.SOCKS5("tcp", proxyURL.Host, auth, &net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 10 * time.Second,
		})
		if err != nil {
			return nil, fmt.Errorf("socks5 dialer: %w", err)
		}
		return dialTransport(dialer), nil

	case "socks4":
		// The scheme is registered with x/net/proxy by go-socks4.
		dialer, err := proxy.FromURL(proxyURL, &net.Dialer{Timeout: 10 * time.Second})
		if err != nil {
			return nil, fmt.Errorf("socks4 dialer: %w", err)
		}
		return dialTransport(dialer), nil

	default:
		return nil, fmt.Errorf("unsupported proxy scheme: %s", proxyURL.Scheme)
	}
}

func dialTransport(dialer proxy.Dialer) *http.Transport {
	return &http.Transport{
		DialContext: func(ctx context.Context, network, addr string) (net.Conn, error) {
			if cd, ok := dialer.(proxy.ContextDialer); ok {
				return cd.DialContext(ctx, network, addr)
			}
			return dialer.Dial(network, addr)
		},
	}
}
