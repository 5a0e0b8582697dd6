package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/net/http/httpproxy"

	"graylog-slack/internal/config"
	"graylog-slack/internal/domain/model"
	"graylog-slack/internal/domain/ports"
)

const maxResponseBody = 64 << 10

// Options configures the webhook client.
type Options struct {
	WebhookURL string
	// ProxyAddress is a host:port HTTP proxy. Loopback and localhost
	// targets, and hosts matched by NoProxy, are dialed directly.
	ProxyAddress string
	NoProxy      string
	// Timeout bounds a whole request; zero leaves it to the platform.
	Timeout time.Duration
}

// Client posts encoded payloads to a Slack incoming webhook.
type Client struct {
	opts       Options
	encoder    *Encoder
	httpClient *http.Client
	logger     ports.Logger
	resolve    func(network, address string) (*net.TCPAddr, error)
}

var _ ports.Notifier = (*Client)(nil)

// NewClient creates a webhook client. The proxy address is resolved on every
// send so a proxy that comes up later is picked up.
func NewClient(opts Options, encoder *Encoder, logger ports.Logger) *Client {
	if encoder == nil {
		encoder = NewEncoder(nil)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = nil
	if opts.ProxyAddress != "" {
		proxyURL := "http://" + opts.ProxyAddress
		proxyFunc := (&httpproxy.Config{
			HTTPProxy:  proxyURL,
			HTTPSProxy: proxyURL,
			NoProxy:    opts.NoProxy,
		}).ProxyFunc()
		transport.Proxy = func(r *http.Request) (*url.URL, error) {
			return proxyFunc(r.URL)
		}
	}

	return &Client{
		opts:       opts,
		encoder:    encoder,
		httpClient: &http.Client{Timeout: opts.Timeout, Transport: transport},
		logger:     logger,
		resolve:    net.ResolveTCPAddr,
	}
}

// Send encodes the message and posts it to the webhook.
func (c *Client) Send(ctx context.Context, message model.Message) error {
	body, err := c.encoder.Encode(message)
	if err != nil {
		return err
	}
	return c.Post(ctx, body)
}

// Post issues a single POST of an already encoded payload. It returns nil
// when the remote side acknowledged the message and a *model.DeliveryError
// otherwise. There is no retry.
func (c *Client) Post(ctx context.Context, body []byte) error {
	endpoint, err := url.Parse(c.opts.WebhookURL)
	if err != nil {
		return deliveryError(model.ReasonConnection, "error while constructing webhook URL", err)
	}
	if (endpoint.Scheme != "http" && endpoint.Scheme != "https") || endpoint.Host == "" {
		return deliveryError(model.ReasonConnection, fmt.Sprintf("webhook URL %q is not an HTTP(S) URL", endpoint.Redacted()), nil)
	}

	if c.opts.ProxyAddress != "" {
		if err := c.checkProxy(); err != nil {
			return err
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
	if err != nil {
		return deliveryError(model.ReasonConnection, "could not open connection to Slack API", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return deliveryError(model.ReasonConnection, "could not POST to Slack API", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// The body is diagnostic only; a failed read keeps the status outcome.
		data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
		c.debug(ctx, "received HTTP response body", "status", resp.StatusCode, "body", string(data), "read_error", err)
		return deliveryError(model.ReasonNonSuccessStatus, fmt.Sprintf("unexpected HTTP response status %d", resp.StatusCode), nil)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		return deliveryError(model.ReasonConnection, "could not read response body from Slack API", err)
	}

	return c.interpret(ctx, data)
}

// apiResponse is the body returned by the token-based chat.postMessage API.
// Legacy incoming webhooks answer with the plain text "ok" instead.
type apiResponse struct {
	OK      *bool  `json:"ok"`
	TS      string `json:"ts"`
	Channel string `json:"channel"`
	Error   string `json:"error"`
}

func (c *Client) interpret(ctx context.Context, data []byte) error {
	text := strings.TrimSpace(string(data))
	if text == "ok" {
		c.debug(ctx, "successfully sent message to Slack")
		return nil
	}

	var parsed apiResponse
	if err := json.Unmarshal([]byte(text), &parsed); err != nil || parsed.OK == nil {
		c.warn(ctx, "unrecognized response body from Slack API", "body", truncate(text, 256))
		return deliveryError(model.ReasonMalformedResponse, "unexpected response body: "+truncate(text, 256), nil)
	}
	if !*parsed.OK {
		detail := parsed.Error
		if detail == "" {
			detail = "remote side rejected the message"
		}
		return deliveryError(model.ReasonMalformedResponse, detail, nil)
	}

	c.debug(ctx, "successfully sent message to Slack", "channel", parsed.Channel, "ts", parsed.TS)
	return nil
}

func (c *Client) checkProxy() error {
	host, port, err := config.SplitProxyAddress(c.opts.ProxyAddress)
	if err != nil {
		return deliveryError(model.ReasonProxyResolution, fmt.Sprintf("couldn't parse proxy address %q", c.opts.ProxyAddress), err)
	}
	if _, err := c.resolve("tcp", net.JoinHostPort(host, strconv.Itoa(port))); err != nil {
		return deliveryError(model.ReasonProxyResolution, fmt.Sprintf("couldn't resolve proxy address %q", c.opts.ProxyAddress), err)
	}
	return nil
}

func (c *Client) debug(ctx context.Context, msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Debug(ctx, msg, args...)
}

func (c *Client) warn(ctx context.Context, msg string, args ...any) {
	if c.logger == nil {
		return
	}
	c.logger.Warn(ctx, msg, args...)
}

func deliveryError(reason model.FailureReason, detail string, err error) error {
	return &model.DeliveryError{Reason: reason, Detail: detail, Err: err}
}

func truncate(value string, limit int) string {
	if len(value) <= limit {
		return value
	}
	cut := limit - 3
	for cut > 0 && !utf8.RuneStart(value[cut]) {
		cut--
	}
	return strings.TrimSpace(value[:cut]) + "..."
}
