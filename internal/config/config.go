package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config contains runtime configuration values.
type Config struct {
	WebhookURL     string        `yaml:"webhook_url"`
	ProxyAddress   string        `yaml:"proxy_address"`
	NoProxy        string        `yaml:"no_proxy"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	LogLevel       string        `yaml:"log_level"`
	HeartbeatCron  string        `yaml:"heartbeat_cron"`
	Notification   Notification  `yaml:"notification"`
}

// Notification controls how alerts and messages are rendered.
type Notification struct {
	Channel              string `yaml:"channel"`
	Username             string `yaml:"user_name"`
	Icon                 string `yaml:"icon"`
	Color                string `yaml:"color"`
	NotifyChannel        bool   `yaml:"notify_channel"`
	MentionTemplate      string `yaml:"mention"`
	LinkNames            bool   `yaml:"link_names"`
	ShortMode            bool   `yaml:"short_mode"`
	IncludeStreamInfo    bool   `yaml:"add_stream_info"`
	IncludeBacklog       bool   `yaml:"add_backlog"`
	BacklogItems         int    `yaml:"backlog_items"`
	CustomFields         string `yaml:"custom_fields"`
	CustomMessage        string `yaml:"custom_message"`
	FooterTemplate       string `yaml:"footer_text"`
	FooterIconURL        string `yaml:"footer_icon_url"`
	FooterTimestampField string `yaml:"footer_ts_field"`
	BaseURL              string `yaml:"graylog2_url"`
}

const (
	defaultUsername     = "Graylog"
	defaultColor        = "#FF0000"
	defaultBacklogItems = 5
	defaultLogLevel     = "info"
	defaultHeartbeat    = ""
)

// CustomFieldNames splits the comma-separated custom field list.
func (n Notification) CustomFieldNames() []string {
	if n.CustomFields == "" {
		return nil
	}
	parts := strings.Split(n.CustomFields, ",")
	names := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			names = append(names, p)
		}
	}
	return names
}

// Default returns a Config populated with defaults only.
func Default() *Config {
	return &Config{
		LogLevel:      defaultLogLevel,
		HeartbeatCron: defaultHeartbeat,
		Notification: Notification{
			Username:          defaultUsername,
			Color:             defaultColor,
			LinkNames:         true,
			IncludeStreamInfo: true,
			IncludeBacklog:    true,
			BacklogItems:      defaultBacklogItems,
		},
	}
}

// Load builds a Config from an optional YAML file (CONFIG_FILE) and
// environment variables, which take precedence, then validates it.
func Load() (*Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cfg.readFile(path); err != nil {
			return nil, err
		}
	}

	cfg.applyEnv()
	cfg.normalize()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) readFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return &Error{Field: "CONFIG_FILE", Msg: "cannot read " + path, Err: err}
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return &Error{Field: "CONFIG_FILE", Msg: "cannot parse " + path, Err: err}
	}
	return nil
}

func (c *Config) applyEnv() {
	c.WebhookURL = getenvDefault("SLACK_WEBHOOK_URL", c.WebhookURL)
	c.ProxyAddress = getenvDefault("SLACK_PROXY_ADDRESS", c.ProxyAddress)
	c.NoProxy = getenvDefault("NO_PROXY", c.NoProxy)
	c.RequestTimeout = parseDurationDefault("REQUEST_TIMEOUT", c.RequestTimeout)
	c.LogLevel = getenvDefault("LOG_LEVEL", c.LogLevel)
	c.HeartbeatCron = getenvDefault("HEARTBEAT_CRON", c.HeartbeatCron)

	n := &c.Notification
	n.Channel = getenvDefault("SLACK_CHANNEL", n.Channel)
	n.Username = getenvDefault("SLACK_USER_NAME", n.Username)
	n.Icon = getenvDefault("SLACK_ICON", n.Icon)
	n.Color = getenvDefault("SLACK_COLOR", n.Color)
	n.NotifyChannel = parseBoolDefault("SLACK_NOTIFY_CHANNEL", n.NotifyChannel)
	n.MentionTemplate = getenvDefault("SLACK_MENTION", n.MentionTemplate)
	n.LinkNames = parseBoolDefault("SLACK_LINK_NAMES", n.LinkNames)
	n.ShortMode = parseBoolDefault("SLACK_SHORT_MODE", n.ShortMode)
	n.IncludeStreamInfo = parseBoolDefault("SLACK_ADD_STREAM_INFO", n.IncludeStreamInfo)
	n.IncludeBacklog = parseBoolDefault("SLACK_ADD_BACKLOG", n.IncludeBacklog)
	n.BacklogItems = parseIntDefault("SLACK_BACKLOG_ITEMS", n.BacklogItems)
	n.CustomFields = getenvDefault("SLACK_CUSTOM_FIELDS", n.CustomFields)
	n.CustomMessage = getenvDefault("SLACK_CUSTOM_MESSAGE", n.CustomMessage)
	n.FooterTemplate = getenvDefault("SLACK_FOOTER_TEXT", n.FooterTemplate)
	n.FooterIconURL = getenvDefault("SLACK_FOOTER_ICON_URL", n.FooterIconURL)
	n.FooterTimestampField = getenvDefault("SLACK_FOOTER_TS_FIELD", n.FooterTimestampField)
	n.BaseURL = getenvDefault("GRAYLOG_URL", n.BaseURL)
}

// normalize trims string settings and maps the literal "null", which older
// hosts store for empty values, to the empty string.
func (c *Config) normalize() {
	for _, s := range []*string{
		&c.WebhookURL, &c.ProxyAddress, &c.NoProxy, &c.LogLevel, &c.HeartbeatCron,
		&c.Notification.Channel, &c.Notification.Username, &c.Notification.Icon,
		&c.Notification.Color, &c.Notification.MentionTemplate,
		&c.Notification.CustomFields, &c.Notification.FooterIconURL,
		&c.Notification.FooterTimestampField, &c.Notification.BaseURL,
	} {
		*s = clean(*s)
	}
	// Templates keep their whitespace.
	for _, s := range []*string{&c.Notification.CustomMessage, &c.Notification.FooterTemplate} {
		if strings.TrimSpace(*s) == "null" {
			*s = ""
		}
	}
	if c.Notification.Username == "" {
		c.Notification.Username = defaultUsername
	}
}

func clean(s string) string {
	s = strings.TrimSpace(s)
	if s == "null" {
		return ""
	}
	return s
}

// Validate checks the settings that make delivery impossible when wrong.
func (c *Config) Validate() error {
	if c.WebhookURL == "" {
		return &Error{Field: "webhook_url", Msg: "is mandatory and must not be empty"}
	}
	if err := requireHTTPURL("webhook_url", c.WebhookURL); err != nil {
		return err
	}
	if c.Notification.Channel == "" {
		return &Error{Field: "channel", Msg: "is mandatory and must not be empty"}
	}
	if c.Notification.Color == "" {
		return &Error{Field: "color", Msg: "is mandatory and must not be empty"}
	}
	if c.ProxyAddress != "" {
		if _, _, err := SplitProxyAddress(c.ProxyAddress); err != nil {
			return &Error{Field: "proxy_address", Msg: "couldn't parse correctly", Err: err}
		}
	}
	if icon := c.Notification.Icon; strings.Contains(icon, "://") {
		if err := requireHTTPURL("icon", icon); err != nil {
			return err
		}
	}
	if c.Notification.BaseURL != "" {
		if err := requireHTTPURL("graylog2_url", c.Notification.BaseURL); err != nil {
			return err
		}
	}
	if c.Notification.FooterIconURL != "" {
		if err := requireHTTPURL("footer_icon_url", c.Notification.FooterIconURL); err != nil {
			return err
		}
	}
	if c.RequestTimeout < 0 {
		return &Error{Field: "request_timeout", Msg: "must not be negative"}
	}
	return nil
}

// SplitProxyAddress splits a host:port proxy address and checks the port is numeric.
func SplitProxyAddress(addr string) (host string, port int, err error) {
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		return "", 0, err
	}
	if h == "" {
		return "", 0, fmt.Errorf("missing host in %q", addr)
	}
	n, err := strconv.Atoi(p)
	if err != nil || n <= 0 || n > 65535 {
		return "", 0, fmt.Errorf("invalid port %q", p)
	}
	return h, n, nil
}

func requireHTTPURL(field, raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &Error{Field: field, Msg: "couldn't parse correctly", Err: err}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{Field: field, Msg: "must be a valid HTTP or HTTPS URL"}
	}
	if u.Host == "" {
		return &Error{Field: field, Msg: "must include a host"}
	}
	return nil
}

func getenvDefault(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func parseIntDefault(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil {
			return n
		}
	}
	return fallback
}

func parseBoolDefault(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func parseDurationDefault(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
