package slack

import (
	"net/url"
	"strings"
)

// IconType tells the encoder which payload key carries the sender icon.
type IconType int

const (
	IconEmoji IconType = iota
	IconURL
)

// IconClassifier decides how an icon value is sent.
type IconClassifier func(icon string) IconType

// IconKind treats icons that parse as http or https URLs as images and
// everything else, including unparseable values, as emoji tokens.
func IconKind(icon string) IconType {
	u, err := url.Parse(strings.TrimSpace(icon))
	if err != nil {
		return IconEmoji
	}
	if (u.Scheme == "http" || u.Scheme == "https") && u.Host != "" {
		return IconURL
	}
	return IconEmoji
}

func ensureEmojiSyntax(icon string) string {
	emoji := strings.TrimSpace(icon)
	if emoji == "" {
		return ""
	}
	if !strings.HasPrefix(emoji, ":") {
		emoji = ":" + emoji
	}
	if !strings.HasSuffix(emoji, ":") {
		emoji += ":"
	}
	return emoji
}

func ensureChannelName(channel string) string {
	if strings.HasPrefix(channel, "#") || strings.HasPrefix(channel, "@") {
		return channel
	}
	return "#" + channel
}
