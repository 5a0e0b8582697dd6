package slack

import (
	"bytes"
	"encoding/json"
	"strings"

	"graylog-slack/internal/domain/model"
)

// See https://api.slack.com/methods/chat.postMessage for the accepted keys.
type payload struct {
	Channel     string       `json:"channel"`
	Text        string       `json:"text"`
	LinkNames   string       `json:"link_names"`
	Parse       string       `json:"parse"`
	Username    string       `json:"username,omitempty"`
	IconURL     string       `json:"icon_url,omitempty"`
	IconEmoji   string       `json:"icon_emoji,omitempty"`
	Attachments []attachment `json:"attachments,omitempty"`
}

type attachment struct {
	Fallback   string  `json:"fallback,omitempty"`
	Text       string  `json:"text,omitempty"`
	Pretext    string  `json:"pretext,omitempty"`
	Color      string  `json:"color,omitempty"`
	Footer     string  `json:"footer,omitempty"`
	FooterIcon string  `json:"footer_icon,omitempty"`
	Timestamp  *int64  `json:"ts,omitempty"`
	Fields     []field `json:"fields,omitempty"`
}

type field struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Encoder serializes messages into webhook payloads.
type Encoder struct {
	classify IconClassifier
}

// NewEncoder returns an Encoder using classify to route the sender icon.
// A nil classifier falls back to IconKind.
func NewEncoder(classify IconClassifier) *Encoder {
	if classify == nil {
		classify = IconKind
	}
	return &Encoder{classify: classify}
}

// Encode serializes msg with the default icon classification.
func Encode(msg model.Message) ([]byte, error) {
	return NewEncoder(nil).Encode(msg)
}

// Encode serializes msg. It fails with an encoding-error only when the
// message lacks a channel or text.
func (e *Encoder) Encode(msg model.Message) ([]byte, error) {
	if strings.TrimSpace(msg.Channel) == "" {
		return nil, encodingError("message has no channel", nil)
	}
	if msg.Text == "" {
		return nil, encodingError("message has no text", nil)
	}

	p := payload{
		Channel:   ensureChannelName(msg.Channel),
		Text:      msg.Text,
		LinkNames: "0",
		Parse:     "none",
		Username:  msg.Username,
	}
	if msg.LinkNames {
		p.LinkNames = "1"
	}
	if icon := strings.TrimSpace(msg.Icon); icon != "" {
		switch e.classify(icon) {
		case IconURL:
			p.IconURL = icon
		default:
			p.IconEmoji = ensureEmojiSyntax(icon)
		}
	}
	for _, a := range msg.Attachments {
		p.Attachments = append(p.Attachments, convertAttachment(a))
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	// Slack link markup uses angle brackets; keep them readable on the wire.
	enc.SetEscapeHTML(false)
	if err := enc.Encode(p); err != nil {
		return nil, encodingError("could not build payload JSON", err)
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

func convertAttachment(a model.Attachment) attachment {
	out := attachment{
		Fallback:   a.Fallback,
		Text:       a.Text,
		Pretext:    a.Pretext,
		Color:      a.Color,
		Footer:     a.Footer,
		FooterIcon: a.FooterIcon,
		Timestamp:  a.Timestamp,
	}
	if len(a.Fields) > 0 {
		out.Fields = make([]field, 0, len(a.Fields))
		for _, f := range a.Fields {
			out.Fields = append(out.Fields, field{Title: f.Title, Value: f.Value, Short: f.Short})
		}
	}
	return out
}

func encodingError(detail string, err error) error {
	return &model.DeliveryError{Reason: model.ReasonEncoding, Detail: detail, Err: err}
}
