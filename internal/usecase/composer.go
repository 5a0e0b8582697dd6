package usecase

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"graylog-slack/internal/config"
	"graylog-slack/internal/domain/model"
	"graylog-slack/internal/template"
)

const (
	defaultBacklogItems = 5
	missingFieldValue   = "n/a"
	mentionPrefix       = "@"
	channelMention      = "@channel "
	messageIndex        = "graylog_deflector"
)

// Composer turns alerts and single messages into chat messages. It performs
// no I/O and never fails: missing optional data only drops the matching
// piece of output.
type Composer struct {
	cfg          config.Notification
	customFields []string
	loc          *time.Location
}

// NewComposer constructs a Composer for the given notification settings.
func NewComposer(cfg config.Notification) *Composer {
	return &Composer{
		cfg:          cfg,
		customFields: cfg.CustomFieldNames(),
		loc:          time.Local,
	}
}

// ComposeAlert builds the notification for a triggered alert.
func (c *Composer) ComposeAlert(alert model.Alert) model.Message {
	backlog := alert.Backlog()
	items := backlog[:c.backlogCount(len(backlog))]
	first := model.FieldMap{}
	if len(backlog) > 0 {
		first = fieldsOf(backlog[0])
	}

	msg := c.newMessage(c.alertText(alert, backlog, first))

	var details *model.Attachment
	if c.cfg.IncludeStreamInfo {
		details = c.detailsAttachment(backlog)
		details.Fields = append(details.Fields,
			model.AttachmentField{Title: "Stream ID", Value: alert.Stream.ID, Short: true},
			model.AttachmentField{Title: "Stream Title", Value: alert.Stream.Title},
			model.AttachmentField{Title: "Stream Description", Value: alert.Stream.Description},
		)
	}
	if len(c.customFields) > 0 && len(items) > 0 {
		if details == nil {
			details = c.detailsAttachment(backlog)
		}
		details.Fields = append(details.Fields, c.customFieldValues(items)...)
	}
	if details != nil {
		msg.Attachments = append(msg.Attachments, *details)
	}

	if c.cfg.IncludeBacklog {
		for i, item := range items {
			footer, ts := c.footer(item)
			msg.Attachments = append(msg.Attachments, model.Attachment{
				Fallback:   fmt.Sprintf("Backlog item %d/%d", i+1, len(items)),
				Text:       item.Message,
				Color:      c.cfg.Color,
				Footer:     footer,
				FooterIcon: c.footerIcon(footer),
				Timestamp:  ts,
			})
		}
	}

	return msg
}

// backlogCount is the number of backlog items to render: the configured
// count, or the default when it is below one, capped by what is available.
func (c *Composer) backlogCount(available int) int {
	count := c.cfg.BacklogItems
	if count < 1 {
		count = defaultBacklogItems
	}
	if available < count {
		count = available
	}
	return count
}

func (c *Composer) alertText(alert model.Alert, backlog []model.BacklogItem, first model.FieldMap) string {
	var b strings.Builder
	b.WriteString(c.audience(first))
	fmt.Fprintf(&b, "*Alert for Graylog stream %s*:\n> %s", c.streamTitle(alert.Stream), alert.ResultDescription)

	if c.cfg.CustomMessage != "" {
		overlay := streamFields(alert.Stream, c.cfg.BaseURL)
		overlay["result_description"] = alert.ResultDescription
		overlay["backlog_size"] = len(backlog)
		if !alert.TriggeredAt.IsZero() {
			overlay["triggered_at"] = alert.TriggeredAt
		}
		if custom := template.Resolve(c.cfg.CustomMessage, first.With(overlay)); custom != "" {
			b.WriteString("\n\n")
			b.WriteString(custom)
		}
	}

	return b.String()
}

// audience returns the mention tokens that lead the message text.
func (c *Composer) audience(fields model.FieldMap) string {
	var audience string
	if c.cfg.NotifyChannel {
		audience = channelMention
	}
	if c.cfg.MentionTemplate != "" {
		if mention := strings.TrimSpace(template.ResolveWithPrefix(c.cfg.MentionTemplate, mentionPrefix, fields)); mention != "" {
			audience += mention + " "
		}
	}
	return audience
}

func (c *Composer) streamTitle(stream model.Stream) string {
	if c.cfg.BaseURL == "" {
		return "_" + stream.Title + "_"
	}
	return "<" + streamLink(c.cfg.BaseURL, stream.ID) + "|" + stream.Title + ">"
}

// detailsAttachment starts the summary attachment. Its footer follows the
// last backlog item, or the empty field map without a backlog.
func (c *Composer) detailsAttachment(backlog []model.BacklogItem) *model.Attachment {
	var (
		footer string
		ts     *int64
	)
	if len(backlog) == 0 {
		footer = template.Resolve(c.cfg.FooterTemplate, model.FieldMap{})
	}
	for _, item := range backlog {
		footer, ts = c.footer(item)
	}
	return &model.Attachment{
		Fallback:   "Alert details",
		Pretext:    "Details:",
		Color:      c.cfg.Color,
		Footer:     footer,
		FooterIcon: c.footerIcon(footer),
		Timestamp:  ts,
	}
}

func (c *Composer) customFieldValues(items []model.BacklogItem) []model.AttachmentField {
	out := make([]model.AttachmentField, 0, len(items)*len(c.customFields))
	for i, item := range items {
		for _, name := range c.customFields {
			title := name
			if len(items) > 1 {
				title = fmt.Sprintf("(%d) %s", i+1, name)
			}
			value, ok := fieldsOf(item).String(name)
			if !ok || value == "" {
				value = missingFieldValue
			}
			out = append(out, model.AttachmentField{Title: title, Value: value})
		}
	}
	return out
}

func (c *Composer) footer(item model.BacklogItem) (string, *int64) {
	return template.Resolve(c.cfg.FooterTemplate, fieldsOf(item)), c.footerTimestamp(item)
}

func (c *Composer) footerIcon(footer string) string {
	if footer == "" {
		return ""
	}
	return c.cfg.FooterIconURL
}

// footerTimestamp reads the configured timestamp field. The reserved name
// selects the item's own timestamp; values that do not coerce are dropped.
func (c *Composer) footerTimestamp(item model.BacklogItem) *int64 {
	name := c.cfg.FooterTimestampField
	if name == "" {
		return nil
	}
	if name == model.TimestampField && !item.Timestamp.IsZero() {
		ts := item.Timestamp.Unix()
		return &ts
	}
	raw, ok := fieldsOf(item)[name]
	if !ok {
		return nil
	}
	t, ok := model.ParseTime(raw)
	if !ok {
		return nil
	}
	ts := t.Unix()
	return &ts
}

func (c *Composer) newMessage(text string) model.Message {
	return model.Message{
		Channel:   c.cfg.Channel,
		Text:      text,
		Username:  c.cfg.Username,
		Icon:      c.cfg.Icon,
		LinkNames: c.cfg.LinkNames,
	}
}

func streamLink(baseURL, streamID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/streams/" + url.PathEscape(streamID) +
		"/messages?q=*&rangetype=relative&relative=3600"
}

func messageLink(baseURL, index, messageID string) string {
	return strings.TrimSuffix(baseURL, "/") + "/messages/" + url.PathEscape(index) + "/" + url.PathEscape(messageID)
}

func streamFields(stream model.Stream, baseURL string) model.FieldMap {
	fields := model.FieldMap{
		"stream_id":          stream.ID,
		"stream_title":       stream.Title,
		"stream_description": stream.Description,
	}
	if baseURL != "" {
		fields["stream_url"] = streamLink(baseURL, stream.ID)
	}
	return fields
}

func fieldsOf(item model.BacklogItem) model.FieldMap {
	return item.RawFields()
}
