package usecase

import (
	"fmt"
	"sort"
	"strings"

	"graylog-slack/internal/domain/model"
	"graylog-slack/internal/template"
)

// reservedFields are message fields managed by Graylog itself; they are not
// repeated in the details attachment.
var reservedFields = map[string]struct{}{
	"_id":                        {},
	"message":                    {},
	"full_message":               {},
	"source":                     {},
	"timestamp":                  {},
	"streams":                    {},
	"gl2_message_id":             {},
	"gl2_source_node":            {},
	"gl2_source_input":           {},
	"gl2_source_radio":           {},
	"gl2_source_radio_input":     {},
	"gl2_source_collector":       {},
	"gl2_source_collector_input": {},
	"gl2_remote_ip":              {},
	"gl2_remote_port":            {},
	"gl2_remote_hostname":        {},
	"gl2_processing_error":       {},
	"gl2_accounted_message_size": {},
}

// ComposeMessage builds the notification for a single message written to the
// stream output. Short mode reduces it to a time-stamped line.
func (c *Composer) ComposeMessage(stream model.Stream, item model.BacklogItem) model.Message {
	if c.cfg.ShortMode {
		return c.newMessage(fmt.Sprintf("%s: %s", item.Timestamp.In(c.loc).Format("15:04"), item.Message))
	}

	fields := fieldsOf(item)

	var b strings.Builder
	b.WriteString(c.audience(fields))
	fmt.Fprintf(&b, "*%s in Graylog stream %s*:\n> %s", c.newMessageLink(item), c.streamTitle(stream), item.Message)
	if c.cfg.CustomMessage != "" {
		overlay := streamFields(stream, c.cfg.BaseURL)
		overlay["message"] = item.Message
		overlay["source"] = item.Source
		if custom := template.Resolve(c.cfg.CustomMessage, fields.With(overlay)); custom != "" {
			b.WriteString("\n\n")
			b.WriteString(custom)
		}
	}

	msg := c.newMessage(b.String())
	if c.cfg.IncludeStreamInfo {
		footer, ts := c.footer(item)
		details := model.Attachment{
			Fallback:   "Message details",
			Pretext:    "Details:",
			Color:      c.cfg.Color,
			Footer:     footer,
			FooterIcon: c.footerIcon(footer),
			Timestamp:  ts,
			Fields: []model.AttachmentField{
				{Title: "Stream Description", Value: stream.Description},
				{Title: "Source", Value: item.Source, Short: true},
			},
		}
		details.Fields = append(details.Fields, extraFields(item.Fields)...)
		msg.Attachments = append(msg.Attachments, details)
	}
	return msg
}

func (c *Composer) newMessageLink(item model.BacklogItem) string {
	if c.cfg.BaseURL == "" || item.ID == "" {
		return "New message"
	}
	return "<" + messageLink(c.cfg.BaseURL, messageIndex, item.ID) + "|New message>"
}

func extraFields(fields model.FieldMap) []model.AttachmentField {
	names := make([]string, 0, len(fields))
	for name, v := range fields {
		if _, reserved := reservedFields[name]; reserved || v == nil {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]model.AttachmentField, 0, len(names))
	for _, name := range names {
		value, _ := fields.String(name)
		out = append(out, model.AttachmentField{Title: name, Value: value, Short: true})
	}
	return out
}
