package usecase

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"graylog-slack/internal/adapter/alertsource"
	"graylog-slack/internal/config"
	"graylog-slack/internal/domain/model"
)

func notificationConfig(mutate func(*config.Notification)) config.Notification {
	cfg := config.Default().Notification
	cfg.Channel = "#alerts"
	if mutate != nil {
		mutate(&cfg)
	}
	return cfg
}

func backlogItems(n int) []model.BacklogItem {
	items := make([]model.BacklogItem, n)
	for i := range items {
		items[i] = model.BacklogItem{
			ID:      string(rune('a' + i)),
			Message: "message " + string(rune('a'+i)),
			Fields:  model.FieldMap{"source": "server" + string(rune('1'+i))},
		}
	}
	return items
}

func errorsAlert(items []model.BacklogItem) model.Alert {
	return model.Alert{
		Stream:            model.Stream{ID: "s1", Title: "errors", Description: "all errors"},
		ResultDescription: "5 matches",
		BacklogSize:       len(items),
		MatchingMessages:  items,
	}
}

func TestComposeAlert_TextWithoutBaseURL(t *testing.T) {
	msg := NewComposer(notificationConfig(nil)).ComposeAlert(errorsAlert(nil))

	assert.Equal(t, "*Alert for Graylog stream _errors_*:\n> 5 matches", msg.Text)
	assert.NotContains(t, msg.Text, "<")
	assert.Equal(t, "#alerts", msg.Channel)
	assert.Equal(t, "Graylog", msg.Username)
	assert.True(t, msg.LinkNames)
}

func TestComposeAlert_TextWithBaseURL(t *testing.T) {
	for _, base := range []string{"https://graylog.local", "https://graylog.local/"} {
		cfg := notificationConfig(func(n *config.Notification) { n.BaseURL = base })
		msg := NewComposer(cfg).ComposeAlert(errorsAlert(nil))

		assert.Equal(t,
			"*Alert for Graylog stream <https://graylog.local/streams/s1/messages?q=*&rangetype=relative&relative=3600|errors>*:\n> 5 matches",
			msg.Text)
	}
}

func TestComposeAlert_Audience(t *testing.T) {
	items := backlogItems(1)
	items[0].Fields["user"] = "siri"

	tests := []struct {
		name   string
		notify bool
		tmpl   string
		items  []model.BacklogItem
		prefix string
	}{
		{"none", false, "", items, "*Alert"},
		{"channel", true, "", items, "@channel *Alert"},
		{"mention from first item", false, "${user:-}", items, "@siri *Alert"},
		{"channel and mention", true, "${user}", items, "@channel @siri *Alert"},
		{"mention without backlog", false, "${user:-}", nil, "*Alert"},
		{"mention default without backlog", false, "${user:-oncall}", nil, "@oncall *Alert"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := notificationConfig(func(n *config.Notification) {
				n.NotifyChannel = tt.notify
				n.MentionTemplate = tt.tmpl
			})
			msg := NewComposer(cfg).ComposeAlert(errorsAlert(tt.items))
			assert.Truef(t, len(msg.Text) >= len(tt.prefix) && msg.Text[:len(tt.prefix)] == tt.prefix,
				"text %q should start with %q", msg.Text, tt.prefix)
		})
	}
}

func TestComposeAlert_StreamInfo(t *testing.T) {
	cfg := notificationConfig(func(n *config.Notification) { n.IncludeBacklog = false })
	msg := NewComposer(cfg).ComposeAlert(errorsAlert(nil))

	require.Len(t, msg.Attachments, 1)
	details := msg.Attachments[0]
	assert.Equal(t, "Alert details", details.Fallback)
	assert.Equal(t, "Details:", details.Pretext)
	assert.Equal(t, "#FF0000", details.Color)
	assert.Equal(t, []model.AttachmentField{
		{Title: "Stream ID", Value: "s1", Short: true},
		{Title: "Stream Title", Value: "errors"},
		{Title: "Stream Description", Value: "all errors"},
	}, details.Fields)
}

func TestComposeAlert_BacklogCount(t *testing.T) {
	tests := []struct {
		name       string
		configured int
		available  int
		capSize    int
		want       int
	}{
		{"zero defaults to five", 0, 8, 10, 5},
		{"negative defaults to five", -3, 8, 8, 5},
		{"default capped by backlog", 0, 3, 3, 3},
		{"configured count", 2, 8, 8, 2},
		{"condition backlog caps", 4, 8, 1, 1},
		{"no messages", 4, 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := notificationConfig(func(n *config.Notification) {
				n.IncludeStreamInfo = false
				n.BacklogItems = tt.configured
			})
			alert := errorsAlert(backlogItems(tt.available))
			alert.BacklogSize = tt.capSize

			msg := NewComposer(cfg).ComposeAlert(alert)
			require.Len(t, msg.Attachments, tt.want)
			for i, a := range msg.Attachments {
				assert.Equal(t, alert.MatchingMessages[i].Message, a.Text)
			}
		})
	}
}

func TestComposeAlert_CustomFields(t *testing.T) {
	items := backlogItems(2)
	items[1].Fields["level"] = 3

	cfg := notificationConfig(func(n *config.Notification) {
		n.IncludeStreamInfo = false
		n.IncludeBacklog = false
		n.CustomFields = "source, level"
	})
	msg := NewComposer(cfg).ComposeAlert(errorsAlert(items))

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, []model.AttachmentField{
		{Title: "(1) source", Value: "server1"},
		{Title: "(1) level", Value: "n/a"},
		{Title: "(2) source", Value: "server2"},
		{Title: "(2) level", Value: "3"},
	}, msg.Attachments[0].Fields)

	msg = NewComposer(cfg).ComposeAlert(errorsAlert(items[:1]))
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "source", msg.Attachments[0].Fields[0].Title)
}

func TestComposeAlert_Footer(t *testing.T) {
	cfg := notificationConfig(func(n *config.Notification) {
		n.FooterTemplate = "from ${source:-graylog}"
		n.FooterIconURL = "https://graylog.local/icon.png"
	})

	msg := NewComposer(cfg).ComposeAlert(errorsAlert(backlogItems(2)))
	require.Len(t, msg.Attachments, 3)
	assert.Equal(t, "from server2", msg.Attachments[0].Footer, "last backlog item wins")
	assert.Equal(t, "https://graylog.local/icon.png", msg.Attachments[0].FooterIcon)
	assert.Equal(t, "from server1", msg.Attachments[1].Footer)
	assert.Equal(t, "from server2", msg.Attachments[2].Footer)

	msg = NewComposer(cfg).ComposeAlert(errorsAlert(nil))
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "from graylog", msg.Attachments[0].Footer)

	cfg.FooterTemplate = ""
	msg = NewComposer(cfg).ComposeAlert(errorsAlert(nil))
	assert.Empty(t, msg.Attachments[0].Footer)
	assert.Empty(t, msg.Attachments[0].FooterIcon)
}

func TestComposeAlert_FooterTimestamp(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	items := backlogItems(3)
	items[0].Timestamp = when
	items[0].Fields["event_time"] = "2024-03-01T12:00:00Z"
	items[1].Fields["event_time"] = "not a time"

	cfg := notificationConfig(func(n *config.Notification) {
		n.IncludeStreamInfo = false
		n.FooterTimestampField = "timestamp"
	})
	msg := NewComposer(cfg).ComposeAlert(errorsAlert(items))
	require.Len(t, msg.Attachments, 3)
	require.NotNil(t, msg.Attachments[0].Timestamp)
	assert.Equal(t, when.Unix(), *msg.Attachments[0].Timestamp)
	assert.Nil(t, msg.Attachments[1].Timestamp)

	cfg.FooterTimestampField = "event_time"
	msg = NewComposer(cfg).ComposeAlert(errorsAlert(items))
	require.NotNil(t, msg.Attachments[0].Timestamp)
	assert.Equal(t, when.Unix(), *msg.Attachments[0].Timestamp)
	assert.Nil(t, msg.Attachments[1].Timestamp, "unparseable value is omitted")
	assert.Nil(t, msg.Attachments[2].Timestamp, "missing field is omitted")
}

func TestComposeAlert_CustomMessage(t *testing.T) {
	cfg := notificationConfig(func(n *config.Notification) {
		n.CustomMessage = "Stream ${stream_title} (${backlog_size} items) from ${source:-unknown}"
	})

	msg := NewComposer(cfg).ComposeAlert(errorsAlert(backlogItems(2)))
	assert.Equal(t, "*Alert for Graylog stream _errors_*:\n> 5 matches\n\nStream errors (2 items) from server1", msg.Text)

	msg = NewComposer(cfg).ComposeAlert(errorsAlert(nil))
	assert.Equal(t, "*Alert for Graylog stream _errors_*:\n> 5 matches\n\nStream errors (0 items) from unknown", msg.Text)
}

func TestComposeMessage_ShortMode(t *testing.T) {
	cfg := notificationConfig(func(n *config.Notification) { n.ShortMode = true })
	composer := NewComposer(cfg)
	composer.loc = time.UTC

	item := model.BacklogItem{Message: "disk full", Timestamp: time.Date(2024, 3, 1, 9, 5, 0, 0, time.UTC)}
	msg := composer.ComposeMessage(model.Stream{Title: "errors"}, item)

	assert.Equal(t, "09:05: disk full", msg.Text)
	assert.Empty(t, msg.Attachments)
}

func TestComposeMessage_Full(t *testing.T) {
	cfg := notificationConfig(func(n *config.Notification) { n.BaseURL = "https://graylog.local" })
	item := model.BacklogItem{
		ID:      "m1",
		Message: "disk full",
		Source:  "server1",
		Fields: model.FieldMap{
			"source":          "server1",
			"gl2_source_node": "node",
			"level":           3,
			"facility":        "kernel",
		},
	}
	msg := NewComposer(cfg).ComposeMessage(model.Stream{ID: "s1", Title: "errors", Description: "all errors"}, item)

	assert.Equal(t,
		"*<https://graylog.local/messages/graylog_deflector/m1|New message> in Graylog stream "+
			"<https://graylog.local/streams/s1/messages?q=*&rangetype=relative&relative=3600|errors>*:\n> disk full",
		msg.Text)

	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, []model.AttachmentField{
		{Title: "Stream Description", Value: "all errors"},
		{Title: "Source", Value: "server1", Short: true},
		{Title: "facility", Value: "kernel", Short: true},
		{Title: "level", Value: "3", Short: true},
	}, msg.Attachments[0].Fields)
}

func TestComposeMessage_WithoutBaseURL(t *testing.T) {
	cfg := notificationConfig(func(n *config.Notification) {
		n.IncludeStreamInfo = false
		n.NotifyChannel = true
	})
	msg := NewComposer(cfg).ComposeMessage(model.Stream{Title: "errors"}, model.BacklogItem{Message: "disk full"})

	assert.Equal(t, "@channel *New message in Graylog stream _errors_*:\n> disk full", msg.Text)
	assert.Empty(t, msg.Attachments)
}

func TestComposeAlert_TemplatesSeeTopLevelValues(t *testing.T) {
	path := filepath.Join(t.TempDir(), "alert.json")
	doc := `{"stream":{"id":"s1","title":"errors"},"result_description":"1 match",
	  "matching_messages":[{"message":"disk full","source":"web-1","fields":{"level":3}}]}`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	alert, err := alertsource.NewFile(path).Alert(context.Background())
	require.NoError(t, err)

	cfg := notificationConfig(func(n *config.Notification) {
		n.MentionTemplate = "${source}"
		n.FooterTemplate = "from ${source}"
		n.CustomFields = "source,message"
		n.IncludeStreamInfo = false
		n.IncludeBacklog = false
	})
	msg := NewComposer(cfg).ComposeAlert(alert)

	assert.Equal(t, "@web-1 *Alert for Graylog stream _errors_*:\n> 1 match", msg.Text)
	require.Len(t, msg.Attachments, 1)
	assert.Equal(t, "from web-1", msg.Attachments[0].Footer)
	assert.Equal(t, []model.AttachmentField{
		{Title: "source", Value: "web-1"},
		{Title: "message", Value: "disk full"},
	}, msg.Attachments[0].Fields)
}
