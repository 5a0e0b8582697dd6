// Package alertsource reads alert and message context documents produced by
// the host that triggers notifications.
package alertsource

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"graylog-slack/internal/domain/model"
)

// Stdin is the path that selects standard input.
const Stdin = "-"

// nullValue is the legacy spelling of an absent field.
const nullValue = "null"

type streamDoc struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type messageDoc struct {
	ID        string         `json:"id"`
	Message   string         `json:"message"`
	Source    string         `json:"source"`
	Timestamp any            `json:"timestamp"`
	Fields    map[string]any `json:"fields"`
}

type alertDoc struct {
	Stream            streamDoc    `json:"stream"`
	ResultDescription string       `json:"result_description"`
	TriggeredAt       any          `json:"triggered_at"`
	BacklogSize       *int         `json:"backlog_size"`
	MatchingMessages  []messageDoc `json:"matching_messages"`
}

type outputDoc struct {
	Stream  streamDoc  `json:"stream"`
	Message messageDoc `json:"message"`
}

// File reads context documents from a path, or stdin for "-".
type File struct {
	path  string
	stdin io.Reader
}

// NewFile creates a File source for path.
func NewFile(path string) *File {
	return &File{path: path, stdin: os.Stdin}
}

// Alert reads an alert document.
func (f *File) Alert(ctx context.Context) (model.Alert, error) {
	var doc alertDoc
	if err := f.decode(ctx, &doc); err != nil {
		return model.Alert{}, err
	}
	return doc.toModel(), nil
}

// Message reads a single-message document.
func (f *File) Message(ctx context.Context) (model.Stream, model.BacklogItem, error) {
	var doc outputDoc
	if err := f.decode(ctx, &doc); err != nil {
		return model.Stream{}, model.BacklogItem{}, err
	}
	return doc.Stream.toModel(), doc.Message.toModel(), nil
}

func (f *File) decode(ctx context.Context, v any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var (
		data []byte
		err  error
	)
	if f.path == Stdin {
		data, err = io.ReadAll(f.stdin)
	} else {
		data, err = os.ReadFile(f.path)
	}
	if err != nil {
		return fmt.Errorf("read alert context %s: %w", f.path, err)
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode alert context %s: %w", f.path, err)
	}
	return nil
}

func (d alertDoc) toModel() model.Alert {
	alert := model.Alert{
		Stream:            d.Stream.toModel(),
		ResultDescription: d.ResultDescription,
		MatchingMessages:  make([]model.BacklogItem, 0, len(d.MatchingMessages)),
	}
	if t, ok := model.ParseTime(d.TriggeredAt); ok {
		alert.TriggeredAt = t
	}
	for _, m := range d.MatchingMessages {
		alert.MatchingMessages = append(alert.MatchingMessages, m.toModel())
	}
	// Without an explicit condition backlog every matching message counts.
	alert.BacklogSize = len(alert.MatchingMessages)
	if d.BacklogSize != nil {
		alert.BacklogSize = *d.BacklogSize
	}
	return alert
}

func (d streamDoc) toModel() model.Stream {
	return model.Stream{ID: d.ID, Title: d.Title, Description: d.Description}
}

func (d messageDoc) toModel() model.BacklogItem {
	item := model.BacklogItem{
		ID:      d.ID,
		Message: d.Message,
		Source:  d.Source,
		Fields:  make(model.FieldMap, len(d.Fields)),
	}
	for k, v := range d.Fields {
		if v == nil || v == nullValue {
			continue
		}
		item.Fields[k] = v
	}
	if t, ok := model.ParseTime(d.Timestamp); ok {
		item.Timestamp = t
	} else if t, ok := model.ParseTime(item.Fields[model.TimestampField]); ok {
		item.Timestamp = t
	}
	if item.Message == "" {
		item.Message, _ = item.Fields.String("message")
	}
	if item.Source == "" {
		item.Source, _ = item.Fields.String("source")
	}
	item.Fields = item.RawFields()
	return item
}
