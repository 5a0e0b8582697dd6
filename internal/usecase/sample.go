package usecase

import (
	"time"

	"graylog-slack/internal/domain/model"
)

// SampleAlert is the alert sent by test notifications. It carries one backlog
// item so templates and custom fields have something to resolve against.
func SampleAlert(now time.Time) model.Alert {
	return model.Alert{
		Stream: model.Stream{
			ID:          "000000000000000000000001",
			Title:       "Test stream",
			Description: "Stream used for test notifications",
		},
		ResultDescription: "Test alert triggered, this is not a real alert",
		TriggeredAt:       now,
		BacklogSize:       1,
		MatchingMessages: []model.BacklogItem{
			{
				ID:        "00000000-0000-0000-0000-000000000000",
				Message:   "Test message",
				Source:    "graylog-slack",
				Timestamp: now,
				Fields: model.FieldMap{
					"source":    "graylog-slack",
					"timestamp": now,
				},
			},
		},
	}
}
