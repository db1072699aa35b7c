package queue

import (
	"encoding/json"
	"time"
)

// TypeJustificationSubmitted marks messages carrying a SubmittedEvent.
const TypeJustificationSubmitted = "justification.submitted"

// SubmittedEvent is emitted after a justification is accepted upstream. The
// worker reacts by invalidating the student's listing cache and journaling
// the submission; the write path itself never touches either.
type SubmittedEvent struct {
	EventID           string    `json:"event_id"`
	JustificationCode string    `json:"justification_code"`
	StudentCode       string    `json:"student_code"`
	AbsenceCodes      []string  `json:"absence_codes"`
	FileCount         int       `json:"file_count"`
	SubmittedAt       time.Time `json:"submitted_at"`
}

// NewSubmittedMessage wraps the event in a queue message.
func NewSubmittedMessage(evt SubmittedEvent) (Message, error) {
	body, err := json.Marshal(evt)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: TypeJustificationSubmitted, Body: body}, nil
}

// DecodeSubmitted parses a SubmittedEvent out of a queue message.
func DecodeSubmitted(msg Message) (SubmittedEvent, error) {
	var evt SubmittedEvent
	err := json.Unmarshal(msg.Body, &evt)
	return evt, err
}
