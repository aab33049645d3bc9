// Package memory models short natural-language facts remembered about a
// user. Facts are append-only; newer facts supersede older ones only
// through similarity ranking at query time.
package memory

import (
	"fmt"
	"time"
)

// FactType distinguishes stated preferences from post-hoc feedback.
type FactType string

const (
	TypePreference FactType = "preference"
	TypeFeedback   FactType = "feedback"
)

// Fact is one remembered statement about a user.
type Fact struct {
	ID        string   `json:"id"`
	UserID    string   `json:"user_id"`
	Type      FactType `json:"type"`
	Text      string   `json:"text"`
	Timestamp int64    `json:"ts"`
}

// NewFact builds a fact with a clock-derived ID. Unknown types are
// recorded as feedback.
func NewFact(userID, text string, ftype FactType) Fact {
	if ftype != TypePreference && ftype != TypeFeedback {
		ftype = TypeFeedback
	}
	now := time.Now()
	return Fact{
		ID:        fmt.Sprintf("mem_%s_%d", userID, now.UnixMilli()),
		UserID:    userID,
		Type:      ftype,
		Text:      text,
		Timestamp: now.Unix(),
	}
}
