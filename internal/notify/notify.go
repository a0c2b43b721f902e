// Package notify delivers matchmaking events to users. Delivery is best
// effort: callers never roll back state because a notification failed.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

// EventType names an event on the wire.
type EventType string

const (
	TypeLikeReceived         EventType = "like_received"
	TypeMatchCreated         EventType = "match_created"
	TypeMatchRequestResponse EventType = "match_request_response"
)

// Event is one of LikeReceived, MatchCreated or MatchRequestResponse. The
// unexported method keeps the set closed.
type Event interface {
	EventType() EventType
	isEvent()
}

// LikeReceived tells a user that someone liked them.
type LikeReceived struct {
	FromUserID string `json:"from_user_id"`
}

// MatchCreated tells a user a match with OtherUserID now exists.
type MatchCreated struct {
	MatchID        string `json:"match_id"`
	OtherUserID    string `json:"other_user_id"`
	ConversationID string `json:"conversation_id,omitempty"`
}

// MatchRequestResponse tells a requester how their match request was answered.
type MatchRequestResponse struct {
	RequestID   string  `json:"request_id"`
	ResponderID string  `json:"responder_id"`
	Decision    string  `json:"decision"`
	Message     *string `json:"message,omitempty"`
	MatchID     string  `json:"match_id,omitempty"`
}

func (LikeReceived) EventType() EventType         { return TypeLikeReceived }
func (MatchCreated) EventType() EventType         { return TypeMatchCreated }
func (MatchRequestResponse) EventType() EventType { return TypeMatchRequestResponse }

func (LikeReceived) isEvent()         {}
func (MatchCreated) isEvent()         {}
func (MatchRequestResponse) isEvent() {}

// Dispatcher sends an event to a single user.
type Dispatcher interface {
	Notify(ctx context.Context, userID string, e Event) error
}

// Envelope is the JSON document published for every event.
type Envelope struct {
	Type   EventType       `json:"type"`
	UserID string          `json:"user_id"`
	SentAt time.Time       `json:"sent_at"`
	Data   json.RawMessage `json:"data"`
}

// Marshal wraps e in an Envelope addressed to userID.
func Marshal(userID string, e Event, now time.Time) ([]byte, error) {
	if e == nil {
		return nil, fmt.Errorf("notify: nil event")
	}
	data, err := json.Marshal(e)
	if err != nil {
		return nil, fmt.Errorf("notify: encode %s: %w", e.EventType(), err)
	}
	return json.Marshal(Envelope{
		Type:   e.EventType(),
		UserID: userID,
		SentAt: now.UTC(),
		Data:   data,
	})
}

// Nop drops every event.
type Nop struct{}

func (Nop) Notify(context.Context, string, Event) error { return nil }
