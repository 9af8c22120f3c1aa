package model

import "time"

type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
)

// Message is one inbound or outbound exchange on the conversational channel.
// Append-only; rows are never mutated.
type Message struct {
	ID        int64     `json:"id"`
	UserID    *int64    `json:"user_id,omitempty"`
	Channel   string    `json:"channel"`
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	Intent    *string   `json:"intent,omitempty"`
	Timestamp time.Time `json:"ts"`
}
