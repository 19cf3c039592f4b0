package domain

import "time"

// ChatMessage is one entry of the public chat log.
type ChatMessage struct {
	User    string    `json:"user" validate:"required"`
	Message string    `json:"message" validate:"required,max=1000"`
	SentAt  time.Time `json:"sent_at"`
}
