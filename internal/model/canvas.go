package model

import "time"

const CanvasContentPlaceholder = "No content generated."

// ConnectionCanvas is the archived artifact of one finished session.
type ConnectionCanvas struct {
	ID                      string    `json:"id"`
	CreatedAt               time.Time `json:"createdAt"`
	Content                 string    `json:"content"`
	ProposedVisualSignature string    `json:"proposedVisualSignature,omitempty"`
	PersonalizedPractice    string    `json:"personalizedPractice,omitempty"`
}

// FeedItem is a canvas annotated with the Gem that created it.
type FeedItem struct {
	ConnectionCanvas
	GemID        string `json:"gemId"`
	GemName      string `json:"gemName"`
	StudentName  string `json:"studentName"`
	GemSignature string `json:"gemSignature"`
}
