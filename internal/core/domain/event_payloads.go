package domain

import (
	"strconv"
	"time"
)

// CommentSnapshot matches the API response shape for comments.
type CommentSnapshot struct {
	ID        string `json:"id"`
	EventID   string `json:"eventId"`
	Author    string `json:"author"`
	Content   string `json:"content"`
	CreatedAt string `json:"createdAt"`
}

// EventSnapshot matches the API response shape for events.
type EventSnapshot struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Description     string  `json:"description"`
	StartDate       string  `json:"startDate"`
	EndDate         string  `json:"endDate"`
	Location        string  `json:"location"`
	MaxParticipants int     `json:"maxParticipants"`
	IsPaid          bool    `json:"isPaid"`
	Price           float64 `json:"price"`
	PriceLabel      string  `json:"priceLabel"`
	AdditionalInfo  *string `json:"additionalInfo"`
}

// NewCommentSnapshot builds a comment snapshot from a domain comment.
func NewCommentSnapshot(comment *Comment) CommentSnapshot {
	return CommentSnapshot{
		ID:        strconv.FormatInt(comment.ID, 10),
		EventID:   comment.EventID.String(),
		Author:    comment.Author,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// NewCommentSnapshots converts an ordered comment list, preserving order.
func NewCommentSnapshots(comments []*Comment) []CommentSnapshot {
	snapshots := make([]CommentSnapshot, 0, len(comments))
	for _, comment := range comments {
		snapshots = append(snapshots, NewCommentSnapshot(comment))
	}
	return snapshots
}

// NewEventSnapshot builds an event snapshot from a domain event.
func NewEventSnapshot(event *Event) EventSnapshot {
	return EventSnapshot{
		ID:              event.ID.String(),
		Title:           event.Title,
		Description:     event.Description,
		StartDate:       event.StartDate.UTC().Format(time.RFC3339),
		EndDate:         event.EndDate.UTC().Format(time.RFC3339),
		Location:        event.Location,
		MaxParticipants: event.MaxParticipants,
		IsPaid:          event.IsPaid,
		Price:           event.Price,
		PriceLabel:      event.PriceLabel(),
		AdditionalInfo:  event.AdditionalInfo,
	}
}
