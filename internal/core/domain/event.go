package domain

import (
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled activity listed on the board.
// Events are created and edited outside this service; it only reads them.
type Event struct {
	ID              uuid.UUID
	Title           string
	Description     string
	StartDate       time.Time
	EndDate         time.Time
	Location        string
	MaxParticipants int
	IsPaid          bool
	Price           float64
	AdditionalInfo  *string
	CreatedAt       time.Time
}

// PriceLabel is the badge text shown on event cards.
func (e *Event) PriceLabel() string {
	if !e.IsPaid {
		return "Free"
	}
	return "$" + strconv.FormatFloat(e.Price, 'f', -1, 64)
}

// MatchesPayment reports whether the amount typed into the payment stub
// equals the event price. Free events never match.
func (e *Event) MatchesPayment(amount string) bool {
	if !e.IsPaid {
		return false
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
	if err != nil {
		return false
	}
	return value == e.Price
}
