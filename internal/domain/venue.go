package domain

import "strings"

// Venue is a bookable place. It is owned by the venue catalog;
// the booking workflow only reads it.
type Venue struct {
	ID             int64
	Name           string
	Capacity       int
	OpeningHours   string // "HHMM-HHMM"
	Visible        bool   // false means soft-deleted
	PriorityEmails []string
}

// IsPriority returns true if requests from email are approved instantly
func (v *Venue) IsPriority(email string) bool {
	for _, e := range v.PriorityEmails {
		if strings.EqualFold(e, email) {
			return true
		}
	}
	return false
}
