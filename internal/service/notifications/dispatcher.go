package notifications

import (
	"fmt"
	"strings"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
)

// emailMask replaces the hidden part of an email local part
const emailMask = "***"

// visibleLocalChars characters of the local part kept when masking
const visibleLocalChars = 5

// Event is the lifecycle outcome notifications are built for
type Event string

const (
	EventCreated         Event = "created"
	EventApproved        Event = "approved"
	EventInstantApproved Event = "instant_approved"
	EventRejected        Event = "rejected"
	EventCancelled       Event = "cancelled"
)

// RenderContext is the data a message template is filled with
type RenderContext struct {
	RequestID int64
	Email     string
	VenueName string
	Date      string
	TimeSlots []string
	CCA       string
	Notes     string
	Reason    string
	CancelURL string
	// Approved request that displaced this one
	ApprovedRequestID int64
}

// Notification is one message to hand to a delivery channel.
// Recipient is empty for broadcast messages.
type Notification struct {
	Channel   domain.Channel
	Recipient string
	Kind      domain.NotificationKind
	Context   RenderContext
}

// Dispatcher decides what to send and to whom. It performs no I/O.
type Dispatcher struct {
	publicURL string
}

// NewDispatcher creates a dispatcher; publicURL is used to build cancel links
func NewDispatcher(publicURL string) *Dispatcher {
	return &Dispatcher{publicURL: strings.TrimRight(publicURL, "/")}
}

// Build returns every notification for event on req.
// related holds the displaced requests for approvals and
// the previously displaced requests for cancellations.
func (d *Dispatcher) Build(event Event, req *domain.BookingRequest, venue *domain.Venue, related []*domain.BookingRequest) []Notification {
	var out []Notification

	switch event {
	case EventCreated:
		out = append(out, d.email(domain.KindReceived, req, venue))

	case EventApproved, EventInstantApproved:
		approved := d.email(domain.KindApproved, req, venue)
		approved.Context.CancelURL = d.cancelURL(req.ID)
		out = append(out, approved)

		kind := domain.KindApproved
		if event == EventInstantApproved {
			kind = domain.KindInstantApproval
		}
		out = append(out, d.broadcast(kind, req, venue))

		for _, displaced := range related {
			n := d.email(domain.KindRejectedByConflict, displaced, venue)
			n.Context.ApprovedRequestID = req.ID
			out = append(out, n)
		}

	case EventRejected:
		out = append(out,
			d.email(domain.KindRejected, req, venue),
			d.broadcast(domain.KindRejected, req, venue),
		)

	case EventCancelled:
		cancelled := d.email(domain.KindCancelled, req, venue)
		cancelled.Context.Reason = "You cancelled this booking using the cancel link"
		out = append(out, cancelled)

		for _, past := range related {
			if past.Status != domain.StatusRejected {
				continue
			}
			out = append(out, d.email(domain.KindSlotNowAvailable, past, venue))
		}
	}

	return out
}

func (d *Dispatcher) email(kind domain.NotificationKind, req *domain.BookingRequest, venue *domain.Venue) Notification {
	return Notification{
		Channel:   domain.ChannelEmail,
		Recipient: req.Email,
		Kind:      kind,
		Context:   renderContext(req, venue, req.Email),
	}
}

func (d *Dispatcher) broadcast(kind domain.NotificationKind, req *domain.BookingRequest, venue *domain.Venue) Notification {
	return Notification{
		Channel: domain.ChannelBroadcast,
		Kind:    kind,
		Context: renderContext(req, venue, MaskEmail(req.Email)),
	}
}

func (d *Dispatcher) cancelURL(requestID int64) string {
	return fmt.Sprintf("%s/api/v1/booking-requests/%d/cancel", d.publicURL, requestID)
}

func renderContext(req *domain.BookingRequest, venue *domain.Venue, email string) RenderContext {
	ctx := RenderContext{
		RequestID: req.ID,
		Email:     email,
		Date:      req.Date.String(),
		TimeSlots: req.TimingSlots.Labels(),
		CCA:       req.CCALabel(),
	}
	if venue != nil {
		ctx.VenueName = venue.Name
	}
	if req.Notes != nil {
		ctx.Notes = *req.Notes
	}
	if req.RejectionReason != nil {
		ctx.Reason = *req.RejectionReason
	}
	return ctx
}

// MaskEmail keeps the first 5 characters of the local part and masks the rest up to '@'.
// Local parts of 5 characters or fewer are kept whole and the mask is still appended.
func MaskEmail(email string) string {
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}

	local, domainPart := email[:at], email[at:]
	if runes := []rune(local); len(runes) > visibleLocalChars {
		local = string(runes[:visibleLocalChars])
	}
	return local + emailMask + domainPart
}
