package notifications

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/m04kA/SMC-VenueBookingService/internal/domain"
)

var subjects = map[domain.NotificationKind]string{
	domain.KindReceived:           "[IN PROGRESS] Your booking request has been received",
	domain.KindApproved:           "[APPROVED] Your booking request has been approved",
	domain.KindRejected:           "[REJECTED] Your booking request has been rejected",
	domain.KindRejectedByConflict: "[REJECTED] Your booking request has been rejected",
	domain.KindCancelled:          "[CANCELLED] You have successfully cancelled your booking",
	domain.KindSlotNowAvailable:   "[NOTIFICATION] Previously rejected request has been made available",
}

var broadcastTags = map[domain.NotificationKind]string{
	domain.KindApproved:        "[APPROVED]",
	domain.KindRejected:        "[REJECTED]",
	domain.KindInstantApproval: "[INSTANT APPROVAL]",
}

const layout = `{{define "details"}}
<table>
  <tr><td>Request</td><td>#{{.RequestID}}</td></tr>
  <tr><td>Email</td><td>{{.Email}}</td></tr>
  <tr><td>CCA</td><td>{{.CCA}}</td></tr>
  <tr><td>Venue</td><td>{{.VenueName}}</td></tr>
  <tr><td>Date</td><td>{{.Date}}</td></tr>
  <tr><td>Time slots</td><td>{{range $i, $s := .TimeSlots}}{{if $i}}, {{end}}{{$s}}{{end}}</td></tr>
  {{if .Notes}}<tr><td>Notes</td><td>{{.Notes}}</td></tr>{{end}}
</table>
{{end}}`

var bodies = map[domain.NotificationKind]string{
	domain.KindReceived: `<p>Hi,</p>
<p>We have received your booking request. It is waiting for approval.</p>
{{template "details" .}}`,

	domain.KindApproved: `<p>Hi,</p>
<p>Your booking request has been approved.</p>
{{template "details" .}}
<p>If you no longer need the venue, <a href="{{.CancelURL}}">cancel this booking</a>.</p>`,

	domain.KindRejected: `<p>Hi,</p>
<p>Your booking request has been rejected.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
{{template "details" .}}`,

	domain.KindRejectedByConflict: `<p>Hi,</p>
<p>Your booking request has been rejected because the slots were allocated to another request (#{{.ApprovedRequestID}}).</p>
{{if .Reason}}<p>{{.Reason}}</p>{{end}}
{{template "details" .}}
<p>You will be notified if the slots become available again.</p>`,

	domain.KindCancelled: `<p>Hi,</p>
<p>Your booking has been cancelled and the slots were released.</p>
{{if .Reason}}<p>Reason: {{.Reason}}</p>{{end}}
{{template "details" .}}`,

	domain.KindSlotNowAvailable: `<p>Hi,</p>
<p>A booking that previously took the slots of your rejected request has been cancelled.
The slots below are available again. Submit a new request if you still need them.</p>
{{template "details" .}}`,
}

// Renderer turns notifications into subjects and bodies
type Renderer struct {
	templates map[domain.NotificationKind]*template.Template
}

// NewRenderer parses all email templates
func NewRenderer() (*Renderer, error) {
	r := &Renderer{templates: make(map[domain.NotificationKind]*template.Template, len(bodies))}

	for kind, body := range bodies {
		t, err := template.New(string(kind)).Parse(layout + body)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrTemplate, kind, err)
		}
		r.templates[kind] = t
	}

	return r, nil
}

// MustNewRenderer panics if templates do not parse
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

// RenderEmail returns subject and HTML body of an email notification
func (r *Renderer) RenderEmail(n Notification) (string, string, error) {
	t, ok := r.templates[n.Kind]
	if !ok {
		return "", "", fmt.Errorf("%w: no email template for %s", ErrTemplate, n.Kind)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, n.Context); err != nil {
		return "", "", fmt.Errorf("%w: %s: %v", ErrTemplate, n.Kind, err)
	}

	return subjects[n.Kind], buf.String(), nil
}

// RenderBroadcast returns the plain text posted to the broadcast channel
func (r *Renderer) RenderBroadcast(n Notification) (string, error) {
	tag, ok := broadcastTags[n.Kind]
	if !ok {
		return "", fmt.Errorf("%w: no broadcast format for %s", ErrTemplate, n.Kind)
	}

	c := n.Context
	return fmt.Sprintf("%s\nEmail: %s\ncca: %s\nvenueName: %s\ndate: %s\ntimeSlots: %s",
		tag, c.Email, c.CCA, c.VenueName, c.Date, strings.Join(c.TimeSlots, ",")), nil
}
