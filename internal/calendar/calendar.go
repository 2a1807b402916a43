// Package calendar creates Google Calendar events for appointment requests
// arriving through the webhook service. Credentials and a pre-authorized
// token are supplied as JSON blobs, never read from disk.
package calendar

import (
	"context"
	"encoding/json"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const defaultTimeZone = "America/New_York"

// Appointment describes one event to insert.
type Appointment struct {
	Summary   string `json:"summary"`
	StartTime string `json:"start_time"` // RFC3339
	EndTime   string `json:"end_time"`   // RFC3339
}

// Scheduler inserts events into the primary calendar.
type Scheduler struct {
	service    *gcal.Service
	calendarID string
	timeZone   string
}

// NewScheduler builds a Scheduler from OAuth client credentials JSON and an
// authorized-user token JSON.
func NewScheduler(ctx context.Context, credentialsJSON, tokenJSON string) (*Scheduler, error) {
	conf, err := google.ConfigFromJSON([]byte(credentialsJSON), gcal.CalendarEventsScope)
	if err != nil {
		return nil, fmt.Errorf("parse calendar credentials: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal([]byte(tokenJSON), &token); err != nil {
		return nil, fmt.Errorf("parse calendar token: %w", err)
	}

	// TokenSource handles refresh transparently when the access token expires.
	service, err := gcal.NewService(ctx, option.WithTokenSource(conf.TokenSource(ctx, &token)))
	if err != nil {
		return nil, fmt.Errorf("create calendar service: %w", err)
	}

	return &Scheduler{
		service:    service,
		calendarID: "primary",
		timeZone:   defaultTimeZone,
	}, nil
}

// Schedule inserts the appointment and returns the event's HTML link.
func (s *Scheduler) Schedule(ctx context.Context, appt Appointment) (string, error) {
	if appt.StartTime == "" || appt.EndTime == "" {
		return "", fmt.Errorf("missing start_time or end_time")
	}
	summary := appt.Summary
	if summary == "" {
		summary = "New AI Agent Consultation"
	}

	event := &gcal.Event{
		Summary:     summary,
		Location:    "Client Call",
		Description: "Scheduled by SignalSentry agent.",
		Start:       &gcal.EventDateTime{DateTime: appt.StartTime, TimeZone: s.timeZone},
		End:         &gcal.EventDateTime{DateTime: appt.EndTime, TimeZone: s.timeZone},
		Reminders: &gcal.EventReminders{
			UseDefault:      false,
			ForceSendFields: []string{"UseDefault"},
			Overrides: []*gcal.EventReminder{
				{Method: "email", Minutes: 24 * 60},
				{Method: "popup", Minutes: 10},
			},
		},
	}

	created, err := s.service.Events.Insert(s.calendarID, event).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("insert calendar event: %w", err)
	}
	return created.HtmlLink, nil
}
