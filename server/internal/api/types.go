package api

import (
	"encoding/json"
	"fmt"

	"github.com/innstack/innstack/pkg/normalize"
	"github.com/innstack/innstack/server/internal/form"
)

// fieldText is a form value sent either as a JSON string or a JSON number.
// Numbers keep their literal text so "12.345" stays "12.345".
type fieldText string

func (t *fieldText) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*t = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = fieldText(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("field value must be a string or number")
	}
	*t = fieldText(n.String())
	return nil
}

// KPIRequest is the body of POST /api/v1/kpi.
type KPIRequest struct {
	TotalRooms   fieldText `json:"total_rooms"`
	RoomsSold    fieldText `json:"rooms_sold"`
	TotalRevenue fieldText `json:"total_revenue"`
	// Commit runs the normalizer before computing, as a blur would.
	Commit bool `json:"commit"`
}

func (r KPIRequest) fields() normalize.Fields {
	return normalize.Fields{
		TotalRooms:   string(r.TotalRooms),
		RoomsSold:    string(r.RoomsSold),
		TotalRevenue: string(r.TotalRevenue),
	}
}

// EventRequest is the body of POST /api/v1/sessions/{id}/events.
type EventRequest struct {
	Type  string    `json:"type"`
	Field string    `json:"field"`
	Value fieldText `json:"value"`
	Key   string    `json:"key"`
}

func (r EventRequest) event() form.Event {
	return form.Event{Type: r.Type, Field: r.Field, Value: string(r.Value), Key: r.Key}
}

// SessionResponse is returned by session create and get.
type SessionResponse struct {
	ID      string       `json:"id"`
	Display form.Display `json:"display"`
}

// EventResponse is returned after an event is applied. Allowed is only set
// for keydown events.
type EventResponse struct {
	Display form.Display `json:"display"`
	Allowed *bool        `json:"allowed,omitempty"`
}

// HealthResponse is the payload for GET /api/v1/health.
type HealthResponse struct {
	Status    string `json:"status"`
	Sessions  int    `json:"sessions"`
	WSClients int    `json:"ws_clients"`
}

// errorResponse is a generic JSON error body.
type errorResponse struct {
	Error string `json:"error"`
}
