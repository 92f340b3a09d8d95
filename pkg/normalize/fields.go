package normalize

import (
	"encoding/json"
	"fmt"
)

// Field identifies one of the three form inputs.
type Field string

const (
	TotalRooms   Field = "total_rooms"
	RoomsSold    Field = "rooms_sold"
	TotalRevenue Field = "total_revenue"
)

// AllFields lists the form inputs in display order.
var AllFields = []Field{TotalRooms, RoomsSold, TotalRevenue}

// messageFields are the fields that own a validation message slot.
var messageFields = []Field{TotalRooms, RoomsSold}

// ParseField maps a wire name to a Field.
func ParseField(s string) (Field, error) {
	for _, f := range AllFields {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown field %q", s)
}

// Integral reports whether the field holds a room count.
func (f Field) Integral() bool {
	return f == TotalRooms || f == RoomsSold
}

// Fields holds the current raw text of every form input.
// The zero value is an empty form.
type Fields struct {
	TotalRooms   string `json:"total_rooms"`
	RoomsSold    string `json:"rooms_sold"`
	TotalRevenue string `json:"total_revenue"`
}

// Get returns the text of field f.
func (fs Fields) Get(f Field) string {
	switch f {
	case TotalRooms:
		return fs.TotalRooms
	case RoomsSold:
		return fs.RoomsSold
	case TotalRevenue:
		return fs.TotalRevenue
	}
	return ""
}

// Set replaces the text of field f. Unknown fields are ignored.
func (fs *Fields) Set(f Field, text string) {
	switch f {
	case TotalRooms:
		fs.TotalRooms = text
	case RoomsSold:
		fs.RoomsSold = text
	case TotalRevenue:
		fs.TotalRevenue = text
	}
}

// Validation is a read-only snapshot of per-field advisory messages.
// A new snapshot is built by every normalization pass; an absent entry means
// the field has no message.
type Validation struct {
	msgs map[Field]string
}

// NoMessages is the snapshot with every slot cleared.
var NoMessages = Validation{}

func newValidation(msgs map[Field]string) Validation {
	return Validation{msgs: msgs}
}

// Message returns the advisory message attached to f, or "".
func (v Validation) Message(f Field) string {
	return v.msgs[f]
}

// Empty reports whether no field carries a message.
func (v Validation) Empty() bool {
	return len(v.msgs) == 0
}

// Map returns a copy of the snapshot with one entry per message slot.
func (v Validation) Map() map[Field]string {
	out := make(map[Field]string, len(messageFields))
	for _, f := range messageFields {
		out[f] = v.msgs[f]
	}
	return out
}

// MarshalJSON renders every message slot, empty ones included.
func (v Validation) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.Map())
}

// UnmarshalJSON restores a snapshot from its JSON form.
func (v *Validation) UnmarshalJSON(data []byte) error {
	var raw map[Field]string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	msgs := make(map[Field]string)
	for f, m := range raw {
		if m != "" {
			msgs[f] = m
		}
	}
	*v = newValidation(msgs)
	return nil
}
