package normalize

import (
	"strconv"
	"strings"

	"github.com/innstack/innstack/pkg/kpi"
)

// MsgSoldExceedsTotal is attached to the rooms-sold field when it is clamped.
const MsgSoldExceedsTotal = "Rooms sold cannot exceed total rooms available"

// revenuePlaces is the number of decimal places kept on revenue.
const revenuePlaces = 2

// Result is the outcome of one Commit pass.
type Result struct {
	Fields     Fields
	Validation Validation
	// Clamped is true when rooms sold was pulled down to total rooms.
	Clamped bool
}

// Commit normalizes every non-empty field and enforces rooms sold <= total
// rooms. Empty fields stay empty. All message slots start cleared, so the
// returned Validation reflects this pass only.
func Commit(in Fields) Result {
	out := in
	msgs := make(map[Field]string)

	if !blank(in.TotalRooms) {
		out.TotalRooms = formatCount(ParseCount(in.TotalRooms))
	}
	if !blank(in.RoomsSold) {
		out.RoomsSold = formatCount(ParseCount(in.RoomsSold))
	}
	if !blank(in.TotalRevenue) {
		out.TotalRevenue = ParseAmount(in.TotalRevenue).StringFixed(revenuePlaces)
	}

	rooms := ParseCount(out.TotalRooms)
	sold := ParseCount(out.RoomsSold)
	clamped := false
	if sold > rooms {
		// rooms is 0 when the field is empty, which clamps sold to "0".
		out.RoomsSold = formatCount(rooms)
		msgs[RoomsSold] = MsgSoldExceedsTotal
		clamped = true
	}

	return Result{Fields: out, Validation: newValidation(msgs), Clamped: clamped}
}

// LiveRevenue trims a revenue entry in progress to at most two digits after
// the decimal separator. Text with no excess precision is returned as is.
func LiveRevenue(text string) string {
	dot := strings.IndexByte(text, '.')
	if dot < 0 {
		return text
	}
	frac := text[dot+1:]
	if len(frac) <= revenuePlaces {
		return text
	}
	if allDigits(frac) {
		return text[:dot+1+revenuePlaces]
	}
	// Exponent or junk after the separator: fall back to the parsed value.
	return ParseAmount(text).StringFixed(revenuePlaces)
}

// AllowKey reports whether key may be inserted into field. Room-count
// fields refuse the decimal separators and exponent markers so they can never
// hold a fractional or scientific value.
func AllowKey(field Field, key string) bool {
	if !field.Integral() {
		return true
	}
	switch key {
	case ".", ",", "e", "E":
		return false
	}
	return true
}

// StripRejected removes from text every character AllowKey refuses for
// field, yielding the text the key filter would have let through. Revenue
// text is returned unchanged.
func StripRejected(field Field, text string) string {
	if !field.Integral() {
		return text
	}
	return strings.Map(func(r rune) rune {
		if !AllowKey(field, string(r)) {
			return -1
		}
		return r
	}, text)
}

// Metrics reads the current field text for calculation. Empty and
// malformed fields read as 0; rooms sold is not clamped here.
func Metrics(fs Fields) kpi.RoomMetrics {
	return kpi.RoomMetrics{
		TotalRooms:   ParseCount(fs.TotalRooms),
		RoomsSold:    ParseCount(fs.RoomsSold),
		TotalRevenue: ParseAmount(fs.TotalRevenue),
	}
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

func formatCount(n int64) string {
	return strconv.FormatInt(n, 10)
}

func allDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if !isDigit(s[i]) {
			return false
		}
	}
	return true
}
