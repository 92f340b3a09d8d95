// Package normalize keeps the three raw form fields inside their valid
// domains before any KPI is computed.
//
// Fields carries the text of the total-rooms, rooms-sold and total-revenue
// inputs exactly as the operator typed them. Nothing here returns an error:
// malformed text reads as 0, negative text reads as 0, and an oversold
// rooms-sold value is clamped with an advisory message.
//
// Commit(Fields) is the blur-time pass: integer fields are truncated, revenue
// is rounded to two places, then rooms sold is clamped to total rooms. The
// pass returns a fresh Validation snapshot every time.
//
// LiveRevenue and AllowKey guard the fields while the operator is still
// typing; Metrics reads the current text into a kpi.RoomMetrics.
package normalize
