package kpi

import (
	"encoding/json"
	"math"

	"github.com/shopspring/decimal"
)

// RoomMetrics holds the three operator-entered figures for one business day.
// RoomsSold <= TotalRooms is enforced by the normalizer, not here.
type RoomMetrics struct {
	TotalRooms   int64
	RoomsSold    int64
	TotalRevenue decimal.Decimal
}

// Metric is a computed value that may not be computable.
// Valid is false when the computation's divisor was zero.
type Metric struct {
	Value float64
	Valid bool
}

// Unavailable is the Metric returned for a zero divisor.
var Unavailable = Metric{}

// Of wraps v as a valid Metric.
func Of(v float64) Metric {
	return Metric{Value: v, Valid: true}
}

// Finite reports whether m is valid and holds a finite number.
func (m Metric) Finite() bool {
	return m.Valid && !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0)
}

// MarshalJSON renders an unavailable metric as null.
func (m Metric) MarshalJSON() ([]byte, error) {
	if !m.Finite() {
		return []byte("null"), nil
	}
	return json.Marshal(m.Value)
}

// UnmarshalJSON accepts a number or null.
func (m *Metric) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*m = Unavailable
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*m = Of(v)
	return nil
}

// Result is the set of KPIs derived from one RoomMetrics.
type Result struct {
	OccupancyPercent Metric `json:"occupancy_percent"`
	ADR              Metric `json:"adr"`
	RevPAR           Metric `json:"revpar"`
}

// Occupancy returns roomsSold / totalRooms * 100.
func Occupancy(roomsSold, totalRooms float64) Metric {
	if totalRooms == 0 {
		return Unavailable
	}
	return Of(roomsSold / totalRooms * 100)
}

// ADR returns the average daily rate: revenue earned per sold room.
func ADR(totalRevenue, roomsSold float64) Metric {
	if roomsSold == 0 {
		return Unavailable
	}
	return Of(totalRevenue / roomsSold)
}

// RevPAR returns revenue per available room, sold or not.
func RevPAR(totalRevenue, totalRooms float64) Metric {
	if totalRooms == 0 {
		return Unavailable
	}
	return Of(totalRevenue / totalRooms)
}

// Compute evaluates all three KPIs for m.
func Compute(m RoomMetrics) Result {
	rooms := float64(m.TotalRooms)
	sold := float64(m.RoomsSold)
	revenue := m.TotalRevenue.InexactFloat64()

	return Result{
		OccupancyPercent: Occupancy(sold, rooms),
		ADR:              ADR(revenue, sold),
		RevPAR:           RevPAR(revenue, rooms),
	}
}
