package kpi

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/shopspring/decimal"
)

// almostEqual returns true if a and b are within epsilon of each other.
func almostEqual(a, b, epsilon float64) bool {
	return math.Abs(a-b) < epsilon
}

func TestOccupancy(t *testing.T) {
	tests := []struct {
		name      string
		sold      float64
		rooms     float64
		want      float64
		wantValid bool
	}{
		{name: "forty of a hundred", sold: 40, rooms: 100, want: 40, wantValid: true},
		{name: "full house", sold: 50, rooms: 50, want: 100, wantValid: true},
		{name: "empty house", sold: 0, rooms: 120, want: 0, wantValid: true},
		{name: "one third", sold: 1, rooms: 3, want: 33.333333, wantValid: true},
		// No upper clamp; callers normalize first.
		{name: "oversold is not clamped", sold: 70, rooms: 50, want: 140, wantValid: true},
		{name: "zero rooms", sold: 0, rooms: 0, wantValid: false},
		{name: "zero rooms with sales", sold: 12, rooms: 0, wantValid: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Occupancy(tc.sold, tc.rooms)
			if got.Valid != tc.wantValid {
				t.Fatalf("valid: got %v, want %v", got.Valid, tc.wantValid)
			}
			if tc.wantValid && !almostEqual(got.Value, tc.want, 1e-4) {
				t.Errorf("value: got %v, want %v", got.Value, tc.want)
			}
		})
	}
}

func TestOccupancy_Range(t *testing.T) {
	for rooms := 1.0; rooms <= 60; rooms++ {
		for sold := 0.0; sold <= rooms; sold++ {
			got := Occupancy(sold, rooms)
			if !got.Valid {
				t.Fatalf("Occupancy(%v, %v) not valid", sold, rooms)
			}
			if got.Value < 0 || got.Value > 100 {
				t.Fatalf("Occupancy(%v, %v) = %v, out of [0, 100]", sold, rooms, got.Value)
			}
			if !almostEqual(got.Value, sold/rooms*100, 1e-9) {
				t.Fatalf("Occupancy(%v, %v) = %v, want %v", sold, rooms, got.Value, sold/rooms*100)
			}
		}
	}
}

func TestZeroDivisors(t *testing.T) {
	for _, x := range []float64{0, 1, 42.5, 1e9} {
		if m := Occupancy(x, 0); m.Valid {
			t.Errorf("Occupancy(%v, 0) should be unavailable, got %v", x, m.Value)
		}
		if m := ADR(x, 0); m.Valid {
			t.Errorf("ADR(%v, 0) should be unavailable, got %v", x, m.Value)
		}
		if m := RevPAR(x, 0); m.Valid {
			t.Errorf("RevPAR(%v, 0) should be unavailable, got %v", x, m.Value)
		}
	}
}

func TestADRAndRevPAR(t *testing.T) {
	if got := ADR(4000, 40); !got.Valid || got.Value != 100 {
		t.Errorf("ADR(4000, 40): got %+v, want 100", got)
	}
	if got := RevPAR(4000, 100); !got.Valid || got.Value != 40 {
		t.Errorf("RevPAR(4000, 100): got %+v, want 40", got)
	}
	if got := ADR(0, 10); !got.Valid || got.Value != 0 {
		t.Errorf("ADR(0, 10): got %+v, want 0", got)
	}
}

func TestCompute(t *testing.T) {
	res := Compute(RoomMetrics{
		TotalRooms:   100,
		RoomsSold:    40,
		TotalRevenue: decimal.RequireFromString("4000.00"),
	})
	if !almostEqual(res.OccupancyPercent.Value, 40, 1e-9) {
		t.Errorf("occupancy: got %v, want 40", res.OccupancyPercent.Value)
	}
	if !almostEqual(res.ADR.Value, 100, 1e-9) {
		t.Errorf("adr: got %v, want 100", res.ADR.Value)
	}
	if !almostEqual(res.RevPAR.Value, 40, 1e-9) {
		t.Errorf("revpar: got %v, want 40", res.RevPAR.Value)
	}
}

func TestCompute_AllZero(t *testing.T) {
	res := Compute(RoomMetrics{})
	if res.OccupancyPercent.Valid || res.ADR.Valid || res.RevPAR.Valid {
		t.Errorf("all metrics should be unavailable, got %+v", res)
	}
}

func TestResult_JSON(t *testing.T) {
	data, err := json.Marshal(Result{OccupancyPercent: Of(40), ADR: Unavailable, RevPAR: Of(12.5)})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	want := `{"occupancy_percent":40,"adr":null,"revpar":12.5}`
	if string(data) != want {
		t.Errorf("got %s, want %s", data, want)
	}

	var back Result
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back.ADR.Valid || !back.RevPAR.Valid {
		t.Errorf("round trip lost validity: %+v", back)
	}
}
