package form_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/innstack/innstack/pkg/format"
	"github.com/innstack/innstack/pkg/normalize"
	"github.com/innstack/innstack/server/internal/form"
)

// --- helpers ----------------------------------------------------------------

type recordingSink struct {
	displays []form.Display
}

func (s *recordingSink) Render(d form.Display) { s.displays = append(s.displays, d) }

type countingObserver struct {
	events      map[string]int
	clamps      int
	unavailable map[string]int
}

func newObserver() *countingObserver {
	return &countingObserver{events: map[string]int{}, unavailable: map[string]int{}}
}

func (o *countingObserver) Event(kind string)         { o.events[kind]++ }
func (o *countingObserver) Clamped()                  { o.clamps++ }
func (o *countingObserver) Unavailable(metric string) { o.unavailable[metric]++ }

func newForm(t *testing.T) (*form.Form, *recordingSink, *countingObserver) {
	t.Helper()
	sink := &recordingSink{}
	obs := newObserver()
	return form.New(format.Default(), sink, obs), sink, obs
}

func assertOutputs(t *testing.T, d form.Display, occ, adr, revpar string) {
	t.Helper()
	if d.Occupancy != occ {
		t.Errorf("occupancy: got %q, want %q", d.Occupancy, occ)
	}
	if d.ADR != adr {
		t.Errorf("adr: got %q, want %q", d.ADR, adr)
	}
	if d.RevPAR != revpar {
		t.Errorf("revpar: got %q, want %q", d.RevPAR, revpar)
	}
}

// --- scenarios --------------------------------------------------------------

func TestInitialRender_AllUnavailable(t *testing.T) {
	f, sink, _ := newForm(t)
	d := f.Refresh()
	assertOutputs(t, d, "N/A", "N/A", "N/A")
	if len(sink.displays) != 1 {
		t.Errorf("sink renders: got %d, want 1", len(sink.displays))
	}
	if d.Fields != (normalize.Fields{}) {
		t.Errorf("fields should stay empty, got %+v", d.Fields)
	}
}

func TestScenario_TypicalNight(t *testing.T) {
	f, _, _ := newForm(t)
	f.Change(normalize.TotalRooms, "100")
	f.Change(normalize.RoomsSold, "40")
	f.Change(normalize.TotalRevenue, "4000")
	d := f.Commit(normalize.TotalRevenue)

	assertOutputs(t, d, "40.00%", "$100.00", "$40.00")
	if d.Fields.TotalRevenue != "4000.00" {
		t.Errorf("revenue text: got %q, want 4000.00", d.Fields.TotalRevenue)
	}
	if !d.Messages.Empty() {
		t.Errorf("unexpected messages: %v", d.Messages.Map())
	}
}

func TestScenario_ZeroInputs(t *testing.T) {
	f, _, _ := newForm(t)
	f.Change(normalize.TotalRooms, "0")
	f.Change(normalize.RoomsSold, "0")
	f.Change(normalize.TotalRevenue, "0")
	d := f.Commit(normalize.TotalRevenue)
	assertOutputs(t, d, "N/A", "N/A", "N/A")
}

func TestScenario_OversoldClampedOnCommit(t *testing.T) {
	f, _, obs := newForm(t)
	f.Change(normalize.TotalRooms, "50")
	d := f.Change(normalize.RoomsSold, "70")

	// Not clamped while typing.
	if d.Fields.RoomsSold != "70" || d.Occupancy != "140.00%" {
		t.Errorf("before commit: rooms sold %q occupancy %q", d.Fields.RoomsSold, d.Occupancy)
	}

	d = f.Commit(normalize.RoomsSold)
	if d.Fields.RoomsSold != "50" {
		t.Errorf("rooms sold after commit: got %q, want 50", d.Fields.RoomsSold)
	}
	if got := d.Messages.Message(normalize.RoomsSold); got != normalize.MsgSoldExceedsTotal {
		t.Errorf("message: got %q", got)
	}
	if d.Occupancy != "100.00%" {
		t.Errorf("occupancy: got %q, want 100.00%%", d.Occupancy)
	}
	if obs.clamps != 1 {
		t.Errorf("clamps: got %d, want 1", obs.clamps)
	}
}

func TestScenario_OversoldMessageOnCommit(t *testing.T) {
	f, _, _ := newForm(t)
	// Total rooms lowered after rooms sold was entered: only the commit
	// notices.
	f.Change(normalize.TotalRooms, "80")
	f.Change(normalize.RoomsSold, "70")
	f.Change(normalize.TotalRooms, "50")

	d := f.Last()
	if d.Occupancy != "140.00%" {
		t.Errorf("occupancy before commit: got %q, want 140.00%%", d.Occupancy)
	}

	d = f.Commit(normalize.TotalRooms)
	if d.Fields.RoomsSold != "50" {
		t.Errorf("rooms sold: got %q, want 50", d.Fields.RoomsSold)
	}
	if got := d.Messages.Message(normalize.RoomsSold); got != normalize.MsgSoldExceedsTotal {
		t.Errorf("message: got %q", got)
	}
	if d.Occupancy != "100.00%" {
		t.Errorf("occupancy: got %q, want 100.00%%", d.Occupancy)
	}
}

func TestChange_TotalRoomsKeepsMessages(t *testing.T) {
	f, _, _ := newForm(t)
	f.Change(normalize.TotalRooms, "10")
	f.Change(normalize.RoomsSold, "12")
	d := f.Commit(normalize.RoomsSold)
	if d.Messages.Empty() {
		t.Fatal("expected a message after oversold commit")
	}
	d = f.Change(normalize.TotalRooms, "20")
	if d.Messages.Message(normalize.RoomsSold) == "" {
		t.Error("total rooms change should not clear messages")
	}
	d = f.Commit(normalize.TotalRooms)
	if !d.Messages.Empty() {
		t.Errorf("second commit should clear messages, got %v", d.Messages.Map())
	}
}

func TestChange_RevenueTruncatedLive(t *testing.T) {
	f, _, _ := newForm(t)
	d := f.Change(normalize.TotalRevenue, "99.999")
	if d.Fields.TotalRevenue != "99.99" {
		t.Errorf("revenue: got %q, want 99.99", d.Fields.TotalRevenue)
	}
}

func TestChange_RoomCountsDropRejectedCharacters(t *testing.T) {
	f, _, _ := newForm(t)
	f.Change(normalize.TotalRooms, "1e2")
	d := f.Change(normalize.RoomsSold, "12.5")

	want := normalize.Fields{TotalRooms: "12", RoomsSold: "125"}
	if diff := cmp.Diff(want, d.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
	for _, text := range []string{d.Fields.TotalRooms, d.Fields.RoomsSold} {
		if strings.ContainsAny(text, ".,eE") {
			t.Errorf("room count %q holds a fractional or exponent character", text)
		}
	}
	// Uncommitted, so not clamped yet.
	if d.Occupancy != "1041.67%" {
		t.Errorf("occupancy: got %q, want 1041.67%%", d.Occupancy)
	}
}

func TestChange_EmptyFieldsStayEmpty(t *testing.T) {
	f, _, _ := newForm(t)
	f.Change(normalize.TotalRooms, "10")
	d := f.Commit(normalize.TotalRooms)
	want := normalize.Fields{TotalRooms: "10"}
	if diff := cmp.Diff(want, d.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
	assertOutputs(t, d, "0.00%", "N/A", "$0.00")
}

func TestKeyDown(t *testing.T) {
	f, sink, obs := newForm(t)
	if f.KeyDown(normalize.RoomsSold, ".") {
		t.Error("rooms sold should refuse '.'")
	}
	if !f.KeyDown(normalize.TotalRevenue, ".") {
		t.Error("revenue should accept '.'")
	}
	if len(sink.displays) != 0 {
		t.Errorf("keydown should not render, got %d renders", len(sink.displays))
	}
	if obs.events[form.EventKeyDown] != 2 {
		t.Errorf("keydown events: got %d, want 2", obs.events[form.EventKeyDown])
	}
}

func TestApply(t *testing.T) {
	f, _, _ := newForm(t)
	events := []form.Event{
		{Type: form.EventChange, Field: "total_rooms", Value: "100"},
		{Type: form.EventChange, Field: "rooms_sold", Value: "40"},
		{Type: form.EventChange, Field: "total_revenue", Value: "4000"},
		{Type: form.EventCommit, Field: "total_revenue"},
	}
	var d form.Display
	for _, ev := range events {
		var err error
		d, _, err = f.Apply(ev)
		if err != nil {
			t.Fatalf("Apply(%+v): %v", ev, err)
		}
	}
	assertOutputs(t, d, "40.00%", "$100.00", "$40.00")

	_, allowed, err := f.Apply(form.Event{Type: form.EventKeyDown, Field: "total_rooms", Key: "e"})
	if err != nil || allowed {
		t.Errorf("keydown e: allowed=%v err=%v", allowed, err)
	}

	if _, _, err := f.Apply(form.Event{Type: form.EventChange, Field: "nights", Value: "1"}); err == nil {
		t.Error("expected error for unknown field")
	}
	if _, _, err := f.Apply(form.Event{Type: "paste", Field: "total_rooms"}); err == nil {
		t.Error("expected error for unknown event type")
	}
}

func TestLoad(t *testing.T) {
	f, _, obs := newForm(t)
	d := f.Load(normalize.Fields{TotalRooms: "50", RoomsSold: "70", TotalRevenue: "3500"}, true)
	if d.Fields.RoomsSold != "50" || d.Occupancy != "100.00%" {
		t.Errorf("got rooms sold %q occupancy %q", d.Fields.RoomsSold, d.Occupancy)
	}
	if obs.unavailable[form.MetricADR] != 0 {
		t.Errorf("adr should be available")
	}

	d = f.Load(normalize.Fields{TotalRooms: "50", RoomsSold: "70"}, false)
	if d.Fields.RoomsSold != "70" || d.Occupancy != "140.00%" {
		t.Errorf("uncommitted load: got rooms sold %q occupancy %q", d.Fields.RoomsSold, d.Occupancy)
	}
}

func TestLoad_ReplacesMessages(t *testing.T) {
	f, _, _ := newForm(t)
	d := f.Load(normalize.Fields{TotalRooms: "50", RoomsSold: "70"}, true)
	if d.Messages.Message(normalize.RoomsSold) != normalize.MsgSoldExceedsTotal {
		t.Fatalf("committed load: got messages %v", d.Messages.Map())
	}

	d = f.Load(normalize.Fields{TotalRooms: "50", RoomsSold: "10"}, false)
	if !d.Messages.Empty() {
		t.Errorf("uncommitted load kept stale messages %v", d.Messages.Map())
	}
	if d.Fields.RoomsSold != "10" {
		t.Errorf("rooms sold: got %q, want 10", d.Fields.RoomsSold)
	}
}

func TestLoad_SanitizesFields(t *testing.T) {
	f, _, _ := newForm(t)
	d := f.Load(normalize.Fields{TotalRooms: "1e2", RoomsSold: "7.5", TotalRevenue: "99.999"}, false)
	want := normalize.Fields{TotalRooms: "12", RoomsSold: "75", TotalRevenue: "99.99"}
	if diff := cmp.Diff(want, d.Fields); diff != "" {
		t.Errorf("fields (-want +got):\n%s", diff)
	}
}

func TestObserver_Unavailable(t *testing.T) {
	f, _, obs := newForm(t)
	f.Refresh()
	for _, m := range []string{form.MetricOccupancy, form.MetricADR, form.MetricRevPAR} {
		if obs.unavailable[m] != 1 {
			t.Errorf("unavailable[%s]: got %d, want 1", m, obs.unavailable[m])
		}
	}
}
