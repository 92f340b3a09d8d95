package form

import (
	"fmt"

	"github.com/innstack/innstack/pkg/format"
	"github.com/innstack/innstack/pkg/kpi"
	"github.com/innstack/innstack/pkg/normalize"
)

// Event type names accepted by Apply.
const (
	EventKeyDown = "keydown"
	EventChange  = "change"
	EventCommit  = "commit"
	EventRefresh = "refresh"
)

// Metric names reported to the Observer.
const (
	MetricOccupancy = "occupancy"
	MetricADR       = "adr"
	MetricRevPAR    = "revpar"
)

// Display is the fully rendered state of a form after one pass.
type Display struct {
	Fields    normalize.Fields     `json:"fields"`
	Occupancy string               `json:"occupancy"`
	ADR       string               `json:"adr"`
	RevPAR    string               `json:"revpar"`
	Messages  normalize.Validation `json:"messages"`
	Result    kpi.Result           `json:"result"`
}

// Sink receives the Display produced by every pass.
type Sink interface {
	Render(d Display)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(d Display)

func (f SinkFunc) Render(d Display) { f(d) }

// Observer is notified of form activity. Used for metrics.
type Observer interface {
	Event(kind string)
	Clamped()
	Unavailable(metric string)
}

// Event is one interaction from an input surface.
type Event struct {
	Type  string `json:"type"`
	Field string `json:"field,omitempty"`
	Value string `json:"value,omitempty"`
	Key   string `json:"key,omitempty"`
}

// Form holds the input state of one calculator.
type Form struct {
	fields     normalize.Fields
	validation normalize.Validation
	fm         format.Formatting
	sink       Sink
	obs        Observer
	last       Display
}

// New returns an empty Form rendering through fm into sink. sink and obs
// may be nil.
func New(fm format.Formatting, sink Sink, obs Observer) *Form {
	return &Form{fm: fm, sink: sink, obs: obs}
}

// Fields returns the current input text.
func (f *Form) Fields() normalize.Fields { return f.fields }

// Last returns the Display of the most recent pass.
func (f *Form) Last() Display { return f.last }

// KeyDown reports whether key may be inserted into field. It does not
// trigger a pass.
func (f *Form) KeyDown(field normalize.Field, key string) bool {
	f.observe(EventKeyDown)
	return normalize.AllowKey(field, key)
}

// Change replaces the text of field and recomputes. Room counts drop the
// characters KeyDown would refuse and revenue is trimmed to two decimals;
// nothing is clamped until the field is committed.
func (f *Form) Change(field normalize.Field, text string) Display {
	f.observe(EventChange)
	f.fields.Set(field, sanitize(field, text))
	return f.render()
}

// Commit normalizes all fields after field loses focus, then recomputes.
func (f *Form) Commit(field normalize.Field) Display {
	f.observe(EventCommit)
	f.normalize()
	return f.render()
}

// Refresh recomputes and renders without touching the inputs.
func (f *Form) Refresh() Display {
	return f.render()
}

// Load replaces every field at once, as a form submitted in one request.
// When commit is set the normalizer runs before the pass.
func (f *Form) Load(fs normalize.Fields, commit bool) Display {
	for _, field := range normalize.AllFields {
		fs.Set(field, sanitize(field, fs.Get(field)))
	}
	f.fields = fs
	f.validation = normalize.NoMessages
	if commit {
		f.observe(EventCommit)
		f.normalize()
	}
	return f.render()
}

// Apply dispatches ev. For keydown events the returned bool reports whether
// the key is allowed and the Display is the unchanged last pass.
func (f *Form) Apply(ev Event) (Display, bool, error) {
	if ev.Type == EventRefresh {
		return f.Refresh(), true, nil
	}
	field, err := normalize.ParseField(ev.Field)
	if err != nil {
		return f.last, false, fmt.Errorf("form: %s event: %w", ev.Type, err)
	}
	switch ev.Type {
	case EventKeyDown:
		return f.last, f.KeyDown(field, ev.Key), nil
	case EventChange:
		return f.Change(field, ev.Value), true, nil
	case EventCommit:
		return f.Commit(field), true, nil
	default:
		return f.last, false, fmt.Errorf("form: unknown event type %q", ev.Type)
	}
}

func sanitize(field normalize.Field, text string) string {
	if field == normalize.TotalRevenue {
		return normalize.LiveRevenue(text)
	}
	return normalize.StripRejected(field, text)
}

func (f *Form) normalize() {
	res := normalize.Commit(f.fields)
	f.fields = res.Fields
	f.validation = res.Validation
	if res.Clamped && f.obs != nil {
		f.obs.Clamped()
	}
}

func (f *Form) render() Display {
	res := kpi.Compute(normalize.Metrics(f.fields))
	d := Display{
		Fields:    f.fields,
		Occupancy: f.fm.Percent(res.OccupancyPercent),
		ADR:       f.fm.Currency(res.ADR),
		RevPAR:    f.fm.Currency(res.RevPAR),
		Messages:  f.validation,
		Result:    res,
	}
	if f.obs != nil {
		if !res.OccupancyPercent.Finite() {
			f.obs.Unavailable(MetricOccupancy)
		}
		if !res.ADR.Finite() {
			f.obs.Unavailable(MetricADR)
		}
		if !res.RevPAR.Finite() {
			f.obs.Unavailable(MetricRevPAR)
		}
	}
	f.last = d
	if f.sink != nil {
		f.sink.Render(d)
	}
	return d
}

func (f *Form) observe(kind string) {
	if f.obs != nil {
		f.obs.Event(kind)
	}
}
