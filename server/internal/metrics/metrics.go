package metrics

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sort"
	"sync"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
	"google.golang.org/protobuf/proto"
)

// Exported metric names.
const (
	NameEvents      = "innstack_form_events_total"
	NameClamps      = "innstack_clamps_total"
	NameUnavailable = "innstack_unavailable_total"
)

type gauge struct {
	name string
	help string
	fn   func() float64
}

// Registry holds the server's counters. It is safe for concurrent use.
type Registry struct {
	mu          sync.Mutex
	events      map[string]uint64
	clamps      uint64
	unavailable map[string]uint64
	gauges      []gauge
}

// New returns an empty Registry.
func New() *Registry {
	return &Registry{
		events:      make(map[string]uint64),
		unavailable: make(map[string]uint64),
	}
}

// Event counts one form event of the given kind.
func (r *Registry) Event(kind string) {
	r.mu.Lock()
	r.events[kind]++
	r.mu.Unlock()
}

// Clamped counts one rooms-sold clamp.
func (r *Registry) Clamped() {
	r.mu.Lock()
	r.clamps++
	r.mu.Unlock()
}

// Unavailable counts one "N/A" render of metric.
func (r *Registry) Unavailable(metric string) {
	r.mu.Lock()
	r.unavailable[metric]++
	r.mu.Unlock()
}

// Gauge registers a gauge sampled from fn on every scrape.
func (r *Registry) Gauge(name, help string, fn func() float64) {
	r.mu.Lock()
	r.gauges = append(r.gauges, gauge{name: name, help: help, fn: fn})
	r.mu.Unlock()
}

// Gather returns the current metric families sorted by name.
func (r *Registry) Gather() []*dto.MetricFamily {
	r.mu.Lock()
	families := []*dto.MetricFamily{
		counterVec(NameEvents, "Form events handled, by type.", "type", r.events),
		counter(NameClamps, "Rooms-sold values clamped to total rooms.", float64(r.clamps)),
		counterVec(NameUnavailable, "Outputs rendered as N/A, by metric.", "metric", r.unavailable),
	}
	gauges := append([]gauge(nil), r.gauges...)
	r.mu.Unlock()

	// Sampled outside the lock; callbacks take their own locks.
	for _, g := range gauges {
		families = append(families, &dto.MetricFamily{
			Name:   proto.String(g.name),
			Help:   proto.String(g.help),
			Type:   dto.MetricType_GAUGE.Enum(),
			Metric: []*dto.Metric{{Gauge: &dto.Gauge{Value: proto.Float64(g.fn())}}},
		})
	}

	// The text format rejects families with no samples.
	out := families[:0]
	for _, mf := range families {
		if len(mf.Metric) > 0 {
			out = append(out, mf)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].GetName() < out[j].GetName()
	})
	return out
}

// Write encodes all families to w in the text exposition format.
func (r *Registry) Write(w io.Writer) error {
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range r.Gather() {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("metrics: encode %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

// ServeHTTP serves GET /metrics.
func (r *Registry) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	if req.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	var buf bytes.Buffer
	if err := r.Write(&buf); err != nil {
		slog.Error("metrics: write failed", "err", err)
		http.Error(w, "metrics unavailable", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", string(expfmt.NewFormat(expfmt.TypeTextPlain)))
	w.Write(buf.Bytes()) //nolint:errcheck
}

func counter(name, help string, v float64) *dto.MetricFamily {
	return &dto.MetricFamily{
		Name:   proto.String(name),
		Help:   proto.String(help),
		Type:   dto.MetricType_COUNTER.Enum(),
		Metric: []*dto.Metric{{Counter: &dto.Counter{Value: proto.Float64(v)}}},
	}
}

func counterVec(name, help, label string, values map[string]uint64) *dto.MetricFamily {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mf := &dto.MetricFamily{
		Name: proto.String(name),
		Help: proto.String(help),
		Type: dto.MetricType_COUNTER.Enum(),
	}
	for _, k := range keys {
		mf.Metric = append(mf.Metric, &dto.Metric{
			Label:   []*dto.LabelPair{{Name: proto.String(label), Value: proto.String(k)}},
			Counter: &dto.Counter{Value: proto.Float64(float64(values[k]))},
		})
	}
	return mf
}
