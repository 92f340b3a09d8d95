package format

import (
	"fmt"
	"math"
	"strconv"
	"sync/atomic"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/innstack/innstack/pkg/kpi"
)

// NotAvailable is rendered for any metric that cannot be computed.
const NotAvailable = "N/A"

// Defaults used when no display settings are configured.
const (
	DefaultSymbol = "$"
	DefaultLocale = "en-US"
)

// Formatting is implemented by anything that can render KPI metrics.
type Formatting interface {
	Currency(m kpi.Metric) string
	Percent(m kpi.Metric) string
}

// Formatter renders metrics for one currency symbol and locale.
// It is safe for concurrent use.
type Formatter struct {
	symbol  string
	locale  language.Tag
	printer *message.Printer
}

// New returns a Formatter for the given symbol and BCP 47 locale.
func New(symbol, locale string) (*Formatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("format: parse locale %q: %w", locale, err)
	}
	return &Formatter{
		symbol:  symbol,
		locale:  tag,
		printer: message.NewPrinter(tag),
	}, nil
}

// Default returns the "$" / en-US formatter.
func Default() *Formatter {
	f, _ := New(DefaultSymbol, DefaultLocale)
	return f
}

// Symbol returns the currency symbol.
func (f *Formatter) Symbol() string { return f.symbol }

// Locale returns the locale used for grouping separators.
func (f *Formatter) Locale() language.Tag { return f.locale }

// Money renders v as currency, or NotAvailable when v is not finite.
func (f *Formatter) Money(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return f.symbol + f.printer.Sprintf("%.2f", v)
}

// Percentage renders v with two decimals and a percent sign, or
// NotAvailable when v is not finite.
func (f *Formatter) Percentage(v float64) string {
	if !finite(v) {
		return NotAvailable
	}
	return strconv.FormatFloat(v, 'f', 2, 64) + "%"
}

// Currency renders m as currency.
func (f *Formatter) Currency(m kpi.Metric) string {
	if !m.Valid {
		return NotAvailable
	}
	return f.Money(m.Value)
}

// Percent renders m as a percentage.
func (f *Formatter) Percent(m kpi.Metric) string {
	if !m.Valid {
		return NotAvailable
	}
	return f.Percentage(m.Value)
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Live is a Formatting whose underlying Formatter can be replaced at any
// time. The zero value is not usable; call NewLive.
type Live struct {
	p atomic.Pointer[Formatter]
}

// NewLive returns a Live starting with f.
func NewLive(f *Formatter) *Live {
	l := &Live{}
	l.p.Store(f)
	return l
}

// Load returns the current Formatter.
func (l *Live) Load() *Formatter { return l.p.Load() }

// Store replaces the current Formatter.
func (l *Live) Store(f *Formatter) { l.p.Store(f) }

func (l *Live) Currency(m kpi.Metric) string { return l.Load().Currency(m) }

func (l *Live) Percent(m kpi.Metric) string { return l.Load().Percent(m) }
