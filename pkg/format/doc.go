// Package format renders KPI metrics as display strings.
//
// Currency values carry a symbol, locale grouping separators and exactly two
// decimals ("$1,234.50"); percentages carry two decimals and a percent sign
// ("33.33%"). An unavailable or non-finite metric renders as NotAvailable.
//
// Live wraps a Formatter behind an atomic pointer so the display settings can
// be swapped by a config reload while forms keep rendering.
package format
