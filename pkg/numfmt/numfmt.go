// Package numfmt renders kroner amounts and percentages the way Norwegian
// budget documents print them: decimal comma, "mrd." and "mill." magnitudes and
// non-breaking spaces between thousands.
package numfmt

import (
	"math"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
)

const (
	billion = 1_000_000_000
	million = 1_000_000

	minusSign     = "−"
	thousandsSep  = "\u00a0"
	currencyLabel = "kr"
)

type options struct {
	precision    int
	withCurrency bool
	asChange     bool
}

type Option func(*options)

// WithPrecision sets the number of decimals shown for "mrd." and "mill." amounts.
func WithPrecision(decimals int) Option {
	return func(o *options) {
		if decimals >= 0 {
			o.precision = decimals
		}
	}
}

func WithoutCurrency() Option {
	return func(o *options) {
		o.withCurrency = false
	}
}

// AsChange prefixes positive values with "+".
func AsChange() Option {
	return func(o *options) {
		o.asChange = true
	}
}

func newOptions(opts []Option) options {
	o := options{precision: 1, withCurrency: true}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// Amount formats v kroner, for example "2970,9 mrd. kr", "413,6 mill. kr" or
// "850 000 kr".
func Amount(v float64, opts ...Option) string {
	o := newOptions(opts)
	abs := math.Abs(v)

	var number, unit string
	switch {
	case abs >= billion:
		number, unit = decimal(abs/billion, o.precision), "mrd."
	case abs >= million:
		number, unit = decimal(abs/million, o.precision), "mill."
	default:
		number = strings.ReplaceAll(humanize.Comma(int64(math.Round(abs))), ",", thousandsSep)
	}

	var b strings.Builder
	b.WriteString(sign(v, o.asChange))
	b.WriteString(number)
	if unit != "" {
		b.WriteString(" ")
		b.WriteString(unit)
	}
	if o.withCurrency {
		b.WriteString(" ")
		b.WriteString(currencyLabel)
	}
	return b.String()
}

// Percent formats v percent with one decimal unless WithPrecision says
// otherwise, for example "3,1 %". AsChange applies; currency options do not.
func Percent(v float64, opts ...Option) string {
	o := newOptions(opts)
	return sign(v, o.asChange) + decimal(math.Abs(v), o.precision) + " %"
}

func sign(v float64, asChange bool) string {
	switch {
	case v < 0:
		return minusSign
	case v > 0 && asChange:
		return "+"
	}
	return ""
}

func decimal(v float64, precision int) string {
	return strings.Replace(strconv.FormatFloat(v, 'f', precision, 64), ".", ",", 1)
}
