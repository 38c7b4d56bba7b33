package format

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func printer(lang string) *message.Printer {
	tag, err := language.Parse(lang)
	if err != nil {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// USD formats whole dollars with grouping: USD(1299, "en") => "$1,299".
func USD(dollars int, lang string) string {
	p := printer(lang)
	if dollars < 0 {
		return p.Sprintf("-$%d", -dollars)
	}
	return p.Sprintf("$%d", dollars)
}

// FromPrice renders a starting price label, or "" when the price is unknown.
func FromPrice(dollars int, lang string) string {
	if dollars <= 0 {
		return ""
	}
	if strings.HasPrefix(strings.ToLower(lang), "es") {
		return "Desde " + USD(dollars, lang)
	}
	return "From " + USD(dollars, lang)
}

// PriceRange renders "$75 - $350 per trip".
func PriceRange(min, max int, unit, lang string) string {
	out := USD(min, lang)
	if max > min {
		out += " - " + USD(max, lang)
	}
	if unit != "" {
		out += " " + unit
	}
	return out
}

// Date formats time in a locale-friendly short form.
func Date(t time.Time, lang string) string {
	if t.IsZero() {
		return ""
	}
	switch strings.ToLower(lang) {
	case "es":
		return fmt.Sprintf("%d %s %d", t.Day(), spanishMonths[t.Month()-1], t.Year())
	default:
		return t.Format("Jan 2, 2006")
	}
}

var spanishMonths = [...]string{"ene", "feb", "mar", "abr", "may", "jun", "jul", "ago", "sep", "oct", "nov", "dic"}

// Duration renders a sailing length: Duration(7) => "7 nights".
func Duration(nights int) string {
	switch {
	case nights <= 0:
		return ""
	case nights == 1:
		return "1 night"
	default:
		return fmt.Sprintf("%d nights", nights)
	}
}

// Tel strips a display phone to the digits and leading + used in tel: links.
func Tel(phone string) string {
	var b strings.Builder
	for i, r := range phone {
		if r == '+' && i == 0 {
			b.WriteRune(r)
			continue
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Phone renders a NANP number as "(833) 874-1019". Other inputs are returned unchanged.
func Phone(phone string) string {
	digits := strings.TrimPrefix(Tel(phone), "+")
	if len(digits) == 11 && digits[0] == '1' {
		digits = digits[1:]
	}
	if len(digits) != 10 {
		return phone
	}
	return fmt.Sprintf("(%s) %s-%s", digits[:3], digits[3:6], digits[6:])
}

// Number groups thousands: Number(33100, "en") => "33,100".
func Number(n int, lang string) string {
	return printer(lang).Sprintf("%d", n)
}
