// locale.go - Locale-aware natives: case mapping, number and date formatting

package natives

import (
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/goodsign/monday"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/sambeau/qanta/pkg/qanta/evaluator"
)

// locale holds everything the formatting natives derive from one locale
// setting.
type locale struct {
	monday     monday.Locale
	monthFirst bool
	upperCaser cases.Caser
	lowerCaser cases.Caser
	printer    *message.Printer
}

func newLocale(name string) *locale {
	if name == "" {
		name = "en-US"
	}
	tag, err := language.Parse(strings.ReplaceAll(name, "_", "-"))
	if err != nil {
		tag = language.AmericanEnglish
	}
	region, _ := tag.Region()

	return &locale{
		monday:     mondayLocale(tag),
		monthFirst: region.String() == "US",
		upperCaser: cases.Upper(tag),
		lowerCaser: cases.Lower(tag),
		printer:    message.NewPrinter(tag),
	}
}

// mondayLocales maps a language, or a language_REGION pair, to the locale
// monday uses for month and weekday names.
var mondayLocales = map[string]monday.Locale{
	"en":    monday.LocaleEnUS,
	"en_GB": monday.LocaleEnGB,
	"de":    monday.LocaleDeDE,
	"fr":    monday.LocaleFrFR,
	"fr_CA": monday.LocaleFrCA,
	"es":    monday.LocaleEsES,
	"it":    monday.LocaleItIT,
	"pt":    monday.LocalePtPT,
	"pt_BR": monday.LocalePtBR,
	"nl":    monday.LocaleNlNL,
	"nl_BE": monday.LocaleNlBE,
	"ru":    monday.LocaleRuRU,
	"pl":    monday.LocalePlPL,
	"sv":    monday.LocaleSvSE,
	"da":    monday.LocaleDaDK,
	"fi":    monday.LocaleFiFI,
	"ja":    monday.LocaleJaJP,
	"zh":    monday.LocaleZhCN,
	"zh_TW": monday.LocaleZhTW,
	"ko":    monday.LocaleKoKR,
	"tr":    monday.LocaleTrTR,
	"uk":    monday.LocaleUkUA,
}

func mondayLocale(tag language.Tag) monday.Locale {
	base, _ := tag.Base()
	region, _ := tag.Region()
	if loc, ok := mondayLocales[base.String()+"_"+region.String()]; ok {
		return loc
	}
	if loc, ok := mondayLocales[base.String()]; ok {
		return loc
	}
	return monday.LocaleEnUS
}

// dateStyles are the named layouts accepted by formatDate.
var dateStyles = map[string]string{
	"short":  "2006-01-02",
	"medium": "2 Jan 2006",
	"long":   "2 January 2006",
	"full":   "Monday, 2 January 2006",
}

// layout resolves a named style for the locale. Anything else is used as
// a Go time layout.
func (l *locale) layout(style string) string {
	if l.monthFirst {
		switch style {
		case "short":
			return "1/2/06"
		case "medium":
			return "Jan 2, 2006"
		case "long":
			return "January 2, 2006"
		case "full":
			return "Monday, January 2, 2006"
		}
	}
	if layout, ok := dateStyles[style]; ok {
		return layout
	}
	return style
}

func (l *locale) upper(args []evaluator.Object) (evaluator.Object, error) {
	s, err := stringArg("upper", args[0])
	if err != nil {
		return nil, err
	}
	return &evaluator.String{Value: l.upperCaser.String(s)}, nil
}

func (l *locale) lower(args []evaluator.Object) (evaluator.Object, error) {
	s, err := stringArg("lower", args[0])
	if err != nil {
		return nil, err
	}
	return &evaluator.String{Value: l.lowerCaser.String(s)}, nil
}

// formatNumber groups digits and picks separators for the locale.
func (l *locale) formatNumber(args []evaluator.Object) (evaluator.Object, error) {
	n, err := numberArg("formatNumber", args[0])
	if err != nil {
		return nil, err
	}
	return &evaluator.String{Value: l.printer.Sprintf("%v", number.Decimal(n))}, nil
}

// parseDate reads a date in any common format as UTC and yields unix
// seconds, or nil if the text is not a date.
func (l *locale) parseDate(args []evaluator.Object) (evaluator.Object, error) {
	s, err := stringArg("parseDate", args[0])
	if err != nil {
		return nil, err
	}
	t, err := dateparse.ParseIn(strings.TrimSpace(s), time.UTC, dateparse.PreferMonthFirst(l.monthFirst))
	if err != nil {
		return evaluator.NIL, nil
	}
	return &evaluator.Number{Value: float64(t.Unix())}, nil
}

// formatDate renders unix seconds in UTC using a named style or a Go
// layout, with month and weekday names in the locale's language.
func (l *locale) formatDate(args []evaluator.Object) (evaluator.Object, error) {
	seconds, err := numberArg("formatDate", args[0])
	if err != nil {
		return nil, err
	}
	style, err := stringArg("formatDate", args[1])
	if err != nil {
		return nil, err
	}
	t := time.Unix(int64(seconds), 0).UTC()
	return &evaluator.String{Value: monday.Format(t, l.layout(style), l.monday)}, nil
}
