package dashboard

import (
	"net/http"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// supportedLocales are matched against Accept-Language, the first one is the default.
var supportedLocales = []language.Tag{
	language.English,
	language.BrazilianPortuguese,
}

var localeMatcher = language.NewMatcher(supportedLocales)

// dateLayouts are indexed like supportedLocales.
var dateLayouts = []string{
	"Jan 2, 2006 15:04",
	"02/01/2006 15:04",
}

// locale formats dates and counters for one request.
type locale struct {
	tag        language.Tag
	dateLayout string
	printer    *message.Printer
}

// resolveLocale picks the best supported locale for the Accept-Language header of r.
func resolveLocale(r *http.Request) locale {
	return localeFor(r.Header.Get("Accept-Language"))
}

func localeFor(acceptLanguage string) locale {
	idx := 0
	if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil && len(tags) > 0 {
		_, idx, _ = localeMatcher.Match(tags...)
	}
	tag := supportedLocales[idx]

	return locale{
		tag:        tag,
		dateLayout: dateLayouts[idx],
		printer:    message.NewPrinter(tag),
	}
}

// Date formats t in UTC.
func (l locale) Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}

	return t.UTC().Format(l.dateLayout)
}

// Count formats n with the digit grouping of the locale.
func (l locale) Count(n uint64) string {
	return l.printer.Sprintf("%d", n)
}

// Lang is the BCP 47 tag used in the html lang attribute.
func (l locale) Lang() string {
	return l.tag.String()
}
