package post

import (
	"time"

	"golang.org/x/text/language"
)

const defaultDateLayout = "1/2/2006"

// Short numeric date layouts, keyed by canonical BCP 47 tag.
var dateLayouts = map[string]string{
	"en":    defaultDateLayout,
	"en-US": defaultDateLayout,
	"en-GB": "02/01/2006",
	"en-AU": "02/01/2006",
	"de":    "2.1.2006",
	"fr":    "02/01/2006",
	"ja":    "2006/1/2",
	"und":   "2006-01-02",
}

// DateFormatter renders the display date stored on posts.
type DateFormatter struct {
	layout string
}

// NewDateFormatter returns a formatter for locale. Locales without a known
// layout fall back to their base language, then to en-US.
func NewDateFormatter(locale string) (DateFormatter, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return DateFormatter{}, err
	}
	if layout, ok := dateLayouts[tag.String()]; ok {
		return DateFormatter{layout: layout}, nil
	}
	if base, _ := tag.Base(); base.String() != "" {
		if layout, ok := dateLayouts[base.String()]; ok {
			return DateFormatter{layout: layout}, nil
		}
	}
	return DateFormatter{layout: defaultDateLayout}, nil
}

// Format renders t in the formatter's layout.
func (f DateFormatter) Format(t time.Time) string {
	if f.layout == "" {
		return t.Format(defaultDateLayout)
	}
	return t.Format(f.layout)
}
