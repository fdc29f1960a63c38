package trackselection

import (
	"strings"

	"golang.org/x/text/language"
)

// NormalizeLanguage canonicalizes a language code so that ISO 639-1 and ISO 639-2 codes
// compare equal ("fra" and "fr" both become "fr"). Region subtags are kept, so "en-US"
// stays "en-US". Empty and "und" yield "". Codes x/text does not know are lower-cased and
// returned as is.
func NormalizeLanguage(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return ""
	}
	tag, err := language.Parse(code)
	if err != nil {
		return strings.ToLower(code)
	}
	if tag == language.Und {
		return ""
	}
	base, conf := tag.Base()
	if conf == language.No {
		return ""
	}
	region, rconf := tag.Region()
	if rconf == language.Exact {
		return base.String() + "-" + region.String()
	}
	return base.String()
}
