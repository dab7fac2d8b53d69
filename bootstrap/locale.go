package bootstrap

import (
	"strings"

	"golang.org/x/text/language"
)

// DefaultLocale is used when no usable language preference is available.
const DefaultLocale = "en-US"

// DetectLocale returns the most preferred tag of an Accept-Language value.
func DetectLocale(acceptLanguage string) string {
	accept := strings.TrimSpace(acceptLanguage)
	if accept == "" {
		return DefaultLocale
	}
	tags, _, err := language.ParseAcceptLanguage(accept)
	if err != nil {
		return DefaultLocale
	}
	for _, tag := range tags {
		if tag != language.Und {
			return tag.String()
		}
	}
	return DefaultLocale
}
