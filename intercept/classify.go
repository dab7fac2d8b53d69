package intercept

import (
	"strings"

	"github.com/jonwraymond/wxshell/bridge"
)

// Rule marks every host containing Substring as a dynamic-data host of Kind.
type Rule struct {
	Substring string
	Kind      bridge.Kind
}

// DefaultRules recognizes the weather and geocoding providers.
func DefaultRules() []Rule {
	return []Rule{
		{Substring: "meteo", Kind: bridge.KindWeather},
		{Substring: "openstreetmap", Kind: bridge.KindAddress},
	}
}

// Classify reports whether host is a dynamic-data host and which kind.
// The first matching rule wins; matching is case-insensitive.
func Classify(rules []Rule, host string) (bridge.Kind, bool) {
	host = strings.ToLower(host)
	for _, r := range rules {
		if r.Substring != "" && strings.Contains(host, strings.ToLower(r.Substring)) {
			return r.Kind, true
		}
	}
	return 0, false
}
