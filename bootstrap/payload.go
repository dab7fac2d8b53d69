package bootstrap

import (
	"encoding/json"
	"time"

	"github.com/jonwraymond/wxshell/bridge"
)

// Variant identifies the payload shape.
type Variant int

const (
	// Fresh carries only the locale.
	Fresh Variant = iota
	// WeatherOnly adds time, weather data and the geolocation flag.
	WeatherOnly
	// WeatherAndAddress adds country, city and state.
	WeatherAndAddress
)

// String returns the string representation of the variant.
func (v Variant) String() string {
	switch v {
	case Fresh:
		return "fresh"
	case WeatherOnly:
		return "weather-only"
	case WeatherAndAddress:
		return "weather-and-address"
	default:
		return "unknown"
	}
}

// Payload is the UI initialization payload. Fields outside the variant are
// ignored when encoding. Theme and CustomTheme are independent of the
// variant and encoded whenever set.
type Payload struct {
	Variant          Variant
	Locale           string
	Time             time.Time
	Weather          json.RawMessage
	UsingGeoLocation bool
	Country          string
	City             *string
	State            *string
	Theme            *bridge.Theme
	CustomTheme      *bridge.Theme
}

type wirePayload struct {
	Locale           string          `json:"locale"`
	Time             *int64          `json:"time,omitempty"`
	WeatherData      json.RawMessage `json:"weatherData,omitempty"`
	UsingGeoLocation *bool           `json:"usingGeoLocation,omitempty"`
	Country          *string         `json:"country,omitempty"`
	City             json.RawMessage `json:"city,omitempty"`
	State            json.RawMessage `json:"state,omitempty"`
	Theme            *bridge.Theme   `json:"theme,omitempty"`
	CustomTheme      *bridge.Theme   `json:"customTheme,omitempty"`
}

// MarshalJSON encodes the fields of p's variant. Time is unix milliseconds;
// a missing city or state is null in the WeatherAndAddress variant.
func (p Payload) MarshalJSON() ([]byte, error) {
	w := wirePayload{Locale: p.Locale, Theme: p.Theme, CustomTheme: p.CustomTheme}
	if p.Variant == WeatherOnly || p.Variant == WeatherAndAddress {
		ms := p.Time.UnixMilli()
		geo := p.UsingGeoLocation
		w.Time = &ms
		w.WeatherData = p.Weather
		w.UsingGeoLocation = &geo
	}
	if p.Variant == WeatherAndAddress {
		country := p.Country
		w.Country = &country
		w.City = nullable(p.City)
		w.State = nullable(p.State)
	}
	return json.Marshal(w)
}

func nullable(s *string) json.RawMessage {
	if s == nil {
		return json.RawMessage("null")
	}
	b, err := json.Marshal(*s)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}
