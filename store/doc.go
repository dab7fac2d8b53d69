// Package store provides the persisted key-value slots shared by the page
// context and the interception layer.
//
// Values are opaque strings. The well-known slots are WEATHER_DATA,
// ADDRESS_DATA, THEME and CUSTOM_THEME. Implementations are provided for
// memory, SQLite and Redis.
package store
