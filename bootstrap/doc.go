// Package bootstrap decides, once per page load, which initialization
// payload the UI starts with and starts it.
//
// The Resolver reads the persisted weather and address slots and an optional
// geolocation permission capability:
//
//	weather + address -> WeatherAndAddress
//	weather only      -> WeatherOnly
//	anything else     -> Fresh (locale only)
//
// Resolution never fails. A missing, unreadable or malformed slot degrades
// the whole payload to Fresh; partial payloads are never built.
//
// Start resolves the payload, builds the UI through a Factory and wires the
// app's ports to the host glue (see bridge.Wire).
package bootstrap
