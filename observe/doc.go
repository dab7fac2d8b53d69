// Package observe instruments the interception layer and its host.
//
// New builds a Telemetry from a Config: a JSON line Logger that every
// component receives by injection, and a Middleware that wraps each
// intercepted fetch in a span, counters and a duration histogram.
package observe
