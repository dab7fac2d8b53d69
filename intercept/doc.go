// Package intercept implements the interception layer that sits between
// page contexts and the network.
//
// A Worker moves through Installing, Activating and Active. Install opens
// the shell cache and precaches the manifest; Activate enables navigation
// preload when the host supports it. Neither step fails the lifecycle:
// asset and capability failures are logged and swallowed.
//
// Once Active, every request is classified by host:
//
//   - Dynamic-data hosts (weather and geocoding providers) bypass the cache.
//     The response body is copied, relayed to the originating page as a
//     bridge.Message, and the original response is returned unchanged.
//   - Everything else is served cache-first.
//
// Requests that arrive before activation are forwarded untouched.
//
// Worker.Transport exposes the worker as an http.RoundTripper, so an
// http.Client built on it behaves like a page controlled by the worker.
// The originating page is taken from the request context (WithClientID).
package intercept
