// Package bridge connects the interception layer to page contexts.
//
// The interception layer posts a Message for every dynamic-data response to
// the page that issued the request. Each page context is a Page actor with a
// bounded mailbox; its Run loop persists relayed bodies through a Persister so
// the next bootstrap can seed the UI from them, and fans messages out to any
// attached watchers such as a browser websocket (see Hub).
//
// Delivery is at-most-once and unordered across pages. A full mailbox drops
// the message; a page that is gone is skipped by the sender.
//
// Glue and Ports implement the UI's outbound channels: location requests,
// theme changes, custom-theme saves, address removal and connectivity.
package bridge
