package bridge

import "errors"

var (
	// ErrMailboxFull indicates a page could not accept another message.
	ErrMailboxFull = errors.New("bridge: mailbox full")

	// ErrPageClosed indicates the page context has gone away.
	ErrPageClosed = errors.New("bridge: page closed")

	// ErrUnknownType indicates a message type other than meteo or address.
	ErrUnknownType = errors.New("bridge: unknown message type")

	// ErrInvalidClientID indicates an empty client id.
	ErrInvalidClientID = errors.New("bridge: client id is required")

	// ErrInvalidTheme indicates a theme that is not two [r,g,b] colors with
	// channels in 0..255.
	ErrInvalidTheme = errors.New("bridge: invalid theme")

	// ErrNilStore indicates a Persister or Glue without a store.
	ErrNilStore = errors.New("bridge: store is nil")
)
