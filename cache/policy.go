package cache

import "net/http"

// Policy configures which responses a cache accepts.
type Policy struct {
	// Strict stores only 200 OK responses. When false every response the
	// network produced is stored, including redirects and errors.
	Strict bool
}

// LenientPolicy returns a policy that stores any response.
func LenientPolicy() Policy {
	return Policy{Strict: false}
}

// StrictPolicy returns a policy that stores only 200 OK responses.
func StrictPolicy() Policy {
	return Policy{Strict: true}
}

// Cacheable reports whether a response with the given status may be stored.
func (p Policy) Cacheable(status int) bool {
	if p.Strict {
		return status == http.StatusOK
	}
	return status > 0
}
