package intercept

import "net/http"

type transport struct {
	w *Worker
}

// Transport returns an http.RoundTripper that routes every request through
// the worker. The originating page is taken from the request context.
func (w *Worker) Transport() http.RoundTripper {
	return transport{w: w}
}

func (t transport) RoundTrip(req *http.Request) (*http.Response, error) {
	return t.w.Fetch(req.Context(), req)
}
