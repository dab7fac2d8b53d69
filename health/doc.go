// Package health reports whether the shell host can serve pages.
//
// A Checker reports Healthy, Degraded or Unhealthy. The host registers one
// checker for the persisted store (a Ping) and one for the interception
// worker's lifecycle (Active is healthy, earlier states are degraded). An
// Aggregator runs them together and Mount exposes the results on a chi
// router:
//
//	GET /healthz         liveness, always OK
//	GET /readyz          OK, DEGRADED or UNHEALTHY (503)
//	GET /health          JSON detail for every check
//	GET /health/{name}   JSON detail for one check
package health
