// Package api hosts the HTTP server, middleware, and webhook handlers.
// Notable routes:
//   - POST /webhook for inbound monitor messages (shared-secret protected).
//   - GET /healthz / readyz for liveness probes.
//   - GET /statusz for a configuration self-check.
//   - GET /metrics for Prometheus scraping.
package api
