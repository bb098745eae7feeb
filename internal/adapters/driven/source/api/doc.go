// Package api implements driven.TableSource over the HTTP table service.
//
// Endpoints:
//
//	GET {base}/tables       -> {"tables": [{"id": ..., "name": ...}]} or a bare list
//	GET {base}/tables/{id}  -> one table with its cells
//
// Requests carry a bearer token and an X-Request-ID header. The client
// throttles proactively with a token bucket and retries rate-limited and
// server errors a bounded number of times.
package api
