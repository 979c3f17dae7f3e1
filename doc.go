// Package strata implements an ordered HTTP interceptor pipeline around a
// terminal view handler. Middleware layers wrap each other like an onion:
// the first configured layer runs first on the way in and last on the way
// out, each layer may short-circuit with its own response, and errors
// propagate outward until some layer converts them or the pipeline boundary
// maps them to a status-coded response.
//
// Beyond the basic wrap-and-delegate contract, middleware may opt into two
// additional hook points detected at build time: view hooks run after the
// route is resolved but before the view executes, and template hooks run on
// deferred responses before their single render step. Streaming responses
// carry a pull-based chunk sequence that is never buffered whole.
//
// The pipeline is built once at startup and shared, read-only, by every
// concurrent request; per-request state lives on the request context's
// attribute bag, never on middleware instances.
package strata
