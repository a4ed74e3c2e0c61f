// Package middleware holds the HTTP middleware wrapped around the configuration API:
// request IDs, panic recovery and access logging.
//
//	handler := middleware.Chain(mux,
//	    middleware.RequestID(),
//	    middleware.Logging(logger),
//	    middleware.Recovery(logger),
//	)
//
// Middleware listed first runs outermost, so Logging records the 500 written by Recovery.
package middleware
