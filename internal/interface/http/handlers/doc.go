// Package handlers contains reusable HTTP building blocks for the dashboard
// API.
//
// # Health Checks
//
// HealthChecker runs named checks in parallel, each bounded by a timeout:
//
//	checker := handlers.NewCompositeHealthChecker(version)
//	checker.AddCheck("store", handlers.NewStoreCheck(repo))
//	checker.AddCheck("postgres", handlers.NewPingCheck(conn))
//	checker.AddCheck("redis", handlers.NewPingCheck(cache))
//
//	status := checker.Check(ctx)
//
// # Middleware
//
// Middleware are plain func(http.Handler) http.Handler values and compose
// with Chain:
//
//	h := handlers.ChainHandler(mux,
//	    handlers.SecurityHeadersMiddleware,
//	    handlers.RequestSizeLimitMiddleware(10<<20),
//	)
package handlers
