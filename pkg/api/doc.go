// Package api hosts the gin HTTP server: middleware chain, CORS policy,
// controller registration, health, metrics and version endpoints.
package api
