// Package apiresponses provides the JSON acknowledgement helpers shared by
// the HTTP server and its controllers.
package apiresponses
