// Package websocket pushes dataset events to dashboard clients. A single Hub
// goroutine owns the client set; each connection runs a read pump and a write
// pump with ping/pong keepalive.
package websocket
