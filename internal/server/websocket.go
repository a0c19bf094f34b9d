// Package server provides the WebSocket command layer for the studio web
// interface.
package server

import (
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"

	"github.com/gorilla/websocket"
)

// WebSocketConn is the connection surface the read/write loops need, so
// tests can substitute a fake for *websocket.Conn.
type WebSocketConn interface {
	io.Closer
	WriteJSON(v any) error
	ReadJSON(v any) error
}

var upgrader = websocket.Upgrader{
	CheckOrigin: originAllowed,
}

// UpgradeConnection upgrades an HTTP request to a WebSocket connection.
func UpgradeConnection(w http.ResponseWriter, r *http.Request) (*websocket.Conn, error) {
	return upgrader.Upgrade(w, r, nil)
}

// originAllowed is the access boundary for a single-user local tool: accept
// same-origin requests plus anything coming from loopback or a private
// network, reject the rest.
func originAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		// Same-origin requests omit the Origin header.
		return true
	}

	u, err := url.Parse(origin)
	if err != nil {
		slog.Warn("rejected WebSocket connection: invalid origin URL", "origin", origin)
		return false
	}
	host := u.Hostname()

	if host == sameOriginHost(r) || isLocalHost(host) {
		return true
	}

	slog.Warn("rejected WebSocket connection", "origin", origin, "host", host)
	return false
}

// sameOriginHost returns the request's host with any port stripped.
func sameOriginHost(r *http.Request) string {
	if h, _, err := net.SplitHostPort(r.Host); err == nil {
		return h
	}
	return r.Host
}

// isLocalHost reports whether host names the local machine or a private
// network address.
func isLocalHost(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
}
