// Package session drives one Pegasus device handle.
//
// The protocol is strictly half-duplex request/response with no request
// ids at the command layer, so every operation holds the session lock for
// its full command/reply exchange. Independent handles may be driven by
// independent sessions concurrently.
package session
