// Package kv is the persistent key-value bridge used by the paqs stores.
//
// Storage is the port a host implements (browser local storage, a bbolt file,
// an in-memory map). Bridge wraps a Storage with the best-effort contract the
// stores rely on:
//   - reads happen once at startup and never fail: a read error is logged and
//     reported as a missing key,
//   - writes never fail: the first write error is logged and the bridge
//     switches to degraded mode, keeping values in an in-memory shadow for the
//     rest of the session,
//   - nothing is re-read mid-session, so other writers of the same backend
//     cannot tear a session's view.
package kv
