// Package notify provides Notifier implementations: an in-memory
// recording notifier for tests and development, and a webhook notifier
// that POSTs offers to a broker endpoint.
package notify
