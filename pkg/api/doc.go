// Package api holds the request and response messages of the groupledger.v1
// Connect services. Messages travel as JSON; money fields are decimal strings
// ("12.50") so no precision is lost on the wire.
//
// Handlers and clients live in package apiconnect.
package api
