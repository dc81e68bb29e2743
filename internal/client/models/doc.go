// Package models defines the payloads exchanged with the content API that the
// client itself interprets. Entry bodies stay opaque to the client.
package models
