// Package rest is the HTTP transport the session manager and the content
// gateway talk through.
//
// Requests are built with resty and sent through an http.RoundTripper chain
// (request ids, access logging and, when wired by the caller, the credential
// interceptor). Response bodies are decoded as JSON into the caller's value;
// non-2xx responses and network failures surface as *Error.
package rest
