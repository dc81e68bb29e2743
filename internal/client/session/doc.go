// Package session runs the authentication flows and owns the credential
// lifecycle.
//
// Every flow clears the stored credential before contacting the server and
// persists a new one only after a successful response that carries it.
// Clearing operations (the start of any flow, and Logout) open a new session
// epoch; a flow whose epoch is no longer current when its response arrives
// does not persist its credential and returns ErrSessionSuperseded together
// with the response. The most recently started operation therefore decides
// the final state: a login followed by a logout before the login settles
// leaves nothing stored.
package session
