// Package client assembles the credential store, the authenticated transport,
// the session manager and the content gateway into one Client.
//
// Construction order matters: the interceptor needs the session manager's
// Token, the session manager needs the transport, and the transport needs the
// interceptor. New breaks the cycle with a token source that resolves the
// manager lazily.
package client
