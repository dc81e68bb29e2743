// Package cli provides the interactive strapiclient command-line client.
//
// It wires configuration, the credential store and the content API client
// into a REPL. Typical session: log in, browse or edit collections, upload
// files, log out. The credential survives between runs when web storage is
// backed by a persistent kv driver.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See runREPL for the command list.
package cli
