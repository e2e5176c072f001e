// Package gmail implements the driven.Provider port against the Gmail API.
//
// The adapter is stateless with respect to credentials: every mailbox handle
// is built from the token value the caller validated, via oauth2's static
// token source. No process-wide client singleton exists.
//
// All API calls run behind a shared token-bucket rate limiter and googleapi
// errors are mapped onto the domain error taxonomy before they leave the
// package.
package gmail
