// Package httpapi exposes the account, sync and mailbox services over HTTP.
//
// Every response uses one envelope shape: {statusCode, message[], data}. The
// message strings come from a fixed enum so API consumers can match on them.
// Handlers do no business logic; they parse, call a driving port and render.
package httpapi
