// Package domain contains the core entities of mailmirror: accounts with their
// OAuth tokens, locally mirrored threads, label sets, and the explicit shapes of
// remote provider payloads. Types here carry no persistence or transport concerns.
package domain
