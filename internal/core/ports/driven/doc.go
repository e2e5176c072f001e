// Package driven defines the outbound ports of the core: the repositories the
// services persist through and the remote mail provider contract. Adapters
// under internal/adapters/driven implement these interfaces.
package driven
