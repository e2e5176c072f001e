// Package driving defines the inbound ports of the core: the service
// interfaces the HTTP and CLI adapters call into.
package driving
