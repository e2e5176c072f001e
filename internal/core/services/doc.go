// Package services implements the core behaviour of mailmirror: the OAuth
// token lifecycle, the bidirectional thread sync engine, message mapping,
// outbound MIME assembly and label reconciliation. Services depend only on
// the ports; adapters are wired in at startup.
package services
