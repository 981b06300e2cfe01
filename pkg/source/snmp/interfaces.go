// Package snmp pkg/source/snmp/interfaces.go
package snmp

import "github.com/gosnmp/gosnmp"

//go:generate mockgen -destination=mock_snmp.go -package=snmp github.com/mfreeman451/passpersist/pkg/source/snmp Client

// Client defines the interface for SNMP communication.
type Client interface {
	// Connect establishes the SNMP connection
	Connect() error
	// BulkWalkAll retrieves every variable below rootOid
	BulkWalkAll(rootOid string) ([]gosnmp.SnmpPDU, error)
	// Close closes the SNMP connection
	Close() error
}
