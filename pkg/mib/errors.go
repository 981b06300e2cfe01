package mib

import "errors"

var (
	ErrUnknownType    = errors.New("unknown type tag")
	ErrUnsupportedBER = errors.New("unsupported SNMP type")
	ErrInvalidOID     = errors.New("invalid OID suffix")
)
