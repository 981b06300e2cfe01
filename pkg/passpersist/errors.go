package passpersist

import "errors"

var (
	errReadInput   = errors.New("failed to read from agent")
	errWriteOutput = errors.New("failed to write to agent")
	errLineTooLong = errors.New("line exceeds maximum length")
)
