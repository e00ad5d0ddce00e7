// Package protocol owns the Pegasus wire contract.
//
// Ownership boundary:
// - command opcodes and reply marker constants
// - fixed-size frame primitives (frame subpackage)
// - the half-duplex device session (session subpackage)
package protocol
