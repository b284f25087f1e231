// Package protocol owns the wire contract with the board peer.
//
// Ownership boundary:
// - line framing of the incoming byte stream (Reader)
// - request encoding and response decoding (codec)
// - exclusive use of the transport for one request/reply at a time (Link)
package protocol
