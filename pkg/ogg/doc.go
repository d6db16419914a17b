// Package ogg demultiplexes Ogg container streams as they arrive on the wire.
//
// It reads pages one at a time from an io.Reader and reassembles the logical
// packets they carry, joining packets that span page boundaries. Only the
// framing layer is handled: checksums are not verified and packet contents
// are left to the caller.
//
// See https://xiph.org/ogg/doc/framing.html for the page layout.
package ogg
