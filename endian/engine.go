// Package endian provides byte order utilities for the factor wire format.
//
// Every multi-byte integer in a factor file is little-endian. The decoders read
// header fields through the Wire engine, and the zero-copy path only reinterprets
// column bytes in place when the host byte order matches the wire byte order:
//
//	engine := endian.Wire()
//	rows := engine.Uint32(hdr[12:16])
//
//	if endian.IsNativeWire() {
//	    // column bytes can be viewed as []int64 without decoding
//	}
//
// # Thread Safety
//
// All functions in this package are safe for concurrent use.
// The returned EndianEngine instances are immutable and stateless.
package endian

import (
	"encoding/binary"
	"unsafe"
)

// EndianEngine combines ByteOrder and AppendByteOrder interfaces from encoding/binary
// into a single interface for convenient byte order operations.
//
// This interface is satisfied by binary.LittleEndian and binary.BigEndian from
// the standard library.
type EndianEngine interface {
	binary.ByteOrder
	binary.AppendByteOrder
}

var nativeOrder = CheckEndianness()

// CheckEndianness uses a fixed integer value to determine the host's byte order.
func CheckEndianness() binary.ByteOrder {
	// 0x0100 is 256. For a little-endian system, the LSB (0x00) is first.
	// For a big-endian system, the MSB (0x01) is first.
	var i uint16 = 0x0100

	b := (*[2]byte)(unsafe.Pointer(&i))

	if b[0] == 0x01 {
		return binary.BigEndian
	}

	return binary.LittleEndian
}

func IsNativeLittleEndian() bool {
	return nativeOrder == binary.LittleEndian
}

// CompareNativeEndian reports whether engine matches the host byte order.
func CompareNativeEndian(engine EndianEngine) bool {
	return engine == nativeOrder
}

// Wire returns the engine for the factor wire format (little-endian).
func Wire() EndianEngine {
	return binary.LittleEndian
}

// IsNativeWire reports whether the host byte order equals the wire byte order,
// which is the precondition for viewing column bytes as typed values in place.
func IsNativeWire() bool {
	return CompareNativeEndian(Wire())
}
