package testutil

import (
	"encoding/binary"
	"encoding/hex"
	"testing"
)

// AssertFrameOpcode проверяет, что первый байт кадра соответствует ожидаемому opcode.
func AssertFrameOpcode(t testing.TB, expected byte, frame []byte) {
	t.Helper()

	if len(frame) == 0 {
		t.Fatalf("frame is empty, expected opcode 0x%02X", expected)
	}

	actual := frame[0]
	if actual != expected {
		t.Fatalf("frame opcode mismatch: expected 0x%02X, got 0x%02X", expected, actual)
	}
}

// AssertInt32LE проверяет, что int32 значение в кадре (little-endian) соответствует ожидаемому.
func AssertInt32LE(t testing.TB, expected int32, frame []byte, offset int) {
	t.Helper()

	if len(frame) < offset+4 {
		t.Fatalf("frame too short: need %d bytes for int32 at offset %d, got %d",
			offset+4, offset, len(frame))
	}

	actual := int32(binary.LittleEndian.Uint32(frame[offset:]))
	if actual != expected {
		t.Fatalf("int32 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertInt64LE проверяет, что int64 значение в кадре (little-endian) соответствует ожидаемому.
func AssertInt64LE(t testing.TB, expected int64, frame []byte, offset int) {
	t.Helper()

	if len(frame) < offset+8 {
		t.Fatalf("frame too short: need %d bytes for int64 at offset %d, got %d",
			offset+8, offset, len(frame))
	}

	actual := int64(binary.LittleEndian.Uint64(frame[offset:]))
	if actual != expected {
		t.Fatalf("int64 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertByteAtOffset проверяет, что байт в кадре соответствует ожидаемому.
func AssertByteAtOffset(t testing.TB, expected byte, frame []byte, offset int) {
	t.Helper()

	if len(frame) <= offset {
		t.Fatalf("frame too short: need %d bytes, got %d", offset+1, len(frame))
	}

	actual := frame[offset]
	if actual != expected {
		t.Fatalf("byte mismatch at offset %d: expected 0x%02X, got 0x%02X", offset, expected, actual)
	}
}

// AssertUint16LE проверяет uint16 (little-endian) по смещению: коды эффектов и счётчики.
func AssertUint16LE(t testing.TB, expected uint16, frame []byte, offset int) {
	t.Helper()

	if len(frame) < offset+2 {
		t.Fatalf("frame too short: need %d bytes for uint16 at offset %d, got %d",
			offset+2, offset, len(frame))
	}

	actual := binary.LittleEndian.Uint16(frame[offset:])
	if actual != expected {
		t.Fatalf("uint16 mismatch at offset %d: expected %d, got %d", offset, expected, actual)
	}
}

// AssertFrameLength проверяет, что длина кадра соответствует ожидаемой.
func AssertFrameLength(t testing.TB, expected int, frame []byte) {
	t.Helper()

	actual := len(frame)
	if actual != expected {
		t.Fatalf("frame length mismatch: expected %d bytes, got %d bytes", expected, actual)
	}
}

// DumpFrame возвращает hex dump кадра для сообщений об ошибках.
func DumpFrame(frame []byte) string {
	return hex.Dump(frame)
}
