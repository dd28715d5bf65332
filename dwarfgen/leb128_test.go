package dwarfgen

import "testing"

func TestUleb128RoundTrip(t *testing.T) {
	values := []uint64{0, 1, 127, 128, 129, 255, 256, 16384, 1 << 31, 1<<63 - 1, ^uint64(0)}
	for _, v := range values {
		buf := AppendUleb128(nil, v)
		if len(buf) != Uleb128Len(v) {
			t.Fatalf("Uleb128Len(%d) = %d, want %d (actual encoded length)", v, Uleb128Len(v), len(buf))
		}
		got, n := DecodeUleb128(buf)
		if got != v {
			t.Fatalf("round-trip of %d produced %d", v, got)
		}
		if n != len(buf) {
			t.Fatalf("DecodeUleb128 consumed %d bytes, want %d", n, len(buf))
		}
	}
}

func TestSleb128RoundTrip(t *testing.T) {
	values := []int64{0, 1, -1, 63, -64, 64, -65, 127, -128, 1 << 20, -(1 << 20), 1<<62 - 1, -(1 << 62)}
	for _, v := range values {
		buf := AppendSleb128(nil, v)
		got, n := DecodeSleb128(buf)
		if got != v {
			t.Fatalf("round-trip of %d produced %d (encoded %v)", v, got, buf)
		}
		if n != len(buf) {
			t.Fatalf("DecodeSleb128 consumed %d bytes, want %d", n, len(buf))
		}
	}
}

func TestUleb128MultiByteShape(t *testing.T) {
	// 300 = 0b1_0010_1100, requires two LEB128 bytes with the continuation
	// bit set on the first.
	buf := AppendUleb128(nil, 300)
	if len(buf) != 2 {
		t.Fatalf("encoding of 300 has %d bytes, want 2", len(buf))
	}
	if buf[0]&0x80 == 0 {
		t.Fatalf("first byte of a multi-byte ULEB128 encoding must have the continuation bit set")
	}
	if buf[1]&0x80 != 0 {
		t.Fatalf("last byte of a ULEB128 encoding must not have the continuation bit set")
	}
}
