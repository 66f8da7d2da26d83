package binary

import (
	"bytes"
	"testing"
)

func TestWriteU32(t *testing.T) {
	tests := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{127, []byte{0x7f}},
		{128, []byte{0x80, 0x01}},
		{624485, []byte{0xe5, 0x8e, 0x26}},
		{0xFFFFFFFF, []byte{0xff, 0xff, 0xff, 0xff, 0x0f}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteU32(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteU32(%d) = %x, want %x", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriteS32(t *testing.T) {
	tests := []struct {
		v    int32
		want []byte
	}{
		{0, []byte{0x00}},
		{1, []byte{0x01}},
		{-1, []byte{0x7f}},
		{63, []byte{0x3f}},
		{-64, []byte{0x40}},
		{64, []byte{0xc0, 0x00}},
		{-65, []byte{0xbf, 0x7f}},
		{1024, []byte{0x80, 0x08}},
	}
	for _, tt := range tests {
		w := NewWriter()
		w.WriteS32(tt.v)
		if !bytes.Equal(w.Bytes(), tt.want) {
			t.Errorf("WriteS32(%d) = %x, want %x", tt.v, w.Bytes(), tt.want)
		}
	}
}

func TestWriteName(t *testing.T) {
	w := NewWriter()
	w.WriteName("mem")
	if !bytes.Equal(w.Bytes(), []byte{0x03, 'm', 'e', 'm'}) {
		t.Errorf("WriteName = %x", w.Bytes())
	}
}

func TestWriteSection(t *testing.T) {
	body := NewWriter()
	body.Byte(0x01, 0x02, 0x03)

	w := NewWriter()
	w.WriteSection(0x0b, body)
	if !bytes.Equal(w.Bytes(), []byte{0x0b, 0x03, 0x01, 0x02, 0x03}) {
		t.Errorf("WriteSection = %x", w.Bytes())
	}
}

func TestWriteU32LE(t *testing.T) {
	w := NewWriter()
	w.WriteU32LE(0x6D736100)
	if !bytes.Equal(w.Bytes(), []byte{0x00, 0x61, 0x73, 0x6d}) {
		t.Errorf("WriteU32LE = %x", w.Bytes())
	}
}
