package loaders

import (
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func module(order binary.ByteOrder, words ...uint32) []byte {
	b := make([]byte, 4*len(words))
	for i, w := range words {
		order.PutUint32(b[i*4:], w)
	}
	return b
}

func TestDecodeSPIRV(t *testing.T) {
	header := []uint32{SPIRVMagic, 0x00010000, 0, 8, 0}
	tests := []struct {
		name    string
		data    []byte
		want    int
		wantErr bool
	}{
		{"little endian", module(binary.LittleEndian, header...), 5, false},
		{"big endian", module(binary.BigEndian, append(header, 42)...), 6, false},
		{"bad magic", module(binary.LittleEndian, 0xdeadbeef, 0, 0, 0, 0), 0, true},
		{"truncated word", append(module(binary.LittleEndian, header...), 1, 2), 0, true},
		{"too short", module(binary.LittleEndian, SPIRVMagic), 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, err := DecodeSPIRV(tt.data)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidSPIRV) {
					t.Fatalf("want ErrInvalidSPIRV, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if len(code) != tt.want || code[0] != SPIRVMagic {
				t.Errorf("got %d words starting %#x", len(code), code[0])
			}
		})
	}
}

func TestLoadSPIRV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "castle.vert.spv")
	if err := os.WriteFile(path, module(binary.LittleEndian, SPIRVMagic, 0x00010000, 0, 8, 0, 7), 0o644); err != nil {
		t.Fatal(err)
	}
	code, err := LoadSPIRV(path)
	if err != nil {
		t.Fatal(err)
	}
	if code[5] != 7 {
		t.Errorf("last word = %d, want 7", code[5])
	}

	if _, err := LoadSPIRV(filepath.Join(t.TempDir(), "missing.spv")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("missing file: %v", err)
	}
}
