package loaders

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// SPIRVMagic is the first word of every SPIR-V module.
const SPIRVMagic uint32 = 0x07230203

var ErrInvalidSPIRV = errors.New("invalid SPIR-V")

// LoadSPIRV reads a compiled shader module from disk.
func LoadSPIRV(path string) ([]uint32, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	buf, err := io.ReadAll(f)
	if err != nil {
		return nil, err
	}

	code, err := DecodeSPIRV(buf)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return code, nil
}

// DecodeSPIRV turns a module into words. Modules written with the other byte
// order are swapped, as the magic number allows.
func DecodeSPIRV(b []byte) ([]uint32, error) {
	if len(b) < 20 || len(b)%4 != 0 {
		return nil, fmt.Errorf("%w: size %d is not a multiple of 4 holding a header", ErrInvalidSPIRV, len(b))
	}

	var order binary.ByteOrder
	switch {
	case binary.LittleEndian.Uint32(b) == SPIRVMagic:
		order = binary.LittleEndian
	case binary.BigEndian.Uint32(b) == SPIRVMagic:
		order = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: bad magic %#08x", ErrInvalidSPIRV, binary.LittleEndian.Uint32(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := range byteCode {
		byteCode[i] = order.Uint32(b[i*4:])
	}
	return byteCode, nil
}
