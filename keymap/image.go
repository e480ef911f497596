package keymap

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/Alia5/keylayer/keycode"
	"golang.org/x/crypto/blake2b"
)

const imageMagic = "KLT1"

// ErrMalformedImage is returned when a binary image cannot be decoded.
var ErrMalformedImage = errors.New("malformed keymap image")

// MarshalBinary encodes the table as a compact image.
//
// Image layout:
//
//	Bytes 0-3: "KLT1"
//	Byte 4: rows
//	Byte 5: cols
//	Byte 6: layer count
//	Per layer: name length (1 byte) + name bytes
//	Per cell, layer-major then row-major: kind, code, mods, param
//
// The table name is not part of the image.
func (t *Table) MarshalBinary() ([]byte, error) {
	var buf bytes.Buffer
	buf.Grow(7 + len(t.names)*8 + len(t.cells)*4)
	buf.WriteString(imageMagic)
	buf.WriteByte(byte(t.rows))
	buf.WriteByte(byte(t.cols))
	buf.WriteByte(byte(len(t.names)))
	for _, n := range t.names {
		if len(n) > 255 {
			return nil, fmt.Errorf("layer name %q too long", n)
		}
		buf.WriteByte(byte(len(n)))
		buf.WriteString(n)
	}
	for _, k := range t.cells {
		p := k.Pack()
		buf.Write(p[:])
	}
	return buf.Bytes(), nil
}

// UnmarshalImage decodes an image produced by MarshalBinary and validates it
// like New.
func UnmarshalImage(name string, data []byte) (*Table, error) {
	r := bytes.NewReader(data)
	var hdr [7]byte
	if _, err := io.ReadFull(r, hdr[:]); err != nil {
		return nil, fmt.Errorf("%w: header: %v", ErrMalformedImage, err)
	}
	if string(hdr[:4]) != imageMagic {
		return nil, fmt.Errorf("%w: bad magic %q", ErrMalformedImage, hdr[:4])
	}
	rows, cols, count := int(hdr[4]), int(hdr[5]), int(hdr[6])

	layers := make([]Layer, count)
	for i := range layers {
		n, err := r.ReadByte()
		if err != nil {
			return nil, fmt.Errorf("%w: layer %d name: %v", ErrMalformedImage, i, err)
		}
		nb := make([]byte, n)
		if _, err := io.ReadFull(r, nb); err != nil {
			return nil, fmt.Errorf("%w: layer %d name: %v", ErrMalformedImage, i, err)
		}
		layers[i].Name = string(nb)
	}
	for i := range layers {
		layers[i].Keys = make([][]keycode.Keycode, rows)
		for row := range layers[i].Keys {
			layers[i].Keys[row] = make([]keycode.Keycode, cols)
			for col := range layers[i].Keys[row] {
				var p [4]byte
				if _, err := io.ReadFull(r, p[:]); err != nil {
					return nil, fmt.Errorf("%w: cells: %v", ErrMalformedImage, err)
				}
				k, err := keycode.Unpack(p)
				if err != nil {
					return nil, fmt.Errorf("%w: %v", ErrMalformedImage, err)
				}
				layers[i].Keys[row][col] = k
			}
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrMalformedImage, r.Len())
	}
	return New(name, rows, cols, layers...)
}

// UnmarshalBinary decodes an image into a zero Table, for
// encoding.BinaryUnmarshaler users. Tables already in use must not be
// overwritten.
func (t *Table) UnmarshalBinary(data []byte) error {
	nt, err := UnmarshalImage(t.name, data)
	if err != nil {
		return err
	}
	*t = *nt
	return nil
}

// Fingerprint is the BLAKE2b-256 digest of the binary image. Two tables with
// the same fingerprint resolve every coordinate identically.
func (t *Table) Fingerprint() [32]byte {
	// New bounds layer names, so encoding cannot fail.
	img, _ := t.MarshalBinary()
	return blake2b.Sum256(img)
}
