package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// idxImageMagic is the IDX magic number of an unsigned-byte rank-3 tensor.
const idxImageMagic = 2051

// ErrInvalidFormat reports a file that is not an IDX image file.
var ErrInvalidFormat = errors.New("invalid IDX image file")

// ReadIDXImages reads an MNIST-style IDX image file and scales pixels to
// [0, 1]. Gzip-compressed files are detected by content.
//
// IDX file format for images:
//
//	magic number: 0x00000803 (2051)
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes (0-255)
func ReadIDXImages(filename string) (*Set, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r, err := maybeGunzip(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	set, err := decodeIDXImages(r)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return set, nil
}

// maybeGunzip wraps r in a gzip reader when it starts with the gzip magic.
func maybeGunzip(r *bufio.Reader) (io.Reader, error) {
	head, err := r.Peek(2)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidFormat, err)
	}
	if head[0] != 0x1f || head[1] != 0x8b {
		return r, nil
	}
	return gzip.NewReader(r)
}

func decodeIDXImages(r io.Reader) (*Set, error) {
	var header struct {
		Magic, Count, Rows, Cols uint32
	}
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: failed to read header: %w", ErrInvalidFormat, err)
	}
	if header.Magic != idxImageMagic {
		return nil, fmt.Errorf("%w: magic number %d, want %d", ErrInvalidFormat, header.Magic, idxImageMagic)
	}
	if header.Count == 0 || header.Rows == 0 || header.Cols == 0 {
		return nil, fmt.Errorf("%w: empty dimensions %dx%dx%d", ErrInvalidFormat, header.Count, header.Rows, header.Cols)
	}

	n, dim := int(header.Count), int(header.Rows*header.Cols)
	pixels := make([]byte, dim)
	set := newSet(n, dim)
	for i := 0; i < n; i++ {
		if _, err := io.ReadFull(r, pixels); err != nil {
			return nil, fmt.Errorf("%w: failed to read image %d: %w", ErrInvalidFormat, i, err)
		}
		row := set.Example(i)
		for j, p := range pixels {
			row[j] = float64(p) / 255.0
		}
	}
	return set, nil
}

// WriteIDXImages writes set as an uncompressed IDX image file with the given
// image height; pixels are quantized to bytes.
func WriteIDXImages(w io.Writer, set *Set, rows int) error {
	if rows <= 0 || set.Dim()%rows != 0 {
		return fmt.Errorf("dataset: %d rows do not divide image size %d", rows, set.Dim())
	}
	header := [4]uint32{idxImageMagic, uint32(set.Len()), uint32(rows), uint32(set.Dim() / rows)}
	if err := binary.Write(w, binary.BigEndian, header); err != nil {
		return err
	}

	pixels := make([]byte, set.Dim())
	for i := 0; i < set.Len(); i++ {
		for j, v := range set.Example(i) {
			pixels[j] = byte(min(max(v, 0), 1)*255 + 0.5)
		}
		if _, err := w.Write(pixels); err != nil {
			return err
		}
	}
	return nil
}
