package state

import (
	"bytes"
	"fmt"
	"interaction-lab/errors"
	"io"
	"unicode/utf8"

	"github.com/klauspost/compress/flate"
)

// Compressed text is raw deflate packed 15 bits per rune, every rune taken from
// a window of the Basic Multilingual Plane that stays clear of surrogates.
// One rune is therefore one UTF-16 unit.
const (
	runeBase       = 0x4E00
	bitsPerRune    = 15
	runeMask       = 1<<bitsPerRune - 1
	maxInflateSize = 4 << 10
)

// Compress deflates text and packs the result into runes. It is deterministic:
// the same text always yields the same output.
func Compress(text string) (string, error) {
	var buf bytes.Buffer
	fw, err := flate.NewWriter(&buf, flate.BestCompression)
	if err != nil {
		return "", fmt.Errorf("deflate writer: %w", err)
	}
	if _, err := fw.Write([]byte(text)); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	if err := fw.Close(); err != nil {
		return "", fmt.Errorf("deflate: %w", err)
	}
	return pack(buf.Bytes()), nil
}

// Decompress is the exact inverse of Compress.
func Decompress(packed string) (string, error) {
	data, err := unpack(packed)
	if err != nil {
		return "", err
	}
	fr := flate.NewReader(bytes.NewReader(data))
	defer fr.Close()

	out, err := io.ReadAll(io.LimitReader(fr, maxInflateSize+1))
	if err != nil {
		return "", fmt.Errorf("%w: inflate: %v", errors.ErrInvalidEncodedCustomID, err)
	}
	if len(out) > maxInflateSize {
		return "", fmt.Errorf("%w: inflated payload too large", errors.ErrInvalidEncodedCustomID)
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: inflated payload is not utf-8", errors.ErrInvalidEncodedCustomID)
	}
	return string(out), nil
}

func pack(data []byte) string {
	out := make([]rune, 0, (len(data)*8+bitsPerRune-1)/bitsPerRune)
	var acc uint32
	var nbits uint
	for _, b := range data {
		acc = acc<<8 | uint32(b)
		nbits += 8
		for nbits >= bitsPerRune {
			nbits -= bitsPerRune
			out = append(out, rune(runeBase+(acc>>nbits)&runeMask))
			acc &= 1<<nbits - 1
		}
	}
	if nbits > 0 {
		out = append(out, rune(runeBase+(acc<<(bitsPerRune-nbits))&runeMask))
	}
	return string(out)
}

// unpack may yield one trailing zero byte of padding, which inflate never reads.
func unpack(packed string) ([]byte, error) {
	if packed == "" {
		return nil, fmt.Errorf("%w: empty", errors.ErrInvalidEncodedCustomID)
	}
	out := make([]byte, 0, len(packed))
	var acc uint32
	var nbits uint
	for _, r := range packed {
		if r < runeBase || r > runeBase+runeMask {
			return nil, fmt.Errorf("%w: rune %U outside the packing window", errors.ErrInvalidEncodedCustomID, r)
		}
		acc = acc<<bitsPerRune | uint32(r-runeBase)
		nbits += bitsPerRune
		for nbits >= 8 {
			nbits -= 8
			out = append(out, byte(acc>>nbits))
			acc &= 1<<nbits - 1
		}
	}
	return out, nil
}
