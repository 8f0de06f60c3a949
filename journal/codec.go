package journal

import (
	"bytes"
	"compress/gzip"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"
)

// storeKey is the on-disk key for a record or the totals entry. Session ids
// make record keys long; hashing keeps every key the same width.
func storeKey(name string) []byte {
	sum := sha3.Sum224([]byte(name))
	key := make([]byte, hex.EncodedLen(len(sum)))
	hex.Encode(key, sum[:])
	return key
}

// encode stores v as gzipped JSON. Records repeat the same field names, so
// they shrink well.
func encode(v any) ([]byte, error) {
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := json.NewEncoder(zw).Encode(v); err != nil {
		return nil, fmt.Errorf("encode journal entry: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("compress journal entry: %w", err)
	}
	return buf.Bytes(), nil
}

// decode reverses encode into v.
func decode(data []byte, v any) error {
	zr, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("decompress journal entry: %w", err)
	}
	defer zr.Close()

	if err := json.NewDecoder(zr).Decode(v); err != nil {
		return fmt.Errorf("decode journal entry: %w", err)
	}
	return nil
}
