package note

import (
	"crypto/md5"
	"encoding/base64"
	"encoding/hex"
	"math/rand/v2"
	"time"
)

const idAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// Fingerprint returns the MD5 hex digest of buf, the fingerprint used
// throughout the format for style keys and header checksums.
func Fingerprint(buf []byte) string {
	sum := md5.Sum(buf)
	return hex.EncodeToString(sum[:])
}

// NewFileID generates a file identifier: 'F' + 17-digit timestamp
// (date-time to millisecond) + 15 random alphanumerics.
func NewFileID() string {
	return newID('F')
}

// NewPageID generates a page identifier in the same grammar with a 'P'
// prefix.
func NewPageID() string {
	return newID('P')
}

func newID(prefix byte) string {
	now := time.Now()
	b := make([]byte, 0, 33)
	b = append(b, prefix)
	b = now.AppendFormat(b, "20060102150405.000")
	// the device grammar has no separator between seconds and milliseconds
	b = append(b[:15], b[16:]...)
	for range 15 {
		b = append(b, idAlphabet[rand.IntN(len(idAlphabet))])
	}
	return string(b)
}

// EncodeStyleListEntry base64-encodes a full per-page style name for
// the PDFSTYLELIST block.
func EncodeStyleListEntry(styleName string) string {
	return base64.StdEncoding.EncodeToString([]byte(styleName))
}
