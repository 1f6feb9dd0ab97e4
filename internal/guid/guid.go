// Package guid generates note guids: base91-encoded random 64-bit numbers,
// matching the encoding the desktop application uses for sync identity.
package guid

import (
	"crypto/rand"
	"encoding/binary"
	"strings"
)

const (
	letters    = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"
	digits     = "0123456789"
	extraChars = "!#$%&()*+,-./:;<=>?@[]^_`{|}~"

	// All printable characters minus quotes, backslash and separators.
	table = letters + digits + extraChars
)

// New returns a base91-encoded random 64-bit guid.
func New() string {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		panic("guid: " + err.Error())
	}
	return Encode(binary.BigEndian.Uint64(buf[:]))
}

// Encode renders num in the base91 alphabet.
func Encode(num uint64) string {
	if num == 0 {
		return ""
	}
	base := uint64(len(table))
	var sb []byte
	for num > 0 {
		sb = append(sb, table[num%base])
		num /= base
	}
	// Digits were produced least-significant first.
	for i, j := 0, len(sb)-1; i < j; i, j = i+1, j-1 {
		sb[i], sb[j] = sb[j], sb[i]
	}
	return string(sb)
}

// Increment returns the guid one step after g, used to resolve guid conflicts
// between note types. The least-significant character is the last one.
func Increment(g string) string {
	if g == "" {
		return string(table[0])
	}
	chars := []byte(g)
	for i := len(chars) - 1; i >= 0; i-- {
		idx := strings.IndexByte(table, chars[i])
		if idx+1 < len(table) {
			chars[i] = table[idx+1]
			return string(chars)
		}
		// Overflow: reset and carry into the next position.
		chars[i] = table[0]
	}
	return string(table[0]) + string(chars)
}
