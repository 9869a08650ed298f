// Package namehash implements ENS label hashing and the recursive EIP-137 namehash.
// Hashes are legacy Keccak-256 (pre-NIST padding), not SHA3-256
package namehash

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// Size is the byte width of an identifier
const Size = 32

// ID is a 32 byte identifier in the registry's identifier space
type ID [Size]byte

// Zero is the root identifier, the namehash of the empty name
var Zero ID

// String renders the ID as 0x followed by 64 lowercase hex digits
func (id ID) String() string {
	var buf [2 + 2*Size]byte
	buf[0], buf[1] = '0', 'x'
	hex.Encode(buf[2:], id[:])
	return string(buf[:])
}

// Hex is an alias for String
func (id ID) Hex() string { return id.String() }

// Bytes returns a copy of the underlying bytes
func (id ID) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, id[:])
	return b
}

// IsZero reports whether id is the root identifier
func (id ID) IsZero() bool { return id == Zero }

// MarshalText renders the ID in its 0x hex form
func (id ID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }

// UnmarshalText parses the 0x hex form
func (id *ID) UnmarshalText(b []byte) error {
	v, err := Parse(string(b))
	if err != nil {
		return err
	}
	*id = v
	return nil
}

// Parse decodes a 0x prefixed (or bare) 64 digit hex string, case-insensitive
func Parse(s string) (ID, error) {
	var id ID
	h := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(h) != 2*Size {
		return id, fmt.Errorf("namehash: want %d hex digits, got %d", 2*Size, len(h))
	}
	if _, err := hex.Decode(id[:], []byte(h)); err != nil {
		return id, fmt.Errorf("namehash: %w", err)
	}
	return id, nil
}

// MustParse is Parse for constants and tests
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

// LabelHash hashes the raw bytes of a single label
func LabelHash(label string) ID {
	return keccak([]byte(label))
}

// NameHash computes the recursive namehash of a dotted name:
//
//	NameHash("")   = Zero
//	NameHash(name) = keccak(NameHash(remainder) ++ LabelHash(first))
//
// where first is the text before the first dot and remainder everything after it.
// The recursion is folded from the rightmost label inward. A trailing dot yields an
// empty remainder, which is the base case, so "a." hashes like "a". Other empty labels
// are hashed as they are
func NameHash(name string) ID {
	node := Zero
	if name == "" {
		return node
	}
	labels := strings.Split(name, ".")
	if len(labels) > 1 && labels[len(labels)-1] == "" {
		labels = labels[:len(labels)-1]
	}
	var buf [2 * Size]byte
	for i := len(labels) - 1; i >= 0; i-- {
		lh := LabelHash(labels[i])
		copy(buf[:Size], node[:])
		copy(buf[Size:], lh[:])
		node = keccak(buf[:])
	}
	return node
}

func keccak(b []byte) ID {
	var id ID
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(b)
	h.Sum(id[:0])
	return id
}
