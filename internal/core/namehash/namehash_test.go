package namehash

import (
	"strings"
	"testing"

	kit "enscheck/internal/platform/testkit"

	"golang.org/x/crypto/sha3"
)

func TestKnownVectors(t *testing.T) {
	cases := []struct {
		name string
		got  ID
		want string
	}{
		{"namehash empty", NameHash(""), "0x0000000000000000000000000000000000000000000000000000000000000000"},
		{"namehash eth", NameHash("eth"), "0x93cdeb708b7545dc668eb9280176169d1c33cfd8ed6f04690a0bcc88a93fc4ae"},
		{"namehash foo.eth", NameHash("foo.eth"), "0xde9b09fd7c5f901e23a3f19fecc54828e9c848539801e86591bd9801b019f84f"},
		{"labelhash eth", LabelHash("eth"), "0x4f5b812789fc606be1b3b16908db13fc7a9adf7ca72641f84d75b47069d3d7f0"},
		{"labelhash foo", LabelHash("foo"), "0x41b1a0649752af1b28b3dc29a1556eee781e4a4c3a1f7f53f90fa834de098c4d"},
	}
	for _, c := range cases {
		if c.got.String() != c.want {
			t.Fatalf("%s = %s, want %s", c.name, c.got, c.want)
		}
	}
}

func TestNameHash_SingleLabelIsHashOfZeroAndLabelHash(t *testing.T) {
	for _, label := range []string{"eth", "foo", "vitalik", "a", "xn--mgbh0fb"} {
		lh := LabelHash(label)
		buf := append(Zero.Bytes(), lh[:]...)
		h := sha3.NewLegacyKeccak256()
		_, _ = h.Write(buf)
		var want ID
		copy(want[:], h.Sum(nil))

		if got := NameHash(label); got != want {
			t.Fatalf("NameHash(%q) = %s, want %s", label, got, want)
		}
	}
}

func TestNameHash_RecursiveOrder(t *testing.T) {
	parent := NameHash("eth")
	lh := LabelHash("foo")
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(parent[:])
	_, _ = h.Write(lh[:])
	var want ID
	copy(want[:], h.Sum(nil))

	if got := NameHash("foo.eth"); got != want {
		t.Fatalf("NameHash(foo.eth) = %s, want %s", got, want)
	}

	// swapping the operands must give a different node
	h.Reset()
	_, _ = h.Write(lh[:])
	_, _ = h.Write(parent[:])
	var swapped ID
	copy(swapped[:], h.Sum(nil))
	if swapped == want {
		t.Fatalf("concatenation order should matter")
	}
}

func TestNameHash_Deterministic(t *testing.T) {
	for _, n := range []string{"", "eth", "foo.eth", "a.b.c.d.eth", "ünï.eth"} {
		if NameHash(n) != NameHash(n) {
			t.Fatalf("NameHash(%q) not deterministic", n)
		}
		if LabelHash(n) != LabelHash(n) {
			t.Fatalf("LabelHash(%q) not deterministic", n)
		}
	}
}

func TestNameHash_EmptyLabels(t *testing.T) {
	// trailing dot leaves an empty remainder which is the base case
	if NameHash("a.") != NameHash("a") {
		t.Fatalf("NameHash(a.) should equal NameHash(a)")
	}
	// leading dot hashes an empty first label on top of the remainder
	lead := NameHash(".a")
	if lead == NameHash("a") {
		t.Fatalf("NameHash(.a) should differ from NameHash(a)")
	}
	parent := NameHash("a")
	empty := LabelHash("")
	h := sha3.NewLegacyKeccak256()
	_, _ = h.Write(parent[:])
	_, _ = h.Write(empty[:])
	var want ID
	copy(want[:], h.Sum(nil))
	if lead != want {
		t.Fatalf("NameHash(.a) = %s, want %s", lead, want)
	}
}

func TestNameHash_CaseSensitive(t *testing.T) {
	if NameHash("ETH") == NameHash("eth") {
		t.Fatalf("hash must not normalize case")
	}
	if LabelHash(" eth") == LabelHash("eth") {
		t.Fatalf("hash must not trim whitespace")
	}
}

func TestID_StringFormat(t *testing.T) {
	s := LabelHash("eth").String()
	if !strings.HasPrefix(s, "0x") || len(s) != 66 {
		t.Fatalf("unexpected rendering %q", s)
	}
	if s != strings.ToLower(s) {
		t.Fatalf("rendering must be lowercase: %q", s)
	}
	if LabelHash("eth").Hex() != s {
		t.Fatalf("Hex and String disagree")
	}
	if !Zero.IsZero() || LabelHash("eth").IsZero() {
		t.Fatalf("IsZero misreports")
	}
}

func TestParse(t *testing.T) {
	want := LabelHash("foo")
	for _, in := range []string{
		want.String(),
		strings.ToUpper(want.String()[2:]),
		"0X" + want.String()[2:],
	} {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %s, want %s", in, got, want)
		}
	}

	for _, bad := range []string{"", "0x", "0x1234", "0x" + strings.Repeat("zz", 32)} {
		if _, err := Parse(bad); err == nil {
			t.Fatalf("Parse(%q) should fail", bad)
		}
	}
	kit.MustPanic(t, func() { MustParse("nope") })
}

func TestID_TextRoundTrip(t *testing.T) {
	id := NameHash("foo.eth")
	b, err := id.MarshalText()
	if err != nil {
		t.Fatalf("MarshalText: %v", err)
	}
	var back ID
	if err := back.UnmarshalText(b); err != nil {
		t.Fatalf("UnmarshalText: %v", err)
	}
	if back != id {
		t.Fatalf("round trip mismatch: %s vs %s", back, id)
	}
	if err := back.UnmarshalText([]byte("0xdead")); err == nil {
		t.Fatalf("expected error for short input")
	}
}

func TestBytesIsCopy(t *testing.T) {
	id := LabelHash("eth")
	b := id.Bytes()
	b[0] ^= 0xff
	if id.Bytes()[0] == b[0] {
		t.Fatalf("Bytes must return a copy")
	}
}
