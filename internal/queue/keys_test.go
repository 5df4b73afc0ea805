package queue

import (
	"bytes"
	"testing"
)

func TestQueuePrefixesArePrefixFree(t *testing.T) {
	names := []string{"a", "ab", "a\x00", "a\x00b", "a\x00\x01", "a\xff", "b", "\x00"}
	for _, x := range names {
		for _, y := range names {
			if x == y {
				continue
			}
			if bytes.HasPrefix(queuePrefix(y), queuePrefix(x)) {
				t.Fatalf("prefix of %q is a prefix of %q", x, y)
			}
		}
	}
}

func TestItemKeysSortBySequence(t *testing.T) {
	seqs := []uint64{0, 1, 255, 256, 1 << 32, ^uint64(0) - 1}
	for i := 1; i < len(seqs); i++ {
		if bytes.Compare(itemKey("q", seqs[i-1]), itemKey("q", seqs[i])) >= 0 {
			t.Fatalf("item %d does not sort before %d", seqs[i-1], seqs[i])
		}
	}
}

func TestItemBoundsExcludeMetadata(t *testing.T) {
	lo, hi := itemBounds("q", 0, 0)
	for _, k := range [][]byte{positionKey("q"), maxQueueKey("q")} {
		if bytes.Compare(k, lo) >= 0 && bytes.Compare(k, hi) < 0 {
			t.Fatalf("metadata key %q inside item range", k)
		}
	}
	if k := itemKey("q", ^uint64(0)); bytes.Compare(k, hi) >= 0 {
		t.Fatalf("max item key outside open-ended range")
	}
	lo, hi = itemBounds("q", 3, 5)
	if !bytes.Equal(lo, itemKey("q", 3)) || !bytes.Equal(hi, itemKey("q", 5)) {
		t.Fatalf("bounded range mismatch")
	}
}

func TestParseKey(t *testing.T) {
	for _, name := range []string{"orders", "a\x00b", "\x00\x00", "x\x01y"} {
		got, rest, ok := parseKey(itemKey(name, 9))
		if !ok || got != name {
			t.Fatalf("parseKey(%q) = %q, %v", name, got, ok)
		}
		if rest[0] != tagItem || seqFromItemKey(rest) != 9 {
			t.Fatalf("unexpected remainder %x", rest)
		}
	}
	if _, _, ok := parseKey([]byte("other/key")); ok {
		t.Fatalf("foreign key parsed")
	}
	if _, _, ok := parseKey([]byte("q/abc")); ok {
		t.Fatalf("unterminated key parsed")
	}
}
