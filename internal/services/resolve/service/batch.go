package service

import "enscheck/internal/core/namehash"

// pendingBatch is an insertion-ordered map from identifier to name.
// A repeated identifier overwrites the name in place and keeps its slot
type pendingBatch struct {
	index map[namehash.ID]int
	ids   []namehash.ID
	names []string
}

func newPendingBatch(capacity int) *pendingBatch {
	return &pendingBatch{
		index: make(map[namehash.ID]int, capacity),
		ids:   make([]namehash.ID, 0, capacity),
		names: make([]string, 0, capacity),
	}
}

// put inserts or overwrites. When a different name already held the identifier
// it is returned with collided=true
func (b *pendingBatch) put(id namehash.ID, name string) (prev string, collided bool) {
	if i, ok := b.index[id]; ok {
		prev = b.names[i]
		b.names[i] = name
		return prev, prev != name
	}
	b.index[id] = len(b.ids)
	b.ids = append(b.ids, id)
	b.names = append(b.names, name)
	return "", false
}

func (b *pendingBatch) len() int { return len(b.ids) }

// snapshot copies the contents so callers may keep them after reset
func (b *pendingBatch) snapshot() ([]namehash.ID, []string) {
	return append([]namehash.ID(nil), b.ids...), append([]string(nil), b.names...)
}

func (b *pendingBatch) reset() {
	clear(b.index)
	b.ids = b.ids[:0]
	b.names = b.names[:0]
}
