package qlearning

import "golang.org/x/exp/rand"

// ReplayBuffer keeps the most recent transitions, dropping the oldest once
// full.
type ReplayBuffer struct {
	buffer   []Transition
	maxSize  int
	position int
	size     int
	rng      *rand.Rand
}

func NewReplayBuffer(maxSize int, seed uint64) *ReplayBuffer {
	if maxSize < 1 {
		maxSize = 1
	}
	return &ReplayBuffer{
		buffer:  make([]Transition, 0, min(maxSize, 4096)),
		maxSize: maxSize,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Add stores t, overwriting the oldest transition when full.
func (b *ReplayBuffer) Add(t Transition) {
	if len(b.buffer) < b.maxSize {
		b.buffer = append(b.buffer, t)
	} else {
		b.buffer[b.position] = t
	}
	b.position = (b.position + 1) % b.maxSize
	if b.size < b.maxSize {
		b.size++
	}
}

func (b *ReplayBuffer) Len() int {
	return b.size
}

// Sample draws batchSize distinct transitions uniformly at random, or
// returns every transition when fewer are stored.
func (b *ReplayBuffer) Sample(batchSize int) []Transition {
	if batchSize >= b.size {
		out := make([]Transition, b.size)
		copy(out, b.buffer[:b.size])
		return out
	}

	idx := b.rng.Perm(b.size)[:batchSize]
	batch := make([]Transition, batchSize)
	for i, j := range idx {
		batch[i] = b.buffer[j]
	}
	return batch
}
