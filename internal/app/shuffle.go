package app

import (
	"math/rand"
	"sync"
	"time"
)

// Shuffler permutes question IDs in place.
type Shuffler func(ids []int64)

// NewRandomShuffler returns a uniform Fisher-Yates shuffler safe for concurrent use.
func NewRandomShuffler(seed int64) Shuffler {
	var mu sync.Mutex
	rnd := rand.New(rand.NewSource(seed))
	return func(ids []int64) {
		mu.Lock()
		defer mu.Unlock()
		rnd.Shuffle(len(ids), func(i, j int) {
			ids[i], ids[j] = ids[j], ids[i]
		})
	}
}

func defaultShuffler() Shuffler {
	return NewRandomShuffler(time.Now().UnixNano())
}

// KeepOrder leaves IDs as listed; useful for deterministic tests and demos.
func KeepOrder(_ []int64) {}
