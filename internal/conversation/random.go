package conversation

import (
	"math/rand"
	"strings"
	"sync"
	"time"
)

// RandSource is the randomness used for response selection and resource
// ids. *rand.Rand satisfies it but is not safe for concurrent use; use
// NewRandSource for a shared instance.
type RandSource interface {
	Intn(n int) int
}

type lockedRand struct {
	mu sync.Mutex
	r  *rand.Rand
}

func NewRandSource(seed int64) RandSource {
	return &lockedRand{r: rand.New(rand.NewSource(seed))}
}

func (l *lockedRand) Intn(n int) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.r.Intn(n)
}

func defaultRandSource() RandSource {
	return NewRandSource(time.Now().UnixNano())
}

const (
	idAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	idLength   = 8
)

// generateID returns prefix followed by idLength uppercase alphanumerics.
func generateID(prefix string, r RandSource) string {
	var b strings.Builder
	b.Grow(len(prefix) + idLength)
	b.WriteString(prefix)
	for i := 0; i < idLength; i++ {
		b.WriteByte(idAlphabet[r.Intn(len(idAlphabet))])
	}
	return b.String()
}

func pick(pool []string, r RandSource) string {
	return pool[r.Intn(len(pool))]
}
