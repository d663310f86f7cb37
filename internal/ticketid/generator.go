package ticketid

import (
	"fmt"
	"math/rand"
	"regexp"
	"strings"
	"sync"
	"time"
)

// Generator produces human-readable ticket numbers of the form
// <PREFIX><YY>-<NNNN>, e.g. SG25-1234. Generation is a pure function
// of the clock and a random draw; it does NOT guarantee global
// uniqueness. Callers must pair generation with the store's unique
// constraint and regenerate on a duplicate-key error.
//
// The format is load-bearing: the callback router and the notification
// templates parse ticket numbers back out of channel payloads, so it
// must stay stable.
type Generator struct {
	prefix string
	mu     sync.Mutex
	rng    *rand.Rand
	now    func() time.Time
}

// New builds a generator with the given alphabetic prefix.
func New(prefix string) *Generator {
	return &Generator{
		prefix: strings.ToUpper(strings.TrimSpace(prefix)),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		now:    time.Now,
	}
}

// Generate returns a fresh candidate ticket number.
func (g *Generator) Generate() string {
	g.mu.Lock()
	suffix := 1000 + g.rng.Intn(9000)
	g.mu.Unlock()

	year := g.now().Year() % 100
	return fmt.Sprintf("%s%02d-%d", g.prefix, year, suffix)
}

// Pattern returns a regexp matching every number this generator can
// emit (and the historical 3-digit form).
func (g *Generator) Pattern() *regexp.Regexp {
	return regexp.MustCompile(fmt.Sprintf(`^%s\d{2}-\d{3,4}$`, regexp.QuoteMeta(g.prefix)))
}

// Normalize canonicalizes a ticket number supplied by an external
// channel. Matching is case-insensitive everywhere in the system.
func Normalize(raw string) string {
	return strings.ToUpper(strings.TrimSpace(raw))
}
