package sheetdb

import (
	"crypto/rand"
	"io"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time {
	return time.Now()
}

type IDGen interface {
	New() (string, error)
}

// ulidGen は同一ミリ秒内でも単調増加する ULID を出す。
type ulidGen struct {
	clock   Clock
	mu      sync.Mutex
	entropy io.Reader
}

func NewULIDGen(clock Clock) IDGen {
	if clock == nil {
		clock = realClock{}
	}
	return &ulidGen{clock: clock, entropy: ulid.Monotonic(rand.Reader, 0)}
}

func (g *ulidGen) New() (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	t := g.clock.Now().UTC()
	id, err := ulid.New(ulid.Timestamp(t), g.entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
