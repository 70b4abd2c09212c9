package id

import (
	"crypto/rand"
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"io"
	"time"
)

// Generator creates the public ids of scraped rows.
type Generator interface {
	NewID() (string, error)
}

// RandomGenerator emits 32 hex chars: a 48 bit millisecond timestamp followed
// by 80 random bits, so ids of one run sort by creation time.
type RandomGenerator struct {
	now     func() time.Time
	entropy io.Reader
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{now: time.Now, entropy: rand.Reader}
}

func (g *RandomGenerator) NewID() (string, error) {
	var buf [16]byte
	var ts [8]byte
	binary.BigEndian.PutUint64(ts[:], uint64(g.now().UnixMilli()))
	copy(buf[:6], ts[2:])
	if _, err := io.ReadFull(g.entropy, buf[6:]); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}

	return hex.EncodeToString(buf[:]), nil
}
