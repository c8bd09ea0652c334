package pricing

import (
	"crypto/rand"
	"encoding/binary"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

const (
	PaymentReferencePrefix = "PAY"
	PayoutReferencePrefix  = "PO"

	_referenceTimeLayout = "20060102150405"
)

// ReferenceGenerator produces human-readable reference numbers of the form
// PREFIX-20060102150405-1A2B3C4D. The trailing token is an atomic counter
// seeded from crypto/rand: concurrent calls within one process never collide,
// and independent processes start from independent offsets.
type ReferenceGenerator struct {
	prefix string
	seq    atomic.Uint64
}

func NewReferenceGenerator(prefix string) (*ReferenceGenerator, error) {
	if prefix == "" {
		return nil, errors.New("pricing.NewReferenceGenerator: prefix must not be empty")
	}

	var seed [8]byte
	if _, err := rand.Read(seed[:]); err != nil {
		return nil, fmt.Errorf("pricing.NewReferenceGenerator: seed counter: %w", err)
	}

	g := &ReferenceGenerator{prefix: prefix}
	g.seq.Store(binary.BigEndian.Uint64(seed[:]))
	return g, nil
}

func (g *ReferenceGenerator) Next() string {
	n := g.seq.Add(1)
	return fmt.Sprintf("%s-%s-%08X",
		g.prefix,
		time.Now().UTC().Format(_referenceTimeLayout),
		uint32(n),
	)
}
