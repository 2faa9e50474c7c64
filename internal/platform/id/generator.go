package id

import (
	"os"
	"strings"

	"github.com/google/uuid"
)

// Generator creates opaque IDs, e.g. lock holder identities.
type Generator interface {
	NewID() (string, error)
}

type UUIDGenerator struct{}

func NewUUIDGenerator() *UUIDGenerator {
	return &UUIDGenerator{}
}

func (g *UUIDGenerator) NewID() (string, error) {
	v, err := uuid.NewRandom()
	if err != nil {
		return "", err
	}
	return v.String(), nil
}

// Holder names one sync run as "<hostname>/<uuid>" so a stuck lock can be
// traced back to the process that took it.
func Holder(g Generator) (string, error) {
	if g == nil {
		g = NewUUIDGenerator()
	}
	runID, err := g.NewID()
	if err != nil {
		return "", err
	}
	host, err := os.Hostname()
	if err != nil || strings.TrimSpace(host) == "" {
		host = "unknown-host"
	}
	return host + "/" + runID, nil
}
