package services

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/pkg/errors"
)

const TrackingPrefix = "ZS"

// TrackingGenerator produces tracking ids of the form ZS-YYYYMMDD-XXXXXX.
// Ids are not checked against existing ones; three random bytes per day
// make a collision unlikely.
type TrackingGenerator struct {
	prefix string
	now    func() time.Time
	random io.Reader
}

func NewTrackingGenerator() *TrackingGenerator {
	return &TrackingGenerator{prefix: TrackingPrefix, now: time.Now, random: rand.Reader}
}

func (g *TrackingGenerator) Generate() (string, error) {
	buf := make([]byte, 3)
	if _, err := io.ReadFull(g.random, buf); err != nil {
		return "", errors.Wrap(err, "failed to generate tracking id")
	}

	date := g.now().UTC().Format("20060102")
	return fmt.Sprintf("%s-%s-%s", g.prefix, date, strings.ToUpper(hex.EncodeToString(buf))), nil
}
