package order

import (
	"fmt"
	"time"
)

// DefaultNumberPrefix is prepended to generated order numbers.
const DefaultNumberPrefix = "RCS"

// NumberGenerator produces order numbers of the form PREFIX-yyyyMMddHHmmssSSS.
// Numbers sort by creation time. Two numbers generated in the same
// millisecond collide; the repository's unique index rejects the second.
type NumberGenerator struct {
	prefix string
	now    func() time.Time
}

// NewNumberGenerator creates a generator with the given prefix, falling
// back to DefaultNumberPrefix when empty.
func NewNumberGenerator(prefix string) *NumberGenerator {
	if prefix == "" {
		prefix = DefaultNumberPrefix
	}
	return &NumberGenerator{prefix: prefix, now: time.Now}
}

// Next returns a new order number for the current time in UTC.
func (g *NumberGenerator) Next() string {
	t := g.now().UTC()
	return fmt.Sprintf("%s-%s%03d", g.prefix, t.Format("20060102150405"), t.Nanosecond()/int(time.Millisecond))
}
