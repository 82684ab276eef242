package accountnumber

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mbhbank/account-service/shared/sentinel"
)

// DefaultPrefix is used when no bank prefix is configured.
const DefaultPrefix = "55555555"

// Generator turns values of a monotonic sequence into prefixed, zero-padded
// account numbers. It holds no state: uniqueness comes from the sequence.
type Generator struct {
	prefix string
	width  int
}

// NewGenerator validates the prefix once at startup. The prefix must be digits
// only, must not start with zero (it would vanish from the numeric value) and
// must leave room for at least one sequence digit.
func NewGenerator(prefix string) (*Generator, error) {
	if prefix == "" {
		return nil, fmt.Errorf("account number prefix is empty: %w", sentinel.ErrConfiguration)
	}
	if len(prefix) >= Length {
		return nil, fmt.Errorf("account number prefix %q must be shorter than %d digits: %w", prefix, Length, sentinel.ErrConfiguration)
	}
	if prefix[0] == '0' {
		return nil, fmt.Errorf("account number prefix %q must not start with 0: %w", prefix, sentinel.ErrConfiguration)
	}
	for i := 0; i < len(prefix); i++ {
		if prefix[i] < '0' || prefix[i] > '9' {
			return nil, fmt.Errorf("account number prefix %q must be numeric: %w", prefix, sentinel.ErrConfiguration)
		}
	}
	return &Generator{prefix: prefix, width: Length - len(prefix)}, nil
}

func (g *Generator) Prefix() string { return g.prefix }

// Format returns prefix ++ zero-padded(seq). A sequence value that does not fit
// into the remaining digits is a configuration error, never truncated.
func (g *Generator) Format(seq int64) (Number, error) {
	if seq < 0 {
		return Number{}, fmt.Errorf("negative sequence value %d: %w", seq, sentinel.ErrConfiguration)
	}
	digits := strconv.FormatInt(seq, 10)
	if len(digits) > g.width {
		return Number{}, fmt.Errorf("sequence value %d does not fit in %d digits after prefix %q: %w",
			seq, g.width, g.prefix, sentinel.ErrConfiguration)
	}
	return Parse(g.prefix + strings.Repeat("0", g.width-len(digits)) + digits)
}
