// Package idx hands out ULID identifiers for request ids and sandbox rows.
package idx

import (
	"crypto/rand"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

type ID string

// Zero is the empty ID. Only use it as a placeholder.
const Zero ID = ""

// ErrInvalid reports a malformed ULID string.
var ErrInvalid = errors.New("idx: invalid ulid")

var (
	sourceOnce sync.Once
	source     *monotonicSource
)

// monotonicSource serialises access to the monotonic entropy reader so
// IDs minted within the same millisecond still sort in creation order.
type monotonicSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func (m *monotonicSource) at(t time.Time) ID {
	m.mu.Lock()
	defer m.mu.Unlock()

	return ID(ulid.MustNew(ulid.Timestamp(t), m.entropy).String())
}

func initSource() {
	source = &monotonicSource{entropy: ulid.Monotonic(rand.Reader, 0)}
}

// New returns a ULID stamped with the current UTC time.
func New() ID {
	return NewAt(time.Now().UTC())
}

// NewAt returns a ULID stamped with t. Handy for tests and cursors.
func NewAt(t time.Time) ID {
	sourceOnce.Do(initSource)
	return source.at(t)
}

// Parse validates s as a canonical ULID.
func Parse(s string) (ID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Zero, ErrInvalid
	}

	if _, err := ulid.ParseStrict(s); err != nil {
		return Zero, ErrInvalid
	}

	return ID(s), nil
}

// MustParse parses or panics, for hard-coded IDs in tests.
func MustParse(s string) ID {
	id, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return id
}

func (id ID) IsZero() bool { return id == Zero }

func (id ID) String() string { return string(id) }

// Time extracts the embedded timestamp, or the zero time for invalid IDs.
func (id ID) Time() time.Time {
	u, err := ulid.ParseStrict(id.String())
	if err != nil {
		return time.Time{}
	}
	return ulid.Time(u.Time())
}

// Compare orders a and b lexically, which for ULIDs is creation order.
func Compare(a, b ID) int {
	return strings.Compare(a.String(), b.String())
}
