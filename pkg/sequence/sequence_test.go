package sequence

import (
	"regexp"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClockGeneratorFormat(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	gen := NewClockGenerator("ADM", func() time.Time { return at })

	number := gen.Next()

	expected := "ADM-" + strconv.FormatInt(at.UnixMicro(), 36)
	assert.Equal(t, expected, number)
	assert.Regexp(t, regexp.MustCompile(`^ADM-[0-9a-z]+$`), number)
}

func TestClockGeneratorMonotonicOnFrozenClock(t *testing.T) {
	at := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	gen := NewClockGenerator("STU", func() time.Time { return at })

	seen := make(map[string]struct{})
	for i := 0; i < 100; i++ {
		number := gen.Next()
		_, dup := seen[number]
		require.False(t, dup, "duplicate number %s", number)
		seen[number] = struct{}{}
	}
}

func TestClockGeneratorDefaultsClock(t *testing.T) {
	gen := NewClockGenerator("ADM", nil)
	assert.NotEmpty(t, gen.Next())
}
