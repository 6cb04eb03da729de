package intern

import (
	"fmt"
	"testing"
	"unsafe"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestInternReturnsSameBacking(t *testing.T) {
	p := NewPool()

	// Build two equal strings with distinct backing arrays.
	a := p.Intern("bg-" + "blue-500")
	b := p.Intern(string([]byte("bg-blue-500")))

	require.Equal(t, a, b)
	assert.Same(t, unsafe.StringData(a), unsafe.StringData(b),
		"equal content must share one canonical allocation")
}

func TestInternCountsDistinctContent(t *testing.T) {
	p := NewPool()

	p.Intern("a")
	p.Intern("b")
	p.Intern("a")

	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Contains("a"))
	assert.True(t, p.Contains("b"))
	assert.False(t, p.Contains("c"))
}

func TestInternBytes(t *testing.T) {
	p := NewPool()

	first := p.InternBytes([]byte("items-center"))
	second := p.InternBytes([]byte("items-center"))
	viaString := p.Intern("items-center")

	assert.Same(t, unsafe.StringData(first), unsafe.StringData(second))
	assert.Same(t, unsafe.StringData(first), unsafe.StringData(viaString))
	assert.Equal(t, 1, p.Len())
}

func TestInternBytesCopiesContent(t *testing.T) {
	p := NewPool()

	buf := []byte("flex")
	canonical := p.InternBytes(buf)

	// Mutating the input afterwards must not corrupt the pool.
	buf[0] = 'X'

	assert.Equal(t, "flex", canonical)
	assert.True(t, p.Contains("flex"))
	assert.False(t, p.Contains("Xlex"))
}

func TestInternEmptyString(t *testing.T) {
	p := NewPool()

	assert.Equal(t, "", p.Intern(""))
	assert.True(t, p.Contains(""))
	assert.Equal(t, 1, p.Len())
}

func TestInternConcurrent(t *testing.T) {
	p := NewPool()

	// Every worker interns the same small vocabulary; the pool must
	// converge on one canonical instance per word.
	words := make([]string, 32)
	for i := range words {
		words[i] = fmt.Sprintf("class-%d", i)
	}

	var g errgroup.Group
	for w := 0; w < 8; w++ {
		g.Go(func() error {
			for i := 0; i < 200; i++ {
				word := words[i%len(words)]
				got := p.Intern(string([]byte(word)))
				if got != word {
					return fmt.Errorf("interned %q, got %q", word, got)
				}
			}
			return nil
		})
	}

	require.NoError(t, g.Wait())
	assert.Equal(t, len(words), p.Len())
}
