package discount

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticSource(t *testing.T) {
	want := Policy{Enabled: true, FreeCheapestAfterN: true}
	got, err := NewStaticSource(want).Policy(context.Background())

	require.NoError(t, err)
	assert.Equal(t, want, got)
}
