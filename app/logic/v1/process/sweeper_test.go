package process

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ContinueSweep(t *testing.T) {
	// full batch, everything finalized: keep paging
	assert.True(t, continueSweep(100, 100, 100))
	// full batch with partial failures still shrinks the stale set
	assert.True(t, continueSweep(1, 100, 100))
	// a full batch where nothing finalized would be re-fetched verbatim
	assert.False(t, continueSweep(0, 100, 100))
	// short batch means the stale set is exhausted
	assert.False(t, continueSweep(50, 50, 100))
	assert.False(t, continueSweep(0, 0, 100))
}
