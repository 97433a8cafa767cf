package coarsetime

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNowTracksWallClock(t *testing.T) {
	assert.WithinDuration(t, time.Now(), Now(), 2*tick)

	before := Now()
	time.Sleep(3 * tick)
	assert.True(t, Now().After(before))
}
