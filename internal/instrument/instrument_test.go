package instrument_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Andrej220/go-utils/pqueue/internal/instrument"
)

var sink [][]byte

func TestSamplerTracksPeak(t *testing.T) {
	p := instrument.Start(time.Millisecond)

	for range 64 {
		sink = append(sink, make([]byte, 64<<10))
	}
	time.Sleep(10 * time.Millisecond)
	sink = nil

	s := p.Stop()
	require.False(t, s.End.Before(s.Start))
	require.GreaterOrEqual(t, s.PeakHeapAlloc, s.HeapAlloc)
	require.GreaterOrEqual(t, s.PeakHeapAlloc, uint64(4<<20))
	require.True(t, strings.HasPrefix(s.String(), "time="))

	again := p.Stop()
	require.Equal(t, s.Start, again.Start)
}
