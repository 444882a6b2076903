package level

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCommander records every sent line and serves canned probe replies in
// order, optionally aborting after a given cell count.
type fakeCommander struct {
	mu        sync.Mutex
	sent      []string
	replies   []float64
	replyErrs []error
	probeCall int

	cancelAfter int
	cancel      context.CancelFunc
}

func (f *fakeCommander) Send(ctx context.Context, line string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, line)
	return nil
}

func (f *fakeCommander) Probe(ctx context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.probeCall
	f.probeCall++

	if f.cancelAfter > 0 && i == f.cancelAfter && f.cancel != nil {
		f.cancel()
	}

	if i < len(f.replyErrs) && f.replyErrs[i] != nil {
		return 0, f.replyErrs[i]
	}
	if i < len(f.replies) {
		return f.replies[i], nil
	}
	return 0, fmt.Errorf("fakeCommander: no reply configured for call %d", i)
}

func TestProbe_SerpentineOrder(t *testing.T) {
	fc := &fakeCommander{replies: []float64{
		0, 1, // column 0: j=0, j=1 (ascending)
		2, 3, // column 1: j=1, j=0 (descending) -> stored at (1,1) then (1,0)
	}}

	s, err := Probe(context.Background(), fc, Request{
		Algorithm:  Linear,
		Left:       0, Right: 10,
		Bottom: 0, Top: 10,
		Nx: 2, Ny: 2,
		StartZ: 5, TravelFeed: 3000, ZSafe: 2,
	}, nil)
	require.NoError(t, err)

	g := s.Grid()
	// Column 0 ascending: cell (0,0) then (0,1).
	assert.Equal(t, 0.0, g.At(0, 0))
	assert.Equal(t, 1.0, g.At(0, 1))
	// Column 1 descending: visits j=1 first then j=0.
	assert.Equal(t, 2.0, g.At(1, 1))
	assert.Equal(t, 3.0, g.At(1, 0))
}

func TestProbe_SingleUsesOnlyFirstCell(t *testing.T) {
	fc := &fakeCommander{replies: []float64{7, 8, 9, 10}}

	s, err := Probe(context.Background(), fc, Request{
		Algorithm: Single,
		Left: 0, Right: 10, Bottom: 0, Top: 10,
		Nx: 2, Ny: 2,
		StartZ: 5, TravelFeed: 1000, ZSafe: 1,
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, Single, s.Algorithm())
	z, exact := s.Interpolate(12345, -999)
	assert.True(t, exact)
	assert.Equal(t, 7.0, z)
}

// S6: cancellation during a 5x5 probe at cell (2,3) - no interpolator is
// created.
func TestProbe_S6_AbortDiscardsGrid(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	replies := make([]float64, 25)
	for i := range replies {
		replies[i] = float64(i)
	}
	fc := &fakeCommander{replies: replies, cancelAfter: 13, cancel: cancel}

	s, err := Probe(ctx, fc, Request{
		Algorithm: Linear,
		Left: 0, Right: 100, Bottom: 0, Top: 100,
		Nx: 5, Ny: 5,
		StartZ: 5, TravelFeed: 3000, ZSafe: 2,
	}, nil)

	require.Nil(t, s)
	require.ErrorIs(t, err, ErrAborted)
}

func TestProbe_UnparseableReplyIsFatal(t *testing.T) {
	fc := &fakeCommander{
		replyErrs: []error{errors.New("no Z: token in reply")},
	}

	s, err := Probe(context.Background(), fc, Request{
		Algorithm: Single,
		Left: 0, Right: 10, Bottom: 0, Top: 10,
		Nx: 1, Ny: 1,
		StartZ: 5, TravelFeed: 1000, ZSafe: 1,
	}, nil)

	require.Nil(t, s)
	var lerr *LevelingError
	require.ErrorAs(t, err, &lerr)
}

func TestProbe_ProgressCallback(t *testing.T) {
	fc := &fakeCommander{replies: []float64{1, 2, 3, 4}}

	var calls []int
	_, err := Probe(context.Background(), fc, Request{
		Algorithm: Linear,
		Left: 0, Right: 10, Bottom: 0, Top: 10,
		Nx: 2, Ny: 2,
		StartZ: 5, TravelFeed: 1000, ZSafe: 1,
	}, func(done, total int) {
		calls = append(calls, done)
		assert.Equal(t, 4, total)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3, 4}, calls)
}
