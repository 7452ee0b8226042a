package ws

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_BuzzOrder(t *testing.T) {
	run := NewRun()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	t0 := time.Now()

	assert.Equal(t, BuzzResult{Kind: BuzzFirst}, run.Buzz(a, t0))

	rb := run.Buzz(b, t0.Add(120*time.Millisecond))
	assert.Equal(t, BuzzLater, rb.Kind)
	assert.Equal(t, 120*time.Millisecond, rb.Diff)

	rc := run.Buzz(c, t0.Add(300*time.Millisecond))
	assert.Equal(t, BuzzLater, rc.Kind)
	assert.GreaterOrEqual(t, rc.Diff, rb.Diff)

	assert.Equal(t, BuzzResult{Kind: BuzzAlready}, run.Buzz(a, t0.Add(time.Second)))
	assert.Equal(t, BuzzResult{Kind: BuzzAlready}, run.Buzz(c, t0.Add(time.Second)))
	assert.Equal(t, 3, run.Len())

	winner, ok := run.Winner()
	require.True(t, ok)
	assert.Equal(t, a, winner)
}

func TestRun_SelectNext(t *testing.T) {
	tests := []struct {
		name    string
		buzzers int
		want    [][2]int // (prev, next) indices per successful call
	}{
		{name: "nobody buzzed", buzzers: 0},
		{name: "single buzzer", buzzers: 1},
		{name: "two buzzers", buzzers: 2, want: [][2]int{{0, 1}}},
		{name: "four buzzers", buzzers: 4, want: [][2]int{{0, 1}, {1, 2}, {2, 3}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := NewRun()
			ids := make([]uuid.UUID, tt.buzzers)
			for i := range ids {
				ids[i] = uuid.New()
				run.Buzz(ids[i], time.Now())
			}

			for _, step := range tt.want {
				prev, next, ok := run.SelectNext()
				require.True(t, ok)
				assert.Equal(t, ids[step[0]], prev)
				assert.Equal(t, ids[step[1]], next)
			}

			// exhausted: further calls never wrap around to the winner
			for i := 0; i < 2; i++ {
				_, _, ok := run.SelectNext()
				assert.False(t, ok)
			}
		})
	}
}

func TestRun_SelectNextAfterLateBuzz(t *testing.T) {
	run := NewRun()
	a, b, c := uuid.New(), uuid.New(), uuid.New()
	run.Buzz(a, time.Now())
	run.Buzz(b, time.Now())

	_, next, ok := run.SelectNext()
	require.True(t, ok)
	assert.Equal(t, b, next)
	_, _, ok = run.SelectNext()
	assert.False(t, ok)

	run.Buzz(c, time.Now())
	prev, next, ok := run.SelectNext()
	require.True(t, ok)
	assert.Equal(t, b, prev)
	assert.Equal(t, c, next)
}

func TestRun_ClockSkewNeverNegative(t *testing.T) {
	run := NewRun()
	t0 := time.Now()
	run.Buzz(uuid.New(), t0)
	res := run.Buzz(uuid.New(), t0.Add(-time.Millisecond))
	assert.Equal(t, BuzzLater, res.Kind)
	assert.Zero(t, res.Diff)
}
