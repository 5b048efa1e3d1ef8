package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusGraph(t *testing.T) {
	allowed := map[Status][]Status{
		StatusNew:       {StatusPreparing, StatusReady, StatusCompleted, StatusCancelled},
		StatusPreparing: {StatusReady, StatusCompleted, StatusCancelled},
		StatusReady:     {StatusCompleted, StatusCancelled},
		StatusCompleted: {},
		StatusCancelled: {},
	}

	// Every (from, to) pair must agree with the graph; everything not
	// explicitly allowed is rejected.
	for _, from := range Statuses {
		for _, to := range Statuses {
			want := false
			for _, ok := range allowed[from] {
				if ok == to {
					want = true
				}
			}
			assert.Equalf(t, want, from.CanTransitionTo(to), "%s -> %s", from, to)
		}
	}
}

func TestTerminalStatusesHaveNoSuccessors(t *testing.T) {
	for _, terminal := range []Status{StatusCompleted, StatusCancelled} {
		require.True(t, terminal.Terminal())
		for _, to := range Statuses {
			assert.Falsef(t, terminal.CanTransitionTo(to), "%s -> %s must be rejected", terminal, to)
		}
	}
	for _, s := range []Status{StatusNew, StatusPreparing, StatusReady} {
		assert.False(t, s.Terminal())
	}
}

func TestForwardMovesAllowedBackwardRejected(t *testing.T) {
	assert.True(t, StatusNew.CanTransitionTo(StatusCompleted))
	assert.True(t, StatusPreparing.CanTransitionTo(StatusCompleted))
	assert.False(t, StatusPreparing.CanTransitionTo(StatusNew))
	assert.False(t, StatusReady.CanTransitionTo(StatusPreparing))
}

func TestCancelledReachableFromEveryNonTerminalState(t *testing.T) {
	for _, s := range []Status{StatusNew, StatusPreparing, StatusReady} {
		assert.Truef(t, s.CanTransitionTo(StatusCancelled), "%s -> Cancelled", s)
	}
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		got, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStatus("Burnt")
	assert.Error(t, err)
	_, err = ParseStatus("")
	assert.Error(t, err)
}
