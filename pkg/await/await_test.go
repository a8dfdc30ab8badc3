package await_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tokenize-x/ibc-relayer/pkg/await"
)

func TestStateSucceedsOnceConditionHolds(t *testing.T) {
	t.Parallel()

	attempts := 0
	err := await.State(context.Background(), func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("not yet")
		}
		return nil
	}, await.WithRecheckDelay(time.Millisecond), await.WithTimeout(time.Second))

	require.NoError(t, err)
	require.Equal(t, 3, attempts)
}

func TestStateTimesOutWhenConditionNeverHolds(t *testing.T) {
	t.Parallel()

	err := await.State(context.Background(), func(context.Context) error {
		return errors.New("never")
	}, await.WithRecheckDelay(time.Millisecond), await.WithTimeout(20*time.Millisecond))

	require.Error(t, err)
}
