package remote

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	testCases := []struct {
		name   string
		err    error
		expect string
	}{
		{
			name:   "domain error",
			err:    NewDomainError("RATE_LIMITED", "too many refreshes"),
			expect: "RATE_LIMITED",
		},
		{
			name:   "wrapped domain error",
			err:    fmt.Errorf("failed to refresh item item-3: %w", NewDomainError("ITEM_LOCKED", "")),
			expect: "ITEM_LOCKED",
		},
		{
			name:   "unclassified error",
			err:    errors.New("connection reset by peer"),
			expect: ReasonGenericTimeout,
		},
		{
			name:   "deadline exceeded",
			err:    context.DeadlineExceeded,
			expect: ReasonGenericTimeout,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expect, Classify(tc.err))
		})
	}
}

func TestIsCancellation(t *testing.T) {
	assert.True(t, IsCancellation(context.Canceled))
	assert.True(t, IsCancellation(fmt.Errorf("sub-task stopped: %w", context.Canceled)))
	assert.False(t, IsCancellation(errors.New("boom")))
	assert.False(t, IsCancellation(NewDomainError("RATE_LIMITED", "")))
}

func TestDomainError_Error(t *testing.T) {
	assert.Equal(t, "remote: RATE_LIMITED", NewDomainError("RATE_LIMITED", "").Error())
	assert.Equal(t, "remote: RATE_LIMITED: throttled", NewDomainError("RATE_LIMITED", "throttled").Error())
}
