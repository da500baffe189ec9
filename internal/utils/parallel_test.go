package utils

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunParallel(t *testing.T) {
	var ran int32
	boom := errors.New("boom")

	errs := RunParallel(
		func() error { atomic.AddInt32(&ran, 1); return nil },
		func() error { atomic.AddInt32(&ran, 1); return boom },
		func() error { atomic.AddInt32(&ran, 1); return nil },
	)

	assert.Equal(t, int32(3), ran)
	assert.Equal(t, []error{nil, boom, nil}, errs)
	assert.Equal(t, boom, FirstError(errs))
}

func TestFirstErrorAllNil(t *testing.T) {
	assert.NoError(t, FirstError([]error{nil, nil}))
	assert.NoError(t, FirstError(nil))
}
