package umzug

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPIErrorShouldReport(t *testing.T) {
	tests := []struct {
		err  *APIError
		want bool
	}{
		{err: &APIError{Kind: KindInvalidURL}, want: false},
		{err: &APIError{Kind: KindInvalidAuthentication}, want: true},
		{err: &APIError{Kind: KindClientShutdown}, want: true},
		{err: InvalidStatus(500), want: false},
		{err: &APIError{Kind: KindOther}, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.err.Kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.ShouldReport())
		})
	}
}

func TestAPIErrorIs(t *testing.T) {
	cause := errors.New("dial tcp: connection refused")
	err := fmt.Errorf("loading boxes: %w", &APIError{Kind: KindOther, Err: cause})

	assert.ErrorIs(t, err, ErrOther)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidURL)

	status := InvalidStatus(404)
	assert.ErrorIs(t, status, ErrInvalidStatus)
	assert.ErrorIs(t, status, InvalidStatus(404))
	assert.NotErrorIs(t, status, InvalidStatus(500))
	assert.True(t, status.IsNotFound())
	assert.False(t, status.IsUnauthorized())
	assert.True(t, InvalidStatus(401).IsUnauthorized())
}

func TestAPIErrorMessage(t *testing.T) {
	assert.Equal(t, "umzug API error: invalid status 502", InvalidStatus(502).Error())
	assert.Equal(t, "umzug API error: other: boom", (&APIError{Err: errors.New("boom")}).Error())
}

func TestReporterFirstWins(t *testing.T) {
	r := &Reporter{}

	assert.False(t, r.Report(nil))
	assert.False(t, r.Report(InvalidStatus(500)))
	assert.Nil(t, r.Pending())

	first := &APIError{Kind: KindInvalidAuthentication}
	assert.True(t, r.Report(first))
	assert.False(t, r.Report(&APIError{Kind: KindOther}))
	assert.Same(t, first, r.Pending())

	assert.Same(t, first, r.Clear())
	assert.Nil(t, r.Pending())

	second := &APIError{Kind: KindClientShutdown}
	assert.True(t, r.Report(second))
	assert.Same(t, second, r.Pending())
}

func TestReporterConcurrent(t *testing.T) {
	r := &Reporter{}

	var wg sync.WaitGroup
	var stored sync.Map
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := &APIError{Kind: KindOther, Err: fmt.Errorf("error %d", i)}
			if r.Report(err) {
				stored.Store(err, true)
			}
		}()
	}
	wg.Wait()

	count := 0
	stored.Range(func(key, _ any) bool {
		count++
		assert.Same(t, key, r.Pending())
		return true
	})
	require.Equal(t, 1, count)
}
