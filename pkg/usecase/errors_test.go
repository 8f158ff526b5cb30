package usecase_test

import (
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/nudgebot/pkg/usecase"
)

func TestErrors_SentinelErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"ErrEmptyPayload", usecase.ErrEmptyPayload},
		{"ErrMalformedPayload", usecase.ErrMalformedPayload},
		{"ErrMissingUser", usecase.ErrMissingUser},
		{"ErrConfiguration", usecase.ErrConfiguration},
		{"ErrDownstreamCall", usecase.ErrDownstreamCall},
		{"ErrPersistence", usecase.ErrPersistence},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gt.Value(t, tt.err).NotNil()
		})
	}
}

func TestErrors_ErrorsAreDistinct(t *testing.T) {
	gt.Bool(t, errors.Is(usecase.ErrEmptyPayload, usecase.ErrMalformedPayload)).False()
	gt.Bool(t, errors.Is(usecase.ErrConfiguration, usecase.ErrDownstreamCall)).False()
	gt.Bool(t, errors.Is(usecase.ErrMissingUser, usecase.ErrPersistence)).False()
}
