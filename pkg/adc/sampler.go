package adc

import (
	"context"
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidSampleCount = errors.New("adc: sample count must be positive")
	ErrConversionTimeout  = errors.New("adc: conversion timeout")
)

// TimeoutError reports a conversion that never left the busy state.
type TimeoutError struct {
	Channel Channel
	Polls   int
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("adc: conversion on %s channel still busy after %d polls", e.Channel, e.Polls)
}

func (e *TimeoutError) Unwrap() error {
	return ErrConversionTimeout
}

// Sampler averages consecutive conversions to reduce noise in the measurements.
type Sampler struct {
	source  ConversionSource
	sleeper Sleeper
	settle  time.Duration

	// MaxPolls bounds the busy polls per conversion. Zero waits forever,
	// which is what the bare hardware does when a conversion never completes.
	MaxPolls int
}

// NewSampler creates a sampler that waits settle between conversions.
func NewSampler(source ConversionSource, sleeper Sleeper, settle time.Duration, maxPolls int) *Sampler {
	if sleeper == nil {
		sleeper = RealTime
	}
	return &Sampler{
		source:   source,
		sleeper:  sleeper,
		settle:   settle,
		MaxPolls: maxPolls,
	}
}

// AcquireAveraged runs sampleCount conversions on ch and returns their mean.
func (s *Sampler) AcquireAveraged(ctx context.Context, ch Channel, sampleCount int) (float32, error) {
	if sampleCount <= 0 {
		return 0, ErrInvalidSampleCount
	}

	var sum uint32
	for i := 0; i < sampleCount; i++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		raw, err := s.convert(ch)
		if err != nil {
			return 0, err
		}
		sum += uint32(raw & RawMask)

		s.sleeper.Sleep(s.settle)
	}

	return float32(sum) / float32(sampleCount), nil
}

// convert performs a single blocking conversion.
func (s *Sampler) convert(ch Channel) (uint16, error) {
	s.source.StartConversion(ch)
	for polls := 0; s.source.IsBusy(); polls++ {
		if s.MaxPolls > 0 && polls >= s.MaxPolls {
			return 0, &TimeoutError{Channel: ch, Polls: polls}
		}
	}
	return s.source.ReadRawValue(), nil
}
