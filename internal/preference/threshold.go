package preference

import (
	"context"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ThresholdSource supplies the classification threshold.
type ThresholdSource interface {
	Threshold(ctx context.Context) float64
}

// FixedThreshold always returns the same value.
type FixedThreshold float64

func (f FixedThreshold) Threshold(context.Context) float64 {
	return float64(f)
}

// ThresholdFetcher loads the threshold from a remote service.
type ThresholdFetcher interface {
	FetchThreshold(ctx context.Context) (float64, error)
}

// RemoteThreshold asks a fetcher for the threshold and falls back to a fixed
// value when the fetch fails or returns a negative number.
type RemoteThreshold struct {
	fetcher  ThresholdFetcher
	fallback float64
	logger   zerolog.Logger
}

// NewRemoteThreshold creates a remote threshold source.
func NewRemoteThreshold(fetcher ThresholdFetcher, fallback float64) *RemoteThreshold {
	return &RemoteThreshold{
		fetcher:  fetcher,
		fallback: fallback,
		logger:   log.With().Str("component", "threshold").Logger(),
	}
}

func (r *RemoteThreshold) Threshold(ctx context.Context) float64 {
	v, err := r.fetcher.FetchThreshold(ctx)
	if err != nil {
		r.logger.Warn().Err(err).Float64("fallback", r.fallback).Msg("Failed to fetch preference threshold, using fallback")
		return r.fallback
	}
	if v < 0 {
		r.logger.Warn().Float64("threshold", v).Float64("fallback", r.fallback).Msg("Ignoring negative preference threshold")
		return r.fallback
	}
	return v
}

// NewThresholdSource builds the source named by the config. A nil fetcher
// always yields a fixed threshold.
func NewThresholdSource(cfg Config, fetcher ThresholdFetcher) ThresholdSource {
	if cfg.ThresholdSource == "remote" && fetcher != nil {
		return NewRemoteThreshold(fetcher, cfg.Threshold)
	}
	return FixedThreshold(cfg.Threshold)
}
