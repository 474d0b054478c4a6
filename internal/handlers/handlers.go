// Package handlers implements the radar HTTP API.
package handlers

import (
	"context"
	"fmt"

	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
	"github.com/storeradar/radar-service/internal/session"
)

// RegionSource lists the regions offered as filters.
type RegionSource interface {
	Regions(ctx context.Context) ([]recommend.Region, error)
}

// ErrInvalidRequest describes a request that failed validation beyond binding.
type ErrInvalidRequest struct {
	Field  string
	Reason string
}

func (e ErrInvalidRequest) Error() string {
	return fmt.Sprintf("invalid request %s: %s", e.Field, e.Reason)
}

// Global dependencies (initialized by the application)
var (
	sessions     *session.Manager
	recorder     *preference.Recorder
	regionSource RegionSource
)

// Init sets the dependencies used by the handlers.
// This should be called during application startup.
func Init(manager *session.Manager, rec *preference.Recorder, regions RegionSource) {
	sessions = manager
	recorder = rec
	regionSource = regions
}
