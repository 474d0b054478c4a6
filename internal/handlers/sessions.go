package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/storeradar/radar-service/internal/engine"
	"github.com/storeradar/radar-service/internal/export"
	"github.com/storeradar/radar-service/internal/markers"
	"github.com/storeradar/radar-service/internal/middleware"
	"github.com/storeradar/radar-service/internal/recommend"
	"github.com/storeradar/radar-service/internal/session"
)

// PositionRequest is a user position report.
type PositionRequest struct {
	Lat      *float64 `json:"lat" binding:"required,min=-90,max=90" jsonschema:"required"`
	Lng      *float64 `json:"lng" binding:"required,min=-180,max=180" jsonschema:"required"`
	Accuracy float64  `json:"accuracy" binding:"min=0"`
}

func (p PositionRequest) toPosition() recommend.UserPosition {
	return recommend.UserPosition{Lat: *p.Lat, Lng: *p.Lng, Accuracy: p.Accuracy}
}

// CreateSessionRequest opens a map session.
type CreateSessionRequest struct {
	Position *PositionRequest `json:"position,omitempty"`
}

// SessionResponse describes a created session.
type SessionResponse struct {
	ID            string    `json:"id" jsonschema:"required"`
	CreatedAt     time.Time `json:"created_at" jsonschema:"required"`
	Authenticated bool      `json:"authenticated"`
}

// EventRequest is a user interaction on the map.
type EventRequest struct {
	Type       string   `json:"type" binding:"required,oneof=region distance product history" jsonschema:"required,enum=region,enum=distance,enum=product,enum=history"`
	RegionCode string   `json:"region_code,omitempty"`
	DistanceKm *float64 `json:"distance_km,omitempty"`
	Product    string   `json:"product,omitempty"`
	StoreID    string   `json:"store_id,omitempty"`
}

// ToEvent converts the request into an engine event.
func (r EventRequest) ToEvent() (engine.Event, error) {
	switch r.Type {
	case "region":
		return engine.RegionChanged{RegionCode: r.RegionCode}, nil
	case "distance":
		if r.DistanceKm == nil {
			return nil, ErrInvalidRequest{Field: "distance_km", Reason: "required for distance events"}
		}
		if *r.DistanceKm <= 0 {
			return nil, ErrInvalidRequest{Field: "distance_km", Reason: "must be positive"}
		}
		return engine.DistanceChanged{DistanceKm: *r.DistanceKm}, nil
	case "product":
		// An empty product clears the selection and returns the map to plain markers.
		return engine.ProductSelected{Product: r.Product}, nil
	case "history":
		if r.StoreID == "" {
			return nil, ErrInvalidRequest{Field: "store_id", Reason: "required for history events"}
		}
		return engine.HistoryHighlightRequested{StoreID: r.StoreID}, nil
	default:
		return nil, ErrInvalidRequest{Field: "type", Reason: "unknown event type"}
	}
}

// MarkersResponse is what the client renders.
type MarkersResponse struct {
	Mode    markers.Mode        `json:"mode" jsonschema:"required"`
	Surface markers.Snapshot    `json:"surface" jsonschema:"required"`
	Result  *engine.CycleResult `json:"result,omitempty"`
}

// RecomputeResponse carries a synchronous cycle's result. Warning is set when
// some markers could not be placed.
type RecomputeResponse struct {
	Result  *engine.CycleResult `json:"result"`
	Warning string              `json:"warning,omitempty"`
}

// CreateSession opens a new map session
// @Summary Create session
// @Description Opens a map session with its own recompute engine. A bearer token makes the session use the caller's learned weights.
// @Tags sessions
// @Accept json
// @Produce json
// @Param request body CreateSessionRequest false "Initial position"
// @Success 201 {object} SessionResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 503 {object} map[string]string "Too many sessions"
// @Router /v1/sessions [post]
func CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	var pos *recommend.UserPosition
	if req.Position != nil {
		p := req.Position.toPosition()
		pos = &p
	}

	id := middleware.GetIdentity(c)
	s, err := sessions.Create(c.Request.Context(), id, pos)
	if err != nil {
		if errors.Is(err, session.ErrTooManySessions) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create session"})
		return
	}

	c.JSON(http.StatusCreated, SessionResponse{
		ID:            s.ID,
		CreatedAt:     s.CreatedAt,
		Authenticated: id.Authenticated(),
	})
}

// DeleteSession closes a session
// @Summary Delete session
// @Tags sessions
// @Param id path string true "Session ID"
// @Success 204
// @Failure 404 {object} map[string]string "Session not found"
// @Router /v1/sessions/{id} [delete]
func DeleteSession(c *gin.Context) {
	if !sessions.Delete(c.Param("id")) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return
	}
	c.Status(http.StatusNoContent)
}

// UpdatePosition records the user's position and moves the user marker
// @Summary Update user position
// @Description Stores the latest position. The user marker moves immediately; the ranking uses it from the next cycle.
// @Tags sessions
// @Accept json
// @Param id path string true "Session ID"
// @Param request body PositionRequest true "Position"
// @Success 204
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Router /v1/sessions/{id}/position [put]
func UpdatePosition(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	var req PositionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s.Engine.State().SetPosition(req.toPosition())
	s.Engine.RefreshUserLocation()
	c.Status(http.StatusNoContent)
}

// PostEvent queues a user interaction
// @Summary Send map event
// @Description Queues a region, distance, product or history event. Each event triggers a recompute; the latest one wins.
// @Tags sessions
// @Accept json
// @Produce json
// @Param id path string true "Session ID"
// @Param request body EventRequest true "Event"
// @Success 202 {object} map[string]string
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 410 {object} map[string]string "Session stopped"
// @Router /v1/sessions/{id}/events [post]
func PostEvent(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	var req EventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ev, err := req.ToEvent()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := s.Engine.Dispatch(c.Request.Context(), ev); err != nil {
		if errors.Is(err, engine.ErrStopped) {
			c.JSON(http.StatusGone, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}

// Recompute runs a cycle synchronously
// @Summary Recompute markers
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} RecomputeResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Failure 409 {object} map[string]string "Superseded by a newer cycle"
// @Failure 502 {object} map[string]string "Catalog unavailable"
// @Router /v1/sessions/{id}/recompute [post]
func Recompute(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}

	res, err := s.Engine.Recompute(c.Request.Context())
	var fetchErr *engine.DataFetchError
	switch {
	case err == nil:
		c.JSON(http.StatusOK, RecomputeResponse{Result: res})
	case res != nil:
		c.JSON(http.StatusOK, RecomputeResponse{Result: res, Warning: err.Error()})
	case errors.Is(err, engine.ErrStaleCycle):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &fetchErr):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// GetMarkers returns the rendered marker set
// @Summary Get markers
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Success 200 {object} MarkersResponse
// @Failure 404 {object} map[string]string "Session not found"
// @Router /v1/sessions/{id}/markers [get]
func GetMarkers(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, MarkersResponse{
		Mode:    s.Engine.Reconciler().Mode(),
		Surface: s.Surface.Snapshot(),
		Result:  s.Engine.Result(),
	})
}

// GetStoreDetail returns what tapping a marker opens
// @Summary Get store detail
// @Tags sessions
// @Produce json
// @Param id path string true "Session ID"
// @Param storeId path string true "Store ID"
// @Success 200 {object} markers.StoreDetail
// @Failure 404 {object} map[string]string "Not found"
// @Router /v1/sessions/{id}/stores/{storeId} [get]
func GetStoreDetail(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	detail, ok := s.Engine.Reconciler().Detail(c.Param("storeId"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store is not on the map"})
		return
	}
	c.JSON(http.StatusOK, detail)
}

// ExportRanking downloads the current ranking as a spreadsheet
// @Summary Export ranking
// @Tags sessions
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param id path string true "Session ID"
// @Success 200 {file} file
// @Failure 404 {object} map[string]string "Not found"
// @Router /v1/sessions/{id}/ranking.xlsx [get]
func ExportRanking(c *gin.Context) {
	s, ok := lookupSession(c)
	if !ok {
		return
	}
	res := s.Engine.Result()
	if res == nil || res.Mode != markers.ModeRanked {
		c.JSON(http.StatusNotFound, gin.H{"error": "No ranking available"})
		return
	}

	product := s.Engine.State().Snapshot().Product
	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "ranking.xlsx"))
	c.Status(http.StatusOK)
	if err := export.WriteRanking(c.Writer, product, res.Ranked); err != nil {
		_ = c.Error(err)
	}
}

func lookupSession(c *gin.Context) (*session.Session, bool) {
	s, ok := sessions.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
		return nil, false
	}
	return s, true
}
