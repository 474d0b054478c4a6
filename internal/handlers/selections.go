package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeradar/radar-service/internal/middleware"
	"github.com/storeradar/radar-service/internal/preference"
	"github.com/storeradar/radar-service/internal/recommend"
)

// SelectionRequest records the store a user picked from the map.
type SelectionRequest struct {
	StoreID string `json:"store_id" binding:"required" jsonschema:"required"`
}

// SelectionsResponse lists a user's past selections.
type SelectionsResponse struct {
	Selections []preference.Selection `json:"selections" jsonschema:"required"`
	Total      int                    `json:"total" jsonschema:"required"`
}

// RecordSelection classifies and logs a store selection
// @Summary Record selection
// @Description Classifies the selection against the current candidates and logs it. Every tenth selection re-derives the user's weights.
// @Tags preferences
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Session ID"
// @Param request body SelectionRequest true "Selected store"
// @Success 201 {object} preference.Outcome
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 403 {object} map[string]string "Session belongs to another user"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /v1/sessions/{id}/selections [post]
func RecordSelection(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	s, ok := lookupSession(c)
	if !ok {
		return
	}
	if owner := s.Engine.State().Snapshot().Identity; owner.UserID != id.UserID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Session belongs to another user"})
		return
	}

	var req SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := s.Engine.State().Snapshot().Product
	if product == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": ErrInvalidRequest{Field: "product", Reason: "no product selected in this session"}.Error()})
		return
	}

	detail, ok := s.Engine.Reconciler().Detail(req.StoreID)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store is not on the map"})
		return
	}
	selected := recommend.ScoredStore{Store: detail.Store}
	if detail.Scored != nil {
		selected = *detail.Scored
	}

	out, err := recorder.Record(c.Request.Context(), id, product, selected, detail.Candidates)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record selection"})
		return
	}
	c.JSON(http.StatusCreated, out)
}

// ListSelections returns the caller's selection history
// @Summary List selections
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} SelectionsResponse
// @Failure 401 {object} map[string]string "Authentication required"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /v1/selections [get]
func ListSelections(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return
	}

	sels, err := recorder.History(c.Request.Context(), id.UserID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch selections"})
		return
	}
	if sels == nil {
		sels = []preference.Selection{}
	}
	c.JSON(http.StatusOK, SelectionsResponse{Selections: sels, Total: len(sels)})
}

// GetWeights returns the caller's current ranking weights
// @Summary Get weights
// @Tags preferences
// @Produce json
// @Security BearerAuth
// @Success 200 {object} recommend.Preference
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /v1/preferences [get]
func GetWeights(c *gin.Context) {
	id := middleware.GetIdentity(c)
	if !id.Authenticated() {
		c.JSON(http.StatusOK, recommend.DefaultPreference())
		return
	}
	pref, err := recorder.Weights(c.Request.Context(), id)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch preference"})
		return
	}
	c.JSON(http.StatusOK, pref)
}
