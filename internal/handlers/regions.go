package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/storeradar/radar-service/internal/recommend"
)

// RegionsResponse lists filterable regions.
type RegionsResponse struct {
	Regions []recommend.Region `json:"regions" jsonschema:"required"`
	// All is the region code that disables the region filter.
	All string `json:"all" jsonschema:"required"`
}

// ListRegions returns the regions offered as filters
// @Summary List regions
// @Tags catalog
// @Produce json
// @Success 200 {object} RegionsResponse
// @Failure 502 {object} map[string]string "Catalog unavailable"
// @Router /v1/regions [get]
func ListRegions(c *gin.Context) {
	regions, err := regionSource.Regions(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch regions"})
		return
	}
	if regions == nil {
		regions = []recommend.Region{}
	}
	c.JSON(http.StatusOK, RegionsResponse{Regions: regions, All: recommend.AllRegions})
}
