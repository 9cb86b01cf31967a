package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	propertydomain "github.com/openimob/rentshare/internal/property/domain"
	"github.com/shopspring/decimal"
)

type propertyRequest struct {
	Name            string           `json:"name"`
	Address         string           `json:"address"`
	Kind            string           `json:"kind"`
	TotalArea       *decimal.Decimal `json:"total_area"`
	BuiltArea       *decimal.Decimal `json:"built_area"`
	AssessedValue   *decimal.Decimal `json:"assessed_value"`
	MarketValue     *decimal.Decimal `json:"market_value"`
	MonthlyTax      *decimal.Decimal `json:"monthly_tax"`
	MonthlyCondoFee *decimal.Decimal `json:"monthly_condo_fee"`
	Bedrooms        *int             `json:"bedrooms"`
	Bathrooms       *int             `json:"bathrooms"`
	GarageSpots     int              `json:"garage_spots"`
	Rented          bool             `json:"rented"`
}

func (r propertyRequest) toDomain() propertydomain.CreatePropertyRequest {
	return propertydomain.CreatePropertyRequest{
		Name:            strings.TrimSpace(r.Name),
		Address:         strings.TrimSpace(r.Address),
		Kind:            strings.TrimSpace(r.Kind),
		TotalArea:       r.TotalArea,
		BuiltArea:       r.BuiltArea,
		AssessedValue:   r.AssessedValue,
		MarketValue:     r.MarketValue,
		MonthlyTax:      r.MonthlyTax,
		MonthlyCondoFee: r.MonthlyCondoFee,
		Bedrooms:        r.Bedrooms,
		Bathrooms:       r.Bathrooms,
		GarageSpots:     r.GarageSpots,
		Rented:          r.Rented,
	}
}

func (s *Server) CreateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.Create(c.Request.Context(), req.toDomain())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "property.create", "property", resp.ID.String(), map[string]any{"name": resp.Name})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateProperty(c *gin.Context) {
	var req propertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.Update(c.Request.Context(), propertydomain.UpdatePropertyRequest{
		ID:                    strings.TrimSpace(c.Param("id")),
		CreatePropertyRequest: req.toDomain(),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "property.update", "property", resp.ID.String(), map[string]any{"name": resp.Name})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetProperty(c *gin.Context) {
	resp, err := s.propertySvc.GetByID(c.Request.Context(), propertydomain.GetPropertyRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListProperties(c *gin.Context) {
	var query struct {
		Name   string `form:"name"`
		Rented *bool  `form:"rented"`
		Offset int    `form:"offset,default=0"`
		Limit  int    `form:"limit,default=100"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.propertySvc.List(c.Request.Context(), propertydomain.ListPropertyRequest{
		Name:   strings.TrimSpace(query.Name),
		Rented: query.Rented,
		Offset: query.Offset,
		Limit:  query.Limit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteProperty(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.propertySvc.Delete(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "property.delete", "property", id, map[string]any{
		"empty_participations_removed": resp.EmptyParticipationsRemoved,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}
