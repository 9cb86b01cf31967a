package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	rentdomain "github.com/openimob/rentshare/internal/rent/domain"
)

func (s *Server) DistributeRent(c *gin.Context) {
	var req rentdomain.DistributeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.Distribute(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "rent.distribute", "rent", req.PropertyID, map[string]any{
		"month":   req.Month,
		"year":    req.Year,
		"records": len(resp.Records),
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RecomputeRents(c *gin.Context) {
	resp, err := s.rentSvc.RecomputeAll(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "rent.recompute_all", "rent", "", map[string]any{
		"total":     resp.Total,
		"succeeded": resp.Succeeded,
		"failed":    resp.Failed,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ComputeTaxes(c *gin.Context) {
	var req rentdomain.ComputeTaxesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.ComputeTaxes(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) CreateRentRecord(c *gin.Context) {
	var req rentdomain.CreateRentRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "rent.create", "rent", resp.ID.String(), map[string]any{
		"property_id": resp.PropertyID.String(),
		"owner_id":    resp.OwnerID.String(),
		"month":       resp.Month,
		"year":        resp.Year,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateRentRecord(c *gin.Context) {
	var req rentdomain.UpdateRentRecordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.rentSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "rent.update", "rent", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetRentRecord(c *gin.Context) {
	resp, err := s.rentSvc.Get(c.Request.Context(), rentdomain.GetRentRecordRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListRentRecords(c *gin.Context) {
	var req rentdomain.ListRentRecordsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteRentRecord(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.rentSvc.Delete(c.Request.Context(), rentdomain.DeleteRentRecordRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "rent.delete", "rent", id, nil)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) TotalsByProperty(c *gin.Context) {
	var req rentdomain.YearRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.TotalsByProperty(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) TotalsByMonth(c *gin.Context) {
	var req rentdomain.YearRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.TotalsByMonth(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) RentMatrix(c *gin.Context) {
	var req rentdomain.MatrixRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.rentSvc.Matrix(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) AvailableYears(c *gin.Context) {
	resp, err := s.rentSvc.AvailableYears(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) LastPeriod(c *gin.Context) {
	resp, err := s.rentSvc.LastPeriod(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
