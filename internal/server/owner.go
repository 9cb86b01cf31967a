package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ownerdomain "github.com/openimob/rentshare/internal/owner/domain"
)

func (s *Server) CreateOwner(c *gin.Context) {
	var req ownerdomain.CreateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ownerSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "owner.create", "owner", resp.ID.String(), map[string]any{"name": resp.FullName()})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateOwner(c *gin.Context) {
	var req ownerdomain.UpdateOwnerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.ownerSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "owner.update", "owner", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOwner(c *gin.Context) {
	resp, err := s.ownerSvc.Get(c.Request.Context(), ownerdomain.GetOwnerRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOwners(c *gin.Context) {
	var req ownerdomain.ListOwnersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.ownerSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOwner(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.ownerSvc.Delete(c.Request.Context(), ownerdomain.DeleteOwnerRequest{ID: id})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "owner.delete", "owner", id, map[string]any{
		"empty_participations_removed": resp.EmptyParticipationsRemoved,
	})
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) OwnerStats(c *gin.Context) {
	resp, err := s.ownerSvc.Stats(c.Request.Context(), ownerdomain.OwnerStatsRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
