package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	ownergroupdomain "github.com/openimob/rentshare/internal/ownergroup/domain"
)

func (s *Server) CreateOwnerGroup(c *gin.Context) {
	var req ownergroupdomain.CreateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.groupSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "owner_group.create", "owner_group", resp.ID.String(), map[string]any{"name": resp.Name})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateOwnerGroup(c *gin.Context) {
	var req ownergroupdomain.UpdateGroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.groupSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "owner_group.update", "owner_group", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetOwnerGroup(c *gin.Context) {
	resp, err := s.groupSvc.Get(c.Request.Context(), ownergroupdomain.GetGroupRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListOwnerGroups(c *gin.Context) {
	var req ownergroupdomain.ListGroupsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.groupSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteOwnerGroup(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.groupSvc.Delete(c.Request.Context(), ownergroupdomain.DeleteGroupRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "owner_group.delete", "owner_group", id, nil)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) OwnerGroupMembers(c *gin.Context) {
	resp, err := s.groupSvc.Members(c.Request.Context(), ownergroupdomain.MembersRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
