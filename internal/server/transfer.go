package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	transferdomain "github.com/openimob/rentshare/internal/transfer/domain"
)

func (s *Server) CreateTransfer(c *gin.Context) {
	var req transferdomain.CreateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transferSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "transfer.create", "transfer", resp.ID.String(), map[string]any{
		"group_id":     resp.GroupID.String(),
		"total_amount": resp.TotalAmount.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) UpdateTransfer(c *gin.Context) {
	var req transferdomain.UpdateTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}
	req.ID = strings.TrimSpace(c.Param("id"))

	resp, err := s.transferSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "transfer.update", "transfer", resp.ID.String(), nil)
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetTransfer(c *gin.Context) {
	resp, err := s.transferSvc.Get(c.Request.Context(), transferdomain.GetTransferRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListTransfers(c *gin.Context) {
	var req transferdomain.ListTransfersRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.transferSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) DeleteTransfer(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	if err := s.transferSvc.Delete(c.Request.Context(), transferdomain.DeleteTransferRequest{ID: id}); err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "transfer.delete", "transfer", id, nil)
	c.JSON(http.StatusOK, gin.H{"data": gin.H{"deleted": true}})
}

func (s *Server) ListTransfersByGroup(c *gin.Context) {
	resp, err := s.transferSvc.ListByGroup(c.Request.Context(), transferdomain.ListByGroupRequest{
		GroupID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
