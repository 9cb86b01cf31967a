package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	participationdomain "github.com/openimob/rentshare/internal/participation/domain"
)

// GetParticipations returns the latest ledger version, or the version
// active on a given day (?date=2025-03-31), or the exact version at a
// timestamp (?at=2025-03-31T10:00:00.000000Z).
func (s *Server) GetParticipations(c *gin.Context) {
	if at := strings.TrimSpace(c.Query("at")); at != "" {
		ts, err := time.Parse(time.RFC3339Nano, at)
		if err != nil {
			AbortWithError(c, newValidationError("at", "invalid_timestamp", "invalid timestamp"))
			return
		}
		resp, err := s.participationSvc.GetVersionAt(c.Request.Context(), participationdomain.GetVersionAtRequest{Timestamp: ts})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	if date := strings.TrimSpace(c.Query("date")); date != "" {
		day, err := time.Parse("2006-01-02", date)
		if err != nil {
			AbortWithError(c, newValidationError("date", "invalid_date", "invalid date"))
			return
		}
		resp, err := s.participationSvc.GetVersionAsOf(c.Request.Context(), participationdomain.GetVersionAsOfRequest{Date: day})
		if err != nil {
			AbortWithError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": resp})
		return
	}

	resp, err := s.participationSvc.GetLatestVersion(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) UpsertParticipation(c *gin.Context) {
	var req participationdomain.UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.participationSvc.Upsert(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "participation.upsert", "participation", resp.ID.String(), map[string]any{
		"property_id": resp.PropertyID.String(),
		"owner_id":    resp.OwnerID.String(),
		"percentage":  resp.Percentage.String(),
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) ReplaceParticipationVersion(c *gin.Context) {
	var req participationdomain.ReplaceVersionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.participationSvc.ReplaceVersion(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "participation.replace_version", "participation", resp.VersionID, map[string]any{
		"count": resp.Count,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) SnapshotParticipations(c *gin.Context) {
	resp, err := s.participationSvc.SnapshotNow(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	if resp.Created {
		s.record(c, "participation.snapshot", "participation", resp.VersionID, map[string]any{
			"rows": resp.Rows,
		})
	}
	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListParticipationVersions(c *gin.Context) {
	resp, err := s.participationSvc.ListVersions(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ParticipationHistoryByVersion(c *gin.Context) {
	resp, err := s.participationSvc.HistoryByVersion(c.Request.Context(), participationdomain.HistoryByVersionRequest{
		VersionID: strings.TrimSpace(c.Param("versionId")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ParticipationHistoryByProperty(c *gin.Context) {
	resp, err := s.participationSvc.HistoryByProperty(c.Request.Context(), participationdomain.HistoryByPropertyRequest{
		PropertyID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
