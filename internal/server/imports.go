package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	importerdomain "github.com/openimob/rentshare/internal/importer/domain"
)

func (s *Server) RunImport(c *gin.Context) {
	var req importerdomain.ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.importSvc.Import(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.record(c, "import.run", "import", resp.ImportID, map[string]any{
		"version_id": resp.VersionID,
		"imported":   resp.Imported,
		"skipped":    resp.Skipped,
	})
	c.JSON(http.StatusCreated, gin.H{"data": resp})
}

func (s *Server) GetImport(c *gin.Context) {
	resp, err := s.importSvc.Get(c.Request.Context(), importerdomain.GetImportRequest{
		ID: strings.TrimSpace(c.Param("id")),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) ListImports(c *gin.Context) {
	var req importerdomain.ListImportsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.importSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
