package server

import (
	"log"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/elcatools/elca2ifc/internal/config"
	"github.com/elcatools/elca2ifc/internal/core"
	"github.com/elcatools/elca2ifc/internal/ifc"
)

type Server struct {
	Pipeline *core.Pipeline
}

func NewServer() *Server {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.toml"
	}

	opts := ifc.BuildOptions{}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		// The builder carries defaults for every identity field, so a
		// missing config file is not fatal.
		log.Printf("Warning: could not load %s: %v. Using default identity", cfgPath, err)
	} else {
		opts = cfg.BuildOptions()
	}

	// Override config with env vars if present (simple override logic)
	if envLibrary := os.Getenv("LIBRARY_NAME"); envLibrary != "" {
		opts.LibraryName = envLibrary
	}
	if envOrg := os.Getenv("ORGANIZATION_NAME"); envOrg != "" {
		opts.OrganizationName = envOrg
	}

	return &Server{
		Pipeline: core.NewPipeline(opts),
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.POST("/extract", s.Extract)
	r.POST("/library", s.Library)
	r.POST("/import", s.Import)

	return r
}

type ExtractRequest struct {
	HTMLPath string `json:"html_path" binding:"required"`
	XMLPath  string `json:"xml_path"`
}

func (s *Server) Extract(c *gin.Context) {
	var req ExtractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	_, stats, err := s.Pipeline.ExtractFromFile(req.HTMLPath, req.XMLPath)
	if err != nil {
		log.Printf("Failed to extract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"assemblies": stats.Assemblies,
		"components": stats.Components,
	})
}

type LibraryRequest struct {
	HTMLPath   string `json:"html_path" binding:"required"`
	XMLPath    string `json:"xml_path"`
	OutputPath string `json:"output_path" binding:"required"`
}

func (s *Server) Library(c *gin.Context) {
	var req LibraryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	assemblies, _, err := s.Pipeline.ExtractFromFile(req.HTMLPath, req.XMLPath)
	if err != nil {
		log.Printf("Failed to extract: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	path, err := s.Pipeline.WriteLibrary(assemblies, req.OutputPath)
	if err != nil {
		log.Printf("Failed to write library: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"path": path})
}

type ImportRequest struct {
	TargetPath  string `json:"target_path" binding:"required"`
	LibraryPath string `json:"library_path" binding:"required"`
}

func (s *Server) Import(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	stats, err := s.Pipeline.ImportLibrary(req.TargetPath, req.LibraryPath)
	if err != nil {
		log.Printf("Failed to import: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"imported": stats.Imported,
		"skipped":  stats.Skipped,
	})
}
