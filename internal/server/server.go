// Package server exposes the packing engine over HTTP. The JSON
// boundary mirrors the wire types in internal/model: ingestion
// collaborators POST a PackRequest and receive a PackResult or a
// rendered artifact of it.
package server

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/piwi3910/PlateCut/internal/audit"
	"github.com/piwi3910/PlateCut/internal/engine"
	"github.com/piwi3910/PlateCut/internal/export"
	"github.com/piwi3910/PlateCut/internal/model"
)

// New builds the HTTP router with logging and panic recovery.
func New() *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())

	r.GET("/healthz", handleHealth)

	api := r.Group("/api")
	api.POST("/pack", handlePack)
	api.POST("/pack/verify", handleVerify)
	api.POST("/pack/pdf", handlePackPDF)
	api.POST("/pack/labels", handlePackLabels)
	api.POST("/pack/cutlist", handlePackCutlist)
	api.POST("/pack/report", handlePackReport)

	return r
}

func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// bindAndPack decodes the request body and runs the engine, writing
// the error response itself when either step fails.
func bindAndPack(c *gin.Context) (model.PackRequest, model.PackResult, bool) {
	var req model.PackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body: " + err.Error()})
		return req, model.PackResult{}, false
	}

	result, err := engine.Pack(req)
	if err != nil {
		status := http.StatusInternalServerError
		switch {
		case errors.Is(err, engine.ErrInvalidRequest):
			status = http.StatusBadRequest
		case errors.Is(err, engine.ErrCapacityExceeded):
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return req, model.PackResult{}, false
	}

	return req, result, true
}

func handlePack(c *gin.Context) {
	_, result, ok := bindAndPack(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleVerify packs the request and audits the result, returning the
// violations alongside it. Used for debugging and acceptance checks;
// a sound engine always returns an empty violation list.
func handleVerify(c *gin.Context) {
	req, result, ok := bindAndPack(c)
	if !ok {
		return
	}

	violations := audit.Verify(req.BuildPieces(), req.Config(), result)
	c.JSON(http.StatusOK, gin.H{
		"result":     result,
		"violations": violations,
		"sound":      len(violations) == 0,
	})
}

func handlePackPDF(c *gin.Context) {
	req, result, ok := bindAndPack(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WritePDF(&buf, result, req.Config()); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cutting-diagrams.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func handlePackLabels(c *gin.Context) {
	_, result, ok := bindAndPack(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteLabels(&buf, result); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="piece-labels.pdf"`)
	c.Data(http.StatusOK, "application/pdf", buf.Bytes())
}

func handlePackCutlist(c *gin.Context) {
	_, result, ok := bindAndPack(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteCutlist(&buf, result); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Header("Content-Disposition", `attachment; filename="cutlist.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

func handlePackReport(c *gin.Context) {
	_, result, ok := bindAndPack(c)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteReport(&buf, result); err != nil {
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
