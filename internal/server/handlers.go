package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Hustada/prompt-architect/internal/editor"
	"github.com/Hustada/prompt-architect/internal/llm"
	"github.com/Hustada/prompt-architect/internal/logging"
	"github.com/Hustada/prompt-architect/internal/prompt"
	"github.com/Hustada/prompt-architect/internal/sections"
	"github.com/Hustada/prompt-architect/internal/storage"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type generateRequest struct {
	ProjectType         string `json:"projectType"`
	ProjectIdea         string `json:"projectIdea"`
	Model               string `json:"model"`
	SectionToRegenerate string `json:"sectionToRegenerate"`
	PreviousResponse    string `json:"previousResponse"`
}

type generateResponse struct {
	Markdown  string    `json:"markdown"`
	RequestID string    `json:"requestId"`
	Model     string    `json:"model"`
	Timestamp time.Time `json:"timestamp"`
}

type regenerateRequest struct {
	Markdown    string `json:"markdown"`
	Section     string `json:"section"`
	ProjectType string `json:"projectType"`
	ProjectIdea string `json:"projectIdea"`
	Model       string `json:"model"`
}

type regenerateResponse struct {
	Markdown  string `json:"markdown"`
	Section   string `json:"section"`
	RequestID string `json:"requestId"`
}

type sectionFailure struct {
	SectionTitle string `json:"sectionTitle"`
	Message      string `json:"message"`
}

type sectionsRequest struct {
	Markdown string `json:"markdown"`
}

type sectionsResponse struct {
	Sections []sections.Section `json:"sections"`
	Warnings []sections.Warning `json:"warnings"`
}

func badRequest(c *gin.Context, msg string, err error) {
	body := gin.H{"error": msg}
	if err != nil {
		body["details"] = err.Error()
	}
	c.JSON(http.StatusBadRequest, body)
}

func projectFrom(projectType, idea string) (prompt.ProjectContext, error) {
	t, err := prompt.ParseProjectType(projectType)
	if err != nil {
		return prompt.ProjectContext{}, err
	}
	p := prompt.ProjectContext{Type: t, Idea: idea}
	return p, p.Validate()
}

// handleGenerate produces a full document, or the body of one section when
// sectionToRegenerate is set.
func (s *Server) handleGenerate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if strings.TrimSpace(req.ProjectType) == "" || strings.TrimSpace(req.ProjectIdea) == "" {
		badRequest(c, "Missing required parameters", nil)
		return
	}
	if req.SectionToRegenerate != "" && strings.TrimSpace(req.PreviousResponse) == "" {
		badRequest(c, "previousResponse is required when regenerating a section", nil)
		return
	}
	project, err := projectFrom(req.ProjectType, req.ProjectIdea)
	if err != nil {
		badRequest(c, "Invalid parameters", err)
		return
	}

	ctx := c.Request.Context()
	log := logging.FromContext(ctx, s.logger)
	gen, err := s.resolve(ctx, req.Model)
	if err != nil {
		badRequest(c, "Unsupported model", err)
		return
	}

	resp, err := gen.Generate(ctx, llm.Request{
		Project:          project,
		Section:          req.SectionToRegenerate,
		PreviousDocument: req.PreviousResponse,
	})
	if err != nil {
		status := llm.StatusOf(err)
		if status == 0 {
			status = http.StatusInternalServerError
		}
		log.Error("generation failed", "provider", gen.Name(), "status", status, "error", err)
		c.JSON(status, gin.H{"error": "Failed to generate markdown", "details": err.Error()})
		return
	}

	out := generateResponse{
		Markdown:  resp.Markdown,
		RequestID: requestIDFrom(ctx),
		Model:     gen.Name(),
		Timestamp: s.now().UTC(),
	}
	s.saveRecord(ctx, storage.Record{
		ID:          out.RequestID,
		ProjectType: string(project.Type),
		ProjectIdea: project.Idea,
		Model:       out.Model,
		Section:     req.SectionToRegenerate,
		Markdown:    out.Markdown,
		CreatedAt:   out.Timestamp,
	})
	log.Info("generated markdown", "provider", gen.Name(), "section", req.SectionToRegenerate, "length", len(out.Markdown))
	c.JSON(http.StatusOK, out)
}

// handleRegenerate replaces one section of a caller-supplied document and returns the
// whole document.
func (s *Server) handleRegenerate(c *gin.Context) {
	var req regenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	if req.Markdown == "" || req.Section == "" || req.ProjectType == "" || req.ProjectIdea == "" {
		badRequest(c, "Missing required parameters", nil)
		return
	}
	project, err := projectFrom(req.ProjectType, req.ProjectIdea)
	if err != nil {
		badRequest(c, "Invalid parameters", err)
		return
	}

	ctx := c.Request.Context()
	log := logging.FromContext(ctx, s.logger)
	gen, err := s.resolve(ctx, req.Model)
	if err != nil {
		badRequest(c, "Unsupported model", err)
		return
	}

	markdown, err := editor.RegenerateSection(ctx, gen, req.Markdown, req.Section, project)
	if err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, editor.ErrUnknownSection) {
			status = http.StatusNotFound
		}
		failure := sectionFailure{SectionTitle: req.Section, Message: err.Error()}
		var se *editor.SectionError
		if errors.As(err, &se) {
			failure.Message = se.Message
		}
		log.Warn("section regeneration failed", "section", req.Section, "provider", gen.Name(), "error", err)
		c.JSON(status, failure)
		return
	}

	out := regenerateResponse{Markdown: markdown, Section: req.Section, RequestID: requestIDFrom(ctx)}
	s.saveRecord(ctx, storage.Record{
		ID:          out.RequestID,
		ProjectType: string(project.Type),
		ProjectIdea: project.Idea,
		Model:       gen.Name(),
		Section:     req.Section,
		Markdown:    markdown,
		CreatedAt:   s.now().UTC(),
	})
	c.JSON(http.StatusOK, out)
}

func (s *Server) handleSections(c *gin.Context) {
	var req sectionsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "Invalid request body", err)
		return
	}
	doc, warnings := sections.ParseWithWarnings(req.Markdown)
	if warnings == nil {
		warnings = []sections.Warning{}
	}
	c.JSON(http.StatusOK, sectionsResponse{Sections: doc.Sections(), Warnings: warnings})
}

func (s *Server) handleListRecords(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Record storage is disabled"})
		return
	}
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			badRequest(c, "Invalid limit", err)
			return
		}
		limit = n
	}
	records, err := s.store.ListRecords(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list records", "details": err.Error()})
		return
	}
	if records == nil {
		records = []storage.Record{}
	}
	c.JSON(http.StatusOK, gin.H{"records": records})
}

func (s *Server) handleGetRecord(c *gin.Context) {
	if s.store == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Record storage is disabled"})
		return
	}
	record, err := s.store.GetRecord(c.Request.Context(), c.Param("id"))
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Record not found"})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load record", "details": err.Error()})
		return
	}
	c.JSON(http.StatusOK, record)
}

// requestIDFrom returns the id the requestID middleware put on ctx.
func requestIDFrom(ctx context.Context) string {
	if id := logging.RequestID(ctx); id != "" {
		return id
	}
	return uuid.New().String()
}

// saveRecord persists r; a storage failure is logged and does not fail the request.
func (s *Server) saveRecord(ctx context.Context, r storage.Record) {
	if s.store == nil {
		return
	}
	if err := s.store.SaveRecord(ctx, r); err != nil {
		logging.FromContext(ctx, s.logger).Warn("failed to save record", "id", r.ID, "error", err)
	}
}
