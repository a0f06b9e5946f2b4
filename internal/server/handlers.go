package server

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"mapforge/internal/persist"
	"mapforge/internal/project"
	"mapforge/internal/reconcile"
	"mapforge/internal/registry"
	"mapforge/internal/sheet"
	"mapforge/internal/suggest"
	"mapforge/internal/workspace"
)

const defaultSuggestLimit = 10

type openRequest struct {
	SystemID  string            `json:"systemId"  binding:"required"`
	Direction project.Direction `json:"direction" binding:"required,oneof=inbound outbound"`
	MessageID string            `json:"messageId" binding:"required"`
}

type catalogRequest struct {
	// Text holds one path per line. Paths wins when both are set.
	Text  string   `json:"text"`
	Paths []string `json:"paths"`
}

type addRowRequest struct {
	Rubric string `json:"rubric"`
}

type applySheetRequest struct {
	Sheet string `json:"sheet"`
	Round string `json:"round"`
}

// errorStatus maps domain errors to HTTP status codes.
func errorStatus(err error) int {
	switch {
	case errors.Is(err, workspace.ErrNoProject):
		return http.StatusConflict
	case errors.Is(err, project.ErrRowNotFound),
		errors.Is(err, project.ErrRoundNotFound),
		errors.Is(err, reconcile.ErrUnknownRubric),
		errors.Is(err, persist.ErrSheetNotFound),
		errors.Is(err, registry.ErrUnknownSystem),
		errors.Is(err, registry.ErrUnknownMessage):
		return http.StatusNotFound
	case errors.Is(err, project.ErrLastRound),
		errors.Is(err, project.ErrInvalidStatus),
		errors.Is(err, workspace.ErrFixedSide),
		errors.Is(err, persist.ErrNoSheets):
		return http.StatusUnprocessableEntity
	}

	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return http.StatusRequestEntityTooLarge
	}

	return http.StatusInternalServerError
}

func (s *Server) fail(c *gin.Context, err error) {
	status := errorStatus(err)
	if status == http.StatusInternalServerError {
		_ = c.Error(err)
	}

	c.JSON(status, gin.H{"error": err.Error(), "request_id": GetRequestID(c)})
}

func (s *Server) badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "request_id": GetRequestID(c)})
}

func (s *Server) respond(c *gin.Context, out *workspace.Outcome, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) download(c *gin.Context, f *workspace.File, err error) {
	if err != nil {
		s.fail(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, f.Name))
	c.Data(http.StatusOK, f.ContentType, f.Data)
}

func parseSide(c *gin.Context, raw string) (project.Side, bool) {
	switch raw {
	case project.SideSource.String():
		return project.SideSource, true
	case project.SideDestination.String():
		return project.SideDestination, true
	}

	c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("unknown side %q", raw)})

	return 0, false
}

func formFile(c *gin.Context) (multipart.File, string, bool) {
	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": err.Error()})
			return nil, "", false
		}

		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})

		return nil, "", false
	}

	return file, header.Filename, true
}

func (s *Server) getRegistry(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Registry())
}

func (s *Server) getRubrics(c *gin.Context) {
	c.JSON(http.StatusOK, s.session.Rubrics())
}

type statusOption struct {
	Value project.Status `json:"value"`
	Label string         `json:"label"`
}

func (s *Server) getStatuses(c *gin.Context) {
	options := make([]statusOption, 0, len(project.Statuses))
	for _, st := range project.Statuses {
		options = append(options, statusOption{Value: st, Label: st.Label()})
	}

	c.JSON(http.StatusOK, options)
}

// exportPayload renders an analysis payload as a workbook.
func (s *Server) exportPayload(c *gin.Context) {
	var req sheet.Analysis
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	data, err := sheet.EncodeAnalysis(&req)
	if err != nil {
		s.fail(c, err)
		return
	}

	s.download(c, &workspace.File{Name: workspace.AnalysisFilename, ContentType: sheet.ContentType, Data: data}, nil)
}

func (s *Server) openProject(c *gin.Context) {
	var req openRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	out, err := s.session.Open(c.Request.Context(), req.SystemID, req.Direction, req.MessageID)
	s.respond(c, out, err)
}

func (s *Server) getProject(c *gin.Context) {
	p, err := s.session.Current()
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, &workspace.Outcome{Project: p})
}

func (s *Server) resetProject(c *gin.Context) {
	out, err := s.session.Reset(c.Request.Context())
	s.respond(c, out, err)
}

func (s *Server) getCatalog(c *gin.Context) {
	side, ok := parseSide(c, c.Param("side"))
	if !ok {
		return
	}

	paths, err := s.session.Catalog(side)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"side": side.String(), "paths": paths})
}

func (s *Server) setCatalog(c *gin.Context) {
	side, ok := parseSide(c, c.Param("side"))
	if !ok {
		return
	}

	var req catalogRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	if req.Paths != nil {
		out, err := s.session.SetCatalog(c.Request.Context(), side, req.Paths)
		s.respond(c, out, err)

		return
	}

	out, err := s.session.SetCatalogText(c.Request.Context(), side, req.Text)
	s.respond(c, out, err)
}

func (s *Server) importCatalog(c *gin.Context) {
	side, ok := parseSide(c, c.Param("side"))
	if !ok {
		return
	}

	file, name, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	out, err := s.session.ImportCatalog(c.Request.Context(), side, name, file)
	s.respond(c, out, err)
}

func (s *Server) enableRubric(c *gin.Context) {
	out, err := s.session.EnableRubric(c.Request.Context(), c.Param("code"))
	s.respond(c, out, err)
}

func (s *Server) disableRubric(c *gin.Context) {
	out, err := s.session.DisableRubric(c.Request.Context(), c.Param("code"))
	s.respond(c, out, err)
}

func (s *Server) addRow(c *gin.Context) {
	var req addRowRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			s.badRequest(c, err)
			return
		}
	}

	out, err := s.session.AddRow(c.Request.Context(), req.Rubric)
	s.respond(c, out, err)
}

func (s *Server) updateRow(c *gin.Context) {
	var patch project.RowPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		s.badRequest(c, err)
		return
	}

	out, err := s.session.UpdateRow(c.Request.Context(), c.Param("id"), patch)
	s.respond(c, out, err)
}

func (s *Server) deleteRow(c *gin.Context) {
	out, err := s.session.DeleteRow(c.Request.Context(), c.Param("id"))
	s.respond(c, out, err)
}

func (s *Server) addRound(c *gin.Context) {
	out, err := s.session.AddRound(c.Request.Context())
	s.respond(c, out, err)
}

func (s *Server) switchRound(c *gin.Context) {
	out, err := s.session.SwitchRound(c.Request.Context(), c.Param("id"))
	s.respond(c, out, err)
}

func (s *Server) removeRound(c *gin.Context) {
	out, err := s.session.RemoveRound(c.Request.Context(), c.Param("id"))
	s.respond(c, out, err)
}

func (s *Server) exportJSON(c *gin.Context) {
	f, err := s.session.ExportJSON(c.Request.Context())
	s.download(c, f, err)
}

func (s *Server) importJSON(c *gin.Context) {
	file, name, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	out, err := s.session.ImportJSON(c.Request.Context(), name, file)
	s.respond(c, out, err)
}

func (s *Server) exportSpreadsheet(c *gin.Context) {
	f, err := s.session.ExportSpreadsheet(c.Request.Context())
	s.download(c, f, err)
}

func (s *Server) exportAnalysis(c *gin.Context) {
	f, err := s.session.ExportAnalysis(c.Request.Context())
	s.download(c, f, err)
}

func (s *Server) importSpreadsheet(c *gin.Context) {
	file, name, ok := formFile(c)
	if !ok {
		return
	}
	defer file.Close()

	out, err := s.session.ImportSpreadsheet(c.Request.Context(), name, file, c.PostForm("sheet"), c.PostForm("round"))
	s.respond(c, out, err)
}

func (s *Server) listSheets(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"sheets": s.session.ImportedSheets()})
}

func (s *Server) applySheet(c *gin.Context) {
	var req applySheetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}

	out, err := s.session.ApplySheet(c.Request.Context(), req.Sheet, req.Round)
	s.respond(c, out, err)
}

func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return defaultSuggestLimit, true
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("invalid limit %q", raw)})
		return 0, false
	}

	return n, true
}

// suggest ranks catalog paths. With "path" set it matches by similarity
// to a path of the other side and reports an unambiguous best match;
// otherwise "q" is a typed fragment.
func (s *Server) suggest(c *gin.Context) {
	side, ok := parseSide(c, c.Query("side"))
	if !ok {
		return
	}

	limit, ok := queryLimit(c)
	if !ok {
		return
	}

	var (
		list suggest.CandidateList
		best *suggest.Candidate
		err  error
	)

	if path := c.Query("path"); path != "" {
		list, best, err = s.session.SuggestFor(side, path, limit)
	} else {
		list, err = s.session.Suggest(side, c.Query("q"), limit)
	}

	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"suggestions": list, "paths": list.Paths(), "best": best})
}

func (s *Server) unmatched(c *gin.Context) {
	side, ok := parseSide(c, c.Query("side"))
	if !ok {
		return
	}

	rows, err := s.session.Unmatched(side)
	if err != nil {
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"rows": rows})
}
