// Package web is the presentation adapter: it serves the dashboard page that
// merges today's Timeular entries with the Vertec project list into an edit
// form. All data work happens in the integration clients it wraps.
package web

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/tj/go-naturaldate"

	"github.com/nwirth/vertime/internal/timeular"
	"github.com/nwirth/vertime/internal/vertec"
)

//go:embed templates/entries.html
var templates embed.FS

//go:embed static/styles.css
var styles []byte

// EntrySource yields the time entries recorded on a given day.
type EntrySource interface {
	FetchEntries(ctx context.Context, day time.Time) ([]timeular.TimeEntry, error)
}

// ProjectSource yields the active billable projects.
type ProjectSource interface {
	FetchProjects(ctx context.Context) ([]vertec.Project, error)
}

type Server struct {
	entries  EntrySource
	projects ProjectSource
	logger   *slog.Logger
	tmpl     *template.Template
}

func NewServer(entries EntrySource, projects ProjectSource, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		entries:  entries,
		projects: projects,
		logger:   logger,
		tmpl:     template.Must(template.ParseFS(templates, "templates/entries.html")),
	}
}

// Router builds the gin engine with all routes and middleware attached.
func (s *Server) Router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLog())

	router.GET("/", s.handleDashboard)
	router.GET("/styles.css", func(c *gin.Context) {
		c.Data(http.StatusOK, "text/css; charset=utf-8", styles)
	})
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	return router
}

func (s *Server) requestLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := uuid.NewString()
		c.Set("request_id", requestID)
		start := time.Now()
		c.Next()
		s.logger.Info("request",
			"id", requestID,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"elapsed", time.Since(start))
	}
}

type entryView struct {
	ID          string
	Description string
	Start       string
	End         string
}

type pageData struct {
	Day          string
	Entries      []entryView
	ProjectsJSON template.JS
}

func (s *Server) handleDashboard(c *gin.Context) {
	ctx := c.Request.Context()

	day, err := resolveDay(c.Query("day"), time.Now())
	if err != nil {
		c.String(http.StatusBadRequest, "Unrecognized day: %s", c.Query("day"))
		return
	}

	entries, err := s.entries.FetchEntries(ctx, day)
	if err != nil {
		s.fail(c, "loading time entries", err)
		return
	}

	projects, err := s.projects.FetchProjects(ctx)
	if err != nil {
		s.fail(c, "loading projects", err)
		return
	}

	projectsJSON, err := json.Marshal(projects)
	if err != nil {
		s.fail(c, "encoding projects", err)
		return
	}

	data := pageData{
		Day:          day.Format("2006-01-02"),
		Entries:      make([]entryView, 0, len(entries)),
		ProjectsJSON: template.JS(projectsJSON),
	}
	for _, e := range entries {
		data.Entries = append(data.Entries, entryView{
			ID:          e.ID.String(),
			Description: e.Note.Text,
			Start:       formatTimeForInput(e.Duration.StartedAt),
			End:         formatTimeForInput(e.Duration.StoppedAt),
		})
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := s.tmpl.Execute(c.Writer, data); err != nil {
		s.logger.Error("rendering dashboard", "id", c.GetString("request_id"), "error", err)
	}
}

func (s *Server) fail(c *gin.Context, what string, err error) {
	s.logger.Error(what, "id", c.GetString("request_id"), "error", err)
	c.String(http.StatusInternalServerError, "Failed to load entries")
}

// resolveDay interprets the optional ?day= selector. Empty means today; an
// ISO date is taken literally; anything else goes through natural-language
// parsing anchored in the past ("yesterday", "last monday").
func resolveDay(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return now, nil
	}
	if d, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return d, nil
	}
	return naturaldate.Parse(raw, now, naturaldate.WithDirection(naturaldate.Past))
}

// formatTimeForInput reduces an ISO-8601 timestamp to the HH:MM:SS.mmm shape
// an <input type="time"> expects. Unparseable values pass through untouched
// so the form still renders.
func formatTimeForInput(stamp string) string {
	for _, layout := range []string{
		"2006-01-02T15:04:05.000",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, stamp); err == nil {
			return t.Format("15:04:05.000")
		}
	}
	return stamp
}
