package web

import (
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"reviewpulse/internal/pipeline"
)

// Session groups the output files of one scrape request under a private
// directory that the janitor removes after the TTL.
type Session struct {
	ID        string      `json:"session_id"`
	CreatedAt time.Time   `json:"created_at"`
	Results   []URLResult `json:"results"`

	dir string
}

// URLResult is the per-URL outcome reported to the front end.
type URLResult struct {
	URL    string `json:"url"`
	Status string `json:"status"`
	File   string `json:"file,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Server is the thin web wrapper over the pipeline: URL intake, result
// listing, CSV download and session cleanup.
type Server struct {
	pipe    *pipeline.Pipeline
	baseDir string
	ttl     time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

func NewServer(pipe *pipeline.Pipeline, baseDir string, ttl time.Duration) (*Server, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, err
	}
	return &Server{
		pipe:     pipe,
		baseDir:  baseDir,
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}, nil
}

func (s *Server) Routes(r *gin.Engine) {
	api := r.Group("/api")
	{
		api.POST("/scrape", s.handleScrape)
		api.GET("/session/:id", s.handleSession)
		api.GET("/session/:id/file/:name", s.handleDownload)
		api.DELETE("/session/:id", s.handleCleanup)
	}
}

type scrapeRequest struct {
	URLs []string `json:"urls"`
}

func (s *Server) handleScrape(c *gin.Context) {
	var urls []string
	if strings.HasPrefix(c.ContentType(), "application/json") {
		var req scrapeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		urls = req.URLs
	} else {
		urls = SplitURLs(c.PostForm("product_urls"))
	}
	if len(urls) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enter at least one product URL"})
		return
	}

	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
	}
	sess.dir = filepath.Join(s.baseDir, sess.ID)
	if err := os.MkdirAll(sess.dir, 0o755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create session directory"})
		return
	}
	slog.Info("session created", "session", sess.ID, "urls", len(urls))

	for _, r := range s.pipe.RunMany(urls, sess.dir) {
		ur := URLResult{URL: r.URL}
		if r.Err != nil {
			ur.Status = pipeline.FailureKind(r.Err)
			ur.Error = r.Err.Error()
		} else {
			ur.Status = "success"
			ur.File = filepath.Base(r.Path)
		}
		sess.Results = append(sess.Results, ur)
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()

	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleSession(c *gin.Context) {
	sess := s.lookup(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	c.JSON(http.StatusOK, sess)
}

func (s *Server) handleDownload(c *gin.Context) {
	sess := s.lookup(c.Param("id"))
	if sess == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "session not found"})
		return
	}
	name := c.Param("name")
	// reject anything that could escape the session directory
	if name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid file name"})
		return
	}
	path := filepath.Join(sess.dir, name)
	if _, err := os.Stat(path); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		return
	}
	c.FileAttachment(path, name)
}

func (s *Server) handleCleanup(c *gin.Context) {
	id := c.Param("id")
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()
	if ok {
		os.RemoveAll(sess.dir)
		slog.Info("session removed", "session", id)
	}
	c.JSON(http.StatusOK, gin.H{"status": "cleaned"})
}

func (s *Server) lookup(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[id]
}

// StartJanitor removes expired sessions on a fixed interval until the
// process exits.
func (s *Server) StartJanitor(interval time.Duration) {
	go func() {
		for range time.Tick(interval) {
			s.Sweep(time.Now())
		}
	}()
}

// Sweep deletes every session older than the TTL, directory included.
func (s *Server) Sweep(now time.Time) {
	s.mu.Lock()
	var expired []*Session
	for id, sess := range s.sessions {
		if now.Sub(sess.CreatedAt) > s.ttl {
			expired = append(expired, sess)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()

	for _, sess := range expired {
		if err := os.RemoveAll(sess.dir); err != nil {
			slog.Warn("failed to remove session dir", "session", sess.ID, "err", err)
			continue
		}
		slog.Info("expired session removed", "session", sess.ID)
	}
}

// SplitURLs parses the raw textarea input, accepting comma, semicolon and
// newline separators.
func SplitURLs(raw string) []string {
	fields := strings.FieldsFunc(raw, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n' || r == '\r'
	})
	var urls []string
	for _, f := range fields {
		if u := strings.TrimSpace(f); u != "" {
			urls = append(urls, u)
		}
	}
	return urls
}
