// Package agent exposes the analysis engine over HTTP. The API mirrors the
// tool contract language-model integrations call: POST /tool/<name> with a
// JSON body, {"result": ...} on success and {"error": ...} on failure.
package agent

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/morphohq/morpho/internal/engine"
)

// Server wires engine queries into an HTTP API.
type Server struct {
	eng       *engine.Engine
	log       *slog.Logger
	metrics   *metrics
	blacklist []string
	router    *gin.Engine
}

// New builds a server around eng. blacklist is prepended to every request's
// own exclusions. A nil logger falls back to slog.Default.
func New(eng *engine.Engine, blacklist []string, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		eng:       eng,
		log:       log,
		metrics:   newMetrics(),
		blacklist: blacklist,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler, ready for http.Server.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), s.logRequests())

	r.GET("/info", s.handleInfo)
	r.GET("/healthz", s.handleHealthz)
	r.GET("/metrics", gin.WrapH(s.metrics.handler()))

	tool := r.Group("/tool")
	{
		tool.POST("/list_all", s.handleListAll)
		tool.POST("/generate_call_graph", s.handleCallGraph)
		tool.POST("/get_source", s.handleGetSource)
	}
	return r
}

// logRequests tags each request with an ID and logs method, path, status,
// and duration on completion.
func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		id := uuid.NewString()
		c.Header("X-Request-ID", id)
		c.Next()
		s.log.Info("request",
			"id", id,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

type listAllRequest struct {
	PublicOnly bool     `json:"public_only"`
	Blacklist  []string `json:"blacklist"`
	Directory  string   `json:"directory"`
}

type callGraphRequest struct {
	RootFunction string   `json:"root_function"`
	PublicOnly   bool     `json:"public_only"`
	Blacklist    []string `json:"blacklist"`
	Directory    string   `json:"directory"`
}

type sourceRequest struct {
	Function  string   `json:"function"`
	Blacklist []string `json:"blacklist"`
	Directory string   `json:"directory"`
}

type toolResponse struct {
	Result string `json:"result"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleInfo(c *gin.Context) {
	c.JSON(http.StatusOK, s.eng.Info())
}

func (s *Server) handleHealthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleListAll(c *gin.Context) {
	var req listAllRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.reject(c, "list_all", fmt.Errorf("decoding request: %w", err))
		return
	}
	s.runTool(c, "list_all", func() (string, error) {
		return s.eng.ListAll(c.Request.Context(), s.options(req.PublicOnly, req.Blacklist, req.Directory))
	})
}

func (s *Server) handleCallGraph(c *gin.Context) {
	var req callGraphRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.reject(c, "generate_call_graph", fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.RootFunction == "" {
		s.reject(c, "generate_call_graph", fmt.Errorf("root_function is required"))
		return
	}
	s.runTool(c, "generate_call_graph", func() (string, error) {
		return s.eng.CallGraph(c.Request.Context(), req.RootFunction, s.options(req.PublicOnly, req.Blacklist, req.Directory))
	})
}

func (s *Server) handleGetSource(c *gin.Context) {
	var req sourceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.reject(c, "get_source", fmt.Errorf("decoding request: %w", err))
		return
	}
	if req.Function == "" {
		s.reject(c, "get_source", fmt.Errorf("function is required"))
		return
	}
	s.runTool(c, "get_source", func() (string, error) {
		return s.eng.Source(c.Request.Context(), req.Function, s.options(false, req.Blacklist, req.Directory))
	})
}

// runTool executes one tool query and writes the {result}/{error} envelope.
// Resolution failures come back as 400 with the engine's message.
func (s *Server) runTool(c *gin.Context, tool string, run func() (string, error)) {
	start := time.Now()
	out, err := run()
	s.metrics.observe(tool, err, time.Since(start))
	if err != nil {
		s.log.Warn("tool failed", "tool", tool, "err", err)
		c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, toolResponse{Result: out})
}

// reject answers a request that never reached the engine.
func (s *Server) reject(c *gin.Context, tool string, err error) {
	s.metrics.observe(tool, err, 0)
	c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
}

func (s *Server) options(publicOnly bool, blacklist []string, directory string) engine.Options {
	merged := make([]string, 0, len(s.blacklist)+len(blacklist))
	merged = append(merged, s.blacklist...)
	merged = append(merged, blacklist...)
	return engine.Options{
		PublicOnly: publicOnly,
		Blacklist:  merged,
		Scope:      directory,
	}
}
