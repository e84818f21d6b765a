package server

import (
	"io"
	"mime"
	"net/http"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/gin-gonic/gin"
	json "github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"GoDFA/internal/automaton"
	"GoDFA/internal/definition"
	"GoDFA/internal/storage"
)

// Handler holds HTTP handlers for the automaton API.
type Handler struct {
	reg          *Registry
	logger       *zap.Logger
	maxBodyBytes int64
}

// NewHandler creates a new Handler backed by the given Registry.
func NewHandler(reg *Registry, logger *zap.Logger, maxBodyBytes int64) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultConfig().MaxBodyBytes
	}
	return &Handler{reg: reg, logger: logger, maxBodyBytes: maxBodyBytes}
}

// RegisterRoutes registers all API routes on r.
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	r.GET("/health", h.handleHealth)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// Automaton lifecycle.
	r.GET("/automata", h.handleList)
	r.POST("/automata", h.handleCreate)
	r.GET("/automata/:name", h.handleGet)
	r.DELETE("/automata/:name", h.handleDelete)

	// Execution.
	r.POST("/automata/:name/run", h.handleRun)
	r.POST("/automata/:name/tokenize", h.handleTokenize)
	r.POST("/automata/:name/reset", h.handleReset)
	r.POST("/automata/:name/validate", h.handleValidate)
	r.GET("/automata/:name/state", h.handleState)
}

type inputRequest struct {
	Input string `json:"input"`
	Reset bool   `json:"reset"`
}

func (h *Handler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "healthy",
		"automata": len(h.reg.List()),
	})
}

// --- Automaton Lifecycle ---

func (h *Handler) handleList(c *gin.Context) {
	names := h.reg.List()
	infos := make([]map[string]interface{}, 0, len(names))
	for _, name := range names {
		inst, err := h.reg.Get(name)
		if err != nil {
			continue
		}
		infos = append(infos, inst.Info())
	}
	c.JSON(http.StatusOK, gin.H{"automata": infos})
}

func (h *Handler) handleCreate(c *gin.Context) {
	format, err := formatFromContentType(c.ContentType())
	if err != nil {
		h.writeError(c, err)
		return
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodyBytes))
	if err != nil {
		h.writeError(c, errors.Mark(errors.Wrap(err, "read body"), definition.ErrMalformed))
		return
	}
	def, err := definition.Parse(body, format)
	if err != nil {
		h.writeError(c, err)
		return
	}

	inst, err := h.reg.Create(def)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.Header("ETag", string(inst.Fingerprint()))
	c.JSON(http.StatusCreated, gin.H{
		"status":      "created",
		"name":        inst.Name,
		"fingerprint": inst.Fingerprint(),
	})
}

func (h *Handler) handleGet(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	c.Header("ETag", string(inst.Fingerprint()))
	c.JSON(http.StatusOK, inst.Info())
}

func (h *Handler) handleDelete(c *gin.Context) {
	name := c.Param("name")
	var err error
	if ifMatch := c.GetHeader("If-Match"); ifMatch != "" {
		err = h.reg.DeleteIfMatch(name, storage.Checksum(strings.Trim(ifMatch, `"`)))
	} else {
		err = h.reg.Delete(name)
	}
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "name": name})
}

// --- Execution ---

func (h *Handler) handleRun(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	req, ok := h.bindInput(c)
	if !ok {
		return
	}

	result, err := inst.Run(req.Input, req.Reset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *Handler) handleTokenize(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	req, ok := h.bindInput(c)
	if !ok {
		return
	}

	tokens, err := inst.Tokenize(req.Input)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tokens": tokens})
}

func (h *Handler) handleReset(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	state := inst.Reset()
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func (h *Handler) handleValidate(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	if err := inst.Validate(); err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "valid"})
}

func (h *Handler) handleState(c *gin.Context) {
	inst, ok := h.instance(c)
	if !ok {
		return
	}
	state, final := inst.State()
	c.JSON(http.StatusOK, gin.H{"state": state, "final": final})
}

// --- Helpers ---

func (h *Handler) instance(c *gin.Context) (*Instance, bool) {
	inst, err := h.reg.Get(c.Param("name"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return inst, true
}

func (h *Handler) bindInput(c *gin.Context) (inputRequest, bool) {
	var req inputRequest
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, h.maxBodyBytes))
	if err == nil {
		err = json.Unmarshal(body, &req)
	}
	if err != nil {
		writeJSONError(c, http.StatusBadRequest, "BadRequest", "invalid request body: "+err.Error())
		return req, false
	}
	return req, true
}

func formatFromContentType(contentType string) (string, error) {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil && contentType != "" {
		return "", errors.Wrapf(definition.ErrUnsupportedFormat, "content type %q", contentType)
	}
	switch mediaType {
	case "", "application/json":
		return definition.FormatJSON, nil
	case "application/yaml", "application/x-yaml", "text/yaml":
		return definition.FormatYAML, nil
	case "application/toml":
		return definition.FormatTOML, nil
	default:
		return "", errors.Wrapf(definition.ErrUnsupportedFormat, "content type %q", mediaType)
	}
}

// statusFor maps an error to an HTTP status and a kind label.
func statusFor(err error) (int, string) {
	switch kind := automaton.Kind(err); kind {
	case automaton.KindInvalidConfiguration:
		return http.StatusBadRequest, kind
	case automaton.KindInvalidSymbol:
		return http.StatusUnprocessableEntity, kind
	case automaton.KindInvalidState, automaton.KindMissingTransition:
		return http.StatusConflict, kind
	}
	switch {
	case errors.Is(err, ErrAutomatonNotFound):
		return http.StatusNotFound, "NotFound"
	case errors.Is(err, ErrAutomatonExists):
		return http.StatusConflict, "AlreadyExists"
	case errors.Is(err, ErrInvalidName):
		return http.StatusBadRequest, "InvalidName"
	case errors.Is(err, storage.ErrChecksumMismatch):
		return http.StatusPreconditionFailed, "FingerprintMismatch"
	case errors.Is(err, storage.ErrInvalidChecksum):
		return http.StatusBadRequest, "InvalidFingerprint"
	case errors.Is(err, definition.ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType, "UnsupportedFormat"
	case errors.Is(err, definition.ErrUnsupportedVersion),
		errors.Is(err, definition.ErrDuplicateRule),
		errors.Is(err, definition.ErrMalformed):
		return http.StatusBadRequest, "InvalidDefinition"
	}
	return http.StatusInternalServerError, "Internal"
}

func (h *Handler) writeError(c *gin.Context, err error) {
	status, kind := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	writeJSONError(c, status, kind, err.Error())
}

func writeJSONError(c *gin.Context, status int, kind, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"error": gin.H{
			"kind":    kind,
			"message": message,
		},
	})
}
