package api

import (
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"craftcheck/app"
	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/internal/errors"
)

// MaxBatchSize caps the number of layouts accepted by /validate/batch
const MaxBatchSize = 256

// ValidationHandler exposes the validation service over JSON
type ValidationHandler struct {
	service *app.ValidationService
}

// NewValidationHandler creates a new validation handler
func NewValidationHandler(service *app.ValidationService) *ValidationHandler {
	return &ValidationHandler{service: service}
}

// RegisterRoutes mounts every endpoint on r
func (h *ValidationHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/validate/batch", h.ValidateBatch)
	r.POST("/validate/:discipline", h.Validate)
	r.GET("/status", h.Status)
	r.PATCH("/config/:discipline", h.UpdateConfig)
	r.POST("/preload", h.Preload)
	r.GET("/results/:discipline", h.Results)
	r.GET("/results", h.Summary)
}

// NewRouter builds a gin engine serving the validation API
func NewRouter(service *app.ValidationService) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	NewValidationHandler(service).RegisterRoutes(r)
	return r
}

// Validate decodes the body as the discipline's typed input
func (h *ValidationHandler) Validate(c *gin.Context) {
	d, ok := disciplineParam(c)
	if !ok {
		return
	}

	req := app.LayoutRequest{Discipline: d}
	var err error
	switch d {
	case crafting.DisciplineSmithing:
		req.Smithing = &crafting.SmithingInput{}
		err = c.ShouldBindJSON(req.Smithing)
	case crafting.DisciplineAdornment:
		req.Adornment = &crafting.AdornmentInput{}
		err = c.ShouldBindJSON(req.Adornment)
	case crafting.DisciplineAlchemy:
		req.Alchemy = &crafting.AlchemyInput{}
		err = c.ShouldBindJSON(req.Alchemy)
	case crafting.DisciplineRefining:
		req.Refining = &crafting.RefiningInput{}
		err = c.ShouldBindJSON(req.Refining)
	case crafting.DisciplineEngineering:
		req.Engineering = &crafting.EngineeringInput{}
		err = c.ShouldBindJSON(req.Engineering)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, h.service.Validate(c.Request.Context(), req))
}

type batchRequest struct {
	Layouts []app.LayoutRequest `json:"layouts"`
}

type batchResponse struct {
	Results []classifier.Result `json:"results"`
	Valid   int                 `json:"valid"`
	Failed  int                 `json:"failed"`
}

// ValidateBatch validates a list of tagged layouts
func (h *ValidationHandler) ValidateBatch(c *gin.Context) {
	var req batchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if len(req.Layouts) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "layouts must not be empty"})
		return
	}
	if len(req.Layouts) > MaxBatchSize {
		c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too many layouts", "max": MaxBatchSize})
		return
	}

	results, err := h.service.ValidateBatch(c.Request.Context(), req.Layouts)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	resp := batchResponse{Results: results}
	for _, r := range results {
		if r.Valid {
			resp.Valid++
		}
		if r.Failed() {
			resp.Failed++
		}
	}
	c.JSON(http.StatusOK, resp)
}

// Status returns every discipline's diagnostic snapshot
func (h *ValidationHandler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"initialized": h.service.Manager().IsInitialized(),
		"disciplines": h.service.Status(),
	})
}

// UpdateConfig applies a partial config update
func (h *ValidationHandler) UpdateConfig(c *gin.Context) {
	d, ok := disciplineParam(c)
	if !ok {
		return
	}
	var u classifier.ConfigUpdate
	if err := c.ShouldBindJSON(&u); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if err := h.service.UpdateConfig(d, u); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Status()[d])
}

// Preload warms every backend
func (h *ValidationHandler) Preload(c *gin.Context) {
	if err := h.service.Preload(); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, h.service.Status())
}

// Results lists recent ledger entries for a discipline
func (h *ValidationHandler) Results(c *gin.Context) {
	d, ok := disciplineParam(c)
	if !ok {
		return
	}
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}
	records, err := h.service.Recent(c.Request.Context(), d, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"discipline": d, "results": records})
}

// Summary aggregates the ledger
func (h *ValidationHandler) Summary(c *gin.Context) {
	summary, err := h.service.Summary(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"summary": summary})
}

func disciplineParam(c *gin.Context) (crafting.Discipline, bool) {
	d, err := crafting.ParseDiscipline(c.Param("discipline"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return "", false
	}
	return d, true
}

// writeError maps application error codes to HTTP statuses
func writeError(c *gin.Context, err error) {
	if !errors.IsAppError(err) {
		// untyped errors are unexpected; keep their detail in the log only
		log.Printf("[ValidationHandler] %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		err = errors.InternalError("internal server error")
	}
	status := http.StatusInternalServerError
	switch errors.GetCode(err) {
	case errors.CodeInvalidInput, errors.CodeConfigInvalid, errors.CodeValidationError:
		status = http.StatusBadRequest
	case errors.CodeNotFound:
		status = http.StatusNotFound
	case errors.CodeNotInitialized, errors.CodeBackendUnavailable:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}
