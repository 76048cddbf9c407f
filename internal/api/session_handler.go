package api

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/service"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// maxStepBody bounds a step payload; the longest valid one is two 1000-char texts.
const maxStepBody = 16 << 10

// SessionHandler exposes the questionnaire workflow over HTTP.
type SessionHandler struct {
	profileService service.ProfileService
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(profileService service.ProfileService) *SessionHandler {
	return &SessionHandler{profileService: profileService}
}

// CreateSession handles POST /sessions. The body is optional.
// @Summary Start a questionnaire session
// @Description Creates an empty profile, optionally bound to an external owner id.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param session body CreateSessionRequest false "Optional owner binding"
// @Success 201 {object} CreateSessionResponse "Session created"
// @Failure 400 {object} gin.H "Invalid request body"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions [post]
func (h *SessionHandler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
			return
		}
	}

	profile, err := h.profileService.CreateProfile(c.Request.Context(), req.OwnerID)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, CreateSessionResponse{
		SessionID: profile.ID,
		Profile:   MapProfileToResponse(profile),
	})
}

// GetSession handles GET /sessions/:sessionId.
// @Summary Get session profile
// @Description Returns the answers collected so far and the fields still missing.
// @Tags Sessions
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} gin.H "Session not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/{sessionId} [get]
func (h *SessionHandler) GetSession(c *gin.Context) {
	profile, err := h.profileService.GetProfile(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// GetOwnerProfile handles GET /owners/:ownerId/profile.
// @Summary Get an owner's latest profile
// @Tags Sessions
// @Produce json
// @Param ownerId path string true "External owner ID"
// @Success 200 {object} ProfileResponse
// @Failure 404 {object} gin.H "Session not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /owners/{ownerId}/profile [get]
func (h *SessionHandler) GetOwnerProfile(c *gin.Context) {
	profile, err := h.profileService.GetProfileByOwner(c.Request.Context(), c.Param("ownerId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// SubmitStep handles PUT /sessions/:sessionId/steps/:step. The body is the
// raw step payload, e.g. {"gender":"male","age":30,"height":180,"weight":80}.
// @Summary Submit a questionnaire step
// @Description Validates the step answers and stores them. Resubmitting a step overwrites it.
// @Tags Sessions
// @Accept json
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param step path int true "Step number (1-5)"
// @Param answers body object true "Step answers"
// @Success 200 {object} ProfileResponse "Updated profile"
// @Failure 400 {object} gin.H "Validation error with field and constraint"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 413 {object} gin.H "Request body too large"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/{sessionId}/steps/{step} [put]
func (h *SessionHandler) SubmitStep(c *gin.Context) {
	step, err := strconv.Atoi(c.Param("step"))
	if err != nil {
		writeServiceError(c, &domain.ValidationError{Field: "step", Constraint: "oneof=1 2 3 4 5"})
		return
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxStepBody+1))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "Failed to read request body")
		return
	}
	if len(raw) > maxStepBody {
		abortWithError(c, http.StatusRequestEntityTooLarge, "Request body too large")
		return
	}

	update, err := domain.ParseStep(step, raw)
	if err != nil {
		writeServiceError(c, err)
		return
	}

	profile, err := h.profileService.UpdateStep(c.Request.Context(), c.Param("sessionId"), update)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProfileToResponse(profile))
}

// GenerateProgram handles POST /sessions/:sessionId/programs.
// @Summary Generate a training program
// @Description Sends the completed profile to the LLM and stores the resulting program.
// @Tags Programs
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 201 {object} ProgramResponse "Program generated"
// @Failure 404 {object} gin.H "Session not found"
// @Failure 409 {object} gin.H "Profile is incomplete"
// @Failure 502 {object} gin.H "LLM provider failed"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/{sessionId}/programs [post]
func (h *SessionHandler) GenerateProgram(c *gin.Context) {
	program, err := h.profileService.GenerateProgram(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, MapProgramToResponse(program))
}

// ListPrograms handles GET /sessions/:sessionId/programs in storage order.
// @Summary List generated programs
// @Tags Programs
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {array} ProgramResponse
// @Failure 404 {object} gin.H "Session not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/{sessionId}/programs [get]
func (h *SessionHandler) ListPrograms(c *gin.Context) {
	programs, err := h.profileService.ListPrograms(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}

	resp := make([]ProgramResponse, 0, len(programs))
	for i := range programs {
		resp = append(resp, MapProgramToResponse(&programs[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// GetLatestProgram handles GET /sessions/:sessionId/program.
// @Summary Get the latest program
// @Tags Programs
// @Produce json
// @Param sessionId path string true "Session ID"
// @Success 200 {object} ProgramResponse
// @Failure 404 {object} gin.H "Session or program not found"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/{sessionId}/program [get]
func (h *SessionHandler) GetLatestProgram(c *gin.Context) {
	program, err := h.profileService.LatestProgram(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, MapProgramToResponse(program))
}

// ExportProgram handles POST /sessions/:sessionId/programs/:programId/export.
// @Summary Export a program as a text file
// @Description Uploads the program to object storage and returns a presigned download URL.
// @Tags Programs
// @Produce json
// @Param sessionId path string true "Session ID"
// @Param programId path string true "Program ID"
// @Success 200 {object} ExportResponse
// @Failure 404 {object} gin.H "Session or program not found"
// @Failure 503 {object} gin.H "Export not configured"
// @Failure 500 {object} gin.H "Internal Server Error"
// @Router /sessions/{sessionId}/programs/{programId}/export [post]
func (h *SessionHandler) ExportProgram(c *gin.Context) {
	url, err := h.profileService.ExportProgram(c.Request.Context(), c.Param("sessionId"), c.Param("programId"))
	if err != nil {
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, ExportResponse{URL: url})
}

// writeServiceError maps service and domain errors to HTTP responses.
func writeServiceError(c *gin.Context, err error) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":      verr.Error(),
			"field":      verr.Field,
			"constraint": verr.Constraint,
		})
	case errors.Is(err, service.ErrProfileNotFound):
		abortWithError(c, http.StatusNotFound, "Session not found")
	case errors.Is(err, service.ErrProgramNotFound):
		abortWithError(c, http.StatusNotFound, "Training program not found")
	case errors.Is(err, service.ErrIncompleteProfile):
		abortWithError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrLLMService):
		abortWithError(c, http.StatusBadGateway, "Program generation failed, please retry later")
	case errors.Is(err, service.ErrExportUnavailable):
		abortWithError(c, http.StatusServiceUnavailable, "Program export is not available")
	default:
		abortWithError(c, http.StatusInternalServerError, "Internal server error")
	}
}
