package api

import (
	"alcyxob/hyrox-trainer/internal/domain"
	"alcyxob/hyrox-trainer/internal/service"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type ProgramHandler struct {
	programService service.ProgramService
}

func NewProgramHandler(programService service.ProgramService) *ProgramHandler {
	return &ProgramHandler{programService: programService}
}

// --- DTOs ---

// ProgramResponse wraps the current program; Program is null when the user
// has none.
type ProgramResponse struct {
	Program *domain.UserProgram `json:"program"`
}

// CompleteWorkoutRequest is the body of a completion. The slot comes from the
// path; every field is optional.
type CompleteWorkoutRequest struct {
	SessionID        string         `json:"sessionId"`
	ActualDuration   *int           `json:"actualDuration"`
	RPE              *int           `json:"rpe"`
	CompletionStatus string         `json:"completionStatus"`
	PercentComplete  *int           `json:"percentComplete"`
	Performance      map[string]any `json:"performance"`
}

// currentUser resolves the authenticated user or aborts with 401.
func currentUser(c *gin.Context) (string, bool) {
	userID, err := getUserIDFromContext(c)
	if err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return "", false
	}
	return userID, true
}

// GetCurrentProgram godoc
// @Summary Get the user's current program with its completions
// @Tags Program
// @Produce json
// @Security BearerAuth
// @Success 200 {object} ProgramResponse "program is null when none is active"
// @Router /program [get]
func (h *ProgramHandler) GetCurrentProgram(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	program, err := h.programService.GetCurrentProgram(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			c.JSON(http.StatusOK, ProgramResponse{})
			return
		}
		respondWithServiceError(c, err, "Failed to retrieve program.")
		return
	}
	c.JSON(http.StatusOK, ProgramResponse{Program: program})
}

// StartProgram godoc
// @Summary Start a program from a template or from personalization input
// @Description Replaces the current program and its completion history.
// @Tags Program
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.StartRequest true "Template id or personalization"
// @Success 201 {object} ProgramResponse
// @Failure 400 {object} gin.H "Validation error with details"
// @Failure 404 {object} gin.H "Template not found"
// @Router /program [post]
func (h *ProgramHandler) StartProgram(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req service.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	program, err := h.programService.StartProgram(c.Request.Context(), userID, req)
	if err != nil {
		respondWithServiceError(c, err, "Failed to start program.")
		return
	}
	c.JSON(http.StatusCreated, ProgramResponse{Program: program})
}

// QuitProgram godoc
// @Summary Quit the current program, deleting its history
// @Tags Program
// @Security BearerAuth
// @Success 204 "Program deleted"
// @Failure 404 {object} gin.H "No active program"
// @Router /program [delete]
func (h *ProgramHandler) QuitProgram(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.programService.QuitProgram(c.Request.Context(), userID); err != nil {
		respondWithServiceError(c, err, "Failed to quit program.")
		return
	}
	c.Status(http.StatusNoContent)
}

// GetTodayWorkout godoc
// @Summary Get today's workout with intensity-scaled targets
// @Tags Program
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.TodayWorkout
// @Failure 404 {object} gin.H "No active program"
// @Router /program/today [get]
func (h *ProgramHandler) GetTodayWorkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	today, err := h.programService.GetTodayWorkout(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to retrieve today's workout.")
		return
	}
	c.JSON(http.StatusOK, today)
}

// CompleteWorkout godoc
// @Summary Record a completion for a scheduled slot
// @Description Idempotent per slot: a repeated call overwrites the earlier record.
// @Tags Program
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param week path int true "Program week, 1-based"
// @Param day path int true "Day of week, 0 is Sunday"
// @Param request body CompleteWorkoutRequest false "Completion details"
// @Success 200 {object} domain.CompletedWorkout
// @Failure 400 {object} gin.H "Validation error with details"
// @Failure 404 {object} gin.H "No active program"
// @Router /program/weeks/{week}/days/{day}/completion [put]
func (h *ProgramHandler) CompleteWorkout(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	week, err := strconv.Atoi(c.Param("week"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "week must be an integer")
		return
	}
	day, err := strconv.Atoi(c.Param("day"))
	if err != nil {
		abortWithError(c, http.StatusBadRequest, "day must be an integer")
		return
	}
	var req CompleteWorkoutRequest
	if err = c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}

	completion, err := h.programService.CompleteWorkout(c.Request.Context(), userID, service.CompletionInput{
		Week:             week,
		DayOfWeek:        day,
		SessionID:        req.SessionID,
		ActualDuration:   req.ActualDuration,
		RPE:              req.RPE,
		CompletionStatus: domain.CompletionStatus(req.CompletionStatus),
		PercentComplete:  req.PercentComplete,
		Performance:      req.Performance,
	})
	if err != nil {
		respondWithServiceError(c, err, "Failed to record completion.")
		return
	}
	c.JSON(http.StatusOK, completion)
}

// GetMissedWorkouts godoc
// @Summary List missed workouts with recovery suggestions
// @Tags Program
// @Produce json
// @Security BearerAuth
// @Success 200 {object} domain.MissedWorkoutSummary
// @Failure 404 {object} gin.H "No active program"
// @Router /program/missed [get]
func (h *ProgramHandler) GetMissedWorkouts(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	summary, err := h.programService.GetMissedWorkouts(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to retrieve missed workouts.")
		return
	}
	c.JSON(http.StatusOK, summary)
}

// GetInsights godoc
// @Summary Get performance analysis, race readiness and progress
// @Tags Program
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Insights
// @Failure 404 {object} gin.H "No active program"
// @Router /program/insights [get]
func (h *ProgramHandler) GetInsights(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	insights, err := h.programService.GetInsights(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to compute insights.")
		return
	}
	c.JSON(http.StatusOK, insights)
}

// ExportProgram godoc
// @Summary Export the program as JSON to object storage
// @Tags Program
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.ExportResult
// @Failure 404 {object} gin.H "No active program"
// @Failure 503 {object} gin.H "Export storage not configured"
// @Router /program/export [post]
func (h *ProgramHandler) ExportProgram(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	res, err := h.programService.ExportProgram(c.Request.Context(), userID)
	if err != nil {
		respondWithServiceError(c, err, "Failed to export program.")
		return
	}
	c.JSON(http.StatusOK, res)
}
