package api

import (
	"alcyxob/hyrox-trainer/internal/generator"
	"alcyxob/hyrox-trainer/internal/service"
	"net/http"

	"github.com/gin-gonic/gin"
)

type TemplateHandler struct {
	programService service.ProgramService
}

func NewTemplateHandler(programService service.ProgramService) *TemplateHandler {
	return &TemplateHandler{programService: programService}
}

// ListTemplates godoc
// @Summary List program templates
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Success 200 {array} domain.ProgramTemplate
// @Router /templates [get]
func (h *TemplateHandler) ListTemplates(c *gin.Context) {
	c.JSON(http.StatusOK, h.programService.ListTemplates(c.Request.Context()))
}

// GetTemplate godoc
// @Summary Get a program template with its full schedule
// @Tags Templates
// @Produce json
// @Security BearerAuth
// @Param templateId path string true "Template ID"
// @Success 200 {object} domain.ProgramTemplate
// @Failure 404 {object} gin.H "Template not found"
// @Router /templates/{templateId} [get]
func (h *TemplateHandler) GetTemplate(c *gin.Context) {
	tmpl, err := h.programService.GetTemplate(c.Request.Context(), c.Param("templateId"))
	if err != nil {
		respondWithServiceError(c, err, "Failed to retrieve template.")
		return
	}
	c.JSON(http.StatusOK, tmpl)
}

// ValidatePersonalization godoc
// @Summary Check personalization input without starting a program
// @Tags Templates
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param input body generator.PersonalizationInput true "Personalization"
// @Success 200 {object} generator.ValidationResult
// @Failure 400 {object} gin.H "Malformed body"
// @Router /personalization/validate [post]
func (h *TemplateHandler) ValidatePersonalization(c *gin.Context) {
	var req generator.PersonalizationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, http.StatusBadRequest, "Invalid request body: "+err.Error())
		return
	}
	c.JSON(http.StatusOK, h.programService.ValidatePersonalization(c.Request.Context(), req))
}
