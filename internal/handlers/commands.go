package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/models"
	"github.com/charlesng35/cmdstash/internal/services"
	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
	"github.com/charlesng35/cmdstash/pkg/metrics"
	"github.com/charlesng35/cmdstash/pkg/response"
)

type CommandHandler struct {
	svc      *services.CommandService
	importer *services.ImportService
}

func NewCommandHandler(svc *services.CommandService, importer *services.ImportService) *CommandHandler {
	return &CommandHandler{svc: svc, importer: importer}
}

type commandDTO struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Command     string   `json:"command"`
	Description string   `json:"description"`
	Platform    string   `json:"platform"`
	Tags        []string `json:"tags"`
	MainFolder  string   `json:"mainFolder"`
	SubFolder   *string  `json:"subFolder,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

func mapCommand(command *models.Command) commandDTO {
	tags := command.TagList()
	if tags == nil {
		tags = []string{}
	}
	return commandDTO{
		ID:          command.ID,
		Title:       command.Title,
		Command:     command.Command,
		Description: command.Description,
		Platform:    command.Platform,
		Tags:        tags,
		MainFolder:  command.MainFolderID,
		SubFolder:   command.SubFolderID,
		CreatedAt:   command.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   command.UpdatedAt.Format(time.RFC3339),
	}
}

func mapCommands(commands []models.Command) []commandDTO {
	dtos := make([]commandDTO, 0, len(commands))
	for i := range commands {
		dtos = append(dtos, mapCommand(&commands[i]))
	}
	return dtos
}

// List handles GET /api/commands with optional exact-match folder filters.
func (h *CommandHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	commands, err := h.svc.List(requestContext(c), userID, services.ListCommandsOptions{
		MainFolderID: c.Query("mainFolder"),
		SubFolderID:  c.Query("subFolder"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapCommands(commands))
}

type searchResultDTO struct {
	commandDTO
	MainFolderName string `json:"mainFolderName"`
	SubFolderName  string `json:"subFolderName,omitempty"`
}

// Search handles GET /api/commands/search?q=
func (h *CommandHandler) Search(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	results, err := h.svc.Search(requestContext(c), userID, c.Query("q"))
	if err != nil {
		response.Error(c, err)
		return
	}

	outcome := "hit"
	if len(results) == 0 {
		outcome = "miss"
	}
	metrics.CommandSearches.WithLabelValues(outcome).Inc()

	dtos := make([]searchResultDTO, 0, len(results))
	for i := range results {
		result := results[i]
		dtos = append(dtos, searchResultDTO{
			commandDTO:     mapCommand(&result.Command),
			MainFolderName: result.MainFolderName,
			SubFolderName:  result.SubFolderName,
		})
	}

	response.Success(c, http.StatusOK, dtos)
}

// Get handles GET /api/commands/:id
func (h *CommandHandler) Get(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	command, err := h.svc.Get(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapCommand(command))
}

type createCommandRequest struct {
	Title       string   `json:"title" validate:"required"`
	Command     string   `json:"command" validate:"required"`
	Description string   `json:"description" validate:"required"`
	Platform    string   `json:"platform"`
	Tags        []string `json:"tags"`
	MainFolder  string   `json:"mainFolder" validate:"required"`
	SubFolder   *string  `json:"subFolder"`
}

// Create handles POST /api/commands
func (h *CommandHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body createCommandRequest
	if !bindAndValidate(c, &body) {
		return
	}

	command, err := h.svc.Create(requestContext(c), userID, services.CreateCommandInput{
		Title:        body.Title,
		Command:      body.Command,
		Description:  body.Description,
		Platform:     body.Platform,
		Tags:         body.Tags,
		MainFolderID: body.MainFolder,
		SubFolderID:  body.SubFolder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, mapCommand(command))
}

type updateCommandRequest struct {
	Title       *string  `json:"title"`
	Command     *string  `json:"command"`
	Description *string  `json:"description"`
	Platform    *string  `json:"platform"`
	Tags        []string `json:"tags"`
	MainFolder  *string  `json:"mainFolder"`
	SubFolder   *string  `json:"subFolder"`
}

// Update handles PUT /api/commands/:id
func (h *CommandHandler) Update(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body updateCommandRequest
	if !bindAndValidate(c, &body) {
		return
	}

	command, err := h.svc.Update(requestContext(c), userID, c.Param("id"), services.UpdateCommandInput{
		Title:        body.Title,
		Command:      body.Command,
		Description:  body.Description,
		Platform:     body.Platform,
		Tags:         body.Tags,
		MainFolderID: body.MainFolder,
		SubFolderID:  body.SubFolder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, mapCommand(command))
}

// Delete handles DELETE /api/commands/:id
func (h *CommandHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.svc.Delete(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type batchImportRequest struct {
	Commands []services.ImportRow `json:"commands" validate:"required"`
}

// BatchImport handles POST /api/commands/batch. Each row carries its own
// mainFolder; rows missing required fields are dropped, not failed.
func (h *CommandHandler) BatchImport(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body batchImportRequest
	if !bindAndValidate(c, &body) {
		return
	}

	result, err := h.importer.Import(requestContext(c), userID, body.Commands, services.ImportContext{})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusCreated, mapCommands(result.Created), &response.Meta{
		Created: len(result.Created),
		Dropped: len(result.Dropped),
	})
}

// ImportCSV handles POST /api/commands/import. The raw CSV payload arrives in the
// request body; folder placement comes from query parameters.
func (h *CommandHandler) ImportCSV(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	mainFolder := strings.TrimSpace(c.Query("mainFolder"))
	if mainFolder == "" {
		response.Error(c, apperrors.NewBadRequest("mainFolder query parameter is required"))
		return
	}

	result, err := h.importer.ImportCSV(requestContext(c), userID, c.Request.Body, services.ImportContext{
		MainFolderID: mainFolder,
		SubFolderID:  c.Query("subFolder"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusCreated, mapCommands(result.Created), &response.Meta{
		Created: len(result.Created),
		Dropped: len(result.Dropped),
	})
}
