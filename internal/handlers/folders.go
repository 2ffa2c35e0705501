package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/charlesng35/cmdstash/internal/middleware"
	"github.com/charlesng35/cmdstash/internal/services"
	apperrors "github.com/charlesng35/cmdstash/pkg/errors"
	"github.com/charlesng35/cmdstash/pkg/response"
)

type FolderHandler struct {
	svc *services.FolderService
}

func NewFolderHandler(svc *services.FolderService) *FolderHandler {
	return &FolderHandler{svc: svc}
}

func callerID(c *gin.Context) (string, bool) {
	userID := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return "", false
	}
	return userID, true
}

type mainFolderRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CreateMain handles POST /api/folders/main
func (h *FolderHandler) CreateMain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body mainFolderRequest
	if !bindAndValidate(c, &body) {
		return
	}

	folder, err := h.svc.CreateMainFolder(requestContext(c), userID, services.MainFolderInput{
		Name:        body.Name,
		Description: body.Description,
		Icon:        body.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, folder)
}

// ListMain handles GET /api/folders/main
func (h *FolderHandler) ListMain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	folders, err := h.svc.ListMainFolders(requestContext(c), userID)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, folders)
}

// GetMain handles GET /api/folders/main/:id
func (h *FolderHandler) GetMain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	folder, err := h.svc.GetMainFolder(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, folder)
}

type updateMainFolderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// UpdateMain handles PUT /api/folders/main/:id
func (h *FolderHandler) UpdateMain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body updateMainFolderRequest
	if !bindAndValidate(c, &body) {
		return
	}

	folder, err := h.svc.UpdateMainFolder(requestContext(c), userID, c.Param("id"), services.MainFolderInput{
		Name:        body.Name,
		Description: body.Description,
		Icon:        body.Icon,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, folder)
}

// DeleteMain handles DELETE /api/folders/main/:id
func (h *FolderHandler) DeleteMain(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteMainFolder(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}

type subFolderRequest struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`
	MainFolder  string `json:"mainFolder" validate:"required"`
}

// CreateSub handles POST /api/folders/sub
func (h *FolderHandler) CreateSub(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body subFolderRequest
	if !bindAndValidate(c, &body) {
		return
	}

	folder, err := h.svc.CreateSubFolder(requestContext(c), userID, services.SubFolderInput{
		Name:         body.Name,
		Description:  body.Description,
		MainFolderID: body.MainFolder,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, folder)
}

// ListSub handles GET /api/folders/sub/:mainFolderId
func (h *FolderHandler) ListSub(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	folders, err := h.svc.ListSubFolders(requestContext(c), userID, c.Param("mainFolderId"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, folders)
}

// GetSub handles GET /api/folders/sub/single/:id
func (h *FolderHandler) GetSub(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	folder, err := h.svc.GetSubFolder(requestContext(c), userID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, folder)
}

type updateSubFolderRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// UpdateSub handles PUT /api/folders/sub/:id
func (h *FolderHandler) UpdateSub(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	var body updateSubFolderRequest
	if !bindAndValidate(c, &body) {
		return
	}

	folder, err := h.svc.UpdateSubFolder(requestContext(c), userID, c.Param("id"), services.SubFolderInput{
		Name:        body.Name,
		Description: body.Description,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, folder)
}

// DeleteSub handles DELETE /api/folders/sub/:id
func (h *FolderHandler) DeleteSub(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}

	if err := h.svc.DeleteSubFolder(requestContext(c), userID, c.Param("id")); err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"deleted": true})
}
