package handlers

import (
	"errors"
	"net/http"

	lotRepo "cosecha/database/repository/lot"
	"cosecha/utils"

	"github.com/gin-gonic/gin"
)

// LotHandler covers the single-document lot reads and writes.
type LotHandler struct {
	Lots lotRepo.LotRepository
}

func NewLotHandler(lots lotRepo.LotRepository) *LotHandler {
	return &LotHandler{Lots: lots}
}

// GetLotHandler returns one lot by ID.
func (h *LotHandler) GetLotHandler(c *gin.Context) {
	lot, err := h.Lots.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, lotRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown lot", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to fetch lot", err.Error())
		return
	}
	c.JSON(http.StatusOK, lot)
}

// UpdateLotStatusHandler sets the lot status.
func (h *LotHandler) UpdateLotStatusHandler(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Lots.UpdateStatus(c.Request.Context(), c.Param("id"), input.Status); err != nil {
		if errors.Is(err, lotRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown lot", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to update lot", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}

// UpdateLotCollaboratorsHandler replaces the lot's assigned collaborators.
func (h *LotHandler) UpdateLotCollaboratorsHandler(c *gin.Context) {
	var input struct {
		CollaboratorIDs []string `json:"collaboratorIds"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	if err := h.Lots.SetAssignedCollaborators(c.Request.Context(), c.Param("id"), input.CollaboratorIDs); err != nil {
		if errors.Is(err, lotRepo.ErrNotFound) {
			utils.JSONError(c, http.StatusNotFound, "unknown lot", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to update collaborators", err.Error())
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "updated"})
}
