package handlers

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"cosecha/middleware"
	"cosecha/models"
	"cosecha/services/harvest"
	"cosecha/services/identity"
	"cosecha/services/stream"
	"cosecha/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// HarvestHandler exposes the submission/approval write path and the
// aggregate read surfaces.
type HarvestHandler struct {
	Service     harvest.HarvestService
	Trees       stream.TreeSource
	Collections stream.CollectionSource
	Identity    identity.Resolver
	Logger      *zap.Logger
}

func NewHarvestHandler(
	service harvest.HarvestService,
	trees stream.TreeSource,
	collections stream.CollectionSource,
	identityResolver identity.Resolver,
	logger *zap.Logger,
) *HarvestHandler {
	return &HarvestHandler{
		Service:     service,
		Trees:       trees,
		Collections: collections,
		Identity:    identityResolver,
		Logger:      logger,
	}
}

// SubmitCollectionHandler records a new harvest event for the caller.
func (h *HarvestHandler) SubmitCollectionHandler(c *gin.Context) {
	var input harvest.SubmitCollectionInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	input.CollectorID = middleware.CallerID(c)

	record, err := h.Service.SubmitCollection(c.Request.Context(), input)
	if err != nil {
		if harvest.IsValidation(err) {
			utils.JSONError(c, http.StatusBadRequest, "invalid collection", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to submit collection", err.Error())
		return
	}

	c.JSON(http.StatusCreated, record)
}

// ApproveCollectionHandler approves a pending record as the caller.
func (h *HarvestHandler) ApproveCollectionHandler(c *gin.Context) {
	recordID := c.Param("id")

	record, err := h.Service.Approve(c.Request.Context(), recordID, middleware.CallerID(c))
	if err != nil {
		if harvest.IsValidation(err) {
			utils.JSONError(c, http.StatusConflict, "cannot approve", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to approve collection", err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

// RejectCollectionHandler rejects a pending record as the caller.
func (h *HarvestHandler) RejectCollectionHandler(c *gin.Context) {
	recordID := c.Param("id")
	var input struct {
		Reason string `json:"reason"`
	}
	if err := c.ShouldBindJSON(&input); err != nil && err != io.EOF {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}

	record, err := h.Service.Reject(c.Request.Context(), recordID, middleware.CallerID(c), input.Reason)
	if err != nil {
		if harvest.IsValidation(err) {
			utils.JSONError(c, http.StatusConflict, "cannot reject", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to reject collection", err.Error())
		return
	}

	c.JSON(http.StatusOK, record)
}

// LotSummaryHandler computes the lot aggregate once from current store state.
func (h *HarvestHandler) LotSummaryHandler(c *gin.Context) {
	lotID := c.Param("id")
	include, err := parseStatuses(c.Query("statuses"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid statuses filter", err.Error())
		return
	}

	agg, err := h.Service.LotSummary(c.Request.Context(), lotID, include)
	if err != nil {
		if harvest.IsValidation(err) {
			utils.JSONError(c, http.StatusNotFound, "unknown lot", err.Error())
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "failed to compute summary", err.Error())
		return
	}

	c.JSON(http.StatusOK, agg)
}

// LotStreamHandler attaches a lot session for the lifetime of the connection
// and streams every recomputed aggregate as a server-sent event.
func (h *HarvestHandler) LotStreamHandler(c *gin.Context) {
	lotID := c.Param("id")
	include, err := parseStatuses(c.Query("statuses"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid statuses filter", err.Error())
		return
	}

	updates := make(chan models.Aggregate, 8)
	session := &stream.LotSession{
		Trees:       h.Trees,
		Collections: h.Collections,
		Identity:    h.Identity,
		Include:     include,
		Publish: func(agg models.Aggregate) {
			select {
			case updates <- agg:
			default:
				// Slow consumer: drop the intermediate state, a newer
				// aggregate supersedes it anyway.
			}
		},
	}

	if err := session.Attach(lotID); err != nil {
		utils.JSONError(c, http.StatusInternalServerError, "failed to open lot stream", err.Error())
		return
	}
	defer session.Detach()

	h.Logger.Info("lot stream opened", zap.String("lotId", lotID))
	clientGone := c.Request.Context().Done()
	c.Stream(func(w io.Writer) bool {
		select {
		case <-clientGone:
			return false
		case agg := <-updates:
			c.SSEvent("aggregate", agg)
			return true
		}
	})
	h.Logger.Info("lot stream closed", zap.String("lotId", lotID))
}

// parseStatuses turns the comma-separated statuses query into a StatusSet.
// No filter means every status participates.
func parseStatuses(q string) (harvest.StatusSet, error) {
	if q == "" {
		return harvest.AllStatuses(), nil
	}
	var statuses []models.CollectionStatus
	for _, part := range strings.Split(q, ",") {
		switch s := models.CollectionStatus(strings.TrimSpace(part)); s {
		case models.StatusPending, models.StatusApproved, models.StatusRejected:
			statuses = append(statuses, s)
		default:
			return nil, fmt.Errorf("unknown status %q", part)
		}
	}
	return harvest.Statuses(statuses...), nil
}
