package handlers

import (
	"cosecha/services/capability"

	"github.com/gin-gonic/gin"
)

// HandlerBundle carries the assembled handlers and the shared capability
// resolver into route registration.
type HandlerBundle struct {
	Capability capability.Resolver

	// Collection endpoints.
	SubmitCollectionHandler  gin.HandlerFunc
	ApproveCollectionHandler gin.HandlerFunc
	RejectCollectionHandler  gin.HandlerFunc

	// Lot read surfaces.
	LotSummaryHandler gin.HandlerFunc
	LotStreamHandler  gin.HandlerFunc

	// Lot document endpoints.
	GetLotHandler                 gin.HandlerFunc
	UpdateLotStatusHandler        gin.HandlerFunc
	UpdateLotCollaboratorsHandler gin.HandlerFunc
}
