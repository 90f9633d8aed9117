package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/lk2023060901/creatorsim/app/game/internal/service"
	"github.com/lk2023060901/creatorsim/pkg/logger"
	"github.com/lk2023060901/creatorsim/pkg/web"
)

// MasterDataHandler 主数据只读接口，无需认证
type MasterDataHandler struct {
	logger        logger.Logger
	masterDataSvc *service.MasterDataService
}

func NewMasterDataHandler(l logger.Logger, masterDataSvc *service.MasterDataService) *MasterDataHandler {
	return &MasterDataHandler{
		logger:        l.Named("handler.masterdata"),
		masterDataSvc: masterDataSvc,
	}
}

func (h *MasterDataHandler) RegisterPublic(r gin.IRouter) {
	r.GET("/master-data/version", h.HandleVersion)
	r.GET("/master-data", h.HandleDump)
}

func (h *MasterDataHandler) HandleVersion(c *gin.Context) {
	tb := h.masterDataSvc.Dump()
	web.Success(c, gin.H{"version": tb.Version, "checksum": tb.Checksum})
}

// HandleDump 支持 If-None-Match，表未变化时返回 304
func (h *MasterDataHandler) HandleDump(c *gin.Context) {
	tb := h.masterDataSvc.Dump()
	etag := `"` + tb.Checksum + `"`
	c.Header("ETag", etag)
	if c.GetHeader("If-None-Match") == etag {
		c.Status(http.StatusNotModified)
		return
	}
	web.Success(c, tb)
}
