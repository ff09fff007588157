package handlers

import (
  "net/http"

  "github.com/gin-gonic/gin"

  "github.com/autolog-org/autolog-backend/internal/services"
)

type HistoryHandler struct {
  serviceLogService services.ServiceLogService
}

func NewHistoryHandler(serviceLogService services.ServiceLogService) *HistoryHandler {
  return &HistoryHandler{serviceLogService: serviceLogService}
}

func (hh *HistoryHandler) GetVehicleHistory(c *gin.Context) {
  plate := c.Param("plate")
  if plate == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number is required."})
    return
  }

  ctx, cancel := boundedContext(c)
  defer cancel()

  entries, err := hh.serviceLogService.GetHistoryByPlate(ctx, plate)
  if err != nil {
    status, msg := mapError(ctx, err)
    c.JSON(status, gin.H{"error": msg})
    return
  }
  c.JSON(http.StatusOK, gin.H{"success": true, "entries": entries})
}
