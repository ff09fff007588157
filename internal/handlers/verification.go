package handlers

import (
  "context"
  "errors"
  "net/http"
  "time"

  "github.com/gin-gonic/gin"

  "github.com/autolog-org/autolog-backend/internal/errordata"
  "github.com/autolog-org/autolog-backend/internal/normalization"
  "github.com/autolog-org/autolog-backend/internal/services"
  "github.com/autolog-org/autolog-backend/internal/types"
)

// Storage budget for one request; the hosting platform is no longer relied on
// to cut off a hung backend call.
const requestBudget = 10 * time.Second

type VerificationHandler struct {
  verificationService services.VerificationService
  serviceLogService   services.ServiceLogService
}

func NewVerificationHandler(verificationService services.VerificationService, serviceLogService services.ServiceLogService) *VerificationHandler {
  return &VerificationHandler{
    verificationService: verificationService,
    serviceLogService:   serviceLogService,
  }
}

type RequestCodeRequest struct {
  PlateNumber string `json:"plateNumber"`
}

func (vh *VerificationHandler) RequestCode(c *gin.Context) {
  var req RequestCodeRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
    return
  }
  req.PlateNumber = normalization.ParseInputString(req.PlateNumber)
  if req.PlateNumber == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number is required."})
    return
  }

  ctx, cancel := boundedContext(c)
  defer cancel()

  issuance, err := vh.verificationService.RequestCode(ctx, req.PlateNumber)
  if err != nil {
    status, msg := mapError(ctx, err)
    c.JSON(status, gin.H{"error": msg})
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "success":    true,
    "message":    "A verification code has been sent to the vehicle owner.",
    "phoneLabel": issuance.PhoneLabel,
    "vehicle":    issuance.Vehicle,
  })
}

type SubmitServiceLogRequest struct {
  PlateNumber string `json:"plateNumber"`
  Code        string `json:"code"`
  ServiceData struct {
    Description  string `json:"description"`
    ProviderName string `json:"providerName"`
    Mileage      string `json:"mileage"`
    Cost         string `json:"cost"`
    DocumentURL  string `json:"documentUrl,omitempty"`
  } `json:"serviceData"`
}

func (vh *VerificationHandler) SubmitServiceLog(c *gin.Context) {
  var req SubmitServiceLogRequest
  if err := c.ShouldBindJSON(&req); err != nil {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
    return
  }
  req.PlateNumber = normalization.ParseInputString(req.PlateNumber)
  req.Code = normalization.ParseInputString(req.Code)
  if req.PlateNumber == "" || req.Code == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Plate number and verification code are required."})
    return
  }
  if req.ServiceData.Description == "" || req.ServiceData.ProviderName == "" {
    c.JSON(http.StatusBadRequest, gin.H{"error": "Service description and provider name are required."})
    return
  }

  ctx, cancel := boundedContext(c)
  defer cancel()

  sub := &services.ServiceLogSubmission{
    PlateNumber:  req.PlateNumber,
    Code:         req.Code,
    Description:  req.ServiceData.Description,
    ProviderName: req.ServiceData.ProviderName,
    Mileage:      req.ServiceData.Mileage,
    Cost:         req.ServiceData.Cost,
    DocumentURL:  req.ServiceData.DocumentURL,
  }
  if err := vh.serviceLogService.SubmitVerifiedLog(ctx, sub); err != nil {
    status, msg := mapError(ctx, err)
    c.JSON(status, gin.H{"error": msg})
    return
  }
  c.JSON(http.StatusOK, gin.H{
    "success": true,
    "message": "Verified service record saved to the vehicle's history.",
  })
}

// boundedContext installs the request-scoped error message carrier and the
// storage timeout budget.
func boundedContext(c *gin.Context) (context.Context, context.CancelFunc) {
  ctx := errordata.WithErrorData(c.Request.Context())
  c.Request = c.Request.WithContext(ctx)
  return context.WithTimeout(ctx, requestBudget)
}

// mapError converts a service failure into a status code and the user-facing
// phrasing the service layer recorded, never internal detail.
func mapError(ctx context.Context, err error) (int, string) {
  status := http.StatusInternalServerError
  switch {
  case errors.Is(err, types.ErrMissingInput):
    status = http.StatusBadRequest
  case errors.Is(err, types.ErrVehicleNotFound):
    status = http.StatusNotFound
  case errors.Is(err, types.ErrOwnerContactMissing):
    status = http.StatusBadRequest
  case errors.Is(err, types.ErrInvalidOrExpiredCode):
    status = http.StatusBadRequest
  case errors.Is(err, types.ErrRateLimited):
    status = http.StatusTooManyRequests
  }
  if ed := errordata.GetErrorData(ctx); ed != nil && ed.HasMessage() {
    return status, ed.Message
  }
  if status == http.StatusInternalServerError {
    return status, "Something went wrong on our side. Please try again."
  }
  return status, err.Error()
}
