package services

import (
  "context"
  "errors"
  "fmt"
  "strconv"
  "strings"
  "time"

  "github.com/google/uuid"
  "gorm.io/gorm"

  "github.com/autolog-org/autolog-backend/internal/errordata"
  "github.com/autolog-org/autolog-backend/internal/logger"
  "github.com/autolog-org/autolog-backend/internal/repos"
  "github.com/autolog-org/autolog-backend/internal/types"
)

// ServiceLogSubmission is the mechanic-entered payload for one verified
// service-history entry. Mileage and cost arrive as strings from the form
// and are parsed leniently.
type ServiceLogSubmission struct {
  PlateNumber  string
  Code         string
  Description  string
  ProviderName string
  Mileage      string
  Cost         string
  DocumentURL  string
}

type ServiceLogService interface {
  SubmitVerifiedLog(ctx context.Context, sub *ServiceLogSubmission) error
  GetHistoryByPlate(ctx context.Context, rawPlate string) ([]types.ServiceHistoryEntry, error)
}

type serviceLogService struct {
  db                  *gorm.DB
  log                 *logger.Logger
  verificationService VerificationService
  serviceHistoryRepo  repos.ServiceHistoryRepo
}

func NewServiceLogService(
  db *gorm.DB,
  log *logger.Logger,
  verificationService VerificationService,
  serviceHistoryRepo repos.ServiceHistoryRepo,
) ServiceLogService {
  serviceLog := log.With("service", "ServiceLogService")
  return &serviceLogService{
    db:                  db,
    log:                 serviceLog,
    verificationService: verificationService,
    serviceHistoryRepo:  serviceHistoryRepo,
  }
}

// SubmitVerifiedLog runs the verify-and-submit flow: resolve the vehicle,
// match the code, then atomically consume the code and write the entry. A
// second submission racing on the same code loses inside the repo
// transaction and surfaces as an invalid code.
func (sls *serviceLogService) SubmitVerifiedLog(ctx context.Context, sub *ServiceLogSubmission) error {
  if sub == nil {
    return types.ErrMissingInput
  }

  //1) Input validation before any storage access
  if strings.TrimSpace(sub.PlateNumber) == "" || strings.TrimSpace(sub.Code) == "" {
    errordata.SetUserMessage(ctx, "Plate number and verification code are required.")
    return types.ErrMissingInput
  }
  if strings.TrimSpace(sub.Description) == "" || strings.TrimSpace(sub.ProviderName) == "" {
    errordata.SetUserMessage(ctx, "Service description and provider name are required.")
    return types.ErrMissingInput
  }

  //2) The vehicle must still resolve; it was resolvable at issuance time
  vehicle, err := sls.verificationService.ResolveVehicle(ctx, sub.PlateNumber)
  if err != nil {
    if errors.Is(err, types.ErrVehicleNotFound) {
      sls.log.Error("Vehicle disappeared between issuance and submission", "plate", sub.PlateNumber)
      errordata.SetUserMessage(ctx, "Vehicle record could not be found. Please contact support.")
    }
    return err
  }

  //3) Match the submitted code
  code, err := sls.verificationService.MatchValidCode(ctx, sub.PlateNumber, sub.Code)
  if err != nil {
    return err
  }

  //4) Build the entry; malformed numerics record as zero rather than
  //   blocking the fact that service happened
  entry := &types.ServiceHistoryEntry{
    VehicleID:    vehicle.ID,
    Description:  strings.TrimSpace(sub.Description),
    ServiceDate:  time.Now(),
    ProviderName: strings.TrimSpace(sub.ProviderName),
    Mileage:      parseLenientFloat(sub.Mileage),
    Cost:         parseLenientFloat(sub.Cost),
    Verified:     true,
  }
  if doc := strings.TrimSpace(sub.DocumentURL); doc != "" {
    entry.DocumentURL = &doc
  }

  //5) Consume the code and write the entry in one transaction
  if _, err := sls.serviceHistoryRepo.CreateVerified(ctx, nil, entry, code.ID); err != nil {
    if errors.Is(err, types.ErrCodeAlreadyConsumed) {
      sls.log.Warn("Verification code consumed by a concurrent submission", "codeID", code.ID)
      errordata.SetUserMessage(ctx, "Invalid or expired verification code.")
      return types.ErrInvalidOrExpiredCode
    }
    sls.log.Error("Failed to write verified service history entry", "error", err, "vehicleID", vehicle.ID)
    return fmt.Errorf("failed to write service history entry: %w", err)
  }

  sls.log.Info("Verified service history entry recorded", "vehicleID", vehicle.ID, "entryID", entry.ID)
  return nil
}

func (sls *serviceLogService) GetHistoryByPlate(ctx context.Context, rawPlate string) ([]types.ServiceHistoryEntry, error) {
  vehicle, err := sls.verificationService.ResolveVehicle(ctx, rawPlate)
  if err != nil {
    return nil, err
  }
  entries, err := sls.serviceHistoryRepo.GetByVehicleIDs(ctx, nil, []uuid.UUID{vehicle.ID})
  if err != nil {
    sls.log.Error("Failed to fetch service history", "error", err, "vehicleID", vehicle.ID)
    return nil, fmt.Errorf("failed to fetch service history: %w", err)
  }
  return entries, nil
}

// parseLenientFloat parses a numeric form field, substituting 0 for anything
// unparsable.
func parseLenientFloat(s string) float64 {
  v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
  if err != nil {
    return 0
  }
  return v
}
