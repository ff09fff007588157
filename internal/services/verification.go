package services

import (
  "context"
  "crypto/rand"
  "fmt"
  "math/big"
  "strings"
  "time"

  "gorm.io/gorm"

  "github.com/autolog-org/autolog-backend/internal/errordata"
  "github.com/autolog-org/autolog-backend/internal/logger"
  "github.com/autolog-org/autolog-backend/internal/normalization"
  "github.com/autolog-org/autolog-backend/internal/ratelimit"
  "github.com/autolog-org/autolog-backend/internal/repos"
  "github.com/autolog-org/autolog-backend/internal/types"
)

const smsDispatchBudget = 5 * time.Second

// VehicleSummary is the shape of vehicle descriptors returned to the UI
// after issuance. It never carries owner contact details.
type VehicleSummary struct {
  Make  string `json:"make"`
  Model string `json:"model"`
  Year  string `json:"year"`
  Color string `json:"color"`
  Plate string `json:"plate"`
}

// CodeIssuance is the confirmation for a successful RequestCode. PhoneLabel
// is the masked owner phone; the code itself is never part of the response.
type CodeIssuance struct {
  PhoneLabel string
  Vehicle    VehicleSummary
}

type VerificationService interface {
  RequestCode(ctx context.Context, rawPlate string) (*CodeIssuance, error)
  ResolveVehicle(ctx context.Context, rawPlate string) (*types.Vehicle, error)
  MatchValidCode(ctx context.Context, rawPlate string, submitted string) (*types.VerificationCode, error)
}

type verificationService struct {
  db                   *gorm.DB
  log                  *logger.Logger
  vehicleRepo          repos.VehicleRepo
  verificationCodeRepo repos.VerificationCodeRepo
  textService          TextService
  limiter              ratelimit.Limiter
  codeTTL              time.Duration
}

func NewVerificationService(
  db *gorm.DB,
  log *logger.Logger,
  vehicleRepo repos.VehicleRepo,
  verificationCodeRepo repos.VerificationCodeRepo,
  textService TextService,
  limiter ratelimit.Limiter,
  codeTTL time.Duration,
) VerificationService {
  serviceLog := log.With("service", "VerificationService")
  if limiter == nil {
    limiter = ratelimit.NoopLimiter{}
  }
  return &verificationService{
    db:                   db,
    log:                  serviceLog,
    vehicleRepo:          vehicleRepo,
    verificationCodeRepo: verificationCodeRepo,
    textService:          textService,
    limiter:              limiter,
    codeTTL:              codeTTL,
  }
}

// ResolveVehicle turns a raw plate string into exactly one vehicle with its
// owner preloaded. Candidates are tried in normalization order, so a vehicle
// stored under the exact form the requester typed wins over one stored under
// the swapped-separator fallback.
func (vs *verificationService) ResolveVehicle(ctx context.Context, rawPlate string) (*types.Vehicle, error) {
  candidates := normalization.PlateCandidates(rawPlate)
  vs.log.Debug("Resolving vehicle from plate candidates", "candidates", candidates)

  vehicles, err := vs.vehicleRepo.GetByPlateCandidates(ctx, nil, candidates)
  if err != nil {
    vs.log.Error("Vehicle lookup failed", "error", err)
    return nil, fmt.Errorf("failed to look up vehicle by plate: %w", err)
  }
  if len(vehicles) == 0 {
    vs.log.Warn("No vehicle found for any plate candidate", "candidates", candidates)
    errordata.SetUserMessage(ctx, "Vehicle not found. Please check the plate number.")
    return nil, types.ErrVehicleNotFound
  }

  for _, candidate := range candidates {
    for i := range vehicles {
      if strings.ToUpper(vehicles[i].PlateNumber) == candidate {
        vs.log.Debug("Resolved vehicle", "vehicleID", vehicles[i].ID, "candidate", candidate)
        return &vehicles[i], nil
      }
    }
  }
  // Matching was case-insensitive against the same candidate set, so one of
  // the loops above always hits; this is a safety net, not a code path.
  return &vehicles[0], nil
}

func (vs *verificationService) RequestCode(ctx context.Context, rawPlate string) (*CodeIssuance, error) {
  plate := normalization.CanonicalPlate(rawPlate)
  if plate == "" {
    errordata.SetUserMessage(ctx, "Plate number is required.")
    return nil, types.ErrMissingInput
  }

  //1) Admission pre-check, keyed by plate
  allowed, err := vs.limiter.Allow(ctx, "plate:"+plate)
  if err != nil {
    vs.log.Warn("Rate limiter errored, allowing request", "error", err)
  } else if !allowed {
    errordata.SetUserMessage(ctx, "Too many verification requests for this plate. Please try again later.")
    return nil, types.ErrRateLimited
  }

  //2) Resolve vehicle and owner contact
  vehicle, err := vs.ResolveVehicle(ctx, rawPlate)
  if err != nil {
    return nil, err
  }
  if vehicle.Owner == nil || strings.TrimSpace(vehicle.Owner.PhoneNumber) == "" {
    vs.log.Warn("Resolved vehicle has no owner phone on file", "vehicleID", vehicle.ID)
    errordata.SetUserMessage(ctx, "The vehicle owner has no phone number on file. Verification cannot proceed.")
    return nil, types.ErrOwnerContactMissing
  }
  ownerPhone := strings.TrimSpace(vehicle.Owner.PhoneNumber)

  //3) Generate and persist the code. The request must not report success
  //   unless the code is durably stored.
  code, err := generateCode()
  if err != nil {
    vs.log.Error("Failed to generate verification code", "error", err)
    return nil, fmt.Errorf("failed to generate verification code: %w", err)
  }
  record := types.VerificationCode{
    PlateNumber: plate,
    PhoneNumber: ownerPhone,
    Code:        code,
    ExpiresAt:   time.Now().Add(vs.codeTTL),
    Consumed:    false,
  }
  if _, err := vs.verificationCodeRepo.Create(ctx, nil, []types.VerificationCode{record}); err != nil {
    vs.log.Error("Failed to persist verification code", "error", err, "plate", plate)
    return nil, fmt.Errorf("failed to store verification code: %w", err)
  }

  //4) Dispatch the SMS. Best effort: the code is stored, so a transport
  //   failure is logged and the request still succeeds.
  smsCtx, cancel := context.WithTimeout(ctx, smsDispatchBudget)
  defer cancel()
  body := fmt.Sprintf("Hi %s, your vehicle service verification code is %s. It expires in %d minutes. Share it only with the mechanic servicing your vehicle.", vehicle.Owner.DisplayName(), code, int(vs.codeTTL.Minutes()))
  if err := vs.textService.SendText(smsCtx, ownerPhone, body); err != nil {
    vs.log.Warn("SMS dispatch failed; code remains valid and can be relayed another way", "error", err, "plate", plate)
  }

  vs.log.Info("Verification code issued", "plate", plate, "phoneLabel", maskPhone(ownerPhone))
  return &CodeIssuance{
    PhoneLabel: maskPhone(ownerPhone),
    Vehicle: VehicleSummary{
      Make:  vehicle.Make,
      Model: vehicle.VehicleModel,
      Year:  vehicle.Year,
      Color: vehicle.Color,
      Plate: vehicle.PlateNumber,
    },
  }, nil
}

// MatchValidCode checks a submitted code against the most recently issued
// unconsumed, unexpired code for the plate. Every failure collapses into
// ErrInvalidOrExpiredCode so the response never reveals whether the code was
// wrong, stale or already used.
func (vs *verificationService) MatchValidCode(ctx context.Context, rawPlate string, submitted string) (*types.VerificationCode, error) {
  plate := normalization.CanonicalPlate(rawPlate)
  submitted = strings.TrimSpace(submitted)
  if plate == "" || submitted == "" {
    errordata.SetUserMessage(ctx, "Plate number and verification code are required.")
    return nil, types.ErrInvalidOrExpiredCode
  }

  record, err := vs.verificationCodeRepo.GetLatestValid(ctx, nil, plate, time.Now())
  if err != nil {
    vs.log.Error("Failed to look up verification code", "error", err, "plate", plate)
    return nil, fmt.Errorf("failed to look up verification code: %w", err)
  }
  if record == nil || record.Code != submitted {
    vs.log.Warn("Verification code rejected", "plate", plate)
    errordata.SetUserMessage(ctx, "Invalid or expired verification code.")
    return nil, types.ErrInvalidOrExpiredCode
  }
  return record, nil
}

// generateCode draws a 4-digit code in [1000, 9999] from crypto/rand so a
// requester cannot predict it.
func generateCode() (string, error) {
  n, err := rand.Int(rand.Reader, big.NewInt(9000))
  if err != nil {
    return "", err
  }
  return fmt.Sprintf("%d", 1000+n.Int64()), nil
}

// maskPhone keeps only the last four digits visible: "0241234567" becomes
// "******4567".
func maskPhone(phone string) string {
  if len(phone) <= 4 {
    return strings.Repeat("*", len(phone))
  }
  return strings.Repeat("*", len(phone)-4) + phone[len(phone)-4:]
}
