package repos

import (
    "context"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/autolog-org/autolog-backend/internal/logger"
    "github.com/autolog-org/autolog-backend/internal/types"
)

type ServiceHistoryRepo interface {
    // CREATE
    CreateVerified(ctx context.Context, tx *gorm.DB, entry *types.ServiceHistoryEntry, codeID uuid.UUID) (*types.ServiceHistoryEntry, error)

    // READ
    GetByVehicleIDs(ctx context.Context, tx *gorm.DB, vehicleIDs []uuid.UUID) ([]types.ServiceHistoryEntry, error)
}

type serviceHistoryRepo struct {
    db               *gorm.DB
    log              *logger.Logger
    verificationRepo VerificationCodeRepo
}

func NewServiceHistoryRepo(db *gorm.DB, baseLog *logger.Logger, verificationRepo VerificationCodeRepo) ServiceHistoryRepo {
    repoLog := baseLog.With("repo", "ServiceHistoryRepo")
    return &serviceHistoryRepo{db: db, log: repoLog, verificationRepo: verificationRepo}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

// CreateVerified retires the verification code and writes the history entry
// in one transaction. The conditional consume acts as the gate: when two
// submissions race on the same code, the loser's consume matches zero rows
// and its entry is never written.
func (shr *serviceHistoryRepo) CreateVerified(ctx context.Context, tx *gorm.DB, entry *types.ServiceHistoryEntry, codeID uuid.UUID) (*types.ServiceHistoryEntry, error) {
    shr.log.Info("Starting CreateVerified for ServiceHistoryEntry now...", "codeID", codeID)

    transaction := tx
    if transaction == nil {
        transaction = shr.db
        shr.log.Debug("Transaction is nil, using shr.db")
    }

    if entry == nil {
        shr.log.Warn("No ServiceHistoryEntry provided, skipping")
        return nil, gorm.ErrInvalidData
    }
    entry.Verified = true

    err := transaction.WithContext(ctx).Transaction(func(innerTx *gorm.DB) error {
        if err := shr.verificationRepo.Consume(ctx, innerTx, codeID); err != nil {
            return err
        }
        if err := innerTx.Create(entry).Error; err != nil {
            shr.log.Error("Failed to create verified service history entry", "error", err)
            return err
        }
        return nil
    })
    if err != nil {
        shr.log.Warn("CreateVerified transaction rolled back", "error", err, "codeID", codeID)
        return nil, err
    }
    shr.log.Info("Successfully created verified service history entry", "entryID", entry.ID, "codeID", codeID)
    return entry, nil
}

// ----------------------------------------------------------------
// READ
// ----------------------------------------------------------------

func (shr *serviceHistoryRepo) GetByVehicleIDs(ctx context.Context, tx *gorm.DB, vehicleIDs []uuid.UUID) ([]types.ServiceHistoryEntry, error) {
    shr.log.Info("Starting GetByVehicleIDs for ServiceHistoryEntries...")

    transaction := tx
    if transaction == nil {
        transaction = shr.db
        shr.log.Debug("Transaction is nil, using shr.db")
    }

    var results []types.ServiceHistoryEntry
    if len(vehicleIDs) == 0 {
        shr.log.Debug("No VehicleIDs provided, returning empty slice")
        return results, nil
    }

    if err := transaction.WithContext(ctx).
        Where("vehicle_id IN ?", vehicleIDs).
        Order("service_date DESC").
        Find(&results).Error; err != nil {
        shr.log.Error("Failed to fetch service history entries by vehicle IDs", "error", err)
        return nil, err
    }
    shr.log.Info("Successfully fetched service history entries", "count", len(results))
    return results, nil
}
