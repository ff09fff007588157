package repos

import (
    "context"
    "time"

    "github.com/google/uuid"
    "gorm.io/gorm"

    "github.com/autolog-org/autolog-backend/internal/logger"
    "github.com/autolog-org/autolog-backend/internal/types"
)

type VerificationCodeRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, codes []types.VerificationCode) ([]types.VerificationCode, error)

    // READ
    GetLatestValid(ctx context.Context, tx *gorm.DB, plateNumber string, now time.Time) (*types.VerificationCode, error)

    // PARTIAL UPDATE
    Consume(ctx context.Context, tx *gorm.DB, codeID uuid.UUID) error
}

type verificationCodeRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewVerificationCodeRepo(db *gorm.DB, baseLog *logger.Logger) VerificationCodeRepo {
    repoLog := baseLog.With("repo", "VerificationCodeRepo")
    return &verificationCodeRepo{db: db, log: repoLog}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

func (vcr *verificationCodeRepo) Create(ctx context.Context, tx *gorm.DB, codes []types.VerificationCode) ([]types.VerificationCode, error) {
    vcr.log.Info("Starting Create VerificationCodes now...")

    transaction := tx
    if transaction == nil {
        transaction = vcr.db
        vcr.log.Debug("Transaction is nil, using vcr.db")
    }

    if len(codes) == 0 {
        vcr.log.Debug("No VerificationCodes provided, returning empty slice")
        return []types.VerificationCode{}, nil
    }

    if err := transaction.WithContext(ctx).Create(&codes).Error; err != nil {
        vcr.log.Error("Failed to create verification codes", "error", err)
        return nil, err
    }
    vcr.log.Info("Successfully created verification codes", "count", len(codes))
    return codes, nil
}

// ----------------------------------------------------------------
// READ
// ----------------------------------------------------------------

// GetLatestValid returns the most recently issued code for the plate that is
// still unconsumed and unexpired, or nil when no such code exists. When
// several valid codes coexist for one plate the newest one is authoritative.
func (vcr *verificationCodeRepo) GetLatestValid(ctx context.Context, tx *gorm.DB, plateNumber string, now time.Time) (*types.VerificationCode, error) {
    vcr.log.Info("Starting GetLatestValid for VerificationCodes...", "plateNumber", plateNumber)

    transaction := tx
    if transaction == nil {
        transaction = vcr.db
        vcr.log.Debug("Transaction is nil, using vcr.db")
    }

    var results []types.VerificationCode
    if err := transaction.WithContext(ctx).
        Where("plate_number = ? AND consumed = ? AND expires_at > ?", plateNumber, false, now).
        Order("created_at DESC").
        Limit(1).
        Find(&results).Error; err != nil {
        vcr.log.Error("Failed to fetch latest valid verification code", "error", err)
        return nil, err
    }
    if len(results) == 0 {
        vcr.log.Debug("No valid verification code for plate", "plateNumber", plateNumber)
        return nil, nil
    }
    vcr.log.Info("Successfully fetched latest valid verification code", "codeID", results[0].ID)
    return &results[0], nil
}

// ----------------------------------------------------------------
// PARTIAL UPDATE
// ----------------------------------------------------------------

// Consume flips consumed=false to true as a conditional update. The flip is
// the single-use gate: if another submission already consumed the code, zero
// rows match and ErrCodeAlreadyConsumed comes back.
func (vcr *verificationCodeRepo) Consume(ctx context.Context, tx *gorm.DB, codeID uuid.UUID) error {
    vcr.log.Info("Starting Consume for VerificationCode now...", "codeID", codeID)

    transaction := tx
    if transaction == nil {
        transaction = vcr.db
        vcr.log.Debug("Transaction is nil, using vcr.db")
    }

    if codeID == uuid.Nil {
        vcr.log.Debug("codeID is nil, skipping Consume")
        return types.ErrCodeAlreadyConsumed
    }

    result := transaction.WithContext(ctx).
        Model(&types.VerificationCode{}).
        Where("id = ? AND consumed = ?", codeID, false).
        Update("consumed", true)
    if result.Error != nil {
        vcr.log.Error("Failed to mark verification code consumed", "error", result.Error)
        return result.Error
    }
    if result.RowsAffected == 0 {
        vcr.log.Warn("Verification code was already consumed", "codeID", codeID)
        return types.ErrCodeAlreadyConsumed
    }
    vcr.log.Info("Successfully marked verification code consumed", "codeID", codeID)
    return nil
}
