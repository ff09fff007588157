package repos

import (
    "context"

    "gorm.io/gorm"

    "github.com/autolog-org/autolog-backend/internal/logger"
    "github.com/autolog-org/autolog-backend/internal/types"
)

type VehicleRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, vehicles []types.Vehicle) ([]types.Vehicle, error)

    // READ
    GetByPlateCandidates(ctx context.Context, tx *gorm.DB, candidates []string) ([]types.Vehicle, error)
}

type vehicleRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewVehicleRepo(db *gorm.DB, baseLog *logger.Logger) VehicleRepo {
    repoLog := baseLog.With("repo", "VehicleRepo")
    return &vehicleRepo{db: db, log: repoLog}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

func (vr *vehicleRepo) Create(ctx context.Context, tx *gorm.DB, vehicles []types.Vehicle) ([]types.Vehicle, error) {
    vr.log.Info("Starting Create Vehicles now...")

    transaction := tx
    if transaction == nil {
        transaction = vr.db
        vr.log.Debug("Transaction is nil, using vr.db")
    }

    if len(vehicles) == 0 {
        vr.log.Debug("No Vehicles provided, returning empty slice")
        return []types.Vehicle{}, nil
    }

    if err := transaction.WithContext(ctx).Create(&vehicles).Error; err != nil {
        vr.log.Error("Failed to create vehicles", "error", err)
        return nil, err
    }
    vr.log.Info("Successfully created vehicles", "count", len(vehicles))
    return vehicles, nil
}

// ----------------------------------------------------------------
// READ
// ----------------------------------------------------------------

// GetByPlateCandidates matches plates case-insensitively against every
// candidate form and preloads the owning member. Callers are responsible for
// the tie-break between candidate forms.
func (vr *vehicleRepo) GetByPlateCandidates(ctx context.Context, tx *gorm.DB, candidates []string) ([]types.Vehicle, error) {
    vr.log.Info("Starting GetByPlateCandidates for Vehicles...")

    transaction := tx
    if transaction == nil {
        transaction = vr.db
        vr.log.Debug("Transaction is nil, using vr.db")
    }

    var results []types.Vehicle
    if len(candidates) == 0 {
        vr.log.Debug("No plate candidates provided, returning empty slice")
        return results, nil
    }
    vr.log.Debug("Plate candidates provided", "count", len(candidates), "candidates", candidates)

    if err := transaction.WithContext(ctx).
        Preload("Owner").
        Where("UPPER(plate_number) IN ?", candidates).
        Find(&results).Error; err != nil {
        vr.log.Error("Failed to fetch vehicles by plate candidates", "error", err)
        return nil, err
    }
    vr.log.Info("Successfully fetched vehicles by plate candidates", "count", len(results))
    return results, nil
}
