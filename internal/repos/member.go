package repos

import (
    "context"

    "gorm.io/gorm"

    "github.com/autolog-org/autolog-backend/internal/logger"
    "github.com/autolog-org/autolog-backend/internal/types"
)

type MemberRepo interface {
    // CREATE
    Create(ctx context.Context, tx *gorm.DB, members []types.Member) ([]types.Member, error)
}

type memberRepo struct {
    db  *gorm.DB
    log *logger.Logger
}

func NewMemberRepo(db *gorm.DB, baseLog *logger.Logger) MemberRepo {
    repoLog := baseLog.With("repo", "MemberRepo")
    return &memberRepo{db: db, log: repoLog}
}

// ----------------------------------------------------------------
// CREATE
// ----------------------------------------------------------------

func (mr *memberRepo) Create(ctx context.Context, tx *gorm.DB, members []types.Member) ([]types.Member, error) {
    mr.log.Info("Starting Create Members now...")

    transaction := tx
    if transaction == nil {
        transaction = mr.db
        mr.log.Debug("Transaction is nil, using mr.db")
    }

    if len(members) == 0 {
        mr.log.Debug("No Members provided, returning empty slice")
        return []types.Member{}, nil
    }

    if err := transaction.WithContext(ctx).Create(&members).Error; err != nil {
        mr.log.Error("Failed to create members", "error", err)
        return nil, err
    }
    mr.log.Info("Successfully created members", "count", len(members))
    return members, nil
}
