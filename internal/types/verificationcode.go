package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

// VerificationCode is the single-use OTP tying a plate lookup to the owner's
// phone. Records are never deleted; consumed and expired rows stay behind as
// an audit trail.
type VerificationCode struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

  PlateNumber         string                    `gorm:"index;not null;column:plate_number" json:"plateNumber"`
  PhoneNumber         string                    `gorm:"not null;column:phone_number" json:"phoneNumber"`
  Code                string                    `gorm:"not null;column:code" json:"-"`
  ExpiresAt           time.Time                 `gorm:"column:expires_at" json:"expiresAt"`
  Consumed            bool                      `gorm:"not null;default:false" json:"consumed"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updatedAt"`
}

func (VerificationCode) TableName() string {
  return "verification_code"
}
