package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

type Member struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`

  FullName            string                    `gorm:"not null;column:full_name" json:"fullName"`
  BusinessName        *string                   `gorm:"column:business_name" json:"businessName,omitempty"`
  PhoneNumber         string                    `gorm:"column:phone_number" json:"phoneNumber"`
  Email               *string                   `gorm:"column:email" json:"email,omitempty"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Member) TableName() string {
  return "member"
}

// DisplayName prefers the business name when one is set.
func (m *Member) DisplayName() string {
  if m.BusinessName != nil && *m.BusinessName != "" {
    return *m.BusinessName
  }
  return m.FullName
}
