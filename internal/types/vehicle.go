package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

type Vehicle struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  OwnerID             uuid.UUID                 `gorm:"index;not null" json:"ownerID"`
  Owner               *Member                   `gorm:"constraint:OnDelete:CASCADE;foreignKey:OwnerID;references:ID" json:"owner,omitempty"`

  PlateNumber         string                    `gorm:"uniqueIndex;not null;column:plate_number" json:"plateNumber"`
  Make                string                    `gorm:"column:make" json:"make"`
  VehicleModel        string                    `gorm:"column:vehicle_model" json:"model"`
  Year                string                    `gorm:"column:year" json:"year"`
  Color               string                    `gorm:"column:color" json:"color"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updatedAt"`
}

func (Vehicle) TableName() string {
  return "vehicle"
}
