package types

import (
  "time"

  "gorm.io/gorm"
  "github.com/google/uuid"
)

// ServiceHistoryEntry is one line of a vehicle's permanent service record.
// Entries written through the OTP workflow carry Verified=true, which is what
// separates them from self-reported history.
type ServiceHistoryEntry struct {
  gorm.Model
  ID                  uuid.UUID                 `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
  VehicleID           uuid.UUID                 `gorm:"index;not null" json:"vehicleID"`
  Vehicle             *Vehicle                  `gorm:"constraint:OnDelete:CASCADE;foreignKey:VehicleID;references:ID" json:"vehicle,omitempty"`

  Description         string                    `gorm:"not null;column:description" json:"description"`
  ServiceDate         time.Time                 `gorm:"not null;column:service_date" json:"serviceDate"`
  ProviderName        string                    `gorm:"column:provider_name" json:"providerName"`
  Mileage             float64                   `gorm:"not null;default:0;column:mileage" json:"mileage"`
  Cost                float64                   `gorm:"not null;default:0;column:cost" json:"cost"`
  DocumentURL         *string                   `gorm:"column:document_url" json:"documentURL,omitempty"`
  Verified            bool                      `gorm:"not null;default:false" json:"verified"`

  CreatedAt           time.Time                 `gorm:"not null;default:now()" json:"createdAt"`
  UpdatedAt           time.Time                 `gorm:"not null;default:now()" json:"updatedAt"`
}

func (ServiceHistoryEntry) TableName() string {
  return "service_history_entry"
}
