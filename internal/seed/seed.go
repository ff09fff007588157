package seed

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/autolog-org/autolog-backend/internal/repos"
	"github.com/autolog-org/autolog-backend/internal/types"
)

// SeedDemoData inserts a couple of members and vehicles for local
// development, so the verification flow can be exercised without the admin
// surfaces that normally create them. Skips itself when vehicles exist.
func SeedDemoData(
	db									*gorm.DB,
	memberRepo					repos.MemberRepo,
	vehicleRepo					repos.VehicleRepo,
) error {
	fmt.Println("Running SeedDemoData... seeding members and vehicles")

	var count int64
	if err := db.Model(&types.Vehicle{}).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to count vehicles: %w", err)
	}
	if count > 0 {
		fmt.Println("Vehicles already present, skipping demo seed")
		return nil
	}

	ctx := context.Background()
	garage := "Kwame's Garage & Towing"
	members, err := memberRepo.Create(ctx, nil, []types.Member{
		{FullName: "Ama Mensah", PhoneNumber: "0241234567"},
		{FullName: "Kwame Boateng", BusinessName: &garage, PhoneNumber: "0209876543"},
	})
	if err != nil {
		return fmt.Errorf("failed to seed members: %w", err)
	}

	if _, err := vehicleRepo.Create(ctx, nil, []types.Vehicle{
		{OwnerID: members[0].ID, PlateNumber: "AS-123-24", Make: "Toyota", VehicleModel: "Corolla", Year: "2019", Color: "Silver"},
		{OwnerID: members[1].ID, PlateNumber: "GR 1234-20", Make: "Nissan", VehicleModel: "Navara", Year: "2021", Color: "White"},
	}); err != nil {
		return fmt.Errorf("failed to seed vehicles: %w", err)
	}

	fmt.Println("SeedDemoData Complete!")
	return nil
}
