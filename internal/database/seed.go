package database

import (
	"log"

	"canteen_preorder/internal/models"

	"gorm.io/gorm"
)

// SeedMenu populates the catalog on first boot so the service is usable
// out of the box. Does nothing when menu items already exist.
func SeedMenu(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.MenuItem{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	items := []models.MenuItem{
		{Name: "Masala Dosa", Category: "breakfast", Price: 50, Available: true},
		{Name: "Idli Sambar", Category: "breakfast", Price: 40, Available: true},
		{Name: "Veg Thali", Category: "lunch", Price: 90, Available: true},
		{Name: "Chicken Biryani", Category: "lunch", Price: 120, Available: true},
		{Name: "Samosa", Category: "snacks", Price: 15, Available: true},
		{Name: "Masala Chai", Category: "beverages", Price: 12, Available: true},
		{Name: "Cold Coffee", Category: "beverages", Price: 35, Available: true},
	}

	if err := db.Create(&items).Error; err != nil {
		return err
	}
	log.Printf("Seeded %d menu items", len(items))
	return nil
}
