package products

import (
	"errors"

	"github.com/psource-dev/psman/internal/database/models"
	"github.com/psource-dev/psman/internal/dbcore"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Save upserts one product record by slug.
func Save(p *models.Product) error {
	db := dbcore.GetDBInstance()
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "slug"}},
		UpdateAll: true,
	}).Create(p).Error
}

// Get returns the record for slug, or (nil, nil) when absent.
func Get(slug string) (*models.Product, error) {
	db := dbcore.GetDBInstance()
	var p models.Product
	err := db.Model(&models.Product{}).Where("slug = ?", slug).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// All returns every record keyed by slug.
func All() (map[string]models.Product, error) {
	db := dbcore.GetDBInstance()
	var list []models.Product
	if err := db.Model(&models.Product{}).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.Product, len(list))
	for _, p := range list {
		out[p.Slug] = p
	}
	return out, nil
}

// ByType returns records of one type keyed by slug.
func ByType(typ string) (map[string]models.Product, error) {
	db := dbcore.GetDBInstance()
	var list []models.Product
	if err := db.Model(&models.Product{}).Where("type = ?", typ).Find(&list).Error; err != nil {
		return nil, err
	}
	out := make(map[string]models.Product, len(list))
	for _, p := range list {
		out[p.Slug] = p
	}
	return out, nil
}

// Delete removes the record for slug. Returns true when a row was deleted.
func Delete(slug string) (bool, error) {
	db := dbcore.GetDBInstance()
	res := db.Delete(&models.Product{}, "slug = ?", slug)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// UpdateActive persists a recomputed activation flag without touching the rest
// of the record.
func UpdateActive(slug string, active bool) error {
	db := dbcore.GetDBInstance()
	return db.Model(&models.Product{}).Where("slug = ?", slug).Update("is_active", active).Error
}
