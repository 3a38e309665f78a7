package repository

import (
	"errors"

	"crmaize-backend/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CustomerRepository struct {
	db *gorm.DB
}

func NewCustomerRepository(db *gorm.DB) *CustomerRepository {
	return &CustomerRepository{db: db}
}

func (r *CustomerRepository) All() ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Order("created_at DESC").Find(&customers).Error
	return customers, err
}

// BySegment returns a segment's customers, riskiest first.
func (r *CustomerRepository) BySegment(segment string) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Where("segment = ?", segment).Order("churn_risk DESC").Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) ByID(id uuid.UUID) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) ByEmail(email string) (*models.Customer, error) {
	var customer models.Customer
	if err := r.db.First(&customer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &customer, nil
}

func (r *CustomerRepository) Create(customer *models.Customer) error {
	return r.db.Create(customer).Error
}

func (r *CustomerRepository) Save(customer *models.Customer) error {
	return r.db.Save(customer).Error
}

func (r *CustomerRepository) Delete(id uuid.UUID) (bool, error) {
	result := r.db.Delete(&models.Customer{}, "id = ?", id)
	return result.RowsAffected > 0, result.Error
}

// UpdateScore writes back the scoring engine's churn risk and segment snapshot.
func (r *CustomerRepository) UpdateScore(id uuid.UUID, churnRisk float64, segment string) error {
	return r.db.Model(&models.Customer{}).Where("id = ?", id).
		Updates(map[string]interface{}{"churn_risk": churnRisk, "segment": segment}).Error
}

// SegmentCounts returns how many customers sit in each stored segment.
func (r *CustomerRepository) SegmentCounts() (map[string]int64, error) {
	type row struct {
		Segment string
		Count   int64
	}
	var rows []row
	err := r.db.Model(&models.Customer{}).
		Select("segment, COUNT(*) as count").
		Where("segment <> ''").
		Group("segment").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, x := range rows {
		counts[x.Segment] = x.Count
	}
	return counts, nil
}

// AtRisk lists the customers most likely to churn (stored risk above 0.5).
func (r *CustomerRepository) AtRisk(limit int) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.db.Where("churn_risk > ?", 0.5).
		Order("churn_risk DESC").
		Limit(limit).
		Find(&customers).Error
	return customers, err
}

func (r *CustomerRepository) TotalCount() (int64, error) {
	var count int64
	err := r.db.Model(&models.Customer{}).Count(&count).Error
	return count, err
}

func (r *CustomerRepository) TotalRevenue() (float64, error) {
	var total float64
	err := r.db.Model(&models.Customer{}).
		Select("COALESCE(SUM(total_spent), 0)").
		Scan(&total).Error
	return total, err
}

// AverageChurnRisk is the stored-risk mean across all customers.
func (r *CustomerRepository) AverageChurnRisk() (float64, error) {
	var avg float64
	err := r.db.Model(&models.Customer{}).
		Select("COALESCE(AVG(churn_risk), 0)").
		Scan(&avg).Error
	return avg, err
}
