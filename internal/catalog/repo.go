package catalog

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/andreshurtado/reparalo-backend/pkg/db/models"
)

// Repository manages persistence for catalog items and product stock.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	ListActiveProducts(ctx context.Context) ([]models.Product, error)
	ListActiveServices(ctx context.Context) ([]models.ServiceOffering, error)
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	FindServiceByID(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error)
	UpdateStock(ctx context.Context, productID uuid.UUID, newStock int) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a catalog repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) ListActiveProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *repository) ListActiveServices(ctx context.Context) ([]models.ServiceOffering, error) {
	var services []models.ServiceOffering
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("name ASC").
		Find(&services).Error; err != nil {
		return nil, err
	}
	return services, nil
}

func (r *repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	if err := r.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *repository) FindServiceByID(ctx context.Context, id uuid.UUID) (*models.ServiceOffering, error) {
	var offering models.ServiceOffering
	if err := r.db.WithContext(ctx).First(&offering, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &offering, nil
}

func (r *repository) UpdateStock(ctx context.Context, productID uuid.UUID, newStock int) error {
	return r.db.WithContext(ctx).
		Model(&models.Product{}).
		Where("id = ?", productID).
		Update("stock", newStock).Error
}
