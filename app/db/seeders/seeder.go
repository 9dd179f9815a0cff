package seeders

import (
	"context"
	"fmt"

	"github.com/Rakhulsr/go-storefront/app/db/fakers"
	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/Rakhulsr/go-storefront/app/repositories"
	"go.uber.org/zap"
)

type Seeder struct {
	repo *repositories.Repository
	tx   repositories.Transactor
	log  *zap.Logger
}

func New(repo *repositories.Repository, tx repositories.Transactor, log *zap.Logger) *Seeder {
	return &Seeder{repo: repo, tx: tx, log: log}
}

// DBSeed creates the starter categories when missing and then productsPerCategory
// fake products in each of them, owned by seller when it is not nil.
func (s *Seeder) DBSeed(ctx context.Context, productsPerCategory int, seller *models.User) error {
	categories, err := s.seedCategories(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithTx(ctx, func(tx *repositories.Repository) error {
		created := 0
		for i := range categories {
			for n := 0; n < productsPerCategory; n++ {
				product := fakers.ProductFaker(&categories[i], seller)
				if err := tx.Products.Create(ctx, product); err != nil {
					return fmt.Errorf("failed to seed product %q: %w", product.Name, err)
				}
				created++
			}
		}
		s.log.Info("seeded products", zap.Int("count", created), zap.Int("categories", len(categories)))
		return nil
	})
}

func (s *Seeder) seedCategories(ctx context.Context) ([]models.Category, error) {
	for _, c := range fakers.Categories() {
		exists, err := s.repo.Categories.ExistsByNameOrSlug(ctx, c.Name, c.Slug)
		if err != nil {
			return nil, fmt.Errorf("failed to check category %q: %w", c.Name, err)
		}
		if exists {
			continue
		}
		category := c
		if err := s.repo.Categories.Create(ctx, &category); err != nil {
			return nil, fmt.Errorf("failed to seed category %q: %w", c.Name, err)
		}
		s.log.Info("seeded category", zap.String("slug", category.Slug))
	}
	return s.repo.Categories.GetAll(ctx)
}
