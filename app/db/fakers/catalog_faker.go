package fakers

import (
	"math/rand"

	"github.com/Rakhulsr/go-storefront/app/models"
	"github.com/go-faker/faker/v4"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
)

type categorySeed struct {
	Name        string
	Description string
	ImageURL    string
}

var defaultCategories = []categorySeed{
	{"Electronics", "Devices, gadgets and accessories.", "https://images.unsplash.com/photo-1498049794561-7780e7231661?w=400"},
	{"Clothing", "Clothes and fashion accessories for all ages.", "https://images.unsplash.com/photo-1445205170230-053b83016050?w=400"},
	{"Home", "Furniture, decoration and household items.", "https://images.unsplash.com/photo-1586023492125-27b2c045efd7?w=400"},
	{"Sports", "Fitness and outdoor equipment.", "https://images.unsplash.com/photo-1571019613454-1cb2f99b2d8b?w=400"},
	{"Books", "Novels, guides and reading material.", "https://images.unsplash.com/photo-1544947950-fa07a98d237f?w=400"},
	{"Toys", "Educational and entertainment toys for kids.", "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=400"},
	{"Beauty", "Personal care and cosmetics.", "https://images.unsplash.com/photo-1522338242992-e1a54906a8da?w=400"},
	{"Food", "Gourmet food and snacks.", "https://images.unsplash.com/photo-1490645935967-10de6ba17061?w=400"},
}

// Categories returns the fixed starter taxonomy.
func Categories() []models.Category {
	out := make([]models.Category, 0, len(defaultCategories))
	for _, c := range defaultCategories {
		image := c.ImageURL
		out = append(out, models.Category{
			Name:        c.Name,
			Slug:        slug.Make(c.Name),
			Description: c.Description,
			ImageURL:    &image,
		})
	}
	return out
}

// ProductFaker builds an active product with random copy, pricing and stock.
func ProductFaker(category *models.Category, seller *models.User) *models.Product {
	name := faker.Word() + " " + faker.Word()
	price := fakePrice()

	product := &models.Product{
		Name:        name,
		Slug:        slug.Make(name + "-" + uuid.NewString()[:6]),
		Description: faker.Paragraph(),
		Price:       price,
		Stock:       rand.Intn(50),
		IsFeatured:  rand.Intn(5) == 0,
		IsActive:    true,
	}
	if rand.Intn(3) == 0 {
		off := decimal.NewFromInt(int64(rand.Intn(40) + 5))
		discounted := price.Sub(price.Mul(off).Div(decimal.NewFromInt(100))).Round(2)
		if discounted.IsPositive() && discounted.LessThan(price) {
			product.DiscountPrice = decimal.NewNullDecimal(discounted)
		}
	}
	if category != nil {
		product.CategoryID = &category.ID
	}
	if seller != nil {
		product.SellerID = &seller.ID
	}
	return product
}

// UserFaker returns an active customer; the caller hashes the password.
func UserFaker() *models.User {
	return &models.User{
		Email:     faker.Email(),
		Username:  faker.Username() + "-" + uuid.NewString()[:4],
		FirstName: faker.FirstName(),
		LastName:  faker.LastName(),
		IsActive:  true,
	}
}

func fakePrice() decimal.Decimal {
	cents := rand.Intn(99_900) + 100
	return decimal.New(int64(cents), -2)
}
