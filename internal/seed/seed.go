package seed

import (
	"context"
	_ "embed"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"go.yaml.in/yaml/v3"

	"cozycup/internal/domain"
)

//go:embed seed.yaml
var defaultData []byte

type Data struct {
	Users      []User     `yaml:"users"`
	Categories []Category `yaml:"categories"`
}

type User struct {
	Name  string `yaml:"name"`
	Email string `yaml:"email"`
	Phone string `yaml:"phone"`
	Role  string `yaml:"role"`
}

type Category struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Items       []MenuItem `yaml:"items"`
}

type MenuItem struct {
	Name        string          `yaml:"name"`
	Description string          `yaml:"description"`
	Price       decimal.Decimal `yaml:"price"`
	Stock       int             `yaml:"stock"`
	Available   *bool           `yaml:"available"`
}

type UserStore interface {
	UpsertByEmail(ctx context.Context, u domain.User) (uint, error)
}

type CategoryStore interface {
	UpsertByName(ctx context.Context, c domain.Category) (uint, error)
}

type MenuItemStore interface {
	UpsertByName(ctx context.Context, m domain.MenuItem) (uint, error)
}

// Default parses the embedded seed data.
func Default() (*Data, error) {
	return Parse(defaultData)
}

func Parse(raw []byte) (*Data, error) {
	var data Data
	if err := yaml.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("parsing seed data: %w", err)
	}
	for _, u := range data.Users {
		if u.Email == "" || u.Name == "" {
			return nil, fmt.Errorf("seed user %q needs a name and an email", u.Email)
		}
	}
	for _, c := range data.Categories {
		for _, item := range c.Items {
			if !item.Price.IsPositive() {
				return nil, fmt.Errorf("seed menu item %q needs a positive price", item.Name)
			}
		}
	}
	return &data, nil
}

type Seeder struct {
	users      UserStore
	categories CategoryStore
	items      MenuItemStore
	logger     *zap.Logger
}

func NewSeeder(users UserStore, categories CategoryStore, items MenuItemStore, logger *zap.Logger) *Seeder {
	return &Seeder{users: users, categories: categories, items: items, logger: logger}
}

// Apply upserts every user by email and every category and menu item by
// name, so running it twice leaves the same rows.
func (s *Seeder) Apply(ctx context.Context, data *Data) error {
	for _, u := range data.Users {
		role := domain.Role(u.Role)
		if role != domain.RoleAdmin {
			role = domain.RoleCustomer
		}
		if _, err := s.users.UpsertByEmail(ctx, domain.User{
			Name:  u.Name,
			Email: u.Email,
			Phone: optional(u.Phone),
			Role:  role,
		}); err != nil {
			return err
		}
	}

	items := 0
	for _, c := range data.Categories {
		categoryID, err := s.categories.UpsertByName(ctx, domain.Category{
			Name:        c.Name,
			Description: optional(c.Description),
			IsActive:    true,
		})
		if err != nil {
			return err
		}
		for _, item := range c.Items {
			available := item.Available == nil || *item.Available
			if _, err := s.items.UpsertByName(ctx, domain.MenuItem{
				CategoryID:  categoryID,
				Name:        item.Name,
				Description: optional(item.Description),
				Price:       item.Price,
				Stock:       item.Stock,
				IsAvailable: available,
			}); err != nil {
				return err
			}
			items++
		}
	}

	s.logger.Info("seed applied",
		zap.Int("users", len(data.Users)),
		zap.Int("categories", len(data.Categories)),
		zap.Int("menuItems", items),
	)
	return nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
