package usecase

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/cosmetica/internal/adapters/repo/postgres"
	"github.com/phenrril/cosmetica/internal/domain"
)

type memStorage struct {
	mu    sync.Mutex
	files map[string]string
}

func newMemStorage() *memStorage { return &memStorage{files: map[string]string{}} }

func (m *memStorage) Save(_ context.Context, kind domain.MediaKind, name string, r io.Reader) (string, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	file := uuid.NewString() + "-" + name
	m.files[string(kind)+"/"+file] = string(b)
	return file, nil
}

func (m *memStorage) Remove(_ context.Context, kind domain.MediaKind, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.files, string(kind)+"/"+name)
	return nil
}

func (m *memStorage) has(kind domain.MediaKind, name string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.files[string(kind)+"/"+name]
	return ok
}

func upload(name string) *domain.Upload {
	return &domain.Upload{Filename: name, Size: 3, Body: strings.NewReader("img")}
}

type fixture struct {
	db         *gorm.DB
	storage    *memStorage
	categories *CategoryUC
	products   *ProductUC
	cart       *CartUC
	wishlist   *WishlistUC
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), postgres.NewGormConfig(logger.Silent))
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, postgres.Migrate(db))

	st := newMemStorage()
	catRepo := postgres.NewCategoryRepo(db)
	prodRepo := postgres.NewProductRepo(db)
	return &fixture{
		db:         db,
		storage:    st,
		categories: &CategoryUC{Categories: catRepo, Storage: st},
		products:   &ProductUC{Products: prodRepo, Categories: catRepo, Storage: st},
		cart:       &CartUC{Cart: postgres.NewCartRepo(db), Products: prodRepo},
		wishlist:   &WishlistUC{Wishlist: postgres.NewWishlistRepo(db), Products: prodRepo},
	}
}

func (f *fixture) category(t *testing.T, name string, status domain.CategoryStatus) *domain.Category {
	t.Helper()
	c, err := f.categories.Create(context.Background(), CategoryInput{Name: name, Status: status}, upload("c.png"))
	require.NoError(t, err)
	return c
}

func (f *fixture) product(t *testing.T, name, price string, discount int, cat *domain.Category) *domain.Product {
	t.Helper()
	p, err := f.products.Create(context.Background(), ProductInput{
		Name:       name,
		Price:      decimal.RequireFromString(price),
		Stock:      5,
		Discount:   discount,
		CategoryID: cat.ID,
	}, nil)
	require.NoError(t, err)
	return p
}

func userPrincipal() domain.Principal {
	return domain.Principal{UserID: uuid.New(), Role: domain.RoleUser}
}
