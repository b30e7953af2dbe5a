package app

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/phenrril/cosmetica/internal/adapters/cache"
	"github.com/phenrril/cosmetica/internal/adapters/httpserver"
	repo "github.com/phenrril/cosmetica/internal/adapters/repo/postgres"
	"github.com/phenrril/cosmetica/internal/adapters/storage/localfs"
	"github.com/phenrril/cosmetica/internal/adapters/token"
	"github.com/phenrril/cosmetica/internal/domain"
	"github.com/phenrril/cosmetica/internal/usecase"
)

type App struct {
	Config      Config
	DB          *gorm.DB
	Redis       *redis.Client
	Storage     *localfs.Storage
	Tokens      *token.Signer
	Categories  *usecase.CategoryUC
	Products    *usecase.ProductUC
	Cart        *usecase.CartUC
	Wishlist    *usecase.WishlistUC
	Users       *usecase.UserUC
	CatalogIO   *usecase.CatalogIO
	OAuthConfig *oauth2.Config
}

// OpenDB connects to postgres, or to a sqlite file when DB_DRIVER=sqlite.
func OpenDB(c Config) (*gorm.DB, error) {
	level := logger.Warn
	if c.LogLevel == "debug" || c.LogLevel == "trace" {
		level = logger.Info
	}
	var dial gorm.Dialector
	switch c.DBDriver {
	case "sqlite":
		dial = sqlite.Open(c.SQLitePath)
	default:
		dial = postgres.Open(c.DSN)
	}
	db, err := gorm.Open(dial, repo.NewGormConfig(level))
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.DBDriver, err)
	}
	if c.DBDriver == "sqlite" {
		// sqlite serialises writers; one connection avoids SQLITE_BUSY
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return db, nil
}

func NewApp(ctx context.Context, c Config, db *gorm.DB) (*App, error) {
	if err := os.MkdirAll(c.StorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("storage dir: %w", err)
	}
	storage := localfs.New(c.StorageDir)
	signer := token.NewSigner(c.JWTSecret, c.TokenTTL)

	var categories domain.CategoryRepo = repo.NewCategoryRepo(db)
	var products domain.ProductRepo = repo.NewProductRepo(db)

	a := &App{Config: c, DB: db, Storage: storage, Tokens: signer}
	if c.RedisURL != "" {
		opts, err := cache.ParseOptions(c.RedisURL, c.RedisPassword, c.RedisDB)
		if err != nil {
			return nil, err
		}
		rdb, err := cache.Connect(ctx, opts)
		if err != nil {
			log.Warn().Err(err).Str("addr", opts.Addr).Msg("redis unavailable, product cache disabled")
		} else {
			pc := cache.NewProductCache(products, rdb, c.CacheTTL)
			products = pc
			categories = &cache.CategoryWrites{CategoryRepo: categories, Products: pc}
			a.Redis = rdb
			log.Info().Str("addr", opts.Addr).Dur("ttl", c.CacheTTL).Msg("product cache enabled")
		}
	}

	a.Categories = &usecase.CategoryUC{Categories: categories, Storage: storage}
	a.Products = &usecase.ProductUC{Products: products, Categories: categories, Storage: storage}
	a.Cart = &usecase.CartUC{Cart: repo.NewCartRepo(db), Products: products}
	a.Wishlist = &usecase.WishlistUC{Wishlist: repo.NewWishlistRepo(db), Products: products}
	a.Users = &usecase.UserUC{Users: repo.NewUserRepo(db), Storage: storage, Tokens: signer, AdminEmails: c.AdminEmails}
	a.CatalogIO = &usecase.CatalogIO{Products: a.Products, Categories: categories}

	if c.GoogleClientID != "" && c.GoogleClientSecret != "" {
		a.OAuthConfig = &oauth2.Config{
			ClientID:     c.GoogleClientID,
			ClientSecret: c.GoogleClientSecret,
			RedirectURL:  c.BaseURL + "/api/UserModel/google/callback",
			Scopes:       []string{"openid", "email", "profile"},
			Endpoint:     google.Endpoint,
		}
	}
	return a, nil
}

func (a *App) HTTPHandler() http.Handler {
	return httpserver.New(httpserver.Deps{
		Categories:  a.Categories,
		Products:    a.Products,
		Cart:        a.Cart,
		Wishlist:    a.Wishlist,
		Users:       a.Users,
		CatalogIO:   a.CatalogIO,
		Tokens:      a.Tokens,
		OAuth:       a.OAuthConfig,
		UploadsDir:  a.Storage.Root(),
		CORSOrigins: a.Config.CORSOrigins,
		Health:      a.ping,
	})
}

func (a *App) ping(ctx context.Context) error {
	sqlDB, err := a.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (a *App) MigrateAndSeed(ctx context.Context) error {
	if err := repo.Migrate(a.DB); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if !a.Config.Seed {
		return nil
	}
	return seedCatalog(ctx, a.DB)
}

func (a *App) Close() {
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
	if sqlDB, err := a.DB.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
