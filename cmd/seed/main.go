package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"gearlog/internal/config"
	"gearlog/internal/database"
	"gearlog/internal/domain"
	jwtsvc "gearlog/internal/pkg/jwt"
	"gearlog/internal/pkg/logger"
	"gearlog/internal/repository"
)

type seedLink struct {
	retailer string
	url      string
	price    string
}

type seedItem struct {
	name        string
	description string
	category    string
	price       string
	purchased   string
	location    string
	link        string
	retailers   []seedLink
}

// sample "Main Setup" of the first demo user
var mainSetup = []seedItem{
	{
		name:        "Gaggia Classic Pro (Used)",
		description: "Semi-automatic espresso machine with 58mm portafilter",
		category:    "Espresso Machine",
		price:       "340.00",
		purchased:   "2023-01-15",
		location:    "eBay",
		link:        "https://www.gaggia-na.com/products/gaggia-classic-pro",
		retailers: []seedLink{
			{retailer: "gaggia", url: "https://www.gaggia-na.com/products/gaggia-classic-pro", price: "449.00"},
		},
	},
	{
		name:        "DF64 Grinder Gen 2 (Used)",
		description: "Single dose coffee grinder with 64mm flat burrs",
		category:    "Grinder",
		price:       "280.00",
		purchased:   "2023-01-20",
		location:    "eBay",
		link:        "https://df64coffee.com/products/df64-gen-2-single-dose-coffee-grinder",
		retailers: []seedLink{
			{retailer: "df64coffee", url: "https://df64coffee.com/products/df64-gen-2-single-dose-coffee-grinder", price: "399.00"},
		},
	},
	{
		name:        "Stainless Steel Coffee Knock Box Drawer",
		description: "Thickened residue powder holder for espresso pucks",
		category:    "Accessory",
		price:       "24.06",
		purchased:   "2023-02-05",
		location:    "eBay",
	},
	{
		name:     "Test Espresso Machine",
		category: "Espresso Machine",
		price:    "999.99",
		retailers: []seedLink{
			{retailer: "amazon", url: "https://amazon.com/product", price: "899.99"},
			{retailer: "bestbuy", url: "https://bestbuy.com/product", price: "949.99"},
		},
	},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	zlog := logger.New(cfg.ServiceName+"-seed", cfg.LogLevel)

	db, err := database.Connect(cfg.DatabaseURL, database.DefaultOptions(), zlog)
	if err != nil {
		zlog.Fatal("DB connection failed", zap.Error(err))
	}
	defer func() { _ = database.Close(db) }()

	if err := database.Migrate(db); err != nil {
		zlog.Fatal("AutoMigrate failed", zap.Error(err))
	}

	ctx := context.Background()
	users := repository.NewUserRepository(db)
	equipment := repository.NewEquipmentRepository(db)
	links := repository.NewRetailerLinkRepository(db)
	tokens := jwtsvc.New(cfg.JWTSecret, 30*24*time.Hour)

	owner, created := ensureUser(ctx, users, zlog, &domain.User{
		Username: "user1", Email: "user1@example.com", FirstName: "Demo", LastName: "Barista",
	})
	second, _ := ensureUser(ctx, users, zlog, &domain.User{
		Username: "user2", Email: "user2@example.com", FirstName: "Second", LastName: "User",
	})

	if created {
		for _, item := range mainSetup {
			e, err := toEquipment(owner.ID, item)
			if err != nil {
				zlog.Fatal("bad seed item", zap.String("name", item.name), zap.Error(err))
			}
			if err := equipment.Create(ctx, e); err != nil {
				zlog.Fatal("failed to create equipment", zap.Error(err))
			}
			for _, r := range item.retailers {
				l := &domain.RetailerLink{
					EquipmentID: e.ID,
					RetailerID:  r.retailer,
					Price:       decimal.RequireFromString(r.price),
					URL:         r.url,
				}
				if err := links.CreateForOwner(ctx, owner.ID, l); err != nil {
					zlog.Fatal("failed to create retailer link", zap.Error(err))
				}
			}
		}
		zlog.Info("seeded equipment", zap.Int("items", len(mainSetup)))
	} else {
		zlog.Info("demo data already present, skipping equipment")
	}

	for _, u := range []*domain.User{owner, second} {
		token, err := tokens.GenerateToken(u.ID)
		if err != nil {
			zlog.Fatal("failed to sign token", zap.Error(err))
		}
		fmt.Printf("%s (id=%d): %s\n", u.Username, u.ID, token)
	}
}

func ensureUser(ctx context.Context, users *repository.UserRepository, zlog *zap.Logger, u *domain.User) (*domain.User, bool) {
	existing, err := users.GetByUsername(ctx, u.Username)
	if err == nil {
		return existing, false
	}
	if !errors.Is(err, repository.ErrNotFound) {
		zlog.Fatal("failed to look up user", zap.String("username", u.Username), zap.Error(err))
	}
	if err := users.Create(ctx, u); err != nil {
		zlog.Fatal("failed to create user", zap.String("username", u.Username), zap.Error(err))
	}
	return u, true
}

func toEquipment(ownerID int64, item seedItem) (*domain.Equipment, error) {
	e := &domain.Equipment{
		UserID:   ownerID,
		Name:     item.name,
		Category: item.category,
	}
	if item.price != "" {
		p, err := decimal.NewFromString(item.price)
		if err != nil {
			return nil, err
		}
		e.Price = decimal.NewNullDecimal(p)
	}
	if item.purchased != "" {
		d, err := time.Parse("2006-01-02", item.purchased)
		if err != nil {
			return nil, err
		}
		e.PurchaseDate = &d
	}
	e.Description = optional(item.description)
	e.PurchaseLocation = optional(item.location)
	e.Link = optional(item.link)
	return e, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
