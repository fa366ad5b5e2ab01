package main

import (
	"context"
	"encoding/json"
	"time"

	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/contentapi"
	"github.com/avion-shop/internal/logger"

	"github.com/shopspring/decimal"
)

type seedCategory struct {
	Name string
	Slug string
}

type seedProduct struct {
	Name        string
	Slug        string
	Price       string
	Type        string
	Category    string
	Quantity    int
	Description string
	Features    []string
	Dimensions  map[string]string
}

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	client, err := contentapi.NewClient(contentapi.Config{
		BaseURL:    cfg.Backend.BaseURL,
		ProjectID:  cfg.Backend.ProjectID,
		Dataset:    cfg.Backend.Dataset,
		APIVersion: cfg.Backend.APIVersion,
		Token:      cfg.Backend.Token,
		Timeout:    time.Duration(cfg.Backend.TimeoutMS) * time.Millisecond,
	})
	if err != nil {
		stdLog.Fatalf("Failed to create backend client: %v", err)
	}
	if !client.HasToken() {
		stdLog.Fatalf("backend.token is required to seed the catalog")
	}

	ctx := context.Background()

	// 添加分类
	categories := []seedCategory{
		{Name: "Sofas", Slug: "sofas"},
		{Name: "Chairs", Slug: "chairs"},
		{Name: "Tables", Slug: "tables"},
		{Name: "Lighting", Slug: "lighting"},
	}
	for _, category := range categories {
		doc := contentapi.Document{
			"_id":   "category-" + category.Slug,
			"_type": constants.DocumentTypeCategory,
			"name":  category.Name,
			"slug":  map[string]interface{}{"_type": "slug", "current": category.Slug},
		}
		if _, err := client.CreateOrReplace(ctx, doc); err != nil {
			stdLog.Fatalf("Failed to seed category %s: %v", category.Slug, err)
		}
	}

	// 添加商品
	products := []seedProduct{
		{
			Name:        "Velvet Sofa",
			Slug:        "velvet-sofa",
			Price:       "899.00",
			Type:        constants.ProductTypeFurniture,
			Category:    "sofas",
			Quantity:    4,
			Description: "Three-seat sofa upholstered in soft velvet.",
			Features:    []string{"Solid oak frame", "Removable cushions"},
			Dimensions:  map[string]string{"height": "85 cm", "width": "210 cm", "depth": "95 cm"},
		},
		{
			Name:        "Oak Dining Chair",
			Slug:        "oak-dining-chair",
			Price:       "129.00",
			Type:        constants.ProductTypeFurniture,
			Category:    "chairs",
			Quantity:    20,
			Description: "Classic dining chair in oiled oak.",
			Features:    []string{"Stackable"},
			Dimensions:  map[string]string{"height": "80 cm", "width": "45 cm", "depth": "50 cm"},
		},
		{
			Name:        "Walnut Coffee Table",
			Slug:        "walnut-coffee-table",
			Price:       "349.50",
			Type:        constants.ProductTypeFurniture,
			Category:    "tables",
			Quantity:    0,
			Description: "Low coffee table with a walnut veneer top.",
			Dimensions:  map[string]string{"height": "40 cm", "width": "110 cm", "depth": "60 cm"},
		},
		{
			Name:        "Brass Table Lamp",
			Slug:        "brass-table-lamp",
			Price:       "79.90",
			Type:        constants.ProductTypeDecor,
			Category:    "lighting",
			Quantity:    35,
			Description: "Warm brass lamp with a linen shade.",
			Features:    []string{"E27 bulb", "Inline switch"},
		},
	}
	for _, product := range products {
		price, err := decimal.NewFromString(product.Price)
		if err != nil {
			stdLog.Fatalf("Invalid price for %s: %v", product.Slug, err)
		}
		doc := contentapi.Document{
			"_id":         "product-" + product.Slug,
			"_type":       constants.DocumentTypeProduct,
			"name":        product.Name,
			"slug":        map[string]interface{}{"_type": "slug", "current": product.Slug},
			"price":       json.Number(price.StringFixed(2)),
			"type":        product.Type,
			"quantity":    product.Quantity,
			"description": product.Description,
			"category":    map[string]interface{}{"_type": "reference", "_ref": "category-" + product.Category},
		}
		if len(product.Features) > 0 {
			doc["features"] = product.Features
		}
		if len(product.Dimensions) > 0 {
			doc["dimensions"] = product.Dimensions
		}
		if _, err := client.CreateOrReplace(ctx, doc); err != nil {
			stdLog.Fatalf("Failed to seed product %s: %v", product.Slug, err)
		}
	}

	logger.Infow("seed_completed", "categories", len(categories), "products", len(products))
}
