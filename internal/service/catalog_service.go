package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/avion-shop/internal/catalog"
	"github.com/avion-shop/internal/config"
	"github.com/avion-shop/internal/constants"
	"github.com/avion-shop/internal/logger"
	"github.com/avion-shop/internal/models"

	"golang.org/x/sync/errgroup"
)

// ContentQuerier 内容后端查询能力
type ContentQuerier interface {
	Query(ctx context.Context, query string, params map[string]interface{}, dest interface{}) error
}

// CatalogPage 商品列表页数据
type CatalogPage struct {
	Products    []models.Product  `json:"products"`
	Categories  []models.Category `json:"categories"`
	Filter      catalog.Filter    `json:"filter"`
	Total       int               `json:"total"`
	Visible     int               `json:"visible"`
	HasMore     bool              `json:"has_more"`
	NextVisible int               `json:"next_visible"`
	ToggleLabel string            `json:"toggle_label"`
}

// CatalogService 商品目录服务
type CatalogService struct {
	backend      ContentQuerier
	productTypes []string
	pageSize     int
}

// NewCatalogService 创建商品目录服务
func NewCatalogService(backend ContentQuerier, cfg config.CatalogConfig) *CatalogService {
	types := make([]string, 0, len(cfg.ProductTypes))
	for _, t := range cfg.ProductTypes {
		if trimmed := strings.ToLower(strings.TrimSpace(t)); trimmed != "" {
			types = append(types, trimmed)
		}
	}
	if len(types) == 0 {
		types = []string{constants.ProductTypeFurniture, constants.ProductTypeDecor}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = constants.CatalogWindowStep
	}
	return &CatalogService{backend: backend, productTypes: types, pageSize: pageSize}
}

// ProductTypes 可筛选的商品类型
func (s *CatalogService) ProductTypes() []string {
	out := make([]string, len(s.productTypes))
	copy(out, s.productTypes)
	return out
}

// ParseFilter 解析筛选条件
func (s *CatalogService) ParseFilter(values map[string]string) (catalog.Filter, error) {
	filter, err := catalog.ParseFilter(values, s.productTypes)
	if err != nil {
		return catalog.Filter{}, fmt.Errorf("%w: %v", ErrFilterInvalid, err)
	}
	return filter, nil
}

// ListProducts 查询全部匹配商品
func (s *CatalogService) ListProducts(ctx context.Context, filter catalog.Filter) ([]models.Product, error) {
	query, params := catalog.BuildProductListQuery(filter)
	products := make([]models.Product, 0)
	if err := s.backend.Query(ctx, query, params, &products); err != nil {
		logger.Warnw("catalog_products_fetch_failed", "filter", filter, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	return products, nil
}

// ListCategories 查询分类，失败时返回空列表
func (s *CatalogService) ListCategories(ctx context.Context) []models.Category {
	categories := make([]models.Category, 0)
	if err := s.backend.Query(ctx, catalog.CategoryListQuery, nil, &categories); err != nil {
		logger.Warnw("catalog_categories_fetch_failed", "error", err)
		return []models.Category{}
	}
	return categories
}

// Browse 并发查询商品与分类并按窗口截取
// 商品查询失败时返回空列表页与 ErrCatalogUnavailable，分类仍然保留。
func (s *CatalogService) Browse(ctx context.Context, filter catalog.Filter, visible int) (*CatalogPage, error) {
	var (
		products   []models.Product
		categories []models.Category
	)
	// 分类查询不随商品失败取消
	var g errgroup.Group
	g.Go(func() error {
		list, err := s.ListProducts(ctx, filter)
		if err != nil {
			return err
		}
		products = list
		return nil
	})
	g.Go(func() error {
		categories = s.ListCategories(ctx)
		return nil
	})
	err := g.Wait()

	window := catalog.NewWindow(visible, s.pageSize)
	page := &CatalogPage{
		Products:   []models.Product{},
		Categories: categories,
		Filter:     filter,
		Visible:    window.Visible,
	}
	if page.Categories == nil {
		page.Categories = []models.Category{}
	}
	if err != nil {
		page.NextVisible = window.Step
		page.ToggleLabel = window.ToggleLabel(0)
		return page, err
	}

	page.Total = len(products)
	page.Products = catalog.Slice(window, products)
	page.HasMore = window.HasMore(page.Total)
	page.NextVisible = window.Next(page.Total)
	page.ToggleLabel = window.ToggleLabel(page.Total)
	return page, nil
}

// GetProduct 查询商品详情，缺失或查询失败都视为未找到
func (s *CatalogService) GetProduct(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrSlugRequired
	}
	var product *models.Product
	if err := s.backend.Query(ctx, catalog.ProductBySlugQuery, map[string]interface{}{"slug": slug}, &product); err != nil {
		logger.Warnw("catalog_product_fetch_failed", "slug", slug, "error", err)
		return nil, ErrProductNotFound
	}
	if product == nil || product.Slug == "" {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// LookupBySlugs 批量查询商品当前信息，用于购物车核对
func (s *CatalogService) LookupBySlugs(ctx context.Context, slugs []string) (map[string]models.Product, error) {
	unique := make([]string, 0, len(slugs))
	seen := make(map[string]struct{}, len(slugs))
	for _, slug := range slugs {
		if _, ok := seen[slug]; ok || slug == "" {
			continue
		}
		seen[slug] = struct{}{}
		unique = append(unique, slug)
	}
	result := make(map[string]models.Product, len(unique))
	if len(unique) == 0 {
		return result, nil
	}
	var products []models.Product
	if err := s.backend.Query(ctx, catalog.ProductsBySlugsQuery, map[string]interface{}{"slugs": unique}, &products); err != nil {
		logger.Warnw("catalog_lookup_failed", "slugs", unique, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	for _, product := range products {
		result[product.Slug] = product
	}
	return result, nil
}
