package usecase

import (
	"context"
	"crypto/md5"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/verone/catalog-service/internal/apperr"
	"github.com/verone/catalog-service/internal/model"
	"github.com/verone/catalog-service/internal/platform/cache"
	"github.com/verone/catalog-service/internal/platform/logger"
	"github.com/verone/catalog-service/internal/platform/search"
	"github.com/verone/catalog-service/internal/product"
	"github.com/verone/catalog-service/internal/product/dto"
	"go.uber.org/zap"
)

const productIndex = "products"

type productUseCase struct {
	repo   product.Repository
	cache  *cache.RedisClient
	es     *search.Client
	logger logger.ZapLogger
}

func NewProductUseCase(repo product.Repository, cache *cache.RedisClient, es *search.Client, log logger.ZapLogger) product.UseCase {
	return &productUseCase{
		repo:   repo,
		cache:  cache,
		es:     es,
		logger: log,
	}
}

func (uc *productUseCase) CreateProduct(ctx context.Context, input *dto.CreateProductInput) (*model.Product, error) {
	if input.Name == "" {
		return nil, apperr.Validation("product name is required")
	}
	if input.SKU == "" {
		return nil, apperr.Validation("product SKU is required")
	}

	unique, err := uc.repo.IsSKUUnique(ctx, input.SKU, "")
	if err != nil {
		return nil, apperr.External(err, "check SKU uniqueness")
	}
	if !unique {
		return nil, apperr.Conflict("SKU %q already exists", input.SKU)
	}

	now := time.Now()
	p := &model.Product{
		BaseModel:     model.BaseModel{ID: uuid.New().String(), CreatedAt: now, UpdatedAt: now},
		Name:          input.Name,
		SKU:           input.SKU,
		VariantAttrs:  model.AttributeMap(input.VariantAttrs),
		CategoryID:    input.CategoryID,
		SupplierID:    input.SupplierID,
		BasePrice:     input.BasePrice,
		CostPrice:     input.CostPrice,
		Length:        input.Length,
		Width:         input.Width,
		Height:        input.Height,
		DimensionUnit: input.DimensionUnit,
		Weight:        input.Weight,
		RoomTags:      model.StringList(input.RoomTags),
		Status:        model.StatusInStock,
	}
	if p.VariantAttrs == nil {
		p.VariantAttrs = model.AttributeMap{}
	}

	if err := uc.repo.Create(ctx, p); err != nil {
		return nil, apperr.External(err, "create product")
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return nil, apperr.External(err, "find product")
	}
	if p == nil {
		return nil, apperr.NotFound("product %s not found", id)
	}
	return p, nil
}

func (uc *productUseCase) ListProducts(ctx context.Context, filters *dto.ProductFilters) ([]model.Product, int, error) {
	cacheKey, err := uc.listCacheKey(filters)
	if err == nil && uc.cache != nil {
		val, err := uc.cache.Client.Get(ctx, cacheKey).Result()
		if err == nil {
			var result struct {
				Products []model.Product
				Count    int
			}
			if err := json.Unmarshal([]byte(val), &result); err == nil {
				return result.Products, result.Count, nil
			}
		}
	}

	// Search via Elastic when a query is present; fall back to the DB on
	// any failure so order entry is never blocked by a search outage.
	if filters.SearchQuery != "" && uc.es != nil {
		q := buildSearchQuery(filters)

		res, err := uc.es.Search(ctx, productIndex, q)
		if err == nil {
			var esProducts []model.Product
			for _, hit := range res.Hits.Hits {
				var p model.Product
				if err := json.Unmarshal(hit.Source, &p); err == nil {
					esProducts = append(esProducts, p)
				}
			}
			return esProducts, res.Hits.Total.Value, nil
		}
		uc.logger.Error("ES search failed, falling back to DB", zap.Error(err))
	}

	products, count, err := uc.repo.FindAll(ctx, filters)
	if err != nil {
		return nil, 0, apperr.External(err, "list products")
	}

	if cacheKey != "" && uc.cache != nil {
		cacheData := struct {
			Products []model.Product
			Count    int
		}{
			Products: products,
			Count:    count,
		}
		if data, err := json.Marshal(cacheData); err == nil {
			uc.cache.Client.Set(ctx, cacheKey, data, 5*time.Minute)
		}
	}

	return products, count, nil
}

func (uc *productUseCase) UpdateProduct(ctx context.Context, input *dto.UpdateProductInput) (*model.Product, error) {
	p, err := uc.repo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, apperr.External(err, "find product")
	}
	if p == nil {
		return nil, apperr.NotFound("product %s not found", input.ID)
	}

	if input.SKU != "" && p.SKU != input.SKU {
		unique, err := uc.repo.IsSKUUnique(ctx, input.SKU, p.ID)
		if err != nil {
			return nil, apperr.External(err, "check SKU uniqueness")
		}
		if !unique {
			return nil, apperr.Conflict("SKU %q already exists", input.SKU)
		}
		p.SKU = input.SKU
	}

	if input.Name != "" {
		p.Name = input.Name
	}
	p.CategoryID = input.CategoryID
	p.SupplierID = input.SupplierID
	p.BasePrice = input.BasePrice
	p.CostPrice = input.CostPrice
	p.Length = input.Length
	p.Width = input.Width
	p.Height = input.Height
	p.DimensionUnit = input.DimensionUnit
	p.Weight = input.Weight
	if input.RoomTags != nil {
		p.RoomTags = model.StringList(input.RoomTags)
	}
	if input.Status != "" {
		status := model.ProductStatus(input.Status)
		if status != model.StatusInStock && status != model.StatusDiscontinued {
			return nil, apperr.Validation("invalid status %q", input.Status)
		}
		p.Status = status
	}

	p.UpdatedAt = time.Now()
	if err := uc.repo.Update(ctx, p); err != nil {
		return nil, apperr.External(err, "update product")
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)

	return p, nil
}

func (uc *productUseCase) ArchiveProduct(ctx context.Context, id string) error {
	return uc.setArchival(ctx, id, true)
}

func (uc *productUseCase) UnarchiveProduct(ctx context.Context, id string) error {
	return uc.setArchival(ctx, id, false)
}

func (uc *productUseCase) setArchival(ctx context.Context, id string, archive bool) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.External(err, "find product")
	}
	if p == nil {
		return apperr.NotFound("product %s not found", id)
	}
	if archive == p.Archived() {
		return nil
	}

	now := time.Now()
	if archive {
		p.ArchivedAt = &now
		p.Status = model.StatusDiscontinued
	} else {
		p.ArchivedAt = nil
		p.Status = model.StatusInStock
	}
	p.UpdatedAt = now

	if err := uc.repo.Update(ctx, p); err != nil {
		return apperr.External(err, "update product")
	}

	go uc.invalidateListCache(context.Background())
	go uc.syncToElastic(context.Background(), p)
	return nil
}

func (uc *productUseCase) DeleteProduct(ctx context.Context, id string) error {
	p, err := uc.repo.FindByID(ctx, id)
	if err != nil {
		return apperr.External(err, "find product")
	}
	if p == nil {
		return nil // Already deleted
	}
	if p.Grouped() {
		return apperr.Conflict("product %s belongs to a group, remove it first", id)
	}

	if err := uc.repo.Delete(ctx, id); err != nil {
		return apperr.External(err, "delete product")
	}

	go uc.invalidateListCache(context.Background())
	if uc.es != nil {
		go func() {
			if err := uc.es.Delete(context.Background(), productIndex, id); err != nil {
				uc.logger.Error("failed to delete product from ES", zap.Error(err))
			}
		}()
	}

	return nil
}

// buildSearchQuery mirrors the list filters into the Elastic query so a
// filtered search returns the same subset the DB path would.
func buildSearchQuery(f *dto.ProductFilters) map[string]interface{} {
	must := []map[string]interface{}{
		{
			"query_string": map[string]interface{}{
				"query":  fmt.Sprintf("*%s*", f.SearchQuery),
				"fields": []string{"name^3", "sku"},
			},
		},
	}

	var filter []map[string]interface{}
	term := func(field, value string) map[string]interface{} {
		return map[string]interface{}{
			"term": map[string]interface{}{field: value},
		}
	}
	if f.CategoryID != "" {
		filter = append(filter, term("category_id", f.CategoryID))
	}
	if f.SupplierID != "" {
		filter = append(filter, term("supplier_id", f.SupplierID))
	}
	if f.GroupID != "" {
		filter = append(filter, term("group_id", f.GroupID))
	}
	if f.Status != "" {
		filter = append(filter, term("status", f.Status))
	}

	boolQuery := map[string]interface{}{"must": must}
	if f.Archived != nil {
		archived := map[string]interface{}{
			"exists": map[string]interface{}{"field": "archived_at"},
		}
		if *f.Archived {
			filter = append(filter, archived)
		} else {
			boolQuery["must_not"] = []map[string]interface{}{archived}
		}
	}
	if len(filter) > 0 {
		boolQuery["filter"] = filter
	}

	q := map[string]interface{}{
		"query": map[string]interface{}{"bool": boolQuery},
		"from":  (f.Page - 1) * f.PageSize,
	}
	if f.PageSize > 0 {
		q["size"] = f.PageSize
	}
	return q
}

func (uc *productUseCase) syncToElastic(ctx context.Context, p *model.Product) {
	if uc.es == nil {
		return
	}

	mapping := `{
		"mappings": {
			"properties": {
				"name": { "type": "text" },
				"sku": { "type": "keyword" },
				"status": { "type": "keyword" },
				"category_id": { "type": "keyword" },
				"supplier_id": { "type": "keyword" },
				"group_id": { "type": "keyword" },
				"archived_at": { "type": "date" },
				"base_price": { "type": "double" },
				"created_at": { "type": "date" }
			}
		}
	}`
	_ = uc.es.CreateIndex(ctx, productIndex, mapping)

	if err := uc.es.Index(ctx, productIndex, p.ID, p); err != nil {
		uc.logger.Error("failed to index product", zap.Error(err))
	}
}

func (uc *productUseCase) listCacheKey(filters *dto.ProductFilters) (string, error) {
	data, err := json.Marshal(filters)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("products:list:%x", md5.Sum(data)), nil
}

func (uc *productUseCase) invalidateListCache(ctx context.Context) {
	if uc.cache == nil {
		return
	}
	keys, err := uc.cache.Client.Keys(ctx, "products:list:*").Result()
	if err == nil && len(keys) > 0 {
		uc.cache.Client.Del(ctx, keys...)
	}
}
