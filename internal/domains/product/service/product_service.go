package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/infrastructure/queue"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/internal/shared/i18n"
	"storefront-backend/internal/shared/utils"
	"storefront-backend/pkg/logger"
)

// sourceCodePrefix: sequence prefix cho source products.
// Reference key của family = product code của source, nên variant sync
// prune được theo prefix match.
const sourceCodePrefix = "PS"

type productService struct {
	products repository.ProductRepository
	details  repository.ProductDetailRepository
	storage  ObjectStorage
	codes    CodeGenerator
	tasks    TaskQueue
}

func NewProductService(
	products repository.ProductRepository,
	details repository.ProductDetailRepository,
	st ObjectStorage,
	codes CodeGenerator,
	tasks TaskQueue,
) ProductService {
	return &productService{
		products: products,
		details:  details,
		storage:  st,
		codes:    codes,
		tasks:    tasks,
	}
}

// -------------------------------------------------------------------
// CREATE
// -------------------------------------------------------------------

// CreateProduct tạo source product mới kèm declared variants.
//
// Mọi upload đi qua uploadTracker: lỗi ở bất kỳ bước nào sau upload đầu
// tiên → rollback toàn bộ folder đã touch rồi mới propagate lỗi gốc.
func (s *productService) CreateProduct(ctx context.Context, req *model.CreateProductRequest, gallery []storage.File, variantImages []*storage.File, tenantID string) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	// Parse declarations TRƯỚC khi upload, JSON hỏng thì chưa có gì để dọn
	if _, err := model.ParseVariantDeclarations(req.ProductExtend); err != nil {
		return nil, apperror.BadRequest(apperror.CodeInvalidVariants, i18n.T(req.Lang, "product.invalid_variants"))
	}

	code, err := s.codes.GenerateCode(ctx, sourceCodePrefix, 6)
	if err != nil {
		return nil, fmt.Errorf("generate product code: %w", err)
	}

	now := time.Now().UTC()
	source := &model.Product{
		ID:           uuid.New(),
		ProductCode:  code,
		ReferenceKey: code,
		Name:         req.Name,
		Title:        req.Title,
		Description:  req.Description,
		Slug:         utils.BuildProductSlug(req.Name, req.Title),
		CategoryID:   req.CategoryID,
		ProductType:  model.ProductTypeSource,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tracker := newUploadTracker(s.storage, s.tasks, tenantID)
	created, err := s.createWithUploads(ctx, tracker, source, req.ProductExtend, gallery, variantImages, tenantID)
	if err != nil {
		tracker.Rollback(ctx)
		return nil, err
	}
	return created, nil
}

func (s *productService) createWithUploads(ctx context.Context, tracker *uploadTracker, source *model.Product, productExtend string, gallery []storage.File, variantImages []*storage.File, tenantID string) (*model.Product, error) {
	// Gallery chung của family
	if len(gallery) > 0 {
		galleryJSON, err := tracker.UploadMultipleFiles(ctx, gallery, variantFolder(source.ProductCode), tenantID)
		if err != nil {
			return nil, fmt.Errorf("upload gallery: %w", err)
		}
		source.Gallery = galleryJSON
	}

	// Mọi declared variant đều là create path (source mới chưa có family)
	engine := newVariantSyncEngine(s.products, tracker, s.codes)
	sync, err := engine.BuildSync(ctx, &SyncInput{
		Source:        source,
		ProductExtend: productExtend,
		Images:        variantImages,
		TenantID:      tenantID,
	})
	if err != nil {
		return nil, err
	}

	descriptor, err := BuildDescriptor(source.Gallery, sync.Summaries)
	if err != nil {
		return nil, err
	}
	source.ProductExtend = descriptor

	if err := s.products.Create(ctx, source); err != nil {
		return nil, fmt.Errorf("persist source product: %w", err)
	}
	if err := s.products.CreateMany(ctx, sync.ToCreate); err != nil {
		return nil, fmt.Errorf("persist variants: %w", err)
	}

	logger.Info("Product created", map[string]interface{}{
		"product_id":   source.ID.String(),
		"product_code": source.ProductCode,
		"variants":     len(sync.ToCreate),
	})
	return source, nil
}

// -------------------------------------------------------------------
// UPDATE
// -------------------------------------------------------------------

// UpdateProduct update source fields và reconcile declared variant list:
// update/create theo engine, sau đó prune mọi variant cũ ngoài declared set.
func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *model.UpdateProductRequest, gallery []storage.File, variantImages []*storage.File, tenantID string) (*model.Product, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	source, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if source == nil || !source.IsSource() {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, i18n.T(req.Lang, "product.not_found"))
	}

	if _, err := model.ParseVariantDeclarations(req.ProductExtend); err != nil {
		return nil, apperror.BadRequest(apperror.CodeInvalidVariants, i18n.T(req.Lang, "product.invalid_variants"))
	}

	applyProductPatch(source, req)
	source.Slug = utils.BuildProductSlug(source.Name, source.Title)
	source.UpdatedAt = time.Now().UTC()

	tracker := newUploadTracker(s.storage, s.tasks, tenantID)
	updated, err := s.updateWithUploads(ctx, tracker, source, req.ProductExtend, gallery, variantImages, tenantID)
	if err != nil {
		tracker.Rollback(ctx)
		return nil, err
	}
	return updated, nil
}

func (s *productService) updateWithUploads(ctx context.Context, tracker *uploadTracker, source *model.Product, productExtend string, gallery []storage.File, variantImages []*storage.File, tenantID string) (*model.Product, error) {
	if len(gallery) > 0 {
		galleryJSON, err := tracker.UploadMultipleFiles(ctx, gallery, variantFolder(source.ProductCode), tenantID)
		if err != nil {
			return nil, fmt.Errorf("upload gallery: %w", err)
		}
		source.Gallery = galleryJSON
	}

	engine := newVariantSyncEngine(s.products, tracker, s.codes)
	sync, err := engine.BuildSync(ctx, &SyncInput{
		Source:        source,
		ProductExtend: productExtend,
		Images:        variantImages,
		TenantID:      tenantID,
	})
	if err != nil {
		return nil, err
	}

	// Persist: upsert updates, bulk insert creates
	for i := range sync.ToUpdate {
		if err := s.products.UpsertByID(ctx, &sync.ToUpdate[i]); err != nil {
			return nil, fmt.Errorf("persist variant update: %w", err)
		}
	}
	if err := s.products.CreateMany(ctx, sync.ToCreate); err != nil {
		return nil, fmt.Errorf("persist new variants: %w", err)
	}

	// Family prune: variant cũ không còn trong declared set → is_deleted
	now := time.Now().UTC()
	pruned, err := s.products.PruneFamily(ctx, source.ReferenceKey, sync.KeepIDs, now)
	if err != nil {
		return nil, fmt.Errorf("prune variant family: %w", err)
	}

	descriptor, err := BuildDescriptor(source.Gallery, sync.Summaries)
	if err != nil {
		return nil, err
	}
	source.ProductExtend = descriptor

	if err := s.products.UpsertByID(ctx, source); err != nil {
		return nil, fmt.Errorf("persist source product: %w", err)
	}

	logger.Info("Product updated", map[string]interface{}{
		"product_id": source.ID.String(),
		"updated":    len(sync.ToUpdate),
		"created":    len(sync.ToCreate),
		"pruned":     pruned,
	})
	return source, nil
}

func applyProductPatch(p *model.Product, req *model.UpdateProductRequest) {
	if req.Name != nil {
		p.Name = *req.Name
	}
	if req.Title != nil {
		p.Title = *req.Title
	}
	if req.Description != nil {
		p.Description = *req.Description
	}
	if req.CategoryID != nil {
		p.CategoryID = *req.CategoryID
	}
}

// -------------------------------------------------------------------
// READ / DELETE
// -------------------------------------------------------------------

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	p, err := s.products.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get product: %w", err)
	}
	if p == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, i18n.T("", "product.not_found"))
	}
	return p, nil
}

func (s *productService) GetProductBySlug(ctx context.Context, slug string) (*model.Product, error) {
	p, err := s.products.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("get product by slug: %w", err)
	}
	if p == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, i18n.T("", "product.not_found"))
	}
	return p, nil
}

func (s *productService) ListProducts(ctx context.Context, filter *model.ListProductsFilter) ([]model.Product, int64, error) {
	return s.products.List(ctx, filter)
}

func (s *productService) ListFamily(ctx context.Context, id uuid.UUID) ([]model.Product, error) {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.products.ListFamily(ctx, p.ReferenceKey)
}

// DeleteProduct soft-delete source + variants + details.
// Ảnh trên storage được dọn async qua compensation queue.
func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	p, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}

	family, err := s.products.ListFamily(ctx, p.ReferenceKey)
	if err != nil {
		return fmt.Errorf("list family: %w", err)
	}

	now := time.Now().UTC()
	if _, err := s.products.SoftDeleteFamily(ctx, p.ReferenceKey, now); err != nil {
		return fmt.Errorf("delete family: %w", err)
	}
	if _, err := s.details.SoftDeleteByProduct(ctx, p.ID, now); err != nil {
		return fmt.Errorf("delete details: %w", err)
	}

	folders := make([]string, 0, len(family))
	for _, member := range family {
		folders = append(folders, variantFolder(member.ProductCode))
	}
	if len(folders) > 0 && s.tasks != nil {
		if err := s.tasks.EnqueueCleanupFolders(queue.CleanupFoldersPayload{Folders: folders}); err != nil {
			logger.Error("Failed to enqueue storage cleanup after delete", err)
		}
	}

	return nil
}
