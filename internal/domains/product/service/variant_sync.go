package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/internal/shared/utils"
)

// variantCodePrefix là prefix của sequence code cho extend variants
const variantCodePrefix = "PE"

// SyncInput là một lần reconcile declared variants của một source product
type SyncInput struct {
	Source *model.Product

	// ProductExtend: JSON blob khai báo target variant list.
	// Rỗng/"null" → không có variant nào (prune hết).
	ProductExtend string

	// Images align theo index với declared list; nil entry = giữ ảnh cũ
	Images []*storage.File

	TenantID string
}

// SyncResult là output của engine: caller persist và prune
type SyncResult struct {
	ToCreate  []model.Product
	ToUpdate  []model.Product
	Summaries []model.VariantSummary

	// KeepIDs là declared set, mọi variant cũ ngoài set này bị prune
	KeepIDs []uuid.UUID
}

// variantSyncEngine reconcile declared variant list với records đã persist.
// Engine KHÔNG tự persist, nó trả về create/update sets, caller lo phần đó
// (và phần prune) để giữ engine test được với fake store.
type variantSyncEngine struct {
	products repository.ProductRepository
	storage  ObjectStorage
	codes    CodeGenerator
	now      func() time.Time
}

func newVariantSyncEngine(products repository.ProductRepository, st ObjectStorage, codes CodeGenerator) *variantSyncEngine {
	return &variantSyncEngine{
		products: products,
		storage:  st,
		codes:    codes,
		now:      time.Now,
	}
}

// BuildSync chạy thuật toán reconcile:
//
// Với mỗi declared variant tại index i:
//   - có id và record product-extend còn sống → UPDATE: merge inherited
//     fields từ source, regenerate slug, upload ảnh positional nếu có,
//     stamp updated_at
//   - ngược lại → CREATE: uuid mới + sequence code "PE", inherit, slug,
//     upload ảnh nếu có, stamp cả hai timestamps
//
// Upload đi qua s.storage (thường là uploadTracker) nên caller rollback được.
func (s *variantSyncEngine) BuildSync(ctx context.Context, in *SyncInput) (*SyncResult, error) {
	declarations, err := model.ParseVariantDeclarations(in.ProductExtend)
	if err != nil {
		return nil, err
	}

	result := &SyncResult{KeepIDs: []uuid.UUID{}}
	if len(declarations) == 0 {
		return result, nil
	}

	for i, decl := range declarations {
		fields := decl.Extend

		existing, err := s.lookupExisting(ctx, fields.ID)
		if err != nil {
			return nil, err
		}

		var img *storage.File
		if i < len(in.Images) {
			img = in.Images[i]
		}

		if existing != nil {
			updated, summary, err := s.buildUpdate(ctx, in, existing, fields, img)
			if err != nil {
				return nil, err
			}
			result.ToUpdate = append(result.ToUpdate, *updated)
			result.Summaries = append(result.Summaries, *summary)
			result.KeepIDs = append(result.KeepIDs, updated.ID)
			continue
		}

		created, summary, err := s.buildCreate(ctx, in, fields, img)
		if err != nil {
			return nil, err
		}
		result.ToCreate = append(result.ToCreate, *created)
		result.Summaries = append(result.Summaries, *summary)
		result.KeepIDs = append(result.KeepIDs, created.ID)
	}

	return result, nil
}

// lookupExisting: id rỗng hoặc không phải uuid hoặc record đã xóa → nil
// (declared variant sẽ đi create path)
func (s *variantSyncEngine) lookupExisting(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, nil
	}
	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, nil
	}
	existing, err := s.products.FindVariant(ctx, parsed)
	if err != nil {
		return nil, fmt.Errorf("lookup variant %s: %w", id, err)
	}
	return existing, nil
}

func (s *variantSyncEngine) buildUpdate(ctx context.Context, in *SyncInput, existing *model.Product, fields model.VariantFields, img *storage.File) (*model.Product, *model.VariantSummary, error) {
	updated := *existing

	// Inherit shared fields từ source, override bằng declared fields
	updated.CategoryID = in.Source.CategoryID
	updated.ReferenceKey = in.Source.ReferenceKey
	updated.Name = fields.Name
	updated.Title = fields.Title
	if fields.Description != "" {
		updated.Description = fields.Description
	}
	updated.Slug = utils.BuildProductSlug(fields.Name, fields.Title)
	updated.UpdatedAt = s.now().UTC()

	// Ảnh mới thay thế image/gallery; không có → giữ nguyên
	if img != nil {
		res, err := s.storage.UploadSingleFile(ctx, *img, variantFolder(existing.ProductCode), in.TenantID)
		if err != nil {
			return nil, nil, fmt.Errorf("upload variant image: %w", err)
		}
		updated.Image = res.FileName
		updated.Gallery = ""
	}

	summary := s.summarize(&updated, fields)
	return &updated, summary, nil
}

func (s *variantSyncEngine) buildCreate(ctx context.Context, in *SyncInput, fields model.VariantFields, img *storage.File) (*model.Product, *model.VariantSummary, error) {
	code, err := s.codes.GenerateCode(ctx, variantCodePrefix, 6)
	if err != nil {
		return nil, nil, fmt.Errorf("generate variant code: %w", err)
	}

	now := s.now().UTC()
	created := model.Product{
		ID:           uuid.New(),
		ProductCode:  code,
		ReferenceKey: in.Source.ReferenceKey,
		Name:         fields.Name,
		Title:        fields.Title,
		Description:  fields.Description,
		Slug:         utils.BuildProductSlug(fields.Name, fields.Title),
		CategoryID:   in.Source.CategoryID,
		ProductType:  model.ProductTypeExtend,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if img != nil {
		res, err := s.storage.UploadSingleFile(ctx, *img, variantFolder(code), in.TenantID)
		if err != nil {
			return nil, nil, fmt.Errorf("upload variant image: %w", err)
		}
		created.Image = res.FileName
	}

	summary := s.summarize(&created, fields)
	return &created, summary, nil
}

func (s *variantSyncEngine) summarize(p *model.Product, fields model.VariantFields) *model.VariantSummary {
	return &model.VariantSummary{
		ProductID:   p.ID,
		ProductCode: p.ProductCode,
		Name:        p.Name,
		Title:       p.Title,
		Price:       fields.Price,
		Image:       p.Image,
	}
}

// BuildDescriptor encode consolidated family descriptor để lưu lên source
func BuildDescriptor(galleryJSON string, summaries []model.VariantSummary) (string, error) {
	var gallery []string
	if galleryJSON != "" {
		if err := json.Unmarshal([]byte(galleryJSON), &gallery); err != nil {
			return "", fmt.Errorf("parse gallery list: %w", err)
		}
	}
	if summaries == nil {
		summaries = []model.VariantSummary{}
	}

	descriptor := model.ExtendDescriptor{
		Gallery:  gallery,
		Variants: summaries,
	}
	encoded, err := json.Marshal(descriptor)
	if err != nil {
		return "", fmt.Errorf("encode descriptor: %w", err)
	}
	return string(encoded), nil
}

func variantFolder(productCode string) string {
	return "products/" + productCode
}
