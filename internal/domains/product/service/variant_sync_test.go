package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/infrastructure/queue"
	"storefront-backend/internal/infrastructure/storage"
	"storefront-backend/internal/shared/apperror"
)

// -------------------------------------------------------------------
// In-memory fakes
// -------------------------------------------------------------------

type fakeProductRepo struct {
	mu       sync.Mutex
	products map[uuid.UUID]*model.Product
}

func newFakeProductRepo(products ...*model.Product) *fakeProductRepo {
	r := &fakeProductRepo{products: make(map[uuid.UUID]*model.Product)}
	for _, p := range products {
		cp := *p
		r.products[p.ID] = &cp
	}
	return r
}

func (r *fakeProductRepo) get(id uuid.UUID) *model.Product {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.products[id]
	if !ok {
		return nil
	}
	cp := *p
	return &cp
}

func (r *fakeProductRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p := r.get(id)
	if p == nil || p.IsDeleted {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProductRepo) FindBySlug(_ context.Context, slug string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.Slug == slug && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) FindByCode(_ context.Context, code string) (*model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.products {
		if p.ProductCode == code && !p.IsDeleted {
			cp := *p
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *fakeProductRepo) List(_ context.Context, _ *model.ListProductsFilter) ([]model.Product, int64, error) {
	return nil, 0, nil
}

func (r *fakeProductRepo) FindVariant(_ context.Context, id uuid.UUID) (*model.Product, error) {
	p := r.get(id)
	if p == nil || p.IsDeleted || p.ProductType != model.ProductTypeExtend {
		return nil, nil
	}
	return p, nil
}

func (r *fakeProductRepo) ListFamily(_ context.Context, referenceKey string) ([]model.Product, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var family []model.Product
	for _, p := range r.products {
		if strings.HasPrefix(p.ReferenceKey, referenceKey) && !p.IsDeleted {
			family = append(family, *p)
		}
	}
	return family, nil
}

func (r *fakeProductRepo) Create(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) CreateMany(_ context.Context, ps []model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range ps {
		cp := ps[i]
		r.products[cp.ID] = &cp
	}
	return nil
}

func (r *fakeProductRepo) UpsertByID(_ context.Context, p *model.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *p
	r.products[p.ID] = &cp
	return nil
}

func (r *fakeProductRepo) PruneFamily(_ context.Context, referenceKey string, keepIDs []uuid.UUID, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keep := make(map[uuid.UUID]bool, len(keepIDs))
	for _, id := range keepIDs {
		keep[id] = true
	}
	var pruned int64
	for _, p := range r.products {
		if p.IsDeleted || p.ProductType != model.ProductTypeExtend {
			continue
		}
		if !strings.HasPrefix(p.ReferenceKey, referenceKey) {
			continue
		}
		if !keep[p.ID] {
			p.IsDeleted = true
			p.UpdatedAt = now
			pruned++
		}
	}
	return pruned, nil
}

func (r *fakeProductRepo) SoftDeleteFamily(_ context.Context, referenceKey string, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, p := range r.products {
		if !p.IsDeleted && strings.HasPrefix(p.ReferenceKey, referenceKey) {
			p.IsDeleted = true
			p.UpdatedAt = now
			n++
		}
	}
	return n, nil
}

// fakeStorage đếm uploads và fail theo kịch bản
type fakeStorage struct {
	uploads       []string // folders đã upload
	deleted       []string // folders đã xóa
	failAfter     int      // fail upload thứ N trở đi (0 = không fail)
	failDeleteFor map[string]bool
}

func (f *fakeStorage) UploadSingleFile(_ context.Context, file storage.File, folderPath, _ string) (*storage.UploadResult, error) {
	if f.failAfter > 0 && len(f.uploads)+1 >= f.failAfter {
		return nil, errors.New("storage unavailable")
	}
	f.uploads = append(f.uploads, folderPath)
	return &storage.UploadResult{FileName: file.Name, Key: folderPath + "/" + file.Name}, nil
}

func (f *fakeStorage) UploadMultipleFiles(_ context.Context, files []storage.File, folderPath, _ string) (string, error) {
	if f.failAfter > 0 && len(f.uploads)+1 >= f.failAfter {
		return "", errors.New("storage unavailable")
	}
	f.uploads = append(f.uploads, folderPath)
	names := make([]string, 0, len(files))
	for _, file := range files {
		names = append(names, file.Name)
	}
	encoded, _ := json.Marshal(names)
	return string(encoded), nil
}

func (f *fakeStorage) DeleteFolder(_ context.Context, folderPath, _ string) error {
	if f.failDeleteFor[folderPath] {
		return errors.New("delete failed")
	}
	f.deleted = append(f.deleted, folderPath)
	return nil
}

type fakeCodeGen struct {
	next int64
}

func (f *fakeCodeGen) GenerateCode(_ context.Context, prefix string, minPadLength int) (string, error) {
	f.next++
	return fmt.Sprintf("%s%0*d", prefix, minPadLength, f.next), nil
}

type fakeTaskQueue struct {
	payloads []queue.CleanupFoldersPayload
}

func (f *fakeTaskQueue) EnqueueCleanupFolders(payload queue.CleanupFoldersPayload) error {
	f.payloads = append(f.payloads, payload)
	return nil
}

// -------------------------------------------------------------------
// Helpers
// -------------------------------------------------------------------

func sourceProduct() *model.Product {
	now := time.Now().UTC()
	return &model.Product{
		ID:           uuid.New(),
		ProductCode:  "PS000001",
		ReferenceKey: "PS000001",
		Name:         "Ghế xoay văn phòng",
		Title:        "Ergonomic",
		Slug:         "ghe-xoay-van-phong-ergonomic",
		CategoryID:   uuid.New(),
		ProductType:  model.ProductTypeSource,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func extendVariant(source *model.Product, code, name string) *model.Product {
	now := time.Now().UTC()
	return &model.Product{
		ID:           uuid.New(),
		ProductCode:  code,
		ReferenceKey: source.ReferenceKey,
		Name:         name,
		Title:        source.Title,
		Image:        "old-image.jpg",
		CategoryID:   source.CategoryID,
		ProductType:  model.ProductTypeExtend,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func declarationsJSON(t *testing.T, fields ...model.VariantFields) string {
	t.Helper()
	declarations := make([]model.VariantDeclaration, 0, len(fields))
	for _, f := range fields {
		declarations = append(declarations, model.VariantDeclaration{Extend: f})
	}
	encoded, err := json.Marshal(declarations)
	require.NoError(t, err)
	return string(encoded)
}

// -------------------------------------------------------------------
// Engine: BuildSync
// -------------------------------------------------------------------

func TestBuildSync_EmptyDeclarationIsNoOp(t *testing.T) {
	source := sourceProduct()
	engine := newVariantSyncEngine(newFakeProductRepo(source), &fakeStorage{}, &fakeCodeGen{})

	for _, blob := range []string{"", "null", "  "} {
		result, err := engine.BuildSync(context.Background(), &SyncInput{Source: source, ProductExtend: blob})
		require.NoError(t, err)
		assert.Empty(t, result.ToCreate)
		assert.Empty(t, result.ToUpdate)
		assert.NotNil(t, result.KeepIDs)
		assert.Empty(t, result.KeepIDs)
	}
}

func TestBuildSync_MalformedJSON(t *testing.T) {
	source := sourceProduct()
	engine := newVariantSyncEngine(newFakeProductRepo(source), &fakeStorage{}, &fakeCodeGen{})

	_, err := engine.BuildSync(context.Background(), &SyncInput{Source: source, ProductExtend: "{not json"})
	assert.Error(t, err)
}

func TestBuildSync_CreatesNewVariants(t *testing.T) {
	source := sourceProduct()
	codes := &fakeCodeGen{}
	engine := newVariantSyncEngine(newFakeProductRepo(source), &fakeStorage{}, codes)

	blob := declarationsJSON(t,
		model.VariantFields{Name: "Ghế đen", Title: "Màu đen", Price: decimal.NewFromInt(1500000)},
		model.VariantFields{Name: "Ghế trắng", Title: "Màu trắng", Price: decimal.NewFromInt(1600000)},
	)

	result, err := engine.BuildSync(context.Background(), &SyncInput{Source: source, ProductExtend: blob})
	require.NoError(t, err)

	require.Len(t, result.ToCreate, 2)
	assert.Empty(t, result.ToUpdate)
	assert.Len(t, result.KeepIDs, 2)

	first := result.ToCreate[0]
	assert.Equal(t, "PE000001", first.ProductCode)
	assert.Equal(t, source.ReferenceKey, first.ReferenceKey)
	assert.Equal(t, source.CategoryID, first.CategoryID)
	assert.Equal(t, model.ProductTypeExtend, first.ProductType)
	assert.Equal(t, "ghe-den-mau-den", first.Slug)
	assert.Equal(t, "PE000002", result.ToCreate[1].ProductCode)
}

func TestBuildSync_UnknownIDFallsBackToCreate(t *testing.T) {
	source := sourceProduct()
	codes := &fakeCodeGen{}
	engine := newVariantSyncEngine(newFakeProductRepo(source), &fakeStorage{}, codes)

	tests := []struct {
		name string
		id   string
	}{
		{"non-uuid id", "not-a-uuid"},
		{"uuid without record", uuid.New().String()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			blob := declarationsJSON(t, model.VariantFields{ID: tt.id, Name: "Ghế đỏ", Title: "Màu đỏ"})
			result, err := engine.BuildSync(context.Background(), &SyncInput{Source: source, ProductExtend: blob})
			require.NoError(t, err)
			assert.Len(t, result.ToCreate, 1)
			assert.Empty(t, result.ToUpdate)
		})
	}
}

func TestBuildSync_UpdatePreservesImageWhenNoUpload(t *testing.T) {
	source := sourceProduct()
	variant := extendVariant(source, "PE000001", "Ghế đen")
	engine := newVariantSyncEngine(newFakeProductRepo(source, variant), &fakeStorage{}, &fakeCodeGen{})

	blob := declarationsJSON(t, model.VariantFields{
		ID: variant.ID.String(), Name: "Ghế đen v2", Title: "Màu đen",
	})

	result, err := engine.BuildSync(context.Background(), &SyncInput{
		Source:        source,
		ProductExtend: blob,
		Images:        []*storage.File{nil}, // không có ảnh mới cho variant này
	})
	require.NoError(t, err)

	require.Len(t, result.ToUpdate, 1)
	updated := result.ToUpdate[0]
	assert.Equal(t, variant.ID, updated.ID)
	assert.Equal(t, "Ghế đen v2", updated.Name)
	assert.Equal(t, "ghe-den-v2-mau-den", updated.Slug)
	assert.Equal(t, "old-image.jpg", updated.Image, "ảnh cũ phải được giữ khi không upload")
	assert.Equal(t, variant.ProductCode, updated.ProductCode, "product code là immutable")
}

func TestBuildSync_UpdateReplacesImageAndClearsGallery(t *testing.T) {
	source := sourceProduct()
	variant := extendVariant(source, "PE000001", "Ghế đen")
	variant.Gallery = `["a.jpg","b.jpg"]`
	st := &fakeStorage{}
	engine := newVariantSyncEngine(newFakeProductRepo(source, variant), st, &fakeCodeGen{})

	blob := declarationsJSON(t, model.VariantFields{
		ID: variant.ID.String(), Name: "Ghế đen", Title: "Màu đen",
	})

	result, err := engine.BuildSync(context.Background(), &SyncInput{
		Source:        source,
		ProductExtend: blob,
		Images:        []*storage.File{{Name: "new.jpg", ContentType: "image/jpeg"}},
	})
	require.NoError(t, err)

	require.Len(t, result.ToUpdate, 1)
	assert.Equal(t, "new.jpg", result.ToUpdate[0].Image)
	assert.Empty(t, result.ToUpdate[0].Gallery)
	assert.Equal(t, []string{"products/PE000001"}, st.uploads)
}

// -------------------------------------------------------------------
// Full update flow: update + create + prune trong một lần sync
// -------------------------------------------------------------------

func TestUpdateProduct_ReconcilesFamily(t *testing.T) {
	source := sourceProduct()
	variantA := extendVariant(source, "PE000001", "Ghế đen")
	variantB := extendVariant(source, "PE000002", "Ghế trắng")
	repo := newFakeProductRepo(source, variantA, variantB)

	codes := &fakeCodeGen{next: 2} // PE000001, PE000002 đã cấp
	svc := NewProductService(repo, &noopDetailRepo{}, &fakeStorage{}, codes, &fakeTaskQueue{})

	// Declared list: giữ A (update), thêm C (create); B vắng mặt → prune
	blob := declarationsJSON(t,
		model.VariantFields{ID: variantA.ID.String(), Name: "Ghế đen bản mới", Title: "Màu đen"},
		model.VariantFields{Name: "Ghế xám", Title: "Màu xám"},
	)

	updated, err := svc.UpdateProduct(context.Background(), source.ID, &model.UpdateProductRequest{
		ProductExtend: blob,
	}, nil, nil, "tenant-1")
	require.NoError(t, err)

	// A updated in place
	gotA := repo.get(variantA.ID)
	require.NotNil(t, gotA)
	assert.False(t, gotA.IsDeleted)
	assert.Equal(t, "Ghế đen bản mới", gotA.Name)

	// B pruned
	gotB := repo.get(variantB.ID)
	require.NotNil(t, gotB)
	assert.True(t, gotB.IsDeleted)

	// C created với code mới
	family, err := repo.ListFamily(context.Background(), source.ReferenceKey)
	require.NoError(t, err)
	var foundC bool
	for _, p := range family {
		if p.ProductCode == "PE000003" {
			foundC = true
			assert.Equal(t, "Ghế xám", p.Name)
		}
	}
	assert.True(t, foundC, "variant mới phải được tạo với code PE000003")

	// Descriptor trên source phản ánh đúng 2 variants còn sống
	var descriptor model.ExtendDescriptor
	require.NoError(t, json.Unmarshal([]byte(updated.ProductExtend), &descriptor))
	assert.Len(t, descriptor.Variants, 2)
}

func TestUpdateProduct_EmptyDeclarationPrunesAll(t *testing.T) {
	source := sourceProduct()
	variantA := extendVariant(source, "PE000001", "Ghế đen")
	repo := newFakeProductRepo(source, variantA)
	svc := NewProductService(repo, &noopDetailRepo{}, &fakeStorage{}, &fakeCodeGen{}, &fakeTaskQueue{})

	_, err := svc.UpdateProduct(context.Background(), source.ID, &model.UpdateProductRequest{
		ProductExtend: "",
	}, nil, nil, "tenant-1")
	require.NoError(t, err)

	gotA := repo.get(variantA.ID)
	require.NotNil(t, gotA)
	assert.True(t, gotA.IsDeleted, "declared list rỗng → mọi variant cũ bị prune")
}

func TestUpdateProduct_RejectsEmptyName(t *testing.T) {
	source := sourceProduct()
	repo := newFakeProductRepo(source)
	svc := NewProductService(repo, &noopDetailRepo{}, &fakeStorage{}, &fakeCodeGen{}, &fakeTaskQueue{})

	empty := ""
	_, err := svc.UpdateProduct(context.Background(), source.ID, &model.UpdateProductRequest{
		Name: &empty,
	}, nil, nil, "tenant-1")

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, apperror.CodeValidationFailed, appErr.Code)
	assert.Equal(t, source.Name, repo.get(source.ID).Name, "validation fail thì không ghi gì")
}

func TestUpdateProduct_RejectsVariantTarget(t *testing.T) {
	source := sourceProduct()
	variant := extendVariant(source, "PE000001", "Ghế đen")
	repo := newFakeProductRepo(source, variant)
	svc := NewProductService(repo, &noopDetailRepo{}, &fakeStorage{}, &fakeCodeGen{}, &fakeTaskQueue{})

	_, err := svc.UpdateProduct(context.Background(), variant.ID, &model.UpdateProductRequest{}, nil, nil, "tenant-1")
	assert.Error(t, err, "update trực tiếp lên extend variant không được phép")
}

// -------------------------------------------------------------------
// Rollback
// -------------------------------------------------------------------

func TestCreateProduct_RollbackOnUploadFailure(t *testing.T) {
	repo := newFakeProductRepo()
	st := &fakeStorage{failAfter: 2} // gallery upload ok, variant upload fail
	tasks := &fakeTaskQueue{}
	svc := NewProductService(repo, &noopDetailRepo{}, st, &fakeCodeGen{}, tasks)

	blob := declarationsJSON(t, model.VariantFields{Name: "Ghế đen", Title: "Màu đen"})
	_, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{
		Name:          "Ghế xoay",
		Title:         "Ergonomic",
		CategoryID:    uuid.New(),
		ProductExtend: blob,
	}, []storage.File{{Name: "gallery.jpg"}}, []*storage.File{{Name: "variant.jpg"}}, "tenant-1")

	require.Error(t, err)
	assert.Equal(t, st.uploads, st.deleted, "mọi folder đã upload phải bị xóa khi rollback")
	assert.Empty(t, tasks.payloads, "xóa thành công thì không cần compensation log")
}

func TestCreateProduct_CompensationLogWhenRollbackDeleteFails(t *testing.T) {
	repo := newFakeProductRepo()
	st := &fakeStorage{failAfter: 2}
	tasks := &fakeTaskQueue{}
	svc := NewProductService(repo, &noopDetailRepo{}, st, &fakeCodeGen{}, tasks)

	// Upload đầu tiên vào folder của source; xóa folder đó sẽ fail
	st.failDeleteFor = map[string]bool{"products/PS000001": true}

	blob := declarationsJSON(t, model.VariantFields{Name: "Ghế đen", Title: "Màu đen"})
	_, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{
		Name:          "Ghế xoay",
		Title:         "Ergonomic",
		CategoryID:    uuid.New(),
		ProductExtend: blob,
	}, []storage.File{{Name: "gallery.jpg"}}, []*storage.File{{Name: "variant.jpg"}}, "tenant-1")

	require.Error(t, err)
	require.Len(t, tasks.payloads, 1)
	assert.Equal(t, "tenant-1", tasks.payloads[0].TenantID)
	assert.Contains(t, tasks.payloads[0].Folders, "products/PS000001")
}

func TestCreateProduct_MalformedDeclarationFailsBeforeUpload(t *testing.T) {
	st := &fakeStorage{}
	svc := NewProductService(newFakeProductRepo(), &noopDetailRepo{}, st, &fakeCodeGen{}, &fakeTaskQueue{})

	_, err := svc.CreateProduct(context.Background(), &model.CreateProductRequest{
		Name:          "Ghế xoay",
		CategoryID:    uuid.New(),
		ProductExtend: "{broken",
	}, []storage.File{{Name: "gallery.jpg"}}, nil, "tenant-1")

	require.Error(t, err)
	assert.Empty(t, st.uploads, "JSON hỏng phải fail trước khi upload bất kỳ thứ gì")
}

// -------------------------------------------------------------------
// Delete
// -------------------------------------------------------------------

func TestDeleteProduct_SoftDeletesFamilyAndEnqueuesCleanup(t *testing.T) {
	source := sourceProduct()
	variant := extendVariant(source, "PE000001", "Ghế đen")
	repo := newFakeProductRepo(source, variant)
	tasks := &fakeTaskQueue{}
	svc := NewProductService(repo, &noopDetailRepo{}, &fakeStorage{}, &fakeCodeGen{}, tasks)

	require.NoError(t, svc.DeleteProduct(context.Background(), source.ID))

	assert.True(t, repo.get(source.ID).IsDeleted)
	assert.True(t, repo.get(variant.ID).IsDeleted)

	require.Len(t, tasks.payloads, 1)
	assert.ElementsMatch(t,
		[]string{"products/PS000001", "products/PE000001"},
		tasks.payloads[0].Folders,
	)
}

// noopDetailRepo: product service chỉ đụng details khi delete
type noopDetailRepo struct{}

func (r *noopDetailRepo) FindByID(_ context.Context, _ uuid.UUID) (*model.ProductDetail, error) {
	return nil, nil
}

func (r *noopDetailRepo) ListByProduct(_ context.Context, _ uuid.UUID, _ string) ([]model.ProductDetail, error) {
	return nil, nil
}

func (r *noopDetailRepo) Create(_ context.Context, _ *model.ProductDetail) error { return nil }

func (r *noopDetailRepo) CreateMany(_ context.Context, _ []model.ProductDetail) error { return nil }

func (r *noopDetailRepo) Update(_ context.Context, _ *model.ProductDetail) (*model.ProductDetail, error) {
	return nil, nil
}

func (r *noopDetailRepo) SoftDelete(_ context.Context, _ uuid.UUID) error { return nil }

func (r *noopDetailRepo) SoftDeleteByProduct(_ context.Context, _ uuid.UUID, _ time.Time) (int64, error) {
	return 0, nil
}
