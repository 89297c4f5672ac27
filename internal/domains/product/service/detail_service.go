package service

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"storefront-backend/internal/domains/product/model"
	"storefront-backend/internal/domains/product/repository"
	"storefront-backend/internal/shared/apperror"
	"storefront-backend/pkg/logger"
)

// UnitOfWork là transaction wrapper của store; capability explicit:
// batch create check Transactional() và log warning khi chạy non-atomic
type UnitOfWork interface {
	Transactional() bool
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

type detailService struct {
	products repository.ProductRepository
	details  repository.ProductDetailRepository
	uow      UnitOfWork
}

func NewDetailService(
	products repository.ProductRepository,
	details repository.ProductDetailRepository,
	uow UnitOfWork,
) DetailService {
	return &detailService{
		products: products,
		details:  details,
		uow:      uow,
	}
}

func (s *detailService) CreateDetail(ctx context.Context, req *model.CreateDetailRequest) (*model.ProductDetail, error) {
	if err := req.Validate(); err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	detail, err := s.buildDetail(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := s.details.Create(ctx, detail); err != nil {
		return nil, fmt.Errorf("create product detail: %w", err)
	}
	return detail, nil
}

// BatchCreateDetails insert nhiều details trong unit of work.
// Store không support transactions → chạy non-atomic kèm warning,
// caller đã có thể check Transactional() trước nếu cần atomicity cứng.
func (s *detailService) BatchCreateDetails(ctx context.Context, reqs []*model.CreateDetailRequest) (int, error) {
	if len(reqs) == 0 {
		return 0, nil
	}

	docs := make([]model.ProductDetail, 0, len(reqs))
	for _, req := range reqs {
		if err := req.Validate(); err != nil {
			return 0, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
		}
		detail, err := s.buildDetail(ctx, req)
		if err != nil {
			return 0, err
		}
		docs = append(docs, *detail)
	}

	if !s.uow.Transactional() {
		logger.Warn("Batch detail creation running without transaction support", map[string]interface{}{
			"count": len(docs),
		})
	}

	err := s.uow.WithTransaction(ctx, func(txCtx context.Context) error {
		return s.details.CreateMany(txCtx, docs)
	})
	if err != nil {
		return 0, fmt.Errorf("batch create details: %w", err)
	}
	return len(docs), nil
}

func (s *detailService) buildDetail(ctx context.Context, req *model.CreateDetailRequest) (*model.ProductDetail, error) {
	product, err := s.products.FindByID(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("load product: %w", err)
	}
	if product == nil {
		return nil, apperror.NotFound(apperror.CodeProductNotFound, "product not found")
	}

	price, err := model.ToDecimal128(req.Price)
	if err != nil {
		return nil, apperror.BadRequest(apperror.CodeValidationFailed, err.Error())
	}

	now := time.Now().UTC()
	return &model.ProductDetail{
		ID:             uuid.New(),
		ProductID:      req.ProductID,
		TenantID:       req.TenantID,
		Price:          price,
		Quantity:       req.Quantity,
		EntryDate:      req.EntryDate,
		ExitDate:       req.ExitDate,
		ExpirationDate: req.ExpirationDate,
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// -------------------------------------------------------------------
// XLSX IMPORT
// -------------------------------------------------------------------

// ImportDetails đọc sheet đầu tiên, bỏ header row.
// Columns: product_code | tenant_id | price | quantity
func (s *detailService) ImportDetails(ctx context.Context, r io.Reader) (int, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return 0, apperror.BadRequest(apperror.CodeValidationFailed, fmt.Sprintf("invalid xlsx file: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return 0, apperror.BadRequest(apperror.CodeValidationFailed, "xlsx file has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return 0, fmt.Errorf("read xlsx rows: %w", err)
	}

	var reqs []*model.CreateDetailRequest
	for i, row := range rows {
		if i == 0 || len(row) < 4 {
			continue // header hoặc row thiếu cột
		}

		req, err := s.parseImportRow(ctx, row)
		if err != nil {
			return 0, apperror.BadRequest(apperror.CodeValidationFailed,
				fmt.Sprintf("row %d: %v", i+1, err))
		}
		reqs = append(reqs, req)
	}

	return s.BatchCreateDetails(ctx, reqs)
}

func (s *detailService) parseImportRow(ctx context.Context, row []string) (*model.CreateDetailRequest, error) {
	product, err := s.products.FindByCode(ctx, row[0])
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, fmt.Errorf("unknown product code %q", row[0])
	}

	price, err := decimal.NewFromString(row[2])
	if err != nil {
		return nil, fmt.Errorf("invalid price %q", row[2])
	}

	quantity, err := strconv.ParseInt(row[3], 10, 64)
	if err != nil || quantity < 0 {
		return nil, fmt.Errorf("invalid quantity %q", row[3])
	}

	return &model.CreateDetailRequest{
		ProductID: product.ID,
		TenantID:  row[1],
		Price:     price,
		Quantity:  quantity,
	}, nil
}

// -------------------------------------------------------------------

func (s *detailService) ListDetails(ctx context.Context, productID uuid.UUID, tenantID string) ([]model.ProductDetail, error) {
	return s.details.ListByProduct(ctx, productID, tenantID)
}

func (s *detailService) DeleteDetail(ctx context.Context, id uuid.UUID) error {
	if err := s.details.SoftDelete(ctx, id); err != nil {
		return fmt.Errorf("delete product detail: %w", err)
	}
	return nil
}
