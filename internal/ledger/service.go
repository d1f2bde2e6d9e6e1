// Package ledger records signed-quantity output events per
// (shop, courier type, calendar date) scope. Writes append or mutate exactly
// one row; reads always replay the row set instead of trusting counters.
package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/packtally/packtally-backend/internal/growth"
	"github.com/packtally/packtally-backend/pkg/dates"
	"github.com/packtally/packtally-backend/pkg/db/models"
	"github.com/packtally/packtally-backend/pkg/enums"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
	pkgpagination "github.com/packtally/packtally-backend/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// AddInput captures an add operation for one scope.
type AddInput struct {
	ShopID     uuid.UUID
	CourierID  uuid.UUID
	OutputDate string
	Quantity   int64
	Notes      *string
}

// SubtractInput captures a subtract operation for one scope.
type SubtractInput struct {
	ShopID     uuid.UUID
	CourierID  uuid.UUID
	OutputDate string
	Quantity   int64
	Notes      *string
}

// MergeInput captures a consolidation row with an arbitrary signed quantity.
type MergeInput struct {
	ShopID          uuid.UUID
	CourierID       uuid.UUID
	OutputDate      string
	Quantity        int64
	MergeNote       *string
	RelatedRecordID *uuid.UUID
}

// EditInput mutates only the provided fields of one existing row.
type EditInput struct {
	Quantity *int64
	Notes    *string
}

// ListResult is one page of entries plus the cursor for the next page.
type ListResult struct {
	Items  []models.LedgerEntry `json:"items"`
	Cursor string               `json:"cursor"`
}

// Service defines the ledger write and read operations.
type Service interface {
	Add(ctx context.Context, input AddInput) (*models.LedgerEntry, error)
	Subtract(ctx context.Context, input SubtractInput) (*models.LedgerEntry, error)
	Merge(ctx context.Context, input MergeInput) (*models.LedgerEntry, error)
	Edit(ctx context.Context, id uuid.UUID, input EditInput) (*models.LedgerEntry, error)
	Remove(ctx context.Context, id uuid.UUID) error
	Get(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error)
	List(ctx context.Context, filter ListFilter) (*ListResult, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// NewService wires a ledger service with the provided repository and
// transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("ledger repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func validateScope(shopID, courierID uuid.UUID, date string) error {
	fields := map[string]string{}
	if shopID == uuid.Nil {
		fields["shop_id"] = "shop id is required"
	}
	if courierID == uuid.Nil {
		fields["courier_id"] = "courier id is required"
	}
	if _, err := dates.Parse(date); err != nil {
		fields["output_date"] = "output date must be a calendar date (YYYY-MM-DD)"
	}
	if len(fields) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid ledger scope").WithDetails(fields)
	}
	return nil
}

func (s *service) Add(ctx context.Context, input AddInput) (*models.LedgerEntry, error) {
	if err := validateScope(input.ShopID, input.CourierID, input.OutputDate); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]string{"quantity": "must be greater than zero"})
	}

	entry := &models.LedgerEntry{
		ID:            uuid.New(),
		ShopID:        input.ShopID,
		CourierID:     input.CourierID,
		OutputDate:    input.OutputDate,
		Quantity:      input.Quantity,
		OperationType: enums.OperationTypeAdd,
		Notes:         input.Notes,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create add entry")
	}
	return entry, nil
}

// Subtract serializes its read-check-write sequence per scope by holding a
// row lock on the scope's anchor row for the whole transaction. Two
// concurrent subtracts against the same scope cannot both observe the same
// pre-operation net total.
func (s *service) Subtract(ctx context.Context, input SubtractInput) (*models.LedgerEntry, error) {
	if err := validateScope(input.ShopID, input.CourierID, input.OutputDate); err != nil {
		return nil, err
	}
	if input.Quantity <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a positive integer").
			WithDetails(map[string]string{"quantity": "must be greater than zero"})
	}

	var entry *models.LedgerEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.LockScope(ctx, input.ShopID, input.CourierID, input.OutputDate); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "lock ledger scope")
		}

		net, err := repo.SumQuantity(ctx, growth.Scope{
			ShopID:    &input.ShopID,
			CourierID: &input.CourierID,
			Date:      input.OutputDate,
		})
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "read scope net growth")
		}
		if input.Quantity > net {
			return pkgerrors.New(pkgerrors.CodeInsufficientQuantity,
				fmt.Sprintf("cannot subtract %d from net total %d", input.Quantity, net)).
				WithDetails(map[string]int64{"remaining": net})
		}

		snapshot := net
		entry = &models.LedgerEntry{
			ID:               uuid.New(),
			ShopID:           input.ShopID,
			CourierID:        input.CourierID,
			OutputDate:       input.OutputDate,
			Quantity:         -input.Quantity,
			OperationType:    enums.OperationTypeSubtract,
			OriginalQuantity: &snapshot,
			Notes:            input.Notes,
		}
		if err := repo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeStore, err, "create subtract entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *service) Merge(ctx context.Context, input MergeInput) (*models.LedgerEntry, error) {
	if err := validateScope(input.ShopID, input.CourierID, input.OutputDate); err != nil {
		return nil, err
	}
	// merge carries any signed quantity, zero included; reconciliations
	// sometimes record a no-op adjustment for its note alone.
	entry := &models.LedgerEntry{
		ID:              uuid.New(),
		ShopID:          input.ShopID,
		CourierID:       input.CourierID,
		OutputDate:      input.OutputDate,
		Quantity:        input.Quantity,
		OperationType:   enums.OperationTypeMerge,
		MergeNote:       input.MergeNote,
		RelatedRecordID: input.RelatedRecordID,
	}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "create merge entry")
	}
	return entry, nil
}

func (s *service) Edit(ctx context.Context, id uuid.UUID, input EditInput) (*models.LedgerEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}
	if input.Quantity == nil && input.Notes == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "no fields to update")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load ledger entry")
	}

	if input.Quantity != nil {
		entry.Quantity = *input.Quantity
	}
	if input.Notes != nil {
		entry.Notes = input.Notes
	}
	if err := s.repo.Update(ctx, entry); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "update ledger entry")
	}
	return entry, nil
}

func (s *service) Remove(ctx context.Context, id uuid.UUID) error {
	if id == uuid.Nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}
	affected, err := s.repo.Delete(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeStore, err, "delete ledger entry")
	}
	if affected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
	}
	return nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.LedgerEntry, error) {
	if id == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id required")
	}
	entry, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ledger entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "load ledger entry")
	}
	return entry, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) (*ListResult, error) {
	if filter.DateStart != "" {
		if _, err := dates.Parse(filter.DateStart); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date_start")
		}
	}
	if filter.DateEnd != "" {
		if _, err := dates.Parse(filter.DateEnd); err != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid date_end")
		}
	}

	entries, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "list ledger entries")
	}

	limit := pkgpagination.NormalizeLimit(filter.Limit)
	result := &ListResult{Items: entries}
	if len(entries) > limit {
		result.Items = entries[:limit]
		last := result.Items[limit-1]
		result.Cursor = pkgpagination.EncodeCursor(pkgpagination.Cursor{
			CreatedAt: last.CreatedAt,
			ID:        last.ID,
		})
	}
	return result, nil
}
