// Package growth folds ledger rows for a scope into net totals and
// per-operation-type breakdowns. It never memoizes: every call reflects the
// current ledger state.
package growth

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/packtally/packtally-backend/pkg/enums"
	pkgerrors "github.com/packtally/packtally-backend/pkg/errors"
)

// Scope selects ledger rows for a calculation. All fields are optional;
// an empty scope matches every row. Date and DateStart/DateEnd are mutually
// exclusive, with Date taking precedence when both are set.
type Scope struct {
	ShopID    *uuid.UUID
	CourierID *uuid.UUID
	Date      string
	DateStart string
	DateEnd   string
}

// OperationBucket carries the grouped totals for one operation type.
type OperationBucket struct {
	Total int64 `json:"total"`
	Count int64 `json:"count"`
}

// Stats is the grouped view of a scope: per-operation buckets plus the
// signed net growth across all of them.
type Stats struct {
	NetGrowth  int64                                 `json:"net_growth"`
	RowCount   int64                                 `json:"row_count"`
	Operations map[enums.OperationType]OperationBucket `json:"operations"`
}

type ledgerReader interface {
	SumQuantity(ctx context.Context, scope Scope) (int64, error)
	GroupByOperation(ctx context.Context, scope Scope) (map[enums.OperationType]OperationBucket, error)
}

// Calculator computes net growth and operation stats for ledger scopes.
type Calculator interface {
	NetGrowth(ctx context.Context, scope Scope) (int64, error)
	OperationStats(ctx context.Context, scope Scope) (*Stats, error)
}

type calculator struct {
	ledger ledgerReader
}

// NewCalculator wires a calculator over the provided ledger reader.
func NewCalculator(ledger ledgerReader) (Calculator, error) {
	if ledger == nil {
		return nil, fmt.Errorf("ledger reader required")
	}
	return &calculator{ledger: ledger}, nil
}

func (c *calculator) NetGrowth(ctx context.Context, scope Scope) (int64, error) {
	total, err := c.ledger.SumQuantity(ctx, scope)
	if err != nil {
		return 0, pkgerrors.Wrap(pkgerrors.CodeStore, err, "sum ledger quantities")
	}
	return total, nil
}

func (c *calculator) OperationStats(ctx context.Context, scope Scope) (*Stats, error) {
	buckets, err := c.ledger.GroupByOperation(ctx, scope)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeStore, err, "group ledger quantities")
	}

	stats := &Stats{Operations: map[enums.OperationType]OperationBucket{}}
	for op, bucket := range buckets {
		stats.Operations[op] = bucket
		stats.NetGrowth += bucket.Total
		stats.RowCount += bucket.Count
	}
	return stats, nil
}
