package order

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kiwari-pos/stockroom/internal/apperr"
	"github.com/kiwari-pos/stockroom/internal/domain"
)

// StockAdjuster applies a signed stock delta to an inventory item.
// Satisfied by *api.Client.
type StockAdjuster interface {
	AdjustItemQuantity(ctx context.Context, id int64, delta int) (*domain.Item, error)
}

// RestoreStock gives each line item's quantity back to inventory, one call per
// line, in order. A failed call is logged and recorded; the loop carries on.
// It returns the ids of the items restored and, when some calls failed, the
// PartialFailure describing them.
func RestoreStock(ctx context.Context, adj StockAdjuster, items []domain.LineItem, logger *slog.Logger) ([]int64, *apperr.PartialFailure) {
	var restored []int64
	var failures []apperr.StepFailure
	for _, li := range items {
		if _, err := adj.AdjustItemQuantity(ctx, li.ID, li.Quantity); err != nil {
			logger.Error("failed to restore inventory", "item_id", li.ID, "quantity", li.Quantity, "error", err)
			failures = append(failures, apperr.StepFailure{
				Step: fmt.Sprintf("restore item %d (+%d)", li.ID, li.Quantity),
				Err:  err,
			})
			continue
		}
		restored = append(restored, li.ID)
	}
	if len(failures) == 0 {
		return restored, nil
	}
	return restored, &apperr.PartialFailure{Op: "restore inventory", Failures: failures}
}
