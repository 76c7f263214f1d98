package services

import (
	"github.com/shopspring/decimal"
	"github.com/vsinha/blendmrp/pkg/domain/entities"
)

// Quantization is the result of rounding a requested quantity up to whole batches
type Quantization struct {
	BatchSize    decimal.Decimal
	Batches      int64
	EffectiveQty decimal.Decimal
}

// BatchQuantizer rounds production quantities up to a whole multiple of the item's batch size
type BatchQuantizer struct {
	defaultBatchSize decimal.Decimal
}

// NewBatchQuantizer creates a quantizer. A non-positive default falls back to entities.DefaultBatchSize.
func NewBatchQuantizer(defaultBatchSize decimal.Decimal) *BatchQuantizer {
	return &BatchQuantizer{
		defaultBatchSize: entities.EffectiveBatchSize(defaultBatchSize, entities.DefaultBatchSize),
	}
}

// Quantize returns the smallest whole number of batches (at least one) covering requested.
// A batch size of zero or less is replaced by the configured default.
func (q *BatchQuantizer) Quantize(requested, batchSize decimal.Decimal) Quantization {
	size := entities.EffectiveBatchSize(batchSize, q.defaultBatchSize)

	quotient, remainder := requested.QuoRem(size, 0)
	batches := quotient.IntPart()
	if remainder.IsPositive() {
		batches++
	}
	if batches < 1 {
		batches = 1
	}

	return Quantization{
		BatchSize:    size,
		Batches:      batches,
		EffectiveQty: size.Mul(decimal.NewFromInt(batches)),
	}
}
