// Package builtin holds the cleaning steps of the healthcare pipeline.
//
// Steps run in a fixed order: DeDup and Impute on raw rows keyed by source
// header, Rename, then Coerce, Normalize, Identify and Repair on rows keyed
// by target column. Batch statistics (medians, modes) are computed over the
// current batch only.
package builtin

import (
	"healthetl/internal/config"
	"healthetl/internal/schema"
	"healthetl/internal/transformer"
)

// Default returns the cleaning steps in pipeline order.
func Default(cfg config.Clean, c schema.Contract) []transformer.Step {
	return []transformer.Step{
		DeDup{Policy: cfg.Dedupe},
		Impute{Contract: c},
		Rename{Contract: c},
		Coerce{Contract: c},
		Normalize{Contract: c},
		Identify{},
		Repair{InvertedDates: cfg.InvertedDates, NegativeBilling: cfg.NegativeBilling},
	}
}
