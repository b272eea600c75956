package builtin

import (
	"context"

	"github.com/google/uuid"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// Identify stamps every row with a fresh random UUID in record_id.
type Identify struct {
	// NewID overrides uuid.NewString in tests.
	NewID func() string
}

func (Identify) Name() string { return "identify" }

func (s Identify) Apply(_ context.Context, in []records.Record, _ *transformer.Report) ([]records.Record, error) {
	newID := s.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	for _, r := range in {
		r[schema.ColRecordID] = newID()
	}
	return in, nil
}
