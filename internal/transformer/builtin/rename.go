package builtin

import (
	"context"

	"healthetl/internal/schema"
	"healthetl/internal/transformer"
	"healthetl/pkg/records"
)

// Rename rewrites source header keys into target column names using the
// contract (Field.Source -> Field.Name). Unknown keys fall back to
// schema.TargetName.
type Rename struct {
	Contract schema.Contract
}

func (Rename) Name() string { return "rename" }

func (n Rename) Apply(_ context.Context, in []records.Record, _ *transformer.Report) ([]records.Record, error) {
	mapping := make(map[string]string, len(n.Contract.Fields))
	for _, f := range n.Contract.SourceFields() {
		mapping[f.Source] = f.Name
	}
	for i, r := range in {
		out := make(records.Record, len(r)+1)
		for k, v := range r {
			target, ok := mapping[k]
			if !ok {
				target = schema.TargetName(k)
			}
			out[target] = v
		}
		in[i] = out
	}
	return in, nil
}
