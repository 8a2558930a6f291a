package database

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"go.uber.org/zap"
)

// CopyResult reports what CopyCollections did with each collection.
type CopyResult struct {
	Copied  []string
	Skipped []string
}

// CopyCollections copies every collection document from src to dst. Missing
// source documents are skipped, and so are collections dst already holds
// unless overwrite is set. A source document that is not a JSON array aborts
// the copy.
func CopyCollections(ctx context.Context, src, dst Backend, overwrite bool, logger *zap.Logger) (CopyResult, error) {
	var res CopyResult
	for _, name := range AllCollections {
		data, err := src.Read(ctx, name)
		if err != nil {
			return res, fmt.Errorf("read %s: %w", name, err)
		}
		if data == nil {
			res.Skipped = append(res.Skipped, name)
			continue
		}
		if !isJSONArray(data) {
			return res, fmt.Errorf("collection %s is not a JSON array", name)
		}

		if !overwrite {
			existing, err := dst.Read(ctx, name)
			if err != nil {
				return res, fmt.Errorf("read target %s: %w", name, err)
			}
			if existing != nil && !bytes.Equal(bytes.TrimSpace(existing), []byte("[]")) {
				logger.Info("⏭️  target already has data, skipping", zap.String("collection", name))
				res.Skipped = append(res.Skipped, name)
				continue
			}
		}

		if err := dst.Write(ctx, name, data); err != nil {
			return res, fmt.Errorf("write %s: %w", name, err)
		}
		logger.Info("✅ copied collection", zap.String("collection", name), zap.Int("bytes", len(data)))
		res.Copied = append(res.Copied, name)
	}
	return res, nil
}

func isJSONArray(data []byte) bool {
	var records []json.RawMessage
	return json.Unmarshal(data, &records) == nil
}
