package kafka

import (
	"context"
	"encoding/json"
	"fmt"
)

func JSONHandler[M any](handle func(context.Context, []byte, *M) error) Handler {
	return func(ctx context.Context, key, value []byte) error {
		var msg M
		if err := json.Unmarshal(value, &msg); err != nil {
			return fmt.Errorf("decode %T: %w", msg, err)
		}
		return handle(ctx, key, &msg)
	}
}
