package resource

import (
	"context"
	"fmt"

	"relayconsole/internal/model"
)

type SystemClient struct {
	c Requester
}

func NewSystemClient(c Requester) *SystemClient {
	return &SystemClient{c: c}
}

// Stats GET /system/stats
func (s *SystemClient) Stats(ctx context.Context) (*model.SystemStats, error) {
	var out model.SystemStats
	if err := s.c.Get(ctx, "/system/stats", &out); err != nil {
		return nil, fmt.Errorf("fetch system stats: %w", err)
	}
	return &out, nil
}
