package resource

import (
	"context"
	"errors"
	"fmt"

	"relayconsole/internal/model"
)

var ErrNoIDs = errors.New("no dead letter ids given")

type DeadLetterClient struct {
	c      Requester
	prefix string
}

func NewDeadLetterClient(c Requester, prefix string) *DeadLetterClient {
	return &DeadLetterClient{c: c, prefix: prefix}
}

// List GET {prefix}/deadletters，后端最多返回最近 200 条
func (d *DeadLetterClient) List(ctx context.Context) ([]model.DeadLetter, error) {
	var out []model.DeadLetter
	if err := d.c.Get(ctx, d.prefix+"/deadletters", &out); err != nil {
		return nil, fmt.Errorf("list dead letters: %w", err)
	}
	return out, nil
}

// RetryOne POST {prefix}/deadletters/{id}/retry
// 死信不存在时后端返回 200 和 {ok:false, reason:"not_found"}，原样返回给调用方
func (d *DeadLetterClient) RetryOne(ctx context.Context, id int64) (*model.RetryResult, error) {
	var out model.RetryResult
	if err := d.c.Post(ctx, fmt.Sprintf("%s/deadletters/%d/retry", d.prefix, id), nil, &out); err != nil {
		return nil, fmt.Errorf("retry dead letter %d: %w", id, err)
	}
	return &out, nil
}

// RetryMany 一次 POST {prefix}/deadletters/retry {ids}
func (d *DeadLetterClient) RetryMany(ctx context.Context, ids []int64) (*model.RetryResult, error) {
	if len(ids) == 0 {
		return nil, ErrNoIDs
	}

	var out model.RetryResult
	if err := d.c.Post(ctx, d.prefix+"/deadletters/retry", model.RetryRequest{IDs: ids}, &out); err != nil {
		return nil, fmt.Errorf("retry %d dead letters: %w", len(ids), err)
	}
	return &out, nil
}
