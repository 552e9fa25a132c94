package resource

import (
	"context"
	"errors"
	"fmt"

	"relayconsole/internal/model"
)

var (
	ErrEmptyPatch = errors.New("mapping update has no fields set")
	// ErrUnexpectedResponse 2xx 响应体不是一条 mapping
	ErrUnexpectedResponse = errors.New("response is not a mapping")
)

type MappingClient struct {
	c Requester
}

func NewMappingClient(c Requester) *MappingClient {
	return &MappingClient{c: c}
}

// List GET /mappings
func (m *MappingClient) List(ctx context.Context) ([]model.Mapping, error) {
	var out []model.Mapping
	if err := m.c.Get(ctx, "/mappings", &out); err != nil {
		return nil, fmt.Errorf("list mappings: %w", err)
	}
	return out, nil
}

// Create POST /mappings；tg_channel 与 qq_channel 必填
func (m *MappingClient) Create(ctx context.Context, patch model.MappingPatch) (*model.Mapping, error) {
	if err := patch.ValidateCreate(); err != nil {
		return nil, err
	}

	var out model.Mapping
	if err := m.c.Post(ctx, "/mappings", patch, &out); err != nil {
		return nil, fmt.Errorf("create mapping: %w", err)
	}
	if out.ID == 0 {
		return nil, fmt.Errorf("create mapping: %w", ErrUnexpectedResponse)
	}
	return &out, nil
}

// Update PUT /mappings/{id}，只发送 patch 中设置过的字段
func (m *MappingClient) Update(ctx context.Context, id int64, patch model.MappingPatch) (*model.Mapping, error) {
	if patch.Empty() {
		return nil, ErrEmptyPatch
	}
	if err := patch.Validate(); err != nil {
		return nil, err
	}

	var out model.Mapping
	if err := m.c.Put(ctx, fmt.Sprintf("/mappings/%d", id), patch, &out); err != nil {
		return nil, fmt.Errorf("update mapping %d: %w", id, err)
	}
	if out.ID == 0 {
		return nil, fmt.Errorf("update mapping %d: %w", id, ErrUnexpectedResponse)
	}
	return &out, nil
}

// Delete DELETE /mappings/{id}
func (m *MappingClient) Delete(ctx context.Context, id int64) error {
	if err := m.c.Delete(ctx, fmt.Sprintf("/mappings/%d", id), nil); err != nil {
		return fmt.Errorf("delete mapping %d: %w", id, err)
	}
	return nil
}
