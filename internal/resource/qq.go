package resource

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"

	"relayconsole/internal/model"
)

var ErrEmptyGuildID = errors.New("guild id is required")

// QQClient 后端 QQ 调试接口：查找 guild_id 与默认可发言子频道
type QQClient struct {
	c      Requester
	prefix string
}

func NewQQClient(c Requester, prefix string) *QQClient {
	return &QQClient{c: c, prefix: prefix}
}

func (q *QQClient) Guilds(ctx context.Context) ([]model.QQGuild, error) {
	var raw json.RawMessage
	if err := q.c.Get(ctx, q.prefix+"/qq/guilds", &raw); err != nil {
		return nil, fmt.Errorf("list qq guilds: %w", err)
	}
	var out []model.QQGuild
	if err := decodeList(raw, &out); err != nil {
		return nil, fmt.Errorf("list qq guilds: %w", err)
	}
	return out, nil
}

func (q *QQClient) Channels(ctx context.Context, guildID string) ([]model.QQChannel, error) {
	if guildID == "" {
		return nil, ErrEmptyGuildID
	}

	var raw json.RawMessage
	if err := q.c.Get(ctx, q.prefix+"/qq/channels?"+guildQuery(guildID), &raw); err != nil {
		return nil, fmt.Errorf("list qq channels of %s: %w", guildID, err)
	}
	var out []model.QQChannel
	if err := decodeList(raw, &out); err != nil {
		return nil, fmt.Errorf("list qq channels of %s: %w", guildID, err)
	}
	return out, nil
}

func (q *QQClient) PickDefaultChannel(ctx context.Context, guildID string) (*model.DefaultChannel, error) {
	if guildID == "" {
		return nil, ErrEmptyGuildID
	}

	var out model.DefaultChannel
	if err := q.c.Get(ctx, q.prefix+"/qq/pick-default-channel?"+guildQuery(guildID), &out); err != nil {
		return nil, fmt.Errorf("pick default channel of %s: %w", guildID, err)
	}
	return &out, nil
}

func guildQuery(guildID string) string {
	return url.Values{"guild_id": []string{guildID}}.Encode()
}

// decodeList QQ 开放平台有时直接返回数组，有时包一层 data/channels/items
func decodeList(raw json.RawMessage, out interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err == nil {
		return nil
	}

	var wrapped map[string]json.RawMessage
	if err := json.Unmarshal(raw, &wrapped); err != nil {
		return fmt.Errorf("unexpected list payload: %w", err)
	}
	for _, key := range []string{"data", "channels", "guilds", "items"} {
		if inner, ok := wrapped[key]; ok {
			return json.Unmarshal(inner, out)
		}
	}
	return errors.New("unexpected list payload")
}
