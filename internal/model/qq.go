package model

import "encoding/json"

// QQGuild 机器人加入的 QQ 频道
type QQGuild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// QQChannel guild 下的子频道
type QQChannel struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Type            int    `json:"type"`
	SpeakPermission int    `json:"speak_permission"`
}

// DefaultChannel 后端自动选出的可发言子频道
type DefaultChannel struct {
	ChannelID string          `json:"channel_id"`
	Channel   json.RawMessage `json:"channel"`
}
