package model

// DeadLetter 转发失败、等待人工或批量重放的消息
type DeadLetter struct {
	ID          int64  `json:"id"`
	TGChatID    int64  `json:"tg_chat_id"`
	TGMsgID     int64  `json:"tg_msg_id"`
	Error       string `json:"error"`
	Content     string `json:"content"`
	CreatedAt   string `json:"created_at"`
	QQChannelID string `json:"qq_channel_id,omitempty"`
	ChannelName string `json:"channel_name,omitempty"`
}

// RetryRequest POST /deadletters/retry 的请求体
type RetryRequest struct {
	IDs []int64 `json:"ids"`
}

// RetryResult 重放接口的返回
// 单条：{ok:true} 或 {ok:false, reason:"not_found"}；批量：{ok:true, count:n}
type RetryResult struct {
	OK     bool   `json:"ok"`
	Reason string `json:"reason,omitempty"`
	Count  int    `json:"count,omitempty"`
}
