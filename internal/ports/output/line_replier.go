package output

import "context"

// LineReplier interface - Output port
// Answers a LINE webhook event using its one-time reply token.
type LineReplier interface {
	ReplyText(ctx context.Context, replyToken string, texts ...string) error
}
