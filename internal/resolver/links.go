package resolver

import (
	"context"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
)

func (e *Engine) usefulLinks(ctx context.Context, t *turn) ([]dialogflow.Message, error) {
	links, err := e.store.ListUsefulLinks(ctx)
	if err != nil {
		return nil, err
	}
	messages := e.renderer.UsefulLinks(ctx, links)
	if len(messages) == 0 {
		return t.notFound("ยังไม่มีรายการลิงก์ที่เกี่ยวข้อง"), nil
	}
	return messages, nil
}
