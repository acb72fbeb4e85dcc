package reply

import (
	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/lineutil"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// DistrictCommand is the text a district quick reply sends.
func DistrictCommand(d storage.District) string {
	return "อำเภอ " + d.Name + " จังหวัด " + d.ProvinceName
}

// DistrictChoices asks the user to pick one of several districts with
// quick replies (at most 13).
func DistrictChoices(candidates []storage.District) []dialogflow.Message {
	items := make([]lineutil.QuickReplyItem, 0, min(len(candidates), lineutil.MaxQuickReplyItemCount))
	for _, d := range candidates {
		if len(items) == lineutil.MaxQuickReplyItemCount {
			break
		}
		items = append(items, lineutil.QuickReplyItem{
			Action: lineutil.NewMessageAction("อ."+d.Name+" จ."+d.ProvinceName, DistrictCommand(d)),
		})
	}
	return []dialogflow.Message{
		dialogflow.TextMessage("พบหลายอำเภอที่เป็นไปได้ เลือกหนึ่งรายการค่ะ"),
		dialogflow.LineMessage(lineutil.NewTextMessageWithQuickReply("เลือกอำเภอ:", items...)),
	}
}
