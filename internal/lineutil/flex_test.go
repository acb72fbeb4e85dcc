package lineutil

import (
	"strconv"
	"testing"
	"unicode/utf8"

	"github.com/line/line-bot-sdk-go/v8/linebot/messaging_api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestTruncateRunes(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		input    string
		maxRunes int
		expected string
	}{
		{"ASCII within limit", "Hello World", 20, "Hello World"},
		{"ASCII exceeds limit", "Hello World", 5, "He..."},
		{"Thai within limit", "วัดคูเต่า", 10, "วัดคูเต่า"},
		{"Thai exceeds limit", "น้ำตกโตนงาช้าง", 6, "น้ำ..."},
		{"Empty string", "", 10, ""},
		{"Max less than ellipsis", "Hello", 2, "He"},
		{"Zero limit", "Test", 0, ""},
		{"Negative limit", "Test", -1, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := TruncateRunes(tt.input, tt.maxRunes)
			assert.Equal(t, tt.expected, got)
			assert.True(t, utf8.ValidString(got))
			assert.LessOrEqual(t, utf8.RuneCountInString(got), max(tt.maxRunes, 0))
		})
	}
}

func TestHeroImage(t *testing.T) {
	t.Parallel()

	bubble := NewFlexBubble(
		NewHeroImage("https://example.com/a.jpg").FlexImage,
		NewFlexBox("vertical", NewFlexText("วัดคูเต่า").WithWeight("bold").WithSize("lg").FlexText),
		NewButtonFooter(NewPrimaryButton(NewMessageAction("ดูเพิ่มเติม", "รายละเอียด วัดคูเต่า")), nil),
	)
	body := marshal(t, bubble.FlexBubble)

	assert.Equal(t, "bubble", gjson.GetBytes(body, "type").String())
	assert.Equal(t, "image", gjson.GetBytes(body, "hero.type").String())
	assert.Equal(t, "full", gjson.GetBytes(body, "hero.size").String())
	assert.Equal(t, "20:13", gjson.GetBytes(body, "hero.aspectRatio").String())
	assert.Equal(t, "cover", gjson.GetBytes(body, "hero.aspectMode").String())
	assert.Equal(t, "bold", gjson.GetBytes(body, "body.contents.0.weight").String())
	assert.Equal(t, int64(1), gjson.GetBytes(body, "footer.contents.#").Int())
	assert.Equal(t, ColorButtonPrimary, gjson.GetBytes(body, "footer.contents.0.color").String())
	assert.Equal(t, "primary", gjson.GetBytes(body, "footer.contents.0.style").String())
}

func TestFlexBubbleOptionalParts(t *testing.T) {
	t.Parallel()

	bubble := NewFlexBubble(nil, NewFlexBox("vertical", NewFlexText("x").FlexText), nil)
	assert.Nil(t, bubble.Hero)
	assert.Nil(t, bubble.Footer)
	assert.NotNil(t, bubble.Body)
}

func TestLabeledRow(t *testing.T) {
	t.Parallel()

	body := marshal(t, NewLabeledRow("โทร", "081-234-5678").FlexBox)
	assert.Equal(t, "baseline", gjson.GetBytes(body, "layout").String())
	assert.Equal(t, "โทร", gjson.GetBytes(body, "contents.0.text").String())
	assert.Equal(t, ColorValue, gjson.GetBytes(body, "contents.1.color").String())
}

func TestBuildCarouselMessages(t *testing.T) {
	t.Parallel()

	for _, n := range []int{0, 1, 9, 10, 11, 20, 21, 35} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			t.Parallel()
			bubbles := make([]messaging_api.FlexBubble, n)
			for i := range bubbles {
				bubbles[i] = *NewFlexBubble(nil, NewFlexBox("vertical", NewFlexText(strconv.Itoa(i)).FlexText), nil).FlexBubble
			}

			messages := BuildCarouselMessages("เทศกาล/งานประเพณี", bubbles, PageLabelAlways)
			require.Len(t, messages, (n+MaxBubblesPerCarousel-1)/MaxBubblesPerCarousel)

			for i, m := range messages {
				fm, ok := m.(*messaging_api.FlexMessage)
				require.True(t, ok)
				assert.Equal(t, PageAltText("เทศกาล/งานประเพณี", i+1, len(messages), PageLabelAlways), fm.AltText)
				carousel, ok := fm.Contents.(*messaging_api.FlexCarousel)
				require.True(t, ok)
				assert.LessOrEqual(t, len(carousel.Contents), MaxBubblesPerCarousel)
			}
		})
	}
}

func TestPageAltText(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "ลิงก์", PageAltText("ลิงก์", 1, 1, PageLabelAuto))
	assert.Equal(t, "ลิงก์ (1/1)", PageAltText("ลิงก์", 1, 1, PageLabelAlways))
	assert.Equal(t, "ลิงก์ (2/3)", PageAltText("ลิงก์", 2, 3, PageLabelAuto))
}
