package reply

import (
	"context"
	"encoding/json"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"

	"github.com/lumnam/lumnam-linebot-go/internal/dialogflow"
	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

func newTestRenderer() *Renderer {
	return NewRenderer(NewImages(testBase, testFallback, nil, ProbePolicy{}))
}

func payloads(t *testing.T, messages []dialogflow.Message) []gjson.Result {
	t.Helper()
	var out []gjson.Result
	for _, m := range messages {
		if m.Payload == nil {
			continue
		}
		body, err := json.Marshal(m.Payload)
		require.NoError(t, err)
		out = append(out, gjson.GetBytes(body, "line"))
	}
	return out
}

func places(n int) []storage.Place {
	out := make([]storage.Place, n)
	for i := range out {
		out[i] = storage.Place{ID: int64(i + 1), Name: "สถานที่ " + strconv.Itoa(i+1), Image: "p.jpg"}
	}
	return out
}

func TestPlacesPagination(t *testing.T) {
	t.Parallel()

	r := newTestRenderer()
	for _, n := range []int{1, 10, 11, 25} {
		t.Run(strconv.Itoa(n), func(t *testing.T) {
			t.Parallel()
			lines := payloads(t, r.Places(context.Background(), "สถานที่ท่องเที่ยวหมวด \"วัด\"", places(n)))
			require.Len(t, lines, (n+9)/10)

			total := 0
			for _, line := range lines {
				assert.Equal(t, "template", line.Get("type").String())
				cols := line.Get("template.columns").Array()
				assert.LessOrEqual(t, len(cols), 10)
				total += len(cols)
			}
			assert.Equal(t, n, total)

			first := lines[0].Get("template.columns.0")
			assert.Equal(t, "-", first.Get("text").String())
			assert.Equal(t, testBase+"/uploads/p.jpg", first.Get("thumbnailImageUrl").String())
			assert.Equal(t, "รายละเอียด สถานที่ 1", first.Get("actions.0.text").String())
			assert.Equal(t, "ดูเพิ่มเติม", first.Get("actions.0.label").String())
		})
	}

	assert.Empty(t, r.Places(context.Background(), "x", nil))
}

func TestRecommendedPlaces(t *testing.T) {
	t.Parallel()

	lines := payloads(t, newTestRenderer().RecommendedPlaces(context.Background(), places(2)))
	require.Len(t, lines, 1)
	assert.Equal(t, "สถานที่ท่องเที่ยวแนะนำ", lines[0].Get("altText").String())
	assert.Equal(t, "rectangle", lines[0].Get("template.imageAspectRatio").String())
	assert.Equal(t, "สถานที่แนะนำ", lines[0].Get("template.columns.0.text").String())
	assert.Equal(t, "ดูรายละเอียด", lines[0].Get("template.columns.0.actions.0.label").String())
}

func TestCategoryTilesStackTenPerBubble(t *testing.T) {
	t.Parallel()

	choices := make([]CategoryChoice, 13)
	for i := range choices {
		name := "หมวด" + strconv.Itoa(i)
		choices[i] = CategoryChoice{Category: storage.Category{Name: name}, Label: "ดูเพิ่มเติม", Send: "ที่เที่ยว " + name + " หาดใหญ่"}
	}

	lines := payloads(t, newTestRenderer().CategoryTiles(context.Background(), "เลือกหมวดที่เที่ยว อ.หาดใหญ่", choices))
	require.Len(t, lines, 1)
	line := lines[0]
	assert.Equal(t, "เลือกหมวดที่เที่ยว อ.หาดใหญ่", line.Get("altText").String())
	require.Equal(t, int64(2), line.Get("contents.contents.#").Int())
	assert.Equal(t, int64(10), line.Get("contents.contents.0.body.contents.#").Int())
	assert.Equal(t, int64(3), line.Get("contents.contents.1.body.contents.#").Int())

	tile := line.Get("contents.contents.1.body.contents.2")
	assert.Equal(t, testFallback, tile.Get("contents.0.url").String())
	assert.Equal(t, "หมวด12", tile.Get("contents.1.text").String())
	assert.Equal(t, "ที่เที่ยว หมวด12 หาดใหญ่", tile.Get("contents.2.action.text").String())
}

func TestRoutes(t *testing.T) {
	t.Parallel()

	lines := payloads(t, newTestRenderer().Routes(context.Background(), "เส้นทาง (ธรรมชาติ)", []storage.Route{
		{ID: 3, Name: "พัทลุงธรรมชาติ", TypeName: "สายธรรมชาติ", Image: "r.jpg"},
	}))
	require.Len(t, lines, 1)
	bubble := lines[0].Get("contents.contents.0")
	assert.Equal(t, "image", bubble.Get("hero.type").String())
	assert.Equal(t, "#2f3e5c", bubble.Get("body.contents.1.color").String())
	assert.Equal(t, "-", bubble.Get("body.contents.2.text").String())
	assert.Equal(t, "RouteDetail 3", bubble.Get("footer.contents.0.action.text").String())
}

func TestFestivalsNumbered(t *testing.T) {
	t.Parallel()

	festivals := make([]storage.Festival, 12)
	for i := range festivals {
		festivals[i] = storage.Festival{ID: int64(i + 1), Name: "งาน" + strconv.Itoa(i)}
	}
	lines := payloads(t, newTestRenderer().Festivals(context.Background(), festivals))
	require.Len(t, lines, 2)
	assert.Equal(t, "เทศกาล/งานประเพณี (1/2)", lines[0].Get("altText").String())
	assert.Equal(t, "เทศกาล/งานประเพณี (2/2)", lines[1].Get("altText").String())
	assert.Equal(t, "รายละเอียดเทศกาล งาน0", lines[0].Get("contents.contents.0.footer.contents.0.action.text").String())

	single := payloads(t, newTestRenderer().Festivals(context.Background(), festivals[:1]))
	assert.Equal(t, "เทศกาล/งานประเพณี (1/1)", single[0].Get("altText").String())
}

func TestFestivalDetail(t *testing.T) {
	t.Parallel()

	f := storage.Festival{
		Name:  "กินเจหาดใหญ่",
		Start: time.Date(2030, 10, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2030, 10, 9, 0, 0, 0, 0, time.UTC),
	}
	lines := payloads(t, newTestRenderer().FestivalDetail(context.Background(), f))
	require.Len(t, lines, 1)
	assert.Equal(t, "กินเจหาดใหญ่", lines[0].Get("altText").String())
	assert.Equal(t, "ช่วงจัดงาน: 2030-10-01 ถึง 2030-10-09", lines[0].Get("contents.body.contents.2.text").String())
	assert.Equal(t, "ขอเทศกาล", lines[0].Get("contents.footer.contents.0.action.text").String())
	assert.Equal(t, testFallback, lines[0].Get("contents.hero.url").String())
}

func TestStations(t *testing.T) {
	t.Parallel()

	lines := payloads(t, newTestRenderer().Stations(context.Background(), []storage.Station{
		{Name: "หาดใหญ่", DistrictName: "หาดใหญ่", ProvinceName: "สงขลา"},
	}))
	require.Len(t, lines, 1)
	assert.Equal(t, "เลือกสถานีรถไฟ (1/1)", lines[0].Get("altText").String())
	assert.Equal(t, "อ.หาดใหญ่ จ.สงขลา", lines[0].Get("template.columns.0.text").String())
	assert.Equal(t, "ขอที่เที่ยวใกล้สถานีหาดใหญ่", lines[0].Get("template.columns.0.actions.0.text").String())
}

func TestUsefulLinks(t *testing.T) {
	t.Parallel()

	lines := payloads(t, newTestRenderer().UsefulLinks(context.Background(), []storage.UsefulLink{
		{Name: "การรถไฟ", URL: "www.railway.co.th"},
		{Name: "ไม่มีลิงก์", URL: " "},
	}))
	require.Len(t, lines, 1)
	assert.Equal(t, "ลิงก์ที่เกี่ยวข้อง (1/1)", lines[0].Get("altText").String())
	assert.Equal(t, int64(1), lines[0].Get("contents.contents.#").Int())
	action := lines[0].Get("contents.contents.0.footer.contents.0.action")
	assert.Equal(t, "uri", action.Get("type").String())
	assert.Equal(t, "https://www.railway.co.th", action.Get("uri").String())
}

func TestPlaceDetail(t *testing.T) {
	t.Parallel()

	lat, lng := 6.95, 100.25
	p := storage.Place{
		Name:        "น้ำตกโตนงาช้าง",
		Description: "น้ำตก\nเจ็ดชั้น",
		Contact:     "081-234-5678",
		Latitude:    &lat,
		Longitude:   &lng,
	}
	messages := newTestRenderer().PlaceDetail(context.Background(), p)
	require.Len(t, messages, 2)
	require.NotNil(t, messages[0].Text)
	assert.Equal(t, []string{"รายละเอียด: น้ำตกโตนงาช้าง"}, messages[0].Text.Text)

	lines := payloads(t, messages)
	require.Len(t, lines, 1)
	card := lines[0]
	assert.Equal(t, "รายละเอียด: น้ำตกโตนงาช้าง", card.Get("altText").String())
	assert.Equal(t, "image", card.Get("contents.body.contents.0.type").String())
	assert.Equal(t, "น้ำตกเจ็ดชั้น", card.Get("contents.body.contents.2.text").String())
	assert.Equal(t, "0812345678", card.Get("contents.body.contents.3.contents.1.text").String())

	nav := card.Get("contents.footer.contents.0.action")
	assert.Equal(t, "นำทาง", nav.Get("label").String())
	assert.Equal(t, "https://www.google.com/maps/dir/?api=1&destination=6.95,100.25&travelmode=driving", nav.Get("uri").String())
	assert.Equal(t, "tel:0812345678", card.Get("contents.footer.contents.1.action.uri").String())
}

func TestPlaceDetailWithoutContactOrCoordinates(t *testing.T) {
	t.Parallel()

	lines := payloads(t, newTestRenderer().PlaceDetail(context.Background(), storage.Place{Name: "ตลาดกิมหยง"}))
	require.Len(t, lines, 1)
	assert.Equal(t, int64(3), lines[0].Get("contents.body.contents.#").Int())
	assert.Equal(t, int64(1), lines[0].Get("contents.footer.contents.#").Int())
	assert.Equal(t, NavigationURL(storage.Place{Name: "ตลาดกิมหยง"}), lines[0].Get("contents.footer.contents.0.action.uri").String())
	assert.Contains(t, NavigationURL(storage.Place{Name: "ตลาด กิมหยง"}), "query=%E0%B8%95")
}

func TestDistrictChoicesCapped(t *testing.T) {
	t.Parallel()

	candidates := make([]storage.District, 15)
	for i := range candidates {
		candidates[i] = storage.District{Name: "อำเภอ" + strconv.Itoa(i), ProvinceName: "สงขลา"}
	}
	messages := DistrictChoices(candidates)
	require.Len(t, messages, 2)
	assert.Equal(t, []string{"พบหลายอำเภอที่เป็นไปได้ เลือกหนึ่งรายการค่ะ"}, messages[0].Text.Text)

	line := payloads(t, messages)[0]
	assert.Equal(t, "เลือกอำเภอ:", line.Get("text").String())
	assert.Equal(t, int64(13), line.Get("quickReply.items.#").Int())
	assert.Equal(t, "อำเภอ อำเภอ0 จังหวัด สงขลา", line.Get("quickReply.items.0.action.text").String())
}
