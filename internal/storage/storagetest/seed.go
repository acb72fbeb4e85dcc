// Package storagetest provides a seeded in-memory catalogue for tests.
//
// Geography: สงขลา (หาดใหญ่, เมืองสงขลา, อำเภอสะเดา) and พัทลุง (ควนขนุน,
// เมืองพัทลุง). Festivals are dated in 2030 so tests can pin the clock.
package storagetest

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/lumnam/lumnam-linebot-go/internal/storage"
)

// IDs referenced by tests.
const (
	DistrictHatYai      = 1
	DistrictMuangSK     = 2
	DistrictKhuanKhanun = 3
	DistrictMuangPT     = 4
	DistrictSadao       = 5

	PlaceWatHatYaiNai = 1
	PlaceWatKhuTao    = 2
	PlaceTonNgaChang  = 5
	PlaceWatFar       = 9

	RouteHatYaiChill = 1
	RouteFamilySK    = 2
	RouteNaturePT    = 3
	RouteWaterfall   = 4

	StationHatYai = 1
)

var seedStatements = []string{
	`INSERT INTO province (Province_ID, Province_Name) VALUES
		(1, 'สงขลา'), (2, 'พัทลุง')`,
	`INSERT INTO district (District_ID, District_Name, Province_ID) VALUES
		(1, 'หาดใหญ่', 1), (2, 'เมืองสงขลา', 1), (3, 'ควนขนุน', 2), (4, 'เมืองพัทลุง', 2), (5, 'อำเภอสะเดา', 1)`,
	`INSERT INTO category (Category_ID, Category_Name, Category_Img, Sort_Order) VALUES
		(1, 'วัด', 'cat-temple.jpg', 1),
		(2, 'ร้านกาแฟ', 'cat-cafe.jpg', 2),
		(3, 'น้ำตก', 'cat-waterfall.jpg', 3),
		(4, 'ร้านอาหาร', '', 4),
		(5, 'ของฝาก', '', 25)`,
	`INSERT INTO attraction (Attraction_ID, Attraction_Name, Attraction_Description, Attraction_Img, Contact_Info,
		Latitude, Longitude, Category_ID, District_ID, Reccomendation_Attraction) VALUES
		(1, 'วัดหาดใหญ่ใน', 'วัดพระนอนองค์ใหญ่กลางเมืองหาดใหญ่', 'wat-hatyai-nai.jpg', '074-123 456', 7.0086, 100.4747, 1, 1, 1),
		(2, 'วัดคูเต่า', 'วัดเก่าแก่ริมคลอง', 'uploads/wat-khutao.jpg', NULL, 7.08, 100.45, 1, 1, 0),
		(3, 'ร้านกาแฟบ้านไร่', 'กาแฟสดท่ามกลางทุ่งนา', 'cafe-banrai.jpg', NULL, 7.73, 100.01, 2, 3, 1),
		(4, 'ร้านกาแฟริมทะเล', 'นั่งชิลริมหาดสมิหลา', 'cafe-sea.jpg', NULL, 7.20, 100.60, 2, 2, 0),
		(5, 'น้ำตกโตนงาช้าง', 'น้ำตกเจ็ดชั้นในเขตรักษาพันธุ์สัตว์ป่า', 'ton-nga-chang.jpg', '081-234-5678', 6.95, 100.25, 3, 1, 1),
		(7, 'วัดกลาง', 'วัดประจำเมืองพัทลุง', '', NULL, 7.61, 100.07, 1, 4, 0),
		(8, 'ตลาดกิมหยง', 'ตลาดของกินชื่อดัง', 'kimyong.jpg', NULL, NULL, NULL, 4, 1, 1),
		(9, 'วัดไกลเมือง', 'วัดบนเขา', '', NULL, 7.5, 100.9, 1, 2, 0),
		(10, 'ของฝากหาดใหญ่', 'ร้านของฝาก', '', NULL, 7.01, 100.47, 5, 1, 0)`,
	`INSERT INTO festival (Festival_ID, Festival_Name, Festival_description, Start_date, End_date, Festival_Img) VALUES
		(1, 'ลอยกระทงหาดใหญ่', 'ลอยกระทงริมคลองเตย', '2030-11-14', '2030-11-16', 'loy.jpg'),
		(2, 'กินเจหาดใหญ่', 'เทศกาลถือศีลกินผัก', '2030-10-01', '2030-10-09', 'jay.jpg'),
		(3, 'ประเพณีชิงเปรต', 'ประเพณีเดือนสิบ', '2030-09-25', '2030-10-03', ''),
		(4, 'สงกรานต์หาดใหญ่', 'มิดไนท์สงกรานต์', '2030-04-13', '2030-04-15', 'songkran.jpg'),
		(5, 'เคาท์ดาวน์สงขลา', 'ส่งท้ายปีเก่า', '2029-12-30', '2030-01-02', '')`,
	`INSERT INTO route_type (RType_ID, RType_Name, Rtype_img) VALUES
		(1, 'วันเดียวก็เที่ยวได้', 'rt-oneday.jpg'),
		(2, 'Family Trip แสนอบอุ่น', ''),
		(3, 'เส้นทางท่องเที่ยวสายรักธรรมชาติ', 'rt-nature.jpg')`,
	`INSERT INTO route (Route_ID, Route_Name, Description_Route, Route_Img, Trip_Days, RType_ID) VALUES
		(1, 'หาดใหญ่ชิลล์', 'ไหว้พระแล้วไปตลาด', 'route-chill.jpg', 1, 1),
		(2, 'สงขลาครอบครัว', 'เที่ยวทะเลกับครอบครัว', '', 2, 2),
		(3, 'พัทลุงธรรมชาติ', 'ทุ่งนาและวัดเก่า', 'route-pt.jpg', 2, 3),
		(4, 'น้ำตกวันเดียว', 'เดินป่าเล่นน้ำตก', '', 1, 3)`,
	`INSERT INTO route_attraction (Route_ID, Attraction_ID) VALUES
		(1, 1), (1, 8),
		(2, 4), (2, 1),
		(3, 3), (3, 7),
		(4, 5)`,
	`INSERT INTO train_station (Station_ID, Station_Name, Station_Img, District_ID) VALUES
		(1, 'หาดใหญ่', 'st-hatyai.jpg', 1),
		(2, 'พัทลุง', '', 4),
		(3, 'ปาดังเบซาร์', '', 5),
		(4, 'หาดใหญ่ใต้', '', 1)`,
	`INSERT INTO useful_link (U_ID, U_Name, U_Description, U_Link, U_Img) VALUES
		(1, 'การรถไฟแห่งประเทศไทย', 'ตารางเดินรถ', 'www.railway.co.th', 'srt.png'),
		(2, 'ททท.', 'ข้อมูลท่องเที่ยว', 'https://www.tourismthailand.org', '')`,
}

// Seed inserts the fixture catalogue.
func Seed(ctx context.Context, db *storage.DB) error {
	for _, stmt := range seedStatements {
		if _, err := db.Conn().ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// NewDB returns a seeded in-memory database closed at test cleanup.
func NewDB(tb testing.TB) *storage.DB {
	tb.Helper()

	db, err := storage.NewTestDB()
	require.NoError(tb, err)
	tb.Cleanup(func() { _ = db.Close() })

	require.NoError(tb, Seed(context.Background(), db))
	return db
}
