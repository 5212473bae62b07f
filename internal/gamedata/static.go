package gamedata

import "github.com/kireshiki/Universalis/internal/model"

// Regions not present in the game-data export. Id 6 ("Eorzea"?) appears in
// the source catalog; carried as-is.
var staticRegions = []model.Region{
	{ID: 1, Name: "Japan"},
	{ID: 2, Name: "North-America"},
	{ID: 3, Name: "Europe"},
	{ID: 4, Name: "Oceania"},
	{ID: 5, Name: "中国"},
	{ID: 6, Name: "Eorzea"},
	{ID: 7, Name: "한국"},
}

type staticCatalog struct {
	dcName string
	region uint8
	worlds []model.World
}

// Chinese and Korean servers are absent from the western game data and are
// appended from these fixed catalogs.
var staticCatalogs = []staticCatalog{
	{
		dcName: "陆行鸟", region: 5,
		worlds: []model.World{
			{ID: 1167, Name: "红玉海"},
			{ID: 1081, Name: "神意之地"},
			{ID: 1042, Name: "拉诺西亚"},
			{ID: 1044, Name: "幻影群岛"},
			{ID: 1060, Name: "萌芽池"},
			{ID: 1173, Name: "宇宙和音"},
			{ID: 1174, Name: "沃仙曦染"},
			{ID: 1175, Name: "晨曦王座"},
		},
	},
	{
		dcName: "莫古力", region: 5,
		worlds: []model.World{
			{ID: 1172, Name: "白银乡"},
			{ID: 1076, Name: "白金幻象"},
			{ID: 1171, Name: "神拳痕"},
			{ID: 1170, Name: "潮风亭"},
			{ID: 1113, Name: "旅人栈桥"},
			{ID: 1121, Name: "拂晓之间"},
			{ID: 1166, Name: "龙巢神殿"},
			{ID: 1176, Name: "梦羽宝境"},
		},
	},
	{
		dcName: "猫小胖", region: 5,
		worlds: []model.World{
			{ID: 1043, Name: "紫水栈桥"},
			{ID: 1169, Name: "延夏"},
			{ID: 1106, Name: "静语庄园"},
			{ID: 1045, Name: "摩杜纳"},
			{ID: 1177, Name: "海猫茶屋"},
			{ID: 1178, Name: "柔风海湾"},
			{ID: 1179, Name: "琥珀原"},
		},
	},
	{
		dcName: "豆豆柴", region: 5,
		worlds: []model.World{
			{ID: 1192, Name: "水晶塔"},
			{ID: 1183, Name: "银泪湖"},
			{ID: 1180, Name: "太阳海岸"},
			{ID: 1186, Name: "伊修加德"},
			{ID: 1201, Name: "红茶川"},
		},
	},
	{
		dcName: "한국", region: 7,
		worlds: []model.World{
			{ID: 2075, Name: "카벙클"},
			{ID: 2076, Name: "초코보"},
			{ID: 2077, Name: "모그리"},
			{ID: 2078, Name: "톤베리"},
			{ID: 2080, Name: "펜리르"},
		},
	},
}
