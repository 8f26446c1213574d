package world

const (
	spriteFrightURL = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerFun.mp4"
	agentStyleURL   = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerBlazes.mp4"
	cosmosStyleURL  = "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerEscapes.mp4"
)

// Seed returns the built-in catalog.
func Seed() *Catalog {
	c := &Catalog{Worlds: seedWorlds()}
	c.buildIndex()
	return c
}

func seedWorlds() []World {
	return []World{
		{
			ID:          "gravity-escape",
			Name:        "Gravity Escape",
			Description: "一个失重实验室，万物皆可漂浮",
			Style:       StyleSciFi,
			CoverImage:  "/images/gravity-escape.jpg",
			Clips: []Clip{
				{ID: "baseline", Label: "Normal Gravity", VideoURL: spriteFrightURL, Description: "正常重力状态"},
				{ID: "gravity_off", Label: "Zero Gravity", VideoURL: cosmosStyleURL, Description: "引力消失，万物漂浮"},
				{ID: "sword_slash", Label: "Sword Slash", VideoURL: agentStyleURL, Description: "剑气斩击效果"},
			},
			DefaultClipID: "baseline",
		},
		{
			ID:          "cyber-dojo",
			Name:        "Cyber Dojo",
			Description: "赛博武道馆，霓虹与武术的完美融合",
			Style:       StyleCyberZen,
			CoverImage:  "/images/cyber-dojo.jpg",
			Clips: []Clip{
				{ID: "baseline", Label: "Calm State", VideoURL: agentStyleURL, Description: "平静的道场"},
				{ID: "gravity_off", Label: "Levitation", VideoURL: cosmosStyleURL, Description: "悬浮冥想"},
				{ID: "sword_slash", Label: "Energy Strike", VideoURL: spriteFrightURL, Description: "能量斩击"},
			},
			DefaultClipID: "baseline",
		},
		{
			ID:          "noir-city",
			Name:        "Noir City",
			Description: "黑色电影风格的雨夜城市",
			Style:       StyleNoir,
			CoverImage:  "/images/noir-city.jpg",
			Clips: []Clip{
				{ID: "baseline", Label: "Rainy Night", VideoURL: cosmosStyleURL, Description: "雨夜街头"},
				{ID: "gravity_off", Label: "Time Freeze", VideoURL: spriteFrightURL, Description: "时间静止，雨滴悬浮"},
				{ID: "sword_slash", Label: "Gunshot", VideoURL: agentStyleURL, Description: "枪火闪烁"},
			},
			DefaultClipID: "baseline",
		},
	}
}
