package convcontext

import "github.com/aiox-platform/persona/internal/classify"

// Keyword tables are bilingual (English + Chinese) and matched as
// lower-cased substrings.

// NewEmotionClassifier scores happy, sad, angry, anxious and excited in that
// order; intensity saturates at three hits.
func NewEmotionClassifier() *classify.KeywordClassifier {
	return classify.NewKeywordClassifier(classify.MostHits, MoodNeutral.String(), 3,
		classify.Bucket{Label: MoodHappy.String(), Keywords: []string{
			"happy", "glad", "great", "awesome", "wonderful", "pleased", "delighted",
			"开心", "高兴", "快乐", "太好了", "幸福", "😊", "😄", "🙂", "❤️",
		}},
		classify.Bucket{Label: MoodSad.String(), Keywords: []string{
			"sad", "upset", "depressed", "lonely", "unhappy", "heartbroken", "cry", "miss you",
			"难过", "伤心", "失落", "哭", "孤独", "失望", "😢", "😭", "💔",
		}},
		classify.Bucket{Label: MoodAngry.String(), Keywords: []string{
			"angry", "furious", "annoyed", "pissed", "hate", "mad at",
			"生气", "愤怒", "气死", "烦死", "讨厌", "😠", "😡", "🤬",
		}},
		classify.Bucket{Label: MoodAnxious.String(), Keywords: []string{
			"anxious", "worried", "worry", "nervous", "stress", "afraid", "panic", "deadline",
			"担心", "焦虑", "紧张", "害怕", "压力", "着急", "😰", "😟", "😥",
		}},
		classify.Bucket{Label: MoodExcited.String(), Keywords: []string{
			"excited", "can't wait", "amazing", "thrilled", "wow",
			"激动", "兴奋", "期待", "太棒了", "🎉", "🤩", "🔥",
		}},
	)
}

// NewHumorClassifier flags messages that read as joking.
func NewHumorClassifier() *classify.KeywordClassifier {
	return classify.NewKeywordClassifier(classify.FirstMatch, "", 1,
		classify.Bucket{Label: "humor", Keywords: []string{
			"haha", "lol", "lmao", "rofl", "funny", "joke", "kidding",
			"哈哈", "笑死", "搞笑", "段子", "😂", "🤣", "😆",
		}},
	)
}

// NewLocationClassifier checks home, work, public, travel in priority order.
func NewLocationClassifier() *classify.KeywordClassifier {
	return classify.NewKeywordClassifier(classify.FirstMatch, LocationUnknown.String(), 1,
		classify.Bucket{Label: LocationHome.String(), Keywords: []string{
			"home", "house", "apartment", "bedroom", "living room", "dorm",
			"家", "卧室", "客厅", "宿舍",
		}},
		classify.Bucket{Label: LocationWork.String(), Keywords: []string{
			"office", "work", "company", "meeting room", "workplace", "studio",
			"公司", "办公室", "单位", "会议室", "工位",
		}},
		classify.Bucket{Label: LocationPublic.String(), Keywords: []string{
			"cafe", "coffee", "restaurant", "mall", "park", "gym", "library", "bar", "street",
			"咖啡", "餐厅", "商场", "公园", "健身房", "图书馆", "酒吧", "街",
		}},
		classify.Bucket{Label: LocationTravel.String(), Keywords: []string{
			"airport", "station", "hotel", "train", "flight", "plane", "trip", "travel",
			"机场", "车站", "酒店", "高铁", "飞机", "旅行", "出差",
		}},
	)
}

// NewSettingClassifier maps a relationship-type string to a social setting.
// Professional is checked before personal, before acquaintance.
func NewSettingClassifier() *classify.KeywordClassifier {
	return classify.NewKeywordClassifier(classify.FirstMatch, SettingInformal.String(), 1,
		classify.Bucket{Label: SettingProfessional.String(), Keywords: []string{
			"colleague", "coworker", "co-worker", "boss", "manager", "client", "customer", "supervisor",
			"同事", "老板", "领导", "上司", "客户",
		}},
		classify.Bucket{Label: SettingPersonal.String(), Keywords: []string{
			"family", "mother", "father", "mom", "dad", "parent", "brother", "sister", "sibling",
			"partner", "spouse", "wife", "husband", "girlfriend", "boyfriend", "close friend", "best friend",
			"家人", "父母", "妈妈", "爸爸", "兄弟", "姐妹", "伴侣", "老婆", "老公", "闺蜜", "好友", "挚友",
		}},
		classify.Bucket{Label: SettingFormal.String(), Keywords: []string{
			"acquaintance", "stranger",
			"认识的人", "陌生人", "点头之交",
		}},
	)
}

// interrogativeMarkers push the tone to serious.
var interrogativeMarkers = []string{"?", "？", "吗", "难道", "为什么", "怎么办"}

type specialDate struct {
	month int
	day   int
}

var specialDates = map[specialDate]string{
	{1, 1}:   "New Year's Day",
	{2, 14}:  "Valentine's Day",
	{3, 8}:   "International Women's Day",
	{5, 1}:   "Labour Day",
	{6, 1}:   "Children's Day",
	{10, 1}:  "National Day",
	{10, 31}: "Halloween",
	{12, 24}: "Christmas Eve",
	{12, 25}: "Christmas",
	{12, 31}: "New Year's Eve",
}
