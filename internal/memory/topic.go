package memory

import (
	"cmp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/aiox-platform/persona/internal/classify"
)

// TopicGeneral is the label for text that matches no topic.
const TopicGeneral = "general"

const (
	keyPointMinRunes = 20
	keyPointMaxRunes = 200
	maxKeyPoints     = 5
	maxCommonTopics  = 3
)

// NewTopicClassifier scores work, life, tech, health and entertainment.
func NewTopicClassifier() *classify.KeywordClassifier {
	return classify.NewKeywordClassifier(classify.MostHits, TopicGeneral, 3,
		classify.Bucket{Label: "work", Keywords: []string{
			"work", "meeting", "project", "deadline", "office", "boss", "colleague", "report", "overtime",
			"工作", "会议", "项目", "加班", "老板", "同事", "汇报",
		}},
		classify.Bucket{Label: "life", Keywords: []string{
			"family", "dinner", "weekend", "shopping", "cook", "home", "rent", "kids",
			"生活", "家里", "吃饭", "周末", "购物", "做饭", "孩子",
		}},
		classify.Bucket{Label: "tech", Keywords: []string{
			"code", "software", "computer", "programming", "algorithm", "database", "server", "deploy",
			"技术", "代码", "电脑", "程序", "软件", "算法", "服务器",
		}},
		classify.Bucket{Label: "health", Keywords: []string{
			"health", "doctor", "hospital", "exercise", "sleep", "sick", "medicine", "workout",
			"健康", "医生", "医院", "运动", "睡觉", "生病", "吃药",
		}},
		classify.Bucket{Label: "entertainment", Keywords: []string{
			"movie", "film", "music", "song", "game", "concert", "netflix", "anime",
			"电影", "音乐", "歌", "游戏", "演唱会", "综艺", "动漫",
		}},
	)
}

// extractKeyPoints splits contents into sentences and keeps up to five whose
// trimmed length is 20 to 200 characters.
func extractKeyPoints(contents []string) []string {
	var points []string
	for _, content := range contents {
		for _, s := range strings.FieldsFunc(content, isSentenceTerminator) {
			s = strings.TrimSpace(s)
			n := utf8.RuneCountInString(s)
			if n < keyPointMinRunes || n > keyPointMaxRunes {
				continue
			}
			points = append(points, s)
			if len(points) == maxKeyPoints {
				return points
			}
		}
	}
	return points
}

func isSentenceTerminator(r rune) bool {
	switch r {
	case '.', '!', '?', '\n', '。', '！', '？', '…':
		return true
	}
	return false
}

// commonTopics classifies each content and returns up to three labels by
// descending frequency, first seen winning ties. General is never reported.
func commonTopics(c classify.Classifier, contents []string) []string {
	counts := make(map[string]int)
	var order []string
	for _, content := range contents {
		label := c.Classify(content).Label
		if label == "" || label == TopicGeneral {
			continue
		}
		if counts[label] == 0 {
			order = append(order, label)
		}
		counts[label]++
	}

	slices.SortStableFunc(order, func(a, b string) int { return cmp.Compare(counts[b], counts[a]) })
	if len(order) > maxCommonTopics {
		order = order[:maxCommonTopics]
	}
	return order
}
