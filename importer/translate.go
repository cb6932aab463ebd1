package importer

import "strings"

// Translator maps tag text to a display translation. Implementations are
// best-effort; a tag with no known translation comes back unchanged.
type Translator interface {
	Translate(tags []string) (map[string]string, error)
}

// StaticTranslator resolves tags against a built-in English to Chinese
// dictionary. It is the offline fallback used when no external translation
// service is wired in.
type StaticTranslator struct {
	dict map[string]string
}

// NewStaticTranslator creates a StaticTranslator backed by the built-in
// dictionary.
func NewStaticTranslator() *StaticTranslator {
	return &StaticTranslator{dict: builtinTranslations}
}

// Translate returns a translation for every input tag. Lookup is
// case-insensitive, first exact then substring; unmatched tags map to
// themselves.
func (t *StaticTranslator) Translate(tags []string) (map[string]string, error) {
	out := make(map[string]string, len(tags))
	for _, tag := range tags {
		out[tag] = t.translateOne(tag)
	}
	return out, nil
}

func (t *StaticTranslator) translateOne(tag string) string {
	lower := strings.ToLower(strings.TrimSpace(tag))
	if translated, ok := t.dict[lower]; ok {
		return translated
	}
	for word, translated := range t.dict {
		if strings.Contains(lower, word) {
			return strings.ReplaceAll(lower, word, translated)
		}
	}
	return tag
}

var builtinTranslations = map[string]string{
	"girl":         "女孩",
	"boy":          "男孩",
	"woman":        "女人",
	"man":          "男人",
	"cat":          "猫",
	"dog":          "狗",
	"bird":         "鸟",
	"flower":       "花",
	"tree":         "树",
	"sky":          "天空",
	"cloud":        "云",
	"mountain":     "山",
	"sea":          "海",
	"beach":        "海滩",
	"sunset":       "日落",
	"sunrise":      "日出",
	"night":        "夜晚",
	"city":         "城市",
	"street":       "街道",
	"building":     "建筑",
	"car":          "汽车",
	"food":         "食物",
	"portrait":     "肖像",
	"landscape":    "风景",
	"nature":       "自然",
	"forest":       "森林",
	"river":        "河流",
	"snow":         "雪",
	"rain":         "雨",
	"smile":        "微笑",
	"hair":         "头发",
	"eyes":         "眼睛",
	"dress":        "连衣裙",
	"hat":          "帽子",
	"masterpiece":  "杰作",
	"best quality": "最佳质量",
	"high quality": "高质量",
	"detailed":     "精细",
	"realistic":    "写实",
	"anime":        "动漫",
	"watercolor":   "水彩",
	"oil painting": "油画",
}
