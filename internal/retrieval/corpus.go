package retrieval

import (
	"context"
	"sort"
	"strings"
	"unicode"
)

// Document is one entry in the in-memory knowledge corpus.
type Document struct {
	// Text is the document body.
	Text string

	// Source identifies the document for citations.
	Source string

	// Keywords are the terms that mark the document relevant. A keyword
	// hit weighs more than an incidental term overlap.
	Keywords []string
}

// CorpusRetriever scores a fixed document set against the query. Scoring
// is pure string matching, so results are fully deterministic.
type CorpusRetriever struct {
	docs []Document
}

// NewCorpusRetriever creates a retriever over the given documents,
// falling back to the built-in recipe corpus when none are given.
func NewCorpusRetriever(docs ...Document) *CorpusRetriever {
	if len(docs) == 0 {
		docs = builtinCorpus()
	}
	return &CorpusRetriever{docs: docs}
}

// Retrieve implements Retriever. Documents with no keyword or term
// overlap are dropped; the rest are ranked by overlap score.
func (r *CorpusRetriever) Retrieve(ctx context.Context, query string, topK int) ([]Snippet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = 5
	}

	terms := queryTerms(query)

	scored := make([]Snippet, 0, len(r.docs))
	for _, doc := range r.docs {
		score := scoreDocument(doc, query, terms)
		if score <= 0 {
			continue
		}
		scored = append(scored, Snippet{
			Text:   doc.Text,
			Score:  score,
			Source: doc.Source,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > topK {
		scored = scored[:topK]
	}
	return scored, nil
}

// scoreDocument combines keyword hits (strong signal) with plain term
// overlap (weak signal) into a relevance score in (0, 0.95].
func scoreDocument(doc Document, query string, terms []string) float64 {
	keywordHits := 0
	for _, kw := range doc.Keywords {
		if strings.Contains(query, kw) {
			keywordHits++
		}
	}

	termHits := 0
	for _, t := range terms {
		if strings.Contains(doc.Text, t) {
			termHits++
		}
	}

	if keywordHits == 0 && termHits == 0 {
		return 0
	}

	score := 0.35 + 0.25*float64(keywordHits) + 0.05*float64(termHits)
	if score > 0.95 {
		score = 0.95
	}
	return score
}

// queryTerms splits the query into matchable terms, trimming punctuation
// and dropping single-rune fragments.
func queryTerms(query string) []string {
	fields := strings.FieldsFunc(query, func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	terms := make([]string, 0, len(fields))
	for _, f := range fields {
		if len([]rune(f)) >= 2 {
			terms = append(terms, f)
		}
	}
	return terms
}

// builtinCorpus is the seed knowledge base: the dishes the mock tools
// know, plus food-safety and seasonal notes.
func builtinCorpus() []Document {
	return []Document{
		{
			Source:   "recipes:스테이크",
			Keywords: []string{"스테이크", "소고기", "구이"},
			Text: "스테이크는 소고기 등심을 상온에 30분 두었다가 소금과 후추로 간하고, " +
				"달군 팬에 버터를 녹여 앞뒤로 굽는다. 겉은 바삭하고 속은 촉촉하게 " +
				"미디엄 기준 한 면당 2~3분이면 충분하다. 마늘과 로즈마리를 곁들이면 풍미가 좋다.",
		},
		{
			Source:   "recipes:김치찌개",
			Keywords: []string{"김치찌개", "김치", "찌개"},
			Text: "김치찌개는 잘 익은 김치와 돼지고기를 같이 볶다가 물을 붓고 끓인다. " +
				"두부와 대파를 마지막에 넣으면 국물이 맑고 시원하다. 저녁 한 끼로 밥과 잘 어울린다.",
		},
		{
			Source:   "recipes:된장찌개",
			Keywords: []string{"된장찌개", "된장"},
			Text: "된장찌개는 멸치 육수에 된장을 풀고 애호박, 두부, 양파를 넣어 끓인다. " +
				"청양고추를 더하면 칼칼해진다. 재료비가 적게 들어 예산이 빠듯할 때 좋다.",
		},
		{
			Source:   "recipes:파스타",
			Keywords: []string{"파스타", "크림", "면"},
			Text: "크림 파스타는 면을 삶는 동안 팬에 버터와 마늘을 볶고 생크림을 부어 " +
				"졸인 뒤 면과 면수를 더해 버무린다. 간은 파마산 치즈와 소금으로 맞춘다.",
		},
		{
			Source:   "recipes:불고기",
			Keywords: []string{"불고기", "양념"},
			Text: "불고기는 얇게 썬 소고기를 간장, 설탕, 배즙, 마늘 양념에 30분 재웠다가 " +
				"센 불에 빠르게 볶는다. 양파와 당근을 함께 볶으면 단맛이 올라온다.",
		},
		{
			Source:   "recipes:비빔밥",
			Keywords: []string{"비빔밥", "나물"},
			Text: "비빔밥은 밥 위에 시금치, 콩나물, 당근 같은 나물과 고추장, 참기름을 올려 " +
				"비벼 먹는다. 계란 프라이를 더하면 한 끼 영양이 균형 잡힌다.",
		},
		{
			Source:   "food-safety:알레르기",
			Keywords: []string{"알레르기", "땅콩", "견과"},
			Text: "땅콩과 견과류 알레르기는 미량으로도 반응할 수 있어 소스와 가공식품의 " +
				"원재료 표기를 반드시 확인해야 한다. 갑각류, 계란, 우유도 주요 알레르기 유발 식품이다.",
		},
		{
			Source:   "food-safety:보관",
			Keywords: []string{"보관", "냉장", "유통기한"},
			Text: "생고기는 냉장 보관 시 2~3일 안에 조리하고, 장기 보관은 냉동한다. " +
				"해동한 고기는 다시 얼리지 않는다.",
		},
		{
			Source:   "season:제철",
			Keywords: []string{"제철", "계절", "날씨"},
			Text: "겨울에는 김치찌개, 된장찌개, 어묵탕 같은 따뜻한 국물 요리가 잘 맞고, " +
				"여름에는 냉면과 콩국수, 봄가을에는 비빔밥과 샐러드가 제철 재료와 어울린다.",
		},
		{
			Source:   "health:식단",
			Keywords: []string{"건강", "혈압", "당뇨", "식단"},
			Text: "고혈압에는 나트륨을 줄인 저염식이, 당뇨에는 정제 탄수화물을 줄이고 " +
				"현미밥과 채소를 늘리는 식단이 권장된다. 칼로리를 확인하며 먹는 습관이 도움이 된다.",
		},
		{
			Source:   "budget:장보기",
			Keywords: []string{"예산", "저렴", "장보기", "가격"},
			Text: "장보기 예산을 줄이려면 수입산 고기나 무염 버터 같은 대체 상품을 고르고, " +
				"마트별 가격을 비교한다. 제철 재료는 대체로 더 싸고 맛도 좋다.",
		},
	}
}
