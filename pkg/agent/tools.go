package agent

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
	"github.com/tmc/langchaingo/llms"

	"github.com/shelternet/shelterbot/internal/models"
	"github.com/shelternet/shelterbot/internal/types"
	"github.com/shelternet/shelterbot/pkg/geo"
	"github.com/shelternet/shelterbot/pkg/geocode"
)

// Tool names form a closed set; the reasoning step may only dispatch to
// these seven operations.
const (
	ToolSearchShelterByLocation    = "search_shelter_by_location"
	ToolSearchShelterByName        = "search_shelter_by_name"
	ToolSearchShelterByCapacity    = "search_shelter_by_capacity"
	ToolCountShelters              = "count_shelters"
	ToolSearchDisasterGuideline    = "search_disaster_guideline"
	ToolSearchLocationWithDisaster = "search_location_with_disaster"
	ToolAnswerGeneralKnowledge     = "answer_general_knowledge"
)

const toolErrorText = "검색 중 오류가 발생했습니다. 잠시 후 다시 시도해주세요."

// Toolbox holds the collaborators every tool draws on. All methods
// degrade gracefully: no failure escapes the Dispatch boundary.
type Toolbox struct {
	store           types.DocStore
	geocoder        types.Geocoder
	shelterHybrid   types.Retriever
	guidelineHybrid types.Retriever
	rewriter        *QueryRewriter
	creative        llms.Model
}

func NewToolbox(store types.DocStore, geocoder types.Geocoder, shelterHybrid, guidelineHybrid types.Retriever, rewriter *QueryRewriter, creative llms.Model) *Toolbox {
	return &Toolbox{
		store:           store,
		geocoder:        geocoder,
		shelterHybrid:   shelterHybrid,
		guidelineHybrid: guidelineHybrid,
		rewriter:        rewriter,
		creative:        creative,
	}
}

// Definitions enumerates the tool schemas handed to the reasoning step.
func (t *Toolbox) Definitions() []llms.Tool {
	defs := []struct {
		name, desc string
	}{
		{ToolSearchShelterByLocation, "특정 위치(역, 건물, 지역명)의 근처 대피소를 검색합니다."},
		{ToolSearchShelterByName, "특정 대피소의 상세 정보를 시설명으로 검색합니다. 위치 조건이 있으면 해당 지역 내에서만 검색합니다."},
		{ToolSearchShelterByCapacity, "수용인원 기준(이상/이하)으로 대피소를 검색합니다. 위치 조건이 있으면 해당 지역 내에서만 검색합니다."},
		{ToolCountShelters, "특정 조건(지역, 위치유형 등)에 맞는 대피소 개수를 셉니다."},
		{ToolSearchDisasterGuideline, "재난 유형(지진, 화재, 산사태 등)의 행동요령을 검색합니다."},
		{ToolSearchLocationWithDisaster, "특정 위치에서 재난 발생 시 가까운 대피소와 행동요령을 함께 제공합니다."},
		{ToolAnswerGeneralKnowledge, "재난 관련 일반 지식 질문에 답변합니다. (정의, 원인, 특징 등)"},
	}

	tools := make([]llms.Tool, 0, len(defs))
	for _, d := range defs {
		tools = append(tools, llms.Tool{
			Type: "function",
			Function: &llms.FunctionDefinition{
				Name:        d.name,
				Description: d.desc,
				Parameters: map[string]any{
					"type": "object",
					"properties": map[string]any{
						"query": map[string]any{
							"type":        "string",
							"description": "검색 질의",
						},
					},
					"required": []string{"query"},
				},
			},
		})
	}
	return tools
}

// Dispatch routes one tool invocation by name. The operation set is
// closed; an unknown name yields a polite refusal, and any panic or
// error inside a tool body is converted into a user-facing text result
// with no structured data.
func (t *Toolbox) Dispatch(ctx context.Context, name, rawArgs string) (result *models.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("[tools] %s panicked: %v", name, r)
			result = &models.ToolResult{Text: toolErrorText}
		}
	}()

	query := gjson.Get(rawArgs, "query").String()
	if query == "" {
		query = strings.TrimSpace(rawArgs)
	}

	var err error
	switch name {
	case ToolSearchShelterByLocation:
		result, err = t.searchShelterByLocation(ctx, query)
	case ToolSearchShelterByName:
		result, err = t.searchShelterByName(ctx, query)
	case ToolSearchShelterByCapacity:
		result, err = t.searchShelterByCapacity(ctx, query)
	case ToolCountShelters:
		result, err = t.countShelters(ctx, query)
	case ToolSearchDisasterGuideline:
		result, err = t.searchDisasterGuideline(ctx, query)
	case ToolSearchLocationWithDisaster:
		result, err = t.searchLocationWithDisaster(ctx, query)
	case ToolAnswerGeneralKnowledge:
		result, err = t.answerGeneralKnowledge(ctx, query)
	default:
		return &models.ToolResult{Text: fmt.Sprintf("'%s'는 지원하지 않는 도구입니다.", name)}
	}

	if err != nil {
		log.Printf("[tools] %s failed: %v", name, err)
		return &models.ToolResult{Text: toolErrorText}
	}
	return result
}

// loadShelters reads every shelter document and projects it to the
// per-query view. The returned total is the full collection size.
func (t *Toolbox) loadShelters(ctx context.Context) ([]models.Shelter, int, error) {
	docs, err := t.store.Get(ctx, map[string]string{"type": models.TypeShelter})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to load shelter documents: %w", err)
	}
	shelters := make([]models.Shelter, 0, len(docs))
	for _, doc := range docs {
		shelters = append(shelters, models.ShelterFromDocument(doc))
	}
	return shelters, len(docs), nil
}

// nearest ranks shelters ascending by haversine distance from the given
// point. Shelters with an unknown location (either coordinate 0) are
// excluded before ranking.
func nearest(shelters []models.Shelter, lat, lon float64, n int) []models.Shelter {
	ranked := make([]models.Shelter, 0, len(shelters))
	for _, s := range shelters {
		if s.Lat == 0 || s.Lon == 0 {
			continue
		}
		s.Distance = geo.Haversine(lat, lon, s.Lat, s.Lon)
		ranked = append(ranked, s)
	}
	sort.SliceStable(ranked, func(a, b int) bool {
		return ranked[a].Distance < ranked[b].Distance
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked
}

// geocodeFailureText turns the two geocoding failure modes into the
// user-facing messages the tools answer with.
func geocodeFailureText(query string, err error) string {
	if errors.Is(err, geocode.ErrNotFound) {
		return fmt.Sprintf("'%s' 위치를 찾을 수 없습니다.", query)
	}
	return "위치 검색 서비스를 사용할 수 없습니다. 잠시 후 다시 시도해주세요."
}

func (t *Toolbox) searchShelterByLocation(ctx context.Context, query string) (*models.ToolResult, error) {
	rw := t.rewriter.Rewrite(ctx, query)
	log.Printf("[tools] %s: kakao=%q vector=%q type=%s", ToolSearchShelterByLocation, rw.Kakao, rw.Vector, rw.LocationType)

	place, err := t.geocoder.Resolve(ctx, rw.Kakao)
	if err != nil {
		return &models.ToolResult{Text: geocodeFailureText(rw.Kakao, err)}, nil
	}

	shelters, total, err := t.loadShelters(ctx)
	if err != nil {
		return nil, err
	}

	top := nearest(shelters, place.Lat, place.Lon, 5)
	if len(top) == 0 {
		return &models.ToolResult{Text: fmt.Sprintf("'%s' 근처에 대피소를 찾을 수 없습니다.", place.Name)}, nil
	}

	locationWord := "위치"
	if rw.LocationType == LocationRegion {
		locationWord = "지역"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 **%s** %s 기준 대피소 %d곳\n\n", place.Name, locationWord, len(top))
	for i, s := range top {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, s.Name)
		fmt.Fprintf(&b, "   📍 거리: %.2fkm\n", s.Distance)
		fmt.Fprintf(&b, "   📍 주소: %s\n", s.Address)
		fmt.Fprintf(&b, "   📍 위치: %s\n", s.ShelterType)
		fmt.Fprintf(&b, "   📍 수용인원: %s명\n\n", comma(s.Capacity))
	}

	return &models.ToolResult{
		Text: strings.TrimSpace(b.String()),
		StructuredData: &models.StructuredData{
			Location:     place.Name,
			LocationType: rw.LocationType,
			Coordinates:  []float64{place.Lat, place.Lon},
			Shelters:     top,
			TotalCount:   total,
		},
	}, nil
}

// regionKeywords are the administrative-region tokens stripped from a
// facility-name query, longest first so "제주특별자치도" wins over "제주".
var regionKeywords = []string{
	"제주특별자치도", "제주도", "제주시", "서귀포시", "제주",
	"서울특별시", "서울", "부산광역시", "부산", "대구광역시", "대구",
	"인천광역시", "인천", "광주광역시", "광주", "대전광역시", "대전",
	"울산광역시", "울산", "세종특별자치시", "세종",
	"경기도", "경기", "강원특별자치도", "강원도", "강원",
	"충청북도", "충북", "충청남도", "충남",
	"전라북도", "전북", "전라남도", "전남",
	"경상북도", "경북", "경상남도", "경남",
	"강남구", "강동구", "강북구", "강서구", "관악구", "광진구", "구로구",
	"금천구", "노원구", "도봉구", "동대문구", "동작구", "마포구",
	"서대문구", "서초구", "성동구", "성북구", "송파구", "양천구",
	"영등포구", "용산구", "은평구", "종로구", "중구", "중랑구",
}

var nameStopwords = []string{
	"대피소", "수용인원", "최대수용인원", "몇명", "정보", "알려줘", "알려",
	"의", "이", "가", "은", "는", "?", "!", "를", "을",
	"도", "시", "군", "구",
}

// regionCore strips administrative suffixes so "제주특별자치도" still
// matches addresses that just say "제주". Longest suffixes go first.
func regionCore(region string) string {
	replacer := strings.NewReplacer(
		"특별자치도", "",
		"특별자치시", "",
		"특별시", "",
		"광역시", "",
		"도", "",
		"시", "",
		"군", "",
		"구", "",
	)
	return strings.TrimSpace(replacer.Replace(region))
}

func (t *Toolbox) searchShelterByName(ctx context.Context, query string) (*models.ToolResult, error) {
	original := strings.ToLower(strings.TrimSpace(query))

	var regionFilter string
	for _, region := range regionKeywords {
		if strings.Contains(original, region) {
			regionFilter = region
			break
		}
	}

	searchTerm := original
	if regionFilter != "" {
		searchTerm = strings.Replace(searchTerm, regionFilter, " ", 1)
	}
	for _, w := range nameStopwords {
		searchTerm = strings.ReplaceAll(searchTerm, w, " ")
	}
	searchTerm = strings.ToLower(strings.Join(strings.Fields(searchTerm), " "))

	log.Printf("[tools] %s: term=%q region=%q", ToolSearchShelterByName, searchTerm, regionFilter)

	docs, err := t.store.Get(ctx, map[string]string{"type": models.TypeShelter})
	if err != nil {
		return nil, fmt.Errorf("failed to load shelter documents: %w", err)
	}

	filterCore := ""
	if regionFilter != "" {
		filterCore = strings.ToLower(regionCore(regionFilter))
	}

	var matches []models.Shelter
	for _, doc := range docs {
		s := models.ShelterFromDocument(doc)
		nameLower := strings.ToLower(s.Name)
		// bidirectional substring match on the facility name; an empty
		// term (region-only query) matches every facility and the region
		// filter below does the narrowing
		if searchTerm != "" && !strings.Contains(nameLower, searchTerm) && !strings.Contains(searchTerm, nameLower) {
			continue
		}
		if filterCore != "" && !strings.Contains(strings.ToLower(s.Address), filterCore) {
			continue
		}
		matches = append(matches, s)
	}

	if len(matches) == 0 {
		locationText := ""
		if regionFilter != "" {
			locationText = regionFilter + " "
		}
		return &models.ToolResult{
			Text: fmt.Sprintf("'%s%s' 시설을 찾을 수 없습니다.\n시설명을 정확히 입력해주세요.", locationText, searchTerm),
		}, nil
	}

	if len(matches) == 1 {
		m := matches[0]
		text := fmt.Sprintf(`📍 **%s**

✅ **최대 수용인원: %s명**
📍 주소: %s
📍 위치: %s
📍 시설 유형: %s
📍 운영 상태: %s`,
			m.Name, comma(m.Capacity), m.Address, m.ShelterType, m.FacilityType, m.OperatingStatus)

		var coords []float64
		if m.Lat != 0 {
			coords = []float64{m.Lat, m.Lon}
		}
		return &models.ToolResult{
			Text: text,
			StructuredData: &models.StructuredData{
				Location:    m.Name,
				Coordinates: coords,
				Shelters:    []models.Shelter{m},
				TotalCount:  1,
			},
		}, nil
	}

	shown := matches
	if len(shown) > 5 {
		shown = shown[:5]
	}

	label := searchTerm
	if label == "" {
		label = regionFilter
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📍 **'%s'** 관련 대피소 **%d곳** 발견\n\n", label, len(matches))
	for i, m := range shown {
		fmt.Fprintf(&b, "%d. **%s**\n", i+1, m.Name)
		fmt.Fprintf(&b, "   ✅ 수용인원: **%s명**\n", comma(m.Capacity))
		fmt.Fprintf(&b, "   📍 주소: %s\n", m.Address)
		fmt.Fprintf(&b, "   📍 위치: %s\n\n", m.ShelterType)
	}
	if len(matches) > 5 {
		fmt.Fprintf(&b, "💡 외 %d곳 더 있습니다.", len(matches)-5)
	}

	return &models.ToolResult{
		Text: strings.TrimSpace(b.String()),
		StructuredData: &models.StructuredData{
			Location:    label,
			Coordinates: geo.Center(shown),
			Shelters:    shown,
			TotalCount:  len(matches),
		},
	}, nil
}

var (
	thousandPattern    = regexp.MustCompile(`(\d+)\s*천`)
	tenThousandPattern = regexp.MustCompile(`(\d+)\s*만`)
	digitsPattern      = regexp.MustCompile(`\d+`)

	capacityStripPatterns = []*regexp.Regexp{
		regexp.MustCompile(`\d+\s*천\s*명?\s*(이상|이하)?`),
		regexp.MustCompile(`\d+\s*만\s*명?\s*(이상|이하)?`),
		regexp.MustCompile(`\d+\s*명\s*(이상|이하)?`),
		regexp.MustCompile(`천\s*명?\s*(이상|이하)?`),
		regexp.MustCompile(`만\s*명?\s*(이상|이하)?`),
		regexp.MustCompile(`수용\s*인원\s*(이|가)?`),
		regexp.MustCompile(`수용\s*할?\s*수\s*있는`),
		regexp.MustCompile(`수용\s*가능한?`),
		regexp.MustCompile(`최대\s*수용`),
		regexp.MustCompile(`인원\s*(이|가|을|를)?`),
		regexp.MustCompile(`대피소\s*(를|을|이|가)?`),
		regexp.MustCompile(`찾아\s*줘?`),
		regexp.MustCompile(`알려\s*줘?`),
		regexp.MustCompile(`있어\??`),
		regexp.MustCompile(`있니\??`),
		regexp.MustCompile(`있나요\??`),
	}
	particlePattern = regexp.MustCompile(`\s*(에서의|에서|에|의)\s*`)
)

// parseCapacity extracts the threshold magnitude, supporting the Korean
// 천 (thousand) and 만 (ten-thousand) multipliers and bare digits.
// Returns 0 when no magnitude is present.
func parseCapacity(query string) int {
	switch {
	case strings.Contains(query, "천") || strings.Contains(query, "1000"):
		if m := thousandPattern.FindStringSubmatch(query); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n * 1000
		}
		return 1000
	case strings.Contains(query, "만") || strings.Contains(query, "10000"):
		if m := tenThousandPattern.FindStringSubmatch(query); m != nil {
			n, _ := strconv.Atoi(m[1])
			return n * 10000
		}
		return 10000
	default:
		if m := digitsPattern.FindString(query); m != "" {
			n, _ := strconv.Atoi(m)
			return n
		}
	}
	return 0
}

// stripCapacityPhrases removes the capacity condition and request-ish
// phrasing, leaving only the location qualifier (possibly empty).
func stripCapacityPhrases(query string) string {
	for _, p := range capacityStripPatterns {
		query = p.ReplaceAllString(query, " ")
	}
	query = particlePattern.ReplaceAllString(query, " ")
	return strings.Join(strings.Fields(query), " ")
}

func (t *Toolbox) searchShelterByCapacity(ctx context.Context, query string) (*models.ToolResult, error) {
	atLeast := !strings.Contains(query, "이하")

	capacity := parseCapacity(query)
	if capacity == 0 {
		return &models.ToolResult{Text: "수용인원을 명확히 입력해주세요. (예: 1000명 이상, 천명 이상)"}, nil
	}

	locationQuery := stripCapacityPhrases(query)
	conditionText := "이상"
	if !atLeast {
		conditionText = "이하"
	}
	log.Printf("[tools] %s: capacity=%d %s location=%q", ToolSearchShelterByCapacity, capacity, conditionText, locationQuery)

	shelters, _, err := t.loadShelters(ctx)
	if err != nil {
		return nil, err
	}

	locationKeywords := strings.Fields(strings.ToLower(locationQuery))
	var matched []models.Shelter
	for _, s := range shelters {
		if atLeast && s.Capacity < capacity {
			continue
		}
		if !atLeast && s.Capacity > capacity {
			continue
		}
		if len(locationKeywords) > 0 {
			searchText := strings.ToLower(s.Name + " " + s.Address + " " + s.ShelterType)
			if !containsAll(searchText, locationKeywords) {
				continue
			}
		}
		matched = append(matched, s)
	}

	sort.SliceStable(matched, func(a, b int) bool {
		return matched[a].Capacity > matched[b].Capacity
	})

	top := matched
	if len(top) > 10 {
		top = top[:10]
	}

	if len(top) == 0 {
		locationText := ""
		if locationQuery != "" {
			locationText = fmt.Sprintf("'%s' 지역에서 ", locationQuery)
		}
		return &models.ToolResult{
			Text: fmt.Sprintf("%s%s명 %s 수용 가능한 대피소를 찾을 수 없습니다.", locationText, comma(capacity), conditionText),
		}, nil
	}

	locationText := ""
	location := fmt.Sprintf("%s명 %s 수용 가능", comma(capacity), conditionText)
	if locationQuery != "" {
		locationText = fmt.Sprintf("**%s** 지역 ", locationQuery)
		location = fmt.Sprintf("%s %s명 %s", locationQuery, comma(capacity), conditionText)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "📊 %s**%s명 %s** 수용 가능한 대피소 **%d곳** 중 상위 %d곳\n\n",
		locationText, comma(capacity), conditionText, len(matched), len(top))
	for i, s := range top {
		fmt.Fprintf(&b, "%d. **%s** (%s명)\n", i+1, s.Name, comma(s.Capacity))
		fmt.Fprintf(&b, "   📍 %s\n", s.Address)
		fmt.Fprintf(&b, "   📍 위치: %s\n\n", s.ShelterType)
	}

	return &models.ToolResult{
		Text: strings.TrimSpace(b.String()),
		StructuredData: &models.StructuredData{
			Location:    location,
			Coordinates: geo.Center(top),
			Shelters:    top,
			TotalCount:  len(matched),
		},
	}, nil
}

func (t *Toolbox) countShelters(ctx context.Context, query string) (*models.ToolResult, error) {
	rw := t.rewriter.Rewrite(ctx, query)
	log.Printf("[tools] %s: rewritten=%q", ToolCountShelters, rw.Vector)

	shelters, _, err := t.loadShelters(ctx)
	if err != nil {
		return nil, err
	}

	keywords := strings.Fields(strings.ToLower(rw.Vector))
	var matched []models.Shelter
	for _, s := range shelters {
		searchText := strings.ToLower(s.Name + " " + s.Address + " " + s.ShelterType)
		if containsAll(searchText, keywords) {
			matched = append(matched, s)
		}
	}
	totalCount := len(matched)

	if totalCount == 0 {
		return &models.ToolResult{Text: fmt.Sprintf("'%s' 조건에 맞는 대피소를 찾을 수 없습니다.", query)}, nil
	}

	// hybrid top results only feed the map display; the count comes from
	// the full scan above
	var display []models.Shelter
	if t.shelterHybrid != nil {
		docs, err := t.shelterHybrid.Invoke(ctx, rw.Vector)
		if err != nil {
			log.Printf("[tools] %s: hybrid retrieval failed: %v", ToolCountShelters, err)
		}
		seen := make(map[string]bool)
		for _, doc := range docs {
			s := models.ShelterFromDocument(doc)
			if s.Name == "" || s.Name == "N/A" || seen[s.Name] {
				continue
			}
			seen[s.Name] = true
			display = append(display, s)
			if len(display) >= 10 {
				break
			}
		}
	}
	if len(display) == 0 {
		display = matched
		if len(display) > 10 {
			display = display[:10]
		}
	}

	return &models.ToolResult{
		Text: fmt.Sprintf("**'%s'** 조건에 맞는 대피소는 총 **%d개**입니다. 📊", query, totalCount),
		StructuredData: &models.StructuredData{
			Location:    query,
			Coordinates: geo.Center(display),
			Shelters:    display,
			TotalCount:  totalCount,
		},
	}, nil
}

func (t *Toolbox) searchDisasterGuideline(ctx context.Context, query string) (*models.ToolResult, error) {
	keyword, label, ok := DetectDisaster(query)
	if !ok {
		// fall back to the rewritten query as the lookup label
		rw := t.rewriter.Rewrite(ctx, query)
		keyword, label = query, rw.Vector
	}
	log.Printf("[tools] %s: label=%q (input %q)", ToolSearchDisasterGuideline, label, keyword)

	docs, err := t.store.Get(ctx, map[string]string{
		"type":    models.TypeGuideline,
		"keyword": label,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load guideline documents: %w", err)
	}
	if len(docs) == 0 {
		return &models.ToolResult{Text: fmt.Sprintf("'%s' 관련 행동요령을 찾을 수 없습니다.", keyword)}, nil
	}

	if len(docs) > 3 {
		docs = docs[:3]
	}
	parts := make([]string, len(docs))
	for i, doc := range docs {
		parts[i] = doc.Content
	}

	return &models.ToolResult{
		Text: fmt.Sprintf("🚨 **%s 행동요령**\n\n%s", keyword, strings.Join(parts, "\n\n")),
	}, nil
}

// disasterPhraseStopwords are the temporal and request phrases stripped
// from a combined location+disaster query before geocoding the remainder.
var disasterPhraseStopwords = []string{
	"발생하면", "발생 시", "발생", "났을 때", "나면", "때",
	"근처인데", "에서", "어떻게", "대처", "행동요령",
}

func (t *Toolbox) searchLocationWithDisaster(ctx context.Context, query string) (*models.ToolResult, error) {
	keyword, label, ok := DetectDisaster(query)
	if !ok {
		return &models.ToolResult{
			Text: "재난 유형을 파악할 수 없습니다. 예: '설악산 산사태', '강남역 지진', '양양 쓰나미'",
		}, nil
	}

	locationQuery := strings.Replace(query, keyword, "", 1)
	for _, w := range disasterPhraseStopwords {
		locationQuery = strings.ReplaceAll(locationQuery, w, "")
	}
	locationQuery = strings.Join(strings.Fields(locationQuery), " ")

	log.Printf("[tools] %s: location=%q disaster=%q (input %q)", ToolSearchLocationWithDisaster, locationQuery, label, keyword)

	rw := t.rewriter.Rewrite(ctx, locationQuery)

	place, err := t.geocoder.Resolve(ctx, rw.Kakao)
	if err != nil {
		return &models.ToolResult{Text: geocodeFailureText(rw.Kakao, err)}, nil
	}

	shelters, total, err := t.loadShelters(ctx)
	if err != nil {
		return nil, err
	}

	top := nearest(shelters, place.Lat, place.Lon, 3)
	if len(top) == 0 {
		return &models.ToolResult{Text: fmt.Sprintf("'%s' 근처에 대피소를 찾을 수 없습니다.", place.Name)}, nil
	}

	guidelineText := fmt.Sprintf("%s 관련 행동요령을 찾을 수 없습니다.", label)
	if t.guidelineHybrid != nil {
		docs, err := t.guidelineHybrid.Invoke(ctx, label)
		if err != nil {
			log.Printf("[tools] %s: guideline retrieval failed: %v", ToolSearchLocationWithDisaster, err)
		} else if len(docs) > 0 {
			if len(docs) > 2 {
				docs = docs[:2]
			}
			parts := make([]string, len(docs))
			for i, doc := range docs {
				parts[i] = doc.Content
			}
			guidelineText = strings.Join(parts, "\n\n")
		}
	}

	locationWord := "위치"
	if rw.LocationType == LocationRegion {
		locationWord = "지역"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "🚨 **%s %s 기준 %s 발생 시 대응 가이드**\n\n", place.Name, locationWord, keyword)
	fmt.Fprintf(&b, "📍 **가장 가까운 대피소 %d곳**\n\n", len(top))
	for i, s := range top {
		fmt.Fprintf(&b, "%d. **%s** (%.2fkm)\n", i+1, s.Name, s.Distance)
		fmt.Fprintf(&b, "   📍 %s\n", s.Address)
		fmt.Fprintf(&b, "   📍 위치: %s | 수용: %s명\n\n", s.ShelterType, comma(s.Capacity))
	}
	fmt.Fprintf(&b, "🚨 **%s 행동요령**\n\n%s\n\n", keyword, guidelineText)
	b.WriteString("💡 **즉시 행동 체크리스트**\n")
	b.WriteString("✅ 가장 가까운 대피소로 이동\n")
	b.WriteString("✅ 위 행동요령을 숙지하고 침착하게 대응\n")
	b.WriteString("✅ 119 신고 (필요 시)")

	return &models.ToolResult{
		Text: strings.TrimSpace(b.String()),
		StructuredData: &models.StructuredData{
			Location:     place.Name,
			LocationType: rw.LocationType,
			Coordinates:  []float64{place.Lat, place.Lon},
			Shelters:     top,
			TotalCount:   total,
		},
	}, nil
}

func (t *Toolbox) answerGeneralKnowledge(ctx context.Context, query string) (*models.ToolResult, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeHuman, fmt.Sprintf(generalKnowledgePrompt, query)),
	}
	resp, err := t.creative.GenerateContent(ctx, content, llms.WithTemperature(0.7))
	if err != nil || len(resp.Choices) == 0 {
		log.Printf("[tools] %s failed: %v", ToolAnswerGeneralKnowledge, err)
		return &models.ToolResult{Text: "죄송합니다. 답변 생성 중 오류가 발생했습니다."}, nil
	}

	return &models.ToolResult{
		Text: fmt.Sprintf("💡 **%s**\n\n%s", query, resp.Choices[0].Content),
	}, nil
}

// NearestShelters ranks the whole collection by distance from the given
// point. It backs the HTTP nearest-shelters endpoint, bypassing the
// reasoning loop.
func (t *Toolbox) NearestShelters(ctx context.Context, lat, lon float64, k int) ([]models.Shelter, error) {
	if k <= 0 {
		k = 5
	}
	shelters, _, err := t.loadShelters(ctx)
	if err != nil {
		return nil, err
	}
	return nearest(shelters, lat, lon, k), nil
}

// ExtractLocation resolves the place named in a free-form query and
// returns the nearest shelters around it, without involving the model.
// A result with nil StructuredData means the place could not be
// resolved; Text carries the user-facing explanation.
func (t *Toolbox) ExtractLocation(ctx context.Context, query string) (*models.ToolResult, error) {
	return t.searchShelterByLocation(ctx, query)
}

func containsAll(text string, keywords []string) bool {
	for _, k := range keywords {
		if k == "" {
			continue
		}
		if !strings.Contains(text, k) {
			return false
		}
	}
	return true
}

// comma formats n with thousands separators.
func comma(n int) string {
	s := strconv.Itoa(n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	lead := len(s) % 3
	if lead > 0 {
		b.WriteString(s[:lead])
	}
	for i := lead; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}
