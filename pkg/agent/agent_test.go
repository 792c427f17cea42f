package agent

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"

	"github.com/shelternet/shelterbot/internal/models"
)

// fakeModel replays a scripted sequence of responses; past the script it
// returns an error.
type fakeModel struct {
	responses []*llms.ContentResponse
	calls     int
	lastMsgs  []llms.MessageContent
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	m.lastMsgs = messages
	if m.calls >= len(m.responses) {
		return nil, fmt.Errorf("no scripted response for call %d", m.calls)
	}
	resp := m.responses[m.calls]
	m.calls++
	return resp, nil
}

func (m *fakeModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", fmt.Errorf("not implemented")
}

func scripted(responses ...*llms.ContentResponse) []*llms.ContentResponse {
	return responses
}

func textResponse(content string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: content}}}
}

func toolCallResponse(id, name, args string) *llms.ContentResponse {
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{
		ToolCalls: []llms.ToolCall{{
			ID:   id,
			Type: "function",
			FunctionCall: &llms.FunctionCall{
				Name:      name,
				Arguments: args,
			},
		}},
	}}}
}

// failingModel always errors, pushing callers onto their fallback paths.
type failingModel struct{}

func (failingModel) GenerateContent(_ context.Context, _ []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	return nil, fmt.Errorf("model unavailable")
}

func (failingModel) Call(_ context.Context, _ string, _ ...llms.CallOption) (string, error) {
	return "", fmt.Errorf("model unavailable")
}

// fakeStore is an in-memory DocStore matching filters by string equality.
type fakeStore struct {
	docs   []models.Document
	getErr error
}

func (s *fakeStore) Get(_ context.Context, filter map[string]string) ([]models.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	var out []models.Document
	for _, doc := range s.docs {
		if matchesFilter(doc, filter) {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (s *fakeStore) SimilaritySearch(_ context.Context, _ string, k int, filter map[string]string) ([]models.Document, error) {
	if s.getErr != nil {
		return nil, s.getErr
	}
	var out []models.Document
	for _, doc := range s.docs {
		if matchesFilter(doc, filter) {
			out = append(out, doc)
			if len(out) >= k {
				break
			}
		}
	}
	return out, nil
}

func matchesFilter(doc models.Document, filter map[string]string) bool {
	for k, v := range filter {
		if fmt.Sprintf("%v", doc.Metadata[k]) != v {
			return false
		}
	}
	return true
}

type fakeRetriever struct {
	docs []models.Document
	err  error
}

func (r *fakeRetriever) Invoke(_ context.Context, _ string) ([]models.Document, error) {
	return r.docs, r.err
}

type fakeGeocoder struct {
	place *models.Place
	err   error
}

func (g *fakeGeocoder) Resolve(_ context.Context, _ string) (*models.Place, error) {
	return g.place, g.err
}

func shelterDoc(id, name, address string, lat, lon float64, capacity int) models.Document {
	return models.Document{
		ID:      id,
		Content: fmt.Sprintf("민방위 대피 시설 %s은 %s에 위치해 있습니다.", name, address),
		Metadata: map[string]interface{}{
			"type":             models.TypeShelter,
			"facility_name":    name,
			"address":          address,
			"lat":              lat,
			"lon":              lon,
			"capacity":         capacity,
			"shelter_type":     "지하",
			"facility_type":    "공공시설",
			"operating_status": "사용",
		},
	}
}

func guidelineDoc(id, keyword, content string) models.Document {
	return models.Document{
		ID:      id,
		Content: content,
		Metadata: map[string]interface{}{
			"type":    models.TypeGuideline,
			"keyword": keyword,
		},
	}
}

// shelterFixture covers the main test geographies: two Seoul shelters
// near Gangnam station, one in Busan and one without coordinates.
func shelterFixture() []models.Document {
	return []models.Document{
		shelterDoc("s1", "강남초등학교", "서울특별시 강남구 테헤란로 1", 37.4990, 127.0280, 1200),
		shelterDoc("s2", "서초중학교", "서울특별시 서초구 서초대로 2", 37.4910, 127.0070, 800),
		shelterDoc("s3", "해운대주민센터", "부산광역시 해운대구 중동 3", 35.1630, 129.1630, 15000),
		shelterDoc("s4", "좌표없는대피소", "서울특별시 강남구 역삼로 4", 0, 0, 300),
	}
}
