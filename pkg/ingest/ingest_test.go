package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shelternet/shelterbot/internal/models"
)

const shelterCSV = `관리번호,운영상태,시설명,시설구분,도로명전체주소,도로명우편번호,시설위치(지상/지하),시설면적(㎡),최대수용인원,위도(EPSG4326),경도(EPSG4326)
S-001,사용,강남초등학교,공공시설,서울특별시 강남구 테헤란로 1,06100,지하,990.5,1200,37.4990,127.0280
S-002,사용,서초중학교,공공시설,서울특별시 서초구 서초대로 2,06600,지하,800,"1,500",37.4910,127.0070
S-003,미사용,고장난레코드,민간시설,부산광역시 해운대구 중동 3,48090,지상,100,abc,,
`

func TestSheltersFromCSV(t *testing.T) {
	docs, err := SheltersFromCSV(strings.NewReader(shelterCSV))
	require.NoError(t, err)
	require.Len(t, docs, 3)

	first := docs[0]
	assert.Equal(t, "shelter_S-001", first.ID)
	assert.Equal(t, models.TypeShelter, first.Metadata["type"])
	assert.Equal(t, "강남초등학교", first.Metadata["facility_name"])
	assert.Equal(t, 1200, first.Metadata["capacity"])
	assert.Equal(t, 37.4990, first.Metadata["lat"])
	assert.Contains(t, first.Content, "강남초등학교")
	assert.Contains(t, first.Content, "1200명을 수용")

	// comma-formatted capacity still parses
	assert.Equal(t, 1500, docs[1].Metadata["capacity"])

	// malformed capacity and missing coordinates degrade to 0 instead of
	// dropping the record
	broken := docs[2]
	assert.Equal(t, 0, broken.Metadata["capacity"])
	assert.Equal(t, 0.0, broken.Metadata["lat"])
	assert.Equal(t, "미사용", broken.Metadata["operating_status"])
}

func TestSheltersFromCSVMissingColumn(t *testing.T) {
	_, err := SheltersFromCSV(strings.NewReader("시설명,주소\n강남초등학교,서울\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing column")
}

const guidelineJSON = `{
	"재난유형": "자연재난",
	"재난명": "지진",
	"행동요령": {
		"실내": {
			"제목": "실내에 있을 때",
			"세부사항": ["탁자 아래로 들어가 몸을 보호합니다.", "흔들림이 멈추면 밖으로 나갑니다."],
			"주의사항": "엘리베이터를 사용하지 않습니다.",
			"신고처": [{"기관": "소방청", "연락처": "119", "방법": "전화"}]
		},
		"실외": {
			"제목": "실외에 있을 때",
			"하위": {
				"번호": 1,
				"내용": "건물 외벽에서 떨어져 이동합니다."
			}
		}
	}
}`

func TestGuidelinesFromJSON(t *testing.T) {
	docs, err := GuidelinesFromJSON("earthquake.json", []byte(guidelineJSON))
	require.NoError(t, err)
	require.Len(t, docs, 2)

	byID := make(map[string]models.Document, len(docs))
	var indoor, nested models.Document
	for _, doc := range docs {
		byID[doc.ID] = doc
		if strings.Contains(doc.Content, "탁자 아래로") {
			indoor = doc
		}
		if strings.Contains(doc.Content, "건물 외벽") {
			nested = doc
		}
	}

	require.NotEmpty(t, indoor.ID)
	assert.Equal(t, models.TypeGuideline, indoor.Metadata["type"])
	assert.Equal(t, "지진", indoor.Metadata["keyword"])
	assert.Equal(t, "자연재난", indoor.Metadata["category"])
	assert.Contains(t, indoor.Content, "지진 > 실내에 있을 때")
	assert.Contains(t, indoor.Content, "엘리베이터를 사용하지 않습니다")
	assert.Contains(t, indoor.Content, "소방청: 119 (전화)")

	// nested leaves keep the breadcrumb path down from the situation
	require.NotEmpty(t, nested.ID)
	assert.Contains(t, nested.Content, "실외에 있을 때")

	// IDs stay unique
	assert.Len(t, byID, len(docs))
}

func TestGuidelinesFromJSONInvalid(t *testing.T) {
	_, err := GuidelinesFromJSON("broken.json", []byte("{"))
	assert.Error(t, err)
}
