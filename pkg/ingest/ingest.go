// Package ingest turns the civil-defense shelter CSV and the nested
// disaster-guideline JSON files into indexable documents. It runs once,
// offline; the serving path treats the resulting collections as
// read-only.
package ingest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shelternet/shelterbot/internal/models"
)

// Column headers of the shelter CSV export.
const (
	colManagementCode = "관리번호"
	colOperatingState = "운영상태"
	colFacilityName   = "시설명"
	colFacilityType   = "시설구분"
	colAddress        = "도로명전체주소"
	colPostalCode     = "도로명우편번호"
	colShelterType    = "시설위치(지상/지하)"
	colArea           = "시설면적(㎡)"
	colCapacity       = "최대수용인원"
	colLat            = "위도(EPSG4326)"
	colLon            = "경도(EPSG4326)"
)

// SheltersFromCSV reads the shelter export and produces one document per
// facility. Malformed capacity or coordinate cells degrade to 0 instead
// of dropping the record.
func SheltersFromCSV(r io.Reader) ([]models.Document, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, required := range []string{colFacilityName, colAddress, colCapacity} {
		if _, ok := col[required]; !ok {
			return nil, fmt.Errorf("CSV is missing column %q", required)
		}
	}

	field := func(record []string, name string) string {
		i, ok := col[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var docs []models.Document
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		name := field(record, colFacilityName)
		address := field(record, colAddress)
		capacity := nonNegativeInt(field(record, colCapacity))
		shelterType := field(record, colShelterType)
		facilityType := field(record, colFacilityType)
		area := field(record, colArea)

		content := fmt.Sprintf(
			"민방위 대피 시설 %s은 %s에 위치해 있으며, %s 시설입니다. 위치는 %s이고, 시설 면적은 %s이며, 최대 %d명을 수용할 수 있습니다.",
			name, address, facilityType, shelterType, area, capacity)

		docs = append(docs, models.Document{
			ID:      "shelter_" + field(record, colManagementCode),
			Content: content,
			Metadata: map[string]interface{}{
				"type":             models.TypeShelter,
				"source":           "shelter.csv",
				"management_code":  field(record, colManagementCode),
				"operating_status": field(record, colOperatingState),
				"facility_name":    name,
				"facility_type":    facilityType,
				"address":          address,
				"postal_code":      field(record, colPostalCode),
				"shelter_type":     shelterType,
				"capacity":         capacity,
				"lat":              parseFloat(field(record, colLat)),
				"lon":              parseFloat(field(record, colLon)),
			},
		})
	}
	return docs, nil
}

// Keys that make a guideline JSON node a leaf worth indexing, and the
// keys excluded from further descent.
var guidelineContentKeys = []string{"세부사항", "내용", "주의사항", "이유", "신고처"}

var guidelineSkipKeys = map[string]bool{
	"세부사항": true, "내용": true, "주의사항": true, "이유": true,
	"번호": true, "제목": true, "신고처": true,
	"보호자_행동요령": true, "평소_준비사항": true, "행동요령": true,
}

// GuidelinesFromJSON walks one disaster's guideline file and emits one
// document per leaf node, with the breadcrumb of section titles both in
// the content and in the path metadata.
func GuidelinesFromJSON(filename string, data []byte) ([]models.Document, error) {
	var root map[string]interface{}
	if err := json.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filename, err)
	}

	disasterType, _ := root["재난유형"].(string)
	disasterName, _ := root["재난명"].(string)
	guidelines, _ := root["행동요령"].(map[string]interface{})

	var docs []models.Document
	for situationKey, situationNode := range guidelines {
		situationTitle := situationKey
		if node, ok := situationNode.(map[string]interface{}); ok {
			if title, ok := node["제목"].(string); ok && title != "" {
				situationTitle = title
			}
		}
		walkGuideline(situationNode, []string{disasterName, situationTitle}, guidelineMeta{
			category:  disasterType,
			keyword:   disasterName,
			situation: situationKey,
			source:    filename,
		}, &docs)
	}
	return docs, nil
}

type guidelineMeta struct {
	category  string
	keyword   string
	situation string
	source    string
}

func walkGuideline(node interface{}, path []string, meta guidelineMeta, docs *[]models.Document) {
	switch n := node.(type) {
	case map[string]interface{}:
		if hasGuidelineContent(n) {
			doc := guidelineDocument(n, path, meta)
			doc.ID = fmt.Sprintf("guideline_%s_%s_%d", meta.keyword, meta.situation, len(*docs))
			*docs = append(*docs, doc)
		}
		for key, value := range n {
			if guidelineSkipKeys[key] {
				continue
			}
			segment := key
			if child, ok := value.(map[string]interface{}); ok {
				if title, ok := child["제목"].(string); ok && title != "" {
					segment = title
				}
			}
			walkGuideline(value, append(append([]string(nil), path...), segment), meta, docs)
		}
	case []interface{}:
		for _, item := range n {
			walkGuideline(item, path, meta, docs)
		}
	}
}

func hasGuidelineContent(node map[string]interface{}) bool {
	for _, key := range guidelineContentKeys {
		if _, ok := node[key]; ok {
			return true
		}
	}
	return false
}

func guidelineDocument(node map[string]interface{}, path []string, meta guidelineMeta) models.Document {
	breadcrumbs := strings.Join(path, " > ")

	var b strings.Builder
	b.WriteString(breadcrumbs)
	b.WriteString("\n")
	b.WriteString(strings.Repeat("-", 50))

	writeSection(&b, "세부사항", node["세부사항"])
	writeSection(&b, "주의사항", node["주의사항"])
	writeSection(&b, "내용", node["내용"])
	writeSection(&b, "이유", node["이유"])
	writeContacts(&b, node["신고처"])
	writeSection(&b, "보호자 행동요령", node["보호자_행동요령"])
	writeSection(&b, "평소 준비사항", node["평소_준비사항"])
	writeSection(&b, "행동요령", node["행동요령"])

	metadata := map[string]interface{}{
		"type":      models.TypeGuideline,
		"source":    meta.source,
		"category":  meta.category,
		"keyword":   meta.keyword,
		"situation": meta.situation,
		"path":      breadcrumbs,
	}
	if title, ok := node["제목"].(string); ok {
		metadata["title"] = title
	}
	if number, ok := node["번호"]; ok {
		metadata["number"] = number
	}

	return models.Document{
		Content:  b.String(),
		Metadata: metadata,
	}
}

func writeSection(b *strings.Builder, label string, value interface{}) {
	switch v := value.(type) {
	case nil:
		return
	case []interface{}:
		fmt.Fprintf(b, "\n\n%s:", label)
		for _, item := range v {
			fmt.Fprintf(b, "\n- %v", item)
		}
	default:
		fmt.Fprintf(b, "\n\n%s:\n%v", label, v)
	}
}

func writeContacts(b *strings.Builder, value interface{}) {
	contacts, ok := value.([]interface{})
	if !ok {
		return
	}
	b.WriteString("\n\n신고처:")
	for _, item := range contacts {
		contact, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		line := fmt.Sprintf("\n- %v", contact["기관"])
		if phone, ok := contact["연락처"].(string); ok && phone != "" {
			line += ": " + phone
		}
		if how, ok := contact["방법"].(string); ok && how != "" {
			line += " (" + how + ")"
		}
		b.WriteString(line)
	}
}

func nonNegativeInt(s string) int {
	n, err := strconv.Atoi(strings.ReplaceAll(s, ",", ""))
	if err != nil || n < 0 {
		return 0
	}
	return n
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
