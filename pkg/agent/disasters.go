package agent

import "strings"

// disasterSynonym maps one raw Korean disaster term to its canonical
// document-store label.
type disasterSynonym struct {
	keyword string
	label   string
}

// disasterSynonyms is matched by substring in declaration order; the
// first hit wins. The order sensitivity is deliberate: a slice keeps
// the precedence the lookup table was written with (a Go map would
// randomize it), so broad terms like "비" must stay ahead of nothing
// they should shadow. Longest-match was considered and rejected to keep
// the observed behavior.
var disasterSynonyms = []disasterSynonym{
	// heavy rain
	{"비", "호우"},
	{"폭우", "호우"},
	{"집중호우", "호우"},
	{"장마", "호우"},
	{"게릴라성 호우", "호우"},
	{"많은 비", "호우"},
	{"강한 비", "호우"},
	// flood
	{"홍수", "홍수"},
	{"침수", "홍수"},
	{"범람", "홍수"},
	{"강물이 넘쳤", "홍수"},
	{"물이 넘쳤", "홍수"},
	{"물난리", "홍수"},
	{"수해", "홍수"},
	// typhoon
	{"태풍", "태풍"},
	{"강풍", "태풍"},
	{"돌풍", "태풍"},
	{"폭풍", "태풍"},
	// earthquake
	{"지진", "지진"},
	{"진동", "지진"},
	{"땅이 흔들", "지진"},
	{"여진", "지진"},
	// tsunami
	{"쓰나미", "지진해일"},
	{"해일", "지진해일"},
	{"지진해일", "지진해일"},
	{"해안 침수", "지진해일"},
	// landslide
	{"산사태", "산사태"},
	{"토석류", "산사태"},
	{"산 무너짐", "산사태"},
	{"산 붕괴", "산사태"},
	{"낙석", "산사태"},
	{"사면 붕괴", "산사태"},
	// fire / wildfire
	{"화재", "화재"},
	{"불", "화재"},
	{"화염", "화재"},
	{"연기", "화재"},
	{"산불", "산불"},
	{"산에 불", "산불"},
	{"산림 화재", "산불"},
	{"들불", "산불"},
	// explosion / gas
	{"폭발", "폭발"},
	{"가스", "가스"},
	{"가스 누출", "가스"},
	{"가스 폭발", "폭발"},
	// volcano
	{"화산", "화산폭발"},
	{"화산 폭발", "화산폭발"},
	{"화산재", "화산재"},
	{"분화", "화산폭발"},
	// radiation
	{"방사능", "방사능"},
	{"방사선", "방사능"},
	{"핵", "방사능"},
	{"원전", "방사능"},
	// dam failure
	{"붕괴", "댐붕괴"},
	{"댐 붕괴", "댐붕괴"},
	{"댐 터짐", "댐붕괴"},
}

// CanonicalDisasters is the closed label set the guideline collection is
// indexed under.
var CanonicalDisasters = []string{
	"호우", "홍수", "태풍", "지진", "지진해일", "산사태",
	"화재", "산불", "폭발", "가스", "화산폭발", "화산재",
	"방사능", "댐붕괴",
}

// DetectDisaster scans query for a known disaster term and returns the
// matched keyword and its canonical label.
func DetectDisaster(query string) (keyword, label string, ok bool) {
	lowered := strings.ToLower(query)
	for _, syn := range disasterSynonyms {
		if strings.Contains(lowered, syn.keyword) {
			return syn.keyword, syn.label, true
		}
	}
	return "", "", false
}
