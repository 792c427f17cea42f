package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDetectDisaster(t *testing.T) {
	tests := []struct {
		query   string
		keyword string
		label   string
	}{
		{"폭우가 쏟아지는데 어떡하죠", "폭우", "호우"},
		{"집 앞이 침수됐어요", "침수", "홍수"},
		{"태풍이 온대요", "태풍", "태풍"},
		{"땅이 흔들려요", "땅이 흔들", "지진"},
		{"쓰나미 경보가 떴어요", "쓰나미", "지진해일"},
		{"설악산 산사태", "산사태", "산사태"},
		// "불" is declared ahead of "산불", so wildfire queries resolve
		// through the generic fire entry
		{"산불이 났어요", "불", "화재"},
		{"가스 냄새가 나요", "가스", "가스"},
		{"원전 사고", "원전", "방사능"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			keyword, label, ok := DetectDisaster(tt.query)
			assert.True(t, ok)
			assert.Equal(t, tt.keyword, keyword)
			assert.Equal(t, tt.label, label)
		})
	}
}

func TestDetectDisasterNoMatch(t *testing.T) {
	_, _, ok := DetectDisaster("근처 맛집 알려줘")
	assert.False(t, ok)
}

func TestDetectDisasterPrecedence(t *testing.T) {
	// "비" is declared before "홍수": a query carrying both resolves to
	// the earlier entry
	keyword, label, ok := DetectDisaster("비가 많이 와서 홍수가 날 것 같아요")
	assert.True(t, ok)
	assert.Equal(t, "비", keyword)
	assert.Equal(t, "호우", label)
}

func TestCanonicalDisastersClosedSet(t *testing.T) {
	canonical := make(map[string]bool, len(CanonicalDisasters))
	for _, label := range CanonicalDisasters {
		canonical[label] = true
	}

	// every synonym resolves into the canonical label set
	for _, syn := range disasterSynonyms {
		assert.True(t, canonical[syn.label], "label %q not canonical", syn.label)
	}
}
