package agent

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewrite(t *testing.T) {
	r := NewQueryRewriter(&fakeModel{responses: scripted(
		textResponse(`{"kakao": "강남역", "vector": "강남역 지하 대피소", "location_type": "specific"}`),
	)})

	rw := r.Rewrite(context.Background(), "강남역 근처 대피소 알려줘")
	assert.Equal(t, "강남역", rw.Kakao)
	assert.Equal(t, "강남역 지하 대피소", rw.Vector)
	assert.Equal(t, LocationSpecific, rw.LocationType)
}

func TestRewriteRegionType(t *testing.T) {
	r := NewQueryRewriter(&fakeModel{responses: scripted(
		textResponse(`{"kakao": "강남구청", "vector": "강남구 대피소", "location_type": "region"}`),
	)})

	rw := r.Rewrite(context.Background(), "강남구에 대피소 어디 있어?")
	assert.Equal(t, LocationRegion, rw.LocationType)
}

func TestRewriteInvalidLocationType(t *testing.T) {
	r := NewQueryRewriter(&fakeModel{responses: scripted(
		textResponse(`{"kakao": "강남역", "vector": "강남역", "location_type": "landmark"}`),
	)})

	rw := r.Rewrite(context.Background(), "강남역 대피소")
	assert.Equal(t, LocationSpecific, rw.LocationType)
}

func TestRewriteModelFailureFallsBack(t *testing.T) {
	r := NewQueryRewriter(failingModel{})

	rw := r.Rewrite(context.Background(), "강남역 근처 대피소 알려줘")
	assert.Equal(t, "강남역", rw.Kakao)
	assert.Equal(t, "강남역", rw.Vector)
	assert.Equal(t, LocationSpecific, rw.LocationType)
}

func TestRewriteUnparseableOutputFallsBack(t *testing.T) {
	r := NewQueryRewriter(&fakeModel{responses: scripted(
		textResponse("죄송합니다. JSON으로 답변드리기 어렵습니다."),
	)})

	rw := r.Rewrite(context.Background(), "서울역 주변 피난처 찾아줘")
	assert.Equal(t, "서울역", rw.Kakao)
}

func TestStripStopwords(t *testing.T) {
	tests := []struct {
		input, want string
	}{
		{"강남역 근처 대피소 알려줘", "강남역"},
		{"서울역 주변 피난처 찾아줘", "서울역"},
		{"홍대입구 인근에 대피소 있어?", "홍대입구 에 ?"},
		{"설악산", "설악산"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, StripStopwords(tt.input))
	}
}
