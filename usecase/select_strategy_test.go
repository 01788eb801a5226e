package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vitovidale/video-recognition-service/domain"
)

func TestSelectStrategies(t *testing.T) {
	native := &fakeNativeSaver{formats: []string{"mp4", "webm"}}
	generic := &fakeUploader{}

	tests := []struct {
		name string
		ext  string
		caps UploadCapabilities
		want []domain.StrategyKind
	}{
		{"native then generic", "mp4", UploadCapabilities{NativeSave: native, Generic: generic},
			[]domain.StrategyKind{domain.StrategyNativeSave, domain.StrategyGenericEndpoint}},
		{"extension not allow-listed", "mkv", UploadCapabilities{NativeSave: native, Generic: generic},
			[]domain.StrategyKind{domain.StrategyGenericEndpoint}},
		{"native only", "webm", UploadCapabilities{NativeSave: native},
			[]domain.StrategyKind{domain.StrategyNativeSave}},
		{"nothing resolved", "mp4", UploadCapabilities{}, []domain.StrategyKind{}},
		{"native rejects and no generic", "avi", UploadCapabilities{NativeSave: native}, []domain.StrategyKind{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SelectStrategies(tt.ext, tt.caps))
		})
	}
}
