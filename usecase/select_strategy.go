// usecase/select_strategy.go
package usecase

import "github.com/vitovidale/video-recognition-service/domain"

// SelectStrategies orders the upload strategies to try for extension.
// Native save goes first when the host accepts the extension; the generic
// endpoint takes any extension and is always last. An empty result means no
// upload mechanism resolved.
func SelectStrategies(extension string, caps UploadCapabilities) []domain.StrategyKind {
	strategies := make([]domain.StrategyKind, 0, 2)
	if caps.NativeSave != nil && caps.NativeSave.Supports(extension) {
		strategies = append(strategies, domain.StrategyNativeSave)
	}
	if caps.Generic != nil {
		strategies = append(strategies, domain.StrategyGenericEndpoint)
	}
	return strategies
}
