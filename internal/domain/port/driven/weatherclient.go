package driven

import (
	"context"

	"github.com/fittrack-app/fittrack/internal/domain/model"
)

// WeatherClient is the driven port for the weather service used by daily
// activity planning. Implementations carry their own per-call timeout.
type WeatherClient interface {
	Current(ctx context.Context, cityKey string) (*model.WeatherReport, error)
}
