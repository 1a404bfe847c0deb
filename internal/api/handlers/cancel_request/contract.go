package cancel_request

import (
	"context"

	cancelRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/cancel_request"
)

type CancelRequestUseCase interface {
	Execute(ctx context.Context, req *cancelRequest.Request) (*cancelRequest.Response, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
