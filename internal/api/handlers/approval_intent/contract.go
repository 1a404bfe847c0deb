package approval_intent

import (
	"context"

	approveRequest "github.com/m04kA/SMC-VenueBookingService/internal/usecase/approve_request"
)

type ApprovalPreviewUseCase interface {
	Preview(ctx context.Context, req *approveRequest.Request) (*approveRequest.PreviewResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
