package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/SMC-VenueBookingService/pkg/logger"
)

func TestLogClient_Deliver(t *testing.T) {
	c := NewLogClient(logger.NewNop())

	assert.NoError(t, c.Deliver(context.Background(), "a@x.com", "subject", "<p>hi</p>"))
	assert.ErrorIs(t, c.Deliver(context.Background(), "  ", "subject", ""), ErrInvalidRecipient)
}

func TestClient_DeliverRejectsEmptyRecipient(t *testing.T) {
	c := NewClient("key", "Venues", "noreply@x.com", 0, logger.NewNop())

	assert.ErrorIs(t, c.Deliver(context.Background(), "", "subject", ""), ErrInvalidRecipient)
}
