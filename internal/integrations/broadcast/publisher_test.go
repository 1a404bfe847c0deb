package broadcast

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublisher_FlushTimeout(t *testing.T) {
	tests := []struct {
		name    string
		timeout time.Duration
		want    time.Duration
	}{
		{"configured", 3 * time.Second, 3 * time.Second},
		{"zero", 0, DefaultFlushTimeout},
		{"negative", -time.Second, DefaultFlushTimeout},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Publisher{timeout: tt.timeout}
			assert.Equal(t, tt.want, p.flushTimeout())
		})
	}
}
