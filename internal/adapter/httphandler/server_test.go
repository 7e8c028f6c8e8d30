package httphandler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/niksmo/storefront/internal/adapter/httphandler"
	"github.com/stretchr/testify/assert"
)

func TestHTTPServerLifecycle(t *testing.T) {
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	s := httphandler.NewHTTPServer("127.0.0.1:0", h, time.Second)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	done := make(chan struct{})
	go func() {
		s.Run(stop)
		close(done)
	}()

	s.Close(t.Context())

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop")
	}
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
}
