package cmd

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alturino/kickshopping/cart/internal/viewmodel"
	"github.com/Alturino/kickshopping/internal/app"
	"github.com/Alturino/kickshopping/internal/config"
)

func TestWatchCartLogsMountFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	cfg := &config.Config{
		Application: config.Application{
			BaseURL:        srv.URL,
			Variant:        "catalog",
			EmailDomain:    "@gmail.com",
			FallbackUserID: 1,
		},
		Session: config.Session{Driver: "memory"},
	}
	out := &bytes.Buffer{}
	a, err := app.New(context.Background(), cfg, strings.NewReader(""), out)
	require.NoError(t, err)
	defer a.Close(context.Background())

	logs := &bytes.Buffer{}
	c := zerolog.New(logs).Level(zerolog.DebugLevel).WithContext(context.Background())
	c, cancel := context.WithCancel(app.AttachToContext(c, a))
	cancel()

	require.NoError(t, watchCart(c, out))
	assert.Contains(t, logs.String(), "failed mounting cart")
	assert.Contains(t, logs.String(), "stopped watching cart")
	assert.Contains(t, out.String(), viewmodel.MessageLoadFailed)
}
