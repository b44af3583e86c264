package utils

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/localnerve/medrecords/internal/types"
	"github.com/stretchr/testify/require"
)

const defaultTimeout = 500 * time.Millisecond

func decode(resp *http.Response, target interface{}) error {
	defer resp.Body.Close()
	return json.NewDecoder(resp.Body).Decode(target)
}

func TestStatusOf(t *testing.T) {
	tests := []struct {
		err    error
		status int
		kind   string
	}{
		{types.NotFound.New("x"), 404, "not_found"},
		{types.Forbidden.New("x"), 403, "forbidden"},
		{types.Validation.New("x"), 400, "validation"},
		{types.Integrity.New("x"), 409, "integrity"},
		{types.Unauthorized.New("x"), 401, "unauthorized"},
		{types.Storage.New("x"), 500, "storage"},
		{fmt.Errorf("wrapped: %w", types.NotFound.New("x")), 404, "not_found"},
		{fmt.Errorf("boom"), 500, "internal"},
		{&types.CustomError{Code: 418, Type: "auth.teapot"}, 418, "auth.teapot"},
	}
	for _, tt := range tests {
		status, kind := StatusOf(tt.err)
		require.Equal(t, tt.status, status, tt.err.Error())
		require.Equal(t, tt.kind, kind, tt.err.Error())
	}
}

func TestServiceErrorResponseHidesInternalErrors(t *testing.T) {
	app := fiber.New()
	app.Get("/validation", func(c *fiber.Ctx) error {
		return ServiceErrorResponse(c, types.Validation.New("bad date"), "records")
	})
	app.Get("/internal", func(c *fiber.Ctx) error {
		return ServiceErrorResponse(c, fmt.Errorf("dsn password=secret"), "records")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/validation", nil))
	require.NoError(t, err)
	require.Equal(t, 400, resp.StatusCode)

	var body ErrorResponseStruct
	require.NoError(t, decode(resp, &body))
	require.Equal(t, "records.validation", body.Type)
	require.Contains(t, body.Message, "bad date")
	require.Equal(t, "/validation", body.URL)
	require.False(t, body.Ok)

	resp, err = app.Test(httptest.NewRequest("GET", "/internal", nil))
	require.NoError(t, err)
	require.Equal(t, 500, resp.StatusCode)
	require.NoError(t, decode(resp, &body))
	require.NotContains(t, body.Message, "secret")
}

func TestPingService(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	ctx := context.Background()
	require.NoError(t, PingService(ctx, "http://"+ln.Addr().String(), defaultTimeout))
	require.Error(t, PingService(ctx, "::not a url", defaultTimeout))
	require.Error(t, PingService(ctx, "http://", defaultTimeout))
}
