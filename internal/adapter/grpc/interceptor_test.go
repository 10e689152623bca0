package grpc

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

func TestLoggingInterceptor(t *testing.T) {
	tests := []struct {
		name          string
		handler       grpc.UnaryHandler
		expectedCode  codes.Code
		expectedLevel string
	}{
		{
			name: "Success",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return "success", nil
			},
			expectedCode:  codes.OK,
			expectedLevel: "INFO",
		},
		{
			name: "Client Error",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, status.Error(codes.InvalidArgument, "bad amount")
			},
			expectedCode:  codes.InvalidArgument,
			expectedLevel: "WARN",
		},
		{
			name: "Plain Error",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				return nil, errors.New("boom")
			},
			expectedCode:  codes.Unknown,
			expectedLevel: "ERROR",
		},
		{
			name: "Panic",
			handler: func(ctx context.Context, req interface{}) (interface{}, error) {
				panic("nil map")
			},
			expectedCode:  codes.Internal,
			expectedLevel: "ERROR",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			interceptor := LoggingInterceptor(slog.New(slog.NewJSONHandler(&buf, nil)))

			info := &grpc.UnaryServerInfo{
				FullMethod: "/test.Service/Method",
			}

			resp, err := interceptor(context.Background(), "test-request", info, tt.handler)

			if tt.expectedCode == codes.OK {
				assert.NoError(t, err)
				assert.Equal(t, "success", resp)
			} else {
				assert.Error(t, err)
				assert.Nil(t, resp)
				assert.Equal(t, tt.expectedCode, status.Code(err))
			}

			lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
			var entry map[string]any
			require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
			assert.Equal(t, "gRPC request", entry["msg"])
			assert.Equal(t, tt.expectedLevel, entry["level"])
			assert.Equal(t, "/test.Service/Method", entry["method"])
			assert.Equal(t, tt.expectedCode.String(), entry["code"])
		})
	}
}
