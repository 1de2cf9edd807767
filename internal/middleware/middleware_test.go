package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/groupledger/internal/auth"
	"github.com/mmynk/groupledger/internal/metrics"
	"github.com/mmynk/groupledger/pkg/api"
	"github.com/mmynk/groupledger/pkg/api/apiconnect"
)

const whoAmIProcedure = "/test.v1.Echo/WhoAmI"

type echoClient = connect.Client[api.GetGroupRequest, api.GetGroupResponse]

// setupEchoServer serves a handler that reports the caller's user id as the
// group owner.
func setupEchoServer(t *testing.T, interceptors ...connect.Interceptor) *echoClient {
	t.Helper()

	handler := connect.NewUnaryHandler(whoAmIProcedure,
		func(ctx context.Context, req *connect.Request[api.GetGroupRequest]) (*connect.Response[api.GetGroupResponse], error) {
			return connect.NewResponse(&api.GetGroupResponse{Group: &api.Group{OwnerID: GetUserID(ctx)}}), nil
		},
		apiconnect.WithJSON(),
		connect.WithInterceptors(interceptors...),
	)

	mux := http.NewServeMux()
	mux.Handle(whoAmIProcedure, handler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return connect.NewClient[api.GetGroupRequest, api.GetGroupResponse](http.DefaultClient, server.URL+whoAmIProcedure, apiconnect.WithJSON())
}

func TestHeaderIdentity(t *testing.T) {
	client := setupEchoServer(t, HeaderIdentity())

	req := connect.NewRequest(&api.GetGroupRequest{GroupID: "g"})
	req.Header().Set(UserIDHeader, "alice")
	resp, err := client.CallUnary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "alice", resp.Msg.Group.OwnerID)

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupID: "g"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
}

func TestRequireAuth(t *testing.T) {
	jwtManager := auth.NewJWTManager("test-secret-with-enough-bytes-123", time.Hour)
	client := setupEchoServer(t, RequireAuth(jwtManager))

	token, err := jwtManager.Generate("bob")
	require.NoError(t, err)

	req := connect.NewRequest(&api.GetGroupRequest{GroupID: "g"})
	req.Header().Set("Authorization", "Bearer "+token)
	resp, err := client.CallUnary(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "bob", resp.Msg.Group.OwnerID)

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic " + token},
		{"garbage token", "Bearer not-a-token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := connect.NewRequest(&api.GetGroupRequest{GroupID: "g"})
			if tt.header != "" {
				req.Header().Set("Authorization", tt.header)
			}
			_, err := client.CallUnary(context.Background(), req)
			require.Error(t, err)
			assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
		})
	}
}

func TestMetricsInterceptorCountsRejectedCalls(t *testing.T) {
	reg := prometheus.NewRegistry()
	client := setupEchoServer(t, MetricsInterceptor(metrics.New(reg)), HeaderIdentity(), LoggingInterceptor())

	req := connect.NewRequest(&api.GetGroupRequest{GroupID: "g"})
	req.Header().Set(UserIDHeader, "alice")
	_, err := client.CallUnary(context.Background(), req)
	require.NoError(t, err)

	_, err = client.CallUnary(context.Background(), connect.NewRequest(&api.GetGroupRequest{GroupID: "g"}))
	require.Error(t, err)

	// One series for the ok call, one for the unauthenticated one.
	count, err := testutil.GatherAndCount(reg, "groupledger_rpc_requests_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}
