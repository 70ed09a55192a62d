package grpc

import (
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestServiceDesc_MatchesProto(t *testing.T) {
	raw, err := os.ReadFile("../../../../api/proto/v1/account.proto")
	require.NoError(t, err)

	pkg := regexp.MustCompile(`(?m)^package\s+([\w.]+);`).FindSubmatch(raw)
	require.NotNil(t, pkg)
	svc := regexp.MustCompile(`(?m)^service\s+(\w+)`).FindSubmatch(raw)
	require.NotNil(t, svc)
	require.Equal(t, ServiceName, string(pkg[1])+"."+string(svc[1]))
	require.Equal(t, "api/proto/v1/account.proto", ServiceDesc.Metadata)

	var rpcs []string
	for _, m := range regexp.MustCompile(`rpc\s+(\w+)\(`).FindAllSubmatch(raw, -1) {
		rpcs = append(rpcs, string(m[1]))
	}
	var methods []string
	for _, m := range ServiceDesc.Methods {
		methods = append(methods, m.MethodName)
	}
	require.Equal(t, rpcs, methods)
}
