package etcd

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/etcd/api/v3/mvccpb"
	clientv3 "go.etcd.io/etcd/client/v3"
)

// memoryKV implementa KV en memoria.
type memoryKV struct {
	data    map[string]string
	failGet bool
}

func (m *memoryKV) Get(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.GetResponse, error) {
	if m.failGet {
		return nil, errors.New("error simulado en Get")
	}
	resp := &clientv3.GetResponse{}
	if v, ok := m.data[key]; ok {
		resp.Kvs = []*mvccpb.KeyValue{{Key: []byte(key), Value: []byte(v)}}
		resp.Count = 1
	}
	return resp, nil
}

func (m *memoryKV) Put(ctx context.Context, key, val string, opts ...clientv3.OpOption) (*clientv3.PutResponse, error) {
	m.data[key] = val
	return &clientv3.PutResponse{}, nil
}

func (m *memoryKV) Delete(ctx context.Context, key string, opts ...clientv3.OpOption) (*clientv3.DeleteResponse, error) {
	delete(m.data, key)
	return &clientv3.DeleteResponse{}, nil
}

func newMemoryClient(data map[string]string) (*Client, *memoryKV) {
	kv := &memoryKV{data: data}
	return newWithKV(kv, "hftgate", "test", time.Second), kv
}

func TestGetVar(t *testing.T) {
	client, _ := newMemoryClient(map[string]string{"broker/account_type": "LIVE"})
	ctx := context.Background()

	val, err := client.GetVar(ctx, "broker/account_type")
	require.NoError(t, err)
	assert.Equal(t, "LIVE", val)

	_, err = client.GetVar(ctx, "broker/missing")
	assert.Error(t, err)

	val, err = client.GetVarWithDefault(ctx, "broker/missing", "DEMO")
	require.NoError(t, err)
	assert.Equal(t, "DEMO", val)
}

func TestTypedGetters(t *testing.T) {
	client, _ := newMemoryClient(map[string]string{
		"engine/max_attempts":          "10",
		"engine/bad_int":               "diez",
		"gateway/health_enabled":       "true",
		"gateway/handshake_timeout_ms": "1500",
		"gateway/instruments":          "EURUSD, GBPUSD,,USDJPY ",
	})
	ctx := context.Background()

	n, err := client.GetVarIntWithDefault(ctx, "engine/max_attempts", 3)
	require.NoError(t, err)
	assert.Equal(t, 10, n)

	n, _ = client.GetVarIntWithDefault(ctx, "engine/bad_int", 3)
	assert.Equal(t, 3, n)

	b, _ := client.GetVarBoolWithDefault(ctx, "gateway/health_enabled", false)
	assert.True(t, b)

	d, _ := client.GetVarDurationWithDefault(ctx, "gateway/handshake_timeout_ms", time.Second)
	assert.Equal(t, 1500*time.Millisecond, d)

	list, err := client.GetVarList(ctx, "gateway/instruments")
	require.NoError(t, err)
	assert.Equal(t, []string{"EURUSD", "GBPUSD", "USDJPY"}, list)
}

func TestSetAndDeleteVar(t *testing.T) {
	client, kv := newMemoryClient(map[string]string{})
	ctx := context.Background()

	require.NoError(t, client.SetVar(ctx, "gateway/strategy", "passive"))
	assert.Equal(t, "passive", kv.data["gateway/strategy"])

	require.NoError(t, client.DeleteVar(ctx, "gateway/strategy"))
	_, exists := kv.data["gateway/strategy"]
	assert.False(t, exists)
}

func TestGetVarWithDefaultOnFailure(t *testing.T) {
	client, kv := newMemoryClient(map[string]string{"k": "v"})
	kv.failGet = true

	val, err := client.GetVarWithDefault(context.Background(), "k", "fallback")
	require.NoError(t, err)
	assert.Equal(t, "fallback", val)
}

func TestEndpointsFromEnv(t *testing.T) {
	t.Setenv(envEndpoints, " http://a:2379 ,,http://b:2379")
	assert.Equal(t, []string{"http://a:2379", "http://b:2379"}, EndpointsFromEnv())

	t.Setenv(envEndpoints, "")
	assert.Nil(t, EndpointsFromEnv())
}

func TestNamespacePrefix(t *testing.T) {
	client, _ := newMemoryClient(nil)
	assert.Equal(t, "/hftgate/test/", client.NamespacePrefix())
}
