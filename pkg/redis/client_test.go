package redis

import (
	"context"
	"testing"
	"time"

	"github.com/packtally/packtally-backend/pkg/config"
	goredis "github.com/redis/go-redis/v9"
)

type fakeCmdable struct {
	values map[string]string
}

func newFakeCmdable() *fakeCmdable {
	return &fakeCmdable{values: map[string]string{}}
}

func (f *fakeCmdable) Ping(ctx context.Context) *goredis.StatusCmd {
	return goredis.NewStatusResult("PONG", nil)
}

func (f *fakeCmdable) Set(ctx context.Context, key string, value any, ttl time.Duration) *goredis.StatusCmd {
	f.values[key] = value.(string)
	return goredis.NewStatusResult("OK", nil)
}

func (f *fakeCmdable) Get(ctx context.Context, key string) *goredis.StringCmd {
	if v, ok := f.values[key]; ok {
		return goredis.NewStringResult(v, nil)
	}
	return goredis.NewStringResult("", goredis.Nil)
}

func (f *fakeCmdable) Del(ctx context.Context, keys ...string) *goredis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.values[k]; ok {
			delete(f.values, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func (f *fakeCmdable) Scan(ctx context.Context, cursor uint64, match string, count int64) *goredis.ScanCmd {
	keys := make([]string, 0, len(f.values))
	for k := range f.values {
		keys = append(keys, k)
	}
	cmd := goredis.NewScanCmd(ctx, nil)
	cmd.SetVal(keys, 0)
	return cmd
}

func TestSetGetDelRoundTrip(t *testing.T) {
	client := &Client{store: newFakeCmdable()}
	ctx := context.Background()

	if err := client.Set(ctx, Key("rollup", "daily"), `{"total":5}`, time.Minute); err != nil {
		t.Fatalf("set: %v", err)
	}
	got, err := client.Get(ctx, Key("rollup", "daily"))
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != `{"total":5}` {
		t.Fatalf("unexpected value %q", got)
	}

	if err := client.Del(ctx, Key("rollup", "daily")); err != nil {
		t.Fatalf("del: %v", err)
	}
	if _, err := client.Get(ctx, Key("rollup", "daily")); err != Nil {
		t.Fatalf("expected Nil after delete, got %v", err)
	}
}

func TestScanKeys(t *testing.T) {
	fake := newFakeCmdable()
	client := &Client{store: fake}
	ctx := context.Background()

	fake.values[Key("rollup", "a")] = "1"
	fake.values[Key("rollup", "b")] = "2"

	keys, err := client.ScanKeys(ctx, Key("rollup", "*"))
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(keys) != 2 {
		t.Fatalf("expected 2 keys, got %v", keys)
	}
}

func TestOptionsFromConfigRequiresTarget(t *testing.T) {
	if _, err := optionsFromConfig(config.RedisConfig{}); err == nil {
		t.Fatal("expected error when neither url nor address are set")
	}
	opts, err := optionsFromConfig(config.RedisConfig{Address: "localhost:6379", PoolSize: 4})
	if err != nil {
		t.Fatalf("options: %v", err)
	}
	if opts.Addr != "localhost:6379" || opts.PoolSize != 4 {
		t.Fatalf("unexpected options: %+v", opts)
	}
}
