package redis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/MrSnakeDoc/navspec/internal/config"
	"github.com/MrSnakeDoc/navspec/internal/logger"
)

type flakyPinger struct {
	failures int32
	calls    atomic.Int32
}

func (p *flakyPinger) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx, "ping")
	if p.calls.Add(1) <= p.failures {
		cmd.SetErr(errors.New("connection refused"))
		return cmd
	}
	cmd.SetVal("PONG")
	return cmd
}

func testOptions() ConnectOptions {
	return ConnectOptions{
		Addr:           "redis:6379",
		ConnectTimeout: time.Second,
		RetryInterval:  5 * time.Millisecond,
		MaxWait:        20 * time.Millisecond,
		PingTimeout:    100 * time.Millisecond,
		WarnThreshold:  1,
	}
}

func TestWaitReadyRetries(t *testing.T) {
	p := &flakyPinger{failures: 3}

	if err := WaitReady(context.Background(), p, testOptions(), logger.Nop()); err != nil {
		t.Fatalf("WaitReady() error = %v", err)
	}
	if got := p.calls.Load(); got != 4 {
		t.Errorf("ping calls = %d, want 4", got)
	}
}

func TestWaitReadyTimeout(t *testing.T) {
	p := &flakyPinger{failures: 1 << 30}
	opts := testOptions()
	opts.ConnectTimeout = 50 * time.Millisecond

	err := WaitReady(context.Background(), p, opts, logger.Nop())
	if err == nil {
		t.Fatal("WaitReady() should time out")
	}
	if !strings.Contains(err.Error(), "redis unavailable at redis:6379") {
		t.Errorf("error = %v", err)
	}
}

func TestWaitReadyCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := WaitReady(ctx, &flakyPinger{failures: 1 << 30}, testOptions(), logger.Nop()); err == nil {
		t.Fatal("WaitReady() should stop on a cancelled context")
	}
}

func TestValidate(t *testing.T) {
	if err := testOptions().Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	bad := testOptions()
	bad.Addr = ""
	bad.MaxWait = 0
	bad.WarnThreshold = -1
	err := bad.Validate()
	if err == nil {
		t.Fatal("Validate() should fail")
	}
	for _, want := range []string{"Addr", "MaxWait", "WarnThreshold"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("Validate() error %q does not mention %s", err, want)
		}
	}
}

func TestOptionsFromConfig(t *testing.T) {
	c := config.Redis{Addr: "r:1", DB: 3, PoolSize: 7, ConnectTimeout: time.Minute}
	opts := OptionsFromConfig(c)
	if opts.Addr != "r:1" || opts.DB != 3 || opts.PoolSize != 7 || opts.ConnectTimeout != time.Minute {
		t.Errorf("OptionsFromConfig() = %+v", opts)
	}
}
