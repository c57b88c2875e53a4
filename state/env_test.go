package state

import (
	"context"
	"testing"
	"time"
)

func TestEnvRoundTrip(t *testing.T) {
	ctx := ContextWithEnv(context.Background())
	env := EnvFromContext(ctx)
	if env == nil {
		t.Fatal("no environment in context")
	}
	if env.Uptime() < 0 || env.Uptime() > time.Minute {
		t.Fatalf("suspicious uptime %v", env.Uptime())
	}
}

func TestEnvFromContextPanicsWithoutEnv(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for context without environment")
		}
	}()
	EnvFromContext(context.Background())
}

func TestRedirectStdLogWithoutLogger(t *testing.T) {
	env := EnvFromContext(ContextWithEnv(context.Background()))
	// must not panic when logger is not prepared yet
	env.RedirectStdLog()
	env.RestoreStdLog()
}
