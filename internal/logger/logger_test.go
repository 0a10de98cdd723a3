package logger

import (
	"context"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func TestNewLogger(t *testing.T) {
	tests := []struct {
		name    string
		env     string
		level   string
		wantErr bool
	}{
		{name: "prod", env: "prod"},
		{name: "local", env: "local"},
		{name: "dev", env: "dev"},
		{name: "level override", env: "local", level: "error"},
		{name: "unknown env", env: "staging", wantErr: true},
		{name: "bad level", env: "local", level: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := NewLogger(tt.env, tt.level)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewLogger(%q, %q) error = %v, wantErr %v", tt.env, tt.level, err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if tt.level == "error" && l.Core().Enabled(zapcore.InfoLevel) {
				t.Error("level override not applied")
			}
		})
	}
}

func TestContextRoundTrip(t *testing.T) {
	l := zap.NewNop()
	ctx := ContextWithLogger(context.Background(), l)

	if got := FromContext(ctx); got != l {
		t.Error("context did not return the attached logger")
	}
}

func TestFromContextWithoutLogger(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Error("expected a usable fallback logger, got nil")
	}
}
