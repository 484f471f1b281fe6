package log

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_LevelAndFields(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, InfoLevel).Named("pipeline")
	l.Debug("hidden")
	l.Info("stint dropped", String("driver", "LEC"), Int("round", 7))

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"logger":"pipeline"`)
	assert.Contains(t, out, `"driver":"LEC"`)
	assert.Contains(t, out, `"round":7`)
}

func TestFilterOption(t *testing.T) {
	var buf bytes.Buffer
	opt, err := FilterOption("info+:*")
	require.NoError(t, err)

	root := New(&buf, DebugLevel, opt)
	root.Named("segment").Debug("from debug")
	root.Named("segment").Info("from info")

	out := buf.String()
	assert.NotContains(t, out, "from debug")
	assert.Contains(t, out, "from info")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{in: "debug", want: DebugLevel},
		{in: "warn", want: WarnLevel},
		{in: "nope", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGetFromContext(t *testing.T) {
	assert.Same(t, Default(), GetFromContext(context.Background()))

	l := New(&bytes.Buffer{}, WarnLevel)
	ctx := AddToContext(context.Background(), l)
	assert.Same(t, l, GetFromContext(ctx))
}
