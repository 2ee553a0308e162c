package view

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNl2br(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want template.HTML
	}{
		{"empty", "", ""},
		{"single line", "sword", "sword"},
		{"line breaks become br", "sword\nshield", "sword<br>shield"},
		{"crlf normalized", "sword\r\nshield", "sword<br>shield"},
		{"markup escaped", "<script>x</script>\nok", "&lt;script&gt;x&lt;/script&gt;<br>ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Nl2br(tt.in))
		})
	}
}

func TestNewEngine(t *testing.T) {
	engine, err := NewEngine()
	require.NoError(t, err)
	require.NotNil(t, engine)
	assert.NoError(t, engine.Load())
}
