package client

import (
	"bytes"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/stretchr/testify/assert"
)

func TestRenderHeaderCarriesUsername(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, -1)

	term.Render(RenderState{Username: "chief", Mode: ModeSpartan})
	assert.Contains(t, buf.String(), "SPARTAN: chief")

	buf.Reset()
	term.Render(RenderState{Username: "chief", Mode: ModeGravemind})
	assert.Contains(t, buf.String(), "USER: chief")
}

func TestRenderStartMenuShowsTitle(t *testing.T) {
	var buf bytes.Buffer
	term := NewTerminal(&buf, -1)

	term.RenderStartMenu(ModeSpartan, "chief")
	out := buf.String()
	assert.Contains(t, out, "UNSC SECURE NETWORK")
	assert.Contains(t, out, "chief")
}

func TestHighlightMentionTokenBounded(t *testing.T) {
	// Transform makes the styled span observable without depending on the
	// test environment's color support.
	theme := spartanTheme
	theme.Mention = lipgloss.NewStyle().Transform(strings.ToUpper)

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain mention", "hey @alice hello", "hey @ALICE hello"},
		{"mention at end", "ping @alice", "ping @ALICE"},
		{"longer name untouched", "cc @alicia today", "cc @alicia today"},
		{"mixed", "cc @alicia and @alice", "cc @alicia and @ALICE"},
		{"no mention", "nothing here", "nothing here"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, highlightMention(tt.in, "alice", theme))
		})
	}
}
