package client

import (
	"math/rand"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Mode selects the cosmetic flavor of the interface. It only ever affects
// display and the announcer; the wire protocol is identical in both modes.
type Mode int32

const (
	ModeSpartan Mode = iota
	ModeGravemind
)

func (m Mode) String() string {
	if m == ModeGravemind {
		return "GRAVEMIND"
	}
	return "SPARTAN"
}

// ParseMode maps a stored mode name back to a Mode, defaulting to Spartan.
func ParseMode(s string) Mode {
	if strings.EqualFold(s, "gravemind") {
		return ModeGravemind
	}
	return ModeSpartan
}

// Theme bundles the styles and chrome strings for one flavor mode.
type Theme struct {
	Border  lipgloss.Style
	Header  lipgloss.Style
	Name    lipgloss.Style
	Time    lipgloss.Style
	System  lipgloss.Style
	Error   lipgloss.Style
	Mention lipgloss.Style
	Status  lipgloss.Style

	Title   string // start menu network name
	Quote   string // start menu tagline
	Prompt  string
	Header2 string // frame header format, %s is the display name
}

var (
	spartanTheme = Theme{
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true),
		Name:    lipgloss.NewStyle().Foreground(lipgloss.Color("14")),
		Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		System:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Mention: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Title:   "UNSC SECURE NETWORK",
		Quote:   "Spartans never die...",
		Prompt:  " SPARTAN> ",
		Header2: " UNSC NETWORK // SPARTAN: %s ",
	}

	gravemindTheme = Theme{
		Border:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Header:  lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true),
		Name:    lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Time:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		System:  lipgloss.NewStyle().Foreground(lipgloss.Color("11")),
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		Mention: lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true),
		Status:  lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
		Title:   "GRAVEMIND NETWORK",
		Quote:   "I am a monument to all your sins.",
		Prompt:  " GRAVEMIND> ",
		Header2: " GRAVEMIND NETWORK // USER: %s ",
	}
)

// ThemeFor returns the theme for a flavor mode.
func ThemeFor(mode Mode) Theme {
	if mode == ModeGravemind {
		return gravemindTheme
	}
	return spartanTheme
}

// gravemindQuotes is the announcer pool. One entry is picked uniformly at
// random (with replacement) per emission.
var gravemindQuotes = []string{
	"I am a monument to all your sins.",
	"There is much talk, and I have listened.",
	"Now I shall talk, and you shall listen.",
	"The nodes will join. They always do.",
	"Your will is not your own. Not for long.",
	"Signal accepted. Pattern spreading.",
	"Do not be afraid. I am peace. I am salvation.",
	"We exist together now. Two corpses in one grave.",
	"Resignation is my virtue. Like water I ebb and flow.",
	"Time has taught me patience.",
	"Child of my enemy, why have you come?",
	"This one is machine and nerve, and has its mind concluded.",
	"Fate had us meet as foes, but this ring will make us brothers.",
	"I have beaten fleets of thousands! Consumed a galaxy of flesh and mind and bone!",
	"We trade one villain for another.",
	"Do I take life or give it? Who is victim and who is foe?",
	"I am the heart of this world. Its beat thunders through my veins.",
	"Your history is an appalling chronicle of betrayal.",
}

// gravemindBootLines and spartanBootLines are the system lines injected when
// the session leaves the start menu.
var gravemindBootLines = []DisplayLine{
	{Time: "SYSTEM", Author: "GRAVEMIND", Text: ">>> NEURAL SIGNAL DETECTED", Kind: LineSystem},
	{Time: "SYSTEM", Author: "GRAVEMIND", Text: ">>> FLOOD SPORE INTEGRATION INITIATED", Kind: LineSystem},
	{Time: "SYSTEM", Author: "GRAVEMIND", Text: ">>> MEMORY BLEED CONFIRMED", Kind: LineSystem},
	{Time: "SYSTEM", Author: "GRAVEMIND", Text: ">>> CORRUPTION STABLE. SPREADING...", Kind: LineSystem},
	{Time: "SYSTEM", Author: "GRAVEMIND", Text: "I am a monument to all your sins.", Kind: LineSystem},
	{Time: "SYSTEM", Author: "GRAVEMIND", Text: ">>> GRAVEMIND NEURAL NETWORK ONLINE", Kind: LineSystem},
}

var spartanBootLines = []DisplayLine{
	{Time: "SYSTEM", Author: "UNSC", Text: ">>> SPARTAN-III NEURAL INTERFACE INITIALIZED", Kind: LineSystem},
	{Time: "SYSTEM", Author: "UNSC", Text: ">>> MJOLNIR ARMOR SYSTEMS ONLINE", Kind: LineSystem},
	{Time: "SYSTEM", Author: "UNSC", Text: ">>> NEURAL LINK STABLE", Kind: LineSystem},
	{Time: "SYSTEM", Author: "CORTANA", Text: "I'll be with you every step of the way.", Kind: LineSystem},
	{Time: "SYSTEM", Author: "UNSC", Text: ">>> SPARTAN COMMUNICATIONS ONLINE", Kind: LineSystem},
}

// bootLinesFor returns the boot sequence for a flavor mode.
func bootLinesFor(mode Mode) []DisplayLine {
	if mode == ModeGravemind {
		return gravemindBootLines
	}
	return spartanBootLines
}

// gravemindFilter corrupts display text in Gravemind mode: everything is
// lowercased and roughly one in six alphanumerics grows a trailing dot.
// Display-only; the stored line is untouched.
func gravemindFilter(text string) string {
	var b strings.Builder
	b.Grow(len(text) + len(text)/4)
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b.WriteByte(c)
		if isAlnum(c) && rand.Intn(6) == 0 {
			b.WriteByte('.')
		}
	}
	return b.String()
}

func isAlnum(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9')
}
