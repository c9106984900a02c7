package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/san-kum/evoimg/internal/pattern"
)

// Picker is a numbered pattern menu. Any key that is not a valid choice
// selects the default gradient.
type Picker struct {
	kinds    []pattern.Kind
	cursor   int
	chosen   pattern.Kind
	done     bool
	canceled bool
}

func NewPicker() Picker {
	return Picker{kinds: pattern.Kinds(), chosen: pattern.Gradient}
}

func (p Picker) Init() tea.Cmd { return nil }

func (p Picker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return p, nil
	}
	switch key.String() {
	case "ctrl+c", "esc":
		p.canceled = true
		return p, tea.Quit
	case "up", "k":
		if p.cursor > 0 {
			p.cursor--
		}
		return p, nil
	case "down", "j":
		if p.cursor < len(p.kinds)-1 {
			p.cursor++
		}
		return p, nil
	case "enter", " ":
		p.chosen = p.kinds[p.cursor]
	default:
		p.chosen = pattern.ParseOrDefault(key.String())
	}
	p.done = true
	return p, tea.Quit
}

func (p Picker) View() string {
	st := newStyles(Themes[0])

	var s strings.Builder
	s.WriteString(st.title.Render("Choose a target pattern") + "\n")
	for i, k := range p.kinds {
		line := fmt.Sprintf("%d. %s", int(k), k.Label())
		if i == p.cursor {
			s.WriteString(st.selected.Render("▸ "+line) + "\n")
			continue
		}
		s.WriteString("  " + st.value.Render(line) + "\n")
	}
	s.WriteString("\n" + st.muted.Render("1-4 or enter to pick, any other key for gradient"))
	return s.String()
}

// Choice returns the selected pattern. ok is false if the picker was
// dismissed without a choice.
func (p Picker) Choice() (kind pattern.Kind, ok bool) {
	if p.canceled || !p.done {
		return pattern.Gradient, false
	}
	return p.chosen, true
}
