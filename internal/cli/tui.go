package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/matzehuels/modhouse/pkg/cut"
	"github.com/matzehuels/modhouse/pkg/house"
	"github.com/matzehuels/modhouse/pkg/scene"
	"github.com/matzehuels/modhouse/pkg/stretch"
)

// Styles
var (
	tuiKeyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	tuiDimStyle  = lipgloss.NewStyle().Foreground(colorDim)
	tuiErrStyle  = lipgloss.NewStyle().Foreground(colorRed)
	tuiSwapStyle = lipgloss.NewStyle().Foreground(colorGreen)
)

// maxSwapLines is the number of swap events the view keeps.
const maxSwapLines = 5

// =============================================================================
// StretchModel - Interactive stretching
// =============================================================================

// StretchModel is the bubbletea model driving one house with the keyboard.
//
// Left and right drag along x in screen direction, up and down drag the z
// bookend outward and inward. Enter ends the running gesture; pressing a
// key of the other axis ends it first.
type StretchModel struct {
	ctx     context.Context
	house   *house.House
	step    float64
	side    stretch.Side
	drag    *scene.Axis
	clips   []cut.Settings
	clip    int
	handles bool
	swaps   []stretch.SwapEvent
	err     error
}

// NewStretchModel creates a model for h. Clips are the clip presets the
// "c" key cycles through, starting at the first.
func NewStretchModel(ctx context.Context, h *house.House, step float64, clips []cut.Settings) *StretchModel {
	if len(clips) == 0 {
		clips = []cut.Settings{{}}
	}
	return &StretchModel{
		ctx:     ctx,
		house:   h,
		step:    step,
		side:    stretch.SideEnd,
		clips:   clips,
		handles: true,
	}
}

// RecordSwap appends a swap event to the model's log. Pass it as the
// house's OnSwap callback.
func (m *StretchModel) RecordSwap(ev stretch.SwapEvent) {
	m.swaps = append(m.swaps, ev)
	if len(m.swaps) > maxSwapLines {
		m.swaps = m.swaps[len(m.swaps)-maxSwapLines:]
	}
}

func (m *StretchModel) Init() tea.Cmd {
	return nil
}

func (m *StretchModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	m.err = nil
	switch key.String() {
	case "q", "ctrl+c", "esc":
		if m.drag != nil {
			m.err = m.endGesture()
		}
		return m, tea.Quit
	case "right":
		m.err = m.dragBy(scene.AxisX, m.step)
	case "left":
		m.err = m.dragBy(scene.AxisX, -m.step)
	case "up":
		m.err = m.dragBy(scene.AxisZ, m.step)
	case "down":
		m.err = m.dragBy(scene.AxisZ, -m.step)
	case "enter", " ":
		if m.drag != nil {
			m.err = m.endGesture()
		}
	case "tab", "s":
		if m.drag == nil {
			m.side = -m.side
		}
	case "c":
		m.clip = (m.clip + 1) % len(m.clips)
		m.err = m.house.SetClip(m.clips[m.clip])
	case "h":
		m.handles = !m.handles
		if m.handles {
			m.house.ShowHandles()
		} else {
			m.house.HideHandles()
		}
	}
	return m, nil
}

// dragBy progresses a gesture on axis, starting one on the selected side
// when none runs.
func (m *StretchModel) dragBy(axis scene.Axis, delta float64) error {
	if m.drag != nil && *m.drag != axis {
		if err := m.endGesture(); err != nil {
			return err
		}
	}
	e, err := m.house.Engine(axis)
	if err != nil {
		return err
	}
	if m.drag == nil {
		if err := e.GestureStart(m.side); err != nil {
			return err
		}
		m.drag = &axis
	}
	return e.GestureProgress(delta)
}

func (m *StretchModel) endGesture() error {
	axis := *m.drag
	m.drag = nil
	e, err := m.house.Engine(axis)
	if err != nil {
		return err
	}
	return e.GestureEnd(m.ctx)
}

func (m *StretchModel) View() string {
	var b strings.Builder
	snap := m.house.Snapshot()

	title := m.house.Name()
	if title == "" {
		title = snap.SystemID
	}
	b.WriteString(StyleTitle.Render(appName + " · " + title))
	b.WriteString("\n\n")

	section := formatSection(snap.SectionType)
	if snap.Preview != "" {
		section += StyleWarning.Render("  preview " + snap.Preview)
	}
	handles := "shown"
	if !m.handles {
		handles = "hidden"
	}
	for _, kv := range [][2]string{
		{"Section", section},
		{"Size", formatSize(snap.Width, snap.Height, snap.Depth)},
		{"Clip", m.clips[m.clip].String()},
		{"Handles", handles},
		{"Side", m.side.String()},
	} {
		b.WriteString(lipgloss.NewStyle().Foreground(colorGray).Width(10).Render(kv[0]))
		b.WriteString(StyleValue.Render(kv[1]))
		b.WriteString("\n")
	}
	b.WriteString(engineTable(snap.Stretch))
	b.WriteString("\n")

	for _, ev := range m.swaps {
		b.WriteString(tuiSwapStyle.Render(fmt.Sprintf("  %s %s %s", ev.From, iconArrow, ev.To)))
		b.WriteString("\n")
	}
	if m.err != nil {
		b.WriteString(styleIconError.Render(iconError) + " " + tuiErrStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	help := []string{
		tuiKeyStyle.Render("←/→") + " x",
		tuiKeyStyle.Render("↑/↓") + " z",
		tuiKeyStyle.Render("enter") + " end",
		tuiKeyStyle.Render("tab") + " side",
		tuiKeyStyle.Render("c") + " clip",
		tuiKeyStyle.Render("h") + " handles",
		tuiKeyStyle.Render("q") + " quit",
	}
	b.WriteString(tuiDimStyle.Render(strings.Join(help, "  ")))
	b.WriteString("\n")
	return b.String()
}

// engineTable renders one row per stretch engine.
func engineTable(status []stretch.Status) string {
	rows := make([][]string, len(status))
	for i, st := range status {
		detail := ""
		switch {
		case st.Inert:
			detail = "inert"
		case st.Axis == scene.AxisX.String():
			detail = strings.Join(st.Alternatives, " ")
		default:
			detail = fmt.Sprintf("%d vanilla", st.Vanilla)
		}
		rows[i] = []string{st.Axis, st.Phase, st.Side, fmt.Sprintf("%+.2f", st.Offset), detail}
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("Axis", "Phase", "Side", "Offset", "").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if status[row].Phase == stretch.PhaseDragging.String() {
				return StyleHighlight
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		}).
		Render()
}
