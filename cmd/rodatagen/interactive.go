package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/do"
	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"
	"go.uber.org/zap"

	"github.com/wippyai/rodata/contenthash"
	"github.com/wippyai/rodata/details"
	"github.com/wippyai/rodata/helper"
	"github.com/wippyai/rodata/wasmemit"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	tabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Padding(0, 1)

	activeTabStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	funcStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	resultStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#90EE90"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

type tab int

const (
	tabFields tab = iota
	tabTypes
	tabMethods
)

var tabNames = []string{"Fields", "Nested types", "Methods"}

type modelState int

const (
	stateBrowse modelState = iota
	stateInput
	stateShowResult
)

type interactiveModel struct {
	err      error
	ctx      context.Context
	rt       wazero.Runtime
	mod      api.Module
	c        *details.Container
	opts     options
	logger   *zap.Logger
	result   string
	tables   [3]table.Model
	input    textinput.Model
	scratch  uint32
	active   tab
	state    modelState
	selected string
}

func newInteractiveModel(ctx context.Context, opts options, logger *zap.Logger) *interactiveModel {
	return &interactiveModel{ctx: ctx, opts: opts, logger: logger}
}

type loadedMsg struct {
	err     error
	rt      wazero.Runtime
	mod     api.Module
	c       *details.Container
	scratch uint32
}

type callResultMsg struct {
	err    error
	result string
}

func (m *interactiveModel) Init() tea.Cmd {
	return m.load
}

// load builds the container, emits it as wasm and instantiates the module so
// helpers can be called from the Methods tab.
func (m *interactiveModel) load() tea.Msg {
	injector := newInjector(m.ctx, m.opts, m.logger)
	defer injector.Shutdown() //nolint:errcheck

	c, err := do.Invoke[*details.Container](injector)
	if err != nil {
		return loadedMsg{err: err}
	}
	bin, err := wasmemit.Emit(c)
	if err != nil {
		return loadedMsg{err: err}
	}
	_, end, err := wasmemit.Plan(c, wasmemit.DefaultBase)
	if err != nil {
		return loadedMsg{err: err}
	}

	rt := wazero.NewRuntime(m.ctx)
	mod, err := rt.Instantiate(m.ctx, bin)
	if err != nil {
		rt.Close(m.ctx)
		return loadedMsg{err: err}
	}
	return loadedMsg{rt: rt, mod: mod, c: c, scratch: end}
}

func (m *interactiveModel) buildTables() {
	newTable := func(cols []table.Column, rows []table.Row) table.Model {
		t := table.New(
			table.WithColumns(cols),
			table.WithRows(rows),
			table.WithFocused(true),
			table.WithHeight(min(len(rows)+1, 15)),
		)
		s := table.DefaultStyles()
		s.Selected = s.Selected.Foreground(lipgloss.Color("#FAFAFA")).Background(lipgloss.Color("#7D56F4"))
		t.SetStyles(s)
		return t
	}

	var rows []table.Row
	for _, f := range m.c.Fields() {
		rows = append(rows, table.Row{f.Name(), f.Type().Name(), strconv.Itoa(f.Len()), contenthash.CID(f.Data())})
	}
	m.tables[tabFields] = newTable([]table.Column{
		{Title: "Name", Width: 40}, {Title: "Type", Width: 32}, {Title: "Len", Width: 6}, {Title: "CID", Width: 24},
	}, rows)

	rows = nil
	for _, t := range m.c.NestedTypes() {
		rows = append(rows, table.Row{t.Name(), strconv.FormatUint(uint64(t.Size()), 10)})
	}
	m.tables[tabTypes] = newTable([]table.Column{{Title: "Name", Width: 40}, {Title: "Size", Width: 10}}, rows)

	rows = nil
	for _, mb := range m.c.Methods() {
		rows = append(rows, table.Row{mb.Name, helper.Describe(mb.Body)})
	}
	m.tables[tabMethods] = newTable([]table.Column{{Title: "Name", Width: 32}, {Title: "Body", Width: 64}}, rows)
}

func (m *interactiveModel) close() {
	if m.mod != nil {
		m.mod.Close(m.ctx)
	}
	if m.rt != nil {
		m.rt.Close(m.ctx)
	}
}

func (m *interactiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.state == stateInput {
			switch msg.String() {
			case "ctrl+c":
				m.close()
				return m, tea.Quit
			case "enter":
				return m, m.callHash(m.input.Value())
			case "esc":
				m.state = stateBrowse
				return m, nil
			}
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			m.close()
			return m, tea.Quit

		case "tab":
			if m.state == stateBrowse {
				m.active = (m.active + 1) % tab(len(tabNames))
			}
			return m, nil

		case "enter":
			switch m.state {
			case stateBrowse:
				if m.active == tabMethods && m.c != nil {
					return m, m.selectMethod()
				}
			case stateShowResult:
				m.state = stateBrowse
				m.result = ""
				m.err = nil
			}
			return m, nil

		case "esc":
			if m.state == stateShowResult {
				m.state = stateBrowse
				m.result = ""
				m.err = nil
			}
			return m, nil
		}

	case loadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.rt, m.mod, m.c, m.scratch = msg.rt, msg.mod, msg.c, msg.scratch
		m.buildTables()
		return m, nil

	case callResultMsg:
		m.result = msg.result
		m.err = msg.err
		m.state = stateShowResult
		return m, nil
	}

	if m.c != nil && m.state == stateBrowse {
		var cmd tea.Cmd
		m.tables[m.active], cmd = m.tables[m.active].Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *interactiveModel) selectMethod() tea.Cmd {
	row := m.tables[tabMethods].SelectedRow()
	if row == nil {
		return nil
	}
	m.selected = row[0]

	body, _ := m.c.LookupMethod(m.selected)
	if _, ok := body.(helper.StringHash); ok {
		ti := textinput.New()
		ti.Prompt = "text: "
		ti.Placeholder = "string to hash"
		ti.Width = 40
		ti.Focus()
		m.input = ti
		m.state = stateInput
		return textinput.Blink
	}
	return m.call
}

func (m *interactiveModel) call() tea.Msg {
	fn := m.mod.ExportedFunction(m.selected)
	if fn == nil {
		return callResultMsg{err: fmt.Errorf("function %q not exported", m.selected)}
	}
	res, err := fn.Call(m.ctx)
	if err != nil {
		return callResultMsg{err: err}
	}
	body, _ := m.c.LookupMethod(m.selected)
	if _, ok := body.(helper.Const); ok {
		return callResultMsg{result: strconv.FormatInt(int64(res[0]), 10)}
	}
	return callResultMsg{result: fmt.Sprintf("offset %d", uint32(res[0]))}
}

func (m *interactiveModel) callHash(text string) tea.Cmd {
	return func() tea.Msg {
		fn := m.mod.ExportedFunction(m.selected)
		if fn == nil {
			return callResultMsg{err: fmt.Errorf("function %q not exported", m.selected)}
		}
		mem := m.mod.Memory()
		need := uint64(m.scratch) + uint64(len(text))
		if need > uint64(mem.Size()) {
			pages := (need - uint64(mem.Size()) + 65535) / 65536
			if _, ok := mem.Grow(uint32(pages)); !ok {
				return callResultMsg{err: fmt.Errorf("cannot grow memory by %d pages", pages)}
			}
		}
		if !mem.Write(m.scratch, []byte(text)) {
			return callResultMsg{err: fmt.Errorf("write %d bytes at %d out of range", len(text), m.scratch)}
		}
		res, err := fn.Call(m.ctx, api.EncodeU32(m.scratch), api.EncodeU32(uint32(len(text))))
		if err != nil {
			return callResultMsg{err: err}
		}
		got := uint32(res[0])
		return callResultMsg{result: fmt.Sprintf("0x%08X (reference 0x%08X)", got, helper.FNV1a([]byte(text)))}
	}
}

func (m *interactiveModel) View() string {
	if m.err != nil && m.state != stateShowResult {
		return errorStyle.Render(fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err))
	}
	if m.c == nil {
		return "Building container..."
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("rodata"))
	b.WriteString(" ")
	b.WriteString(m.c.Name())
	b.WriteString("  ")
	b.WriteString(m.opts.manifest)
	b.WriteString("\n\n")

	switch m.state {
	case stateBrowse:
		var tabs []string
		for i, name := range tabNames {
			if tab(i) == m.active {
				tabs = append(tabs, activeTabStyle.Render(name))
			} else {
				tabs = append(tabs, tabStyle.Render(name))
			}
		}
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
		b.WriteString("\n\n")
		b.WriteString(m.tables[m.active].View())
		b.WriteString("\n\n")
		if m.active == tabMethods {
			b.WriteString(helpStyle.Render("↑/↓ select • enter call • tab switch • q quit"))
		} else {
			b.WriteString(helpStyle.Render("↑/↓ select • tab switch • q quit"))
		}

	case stateInput:
		b.WriteString(fmt.Sprintf("Calling %s\n\n", funcStyle.Render(m.selected)))
		b.WriteString(m.input.View())
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter call • esc back"))

	case stateShowResult:
		b.WriteString(fmt.Sprintf("Result of %s:\n\n", funcStyle.Render(m.selected)))
		if m.err != nil {
			b.WriteString(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
		} else {
			b.WriteString(resultStyle.Render(m.result))
		}
		b.WriteString("\n\n")
		b.WriteString(helpStyle.Render("enter continue • q quit"))
	}

	return b.String()
}

func runInteractive(ctx context.Context, opts options, logger *zap.Logger) error {
	p := tea.NewProgram(newInteractiveModel(ctx, opts, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
