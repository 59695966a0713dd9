package cli

import (
	"errors"
	"flag"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"clip-archiver/internal/settings"
	"clip-archiver/internal/urls"
)

type manageFieldKind int

const (
	manageFieldString manageFieldKind = iota
	manageFieldBool
	manageFieldSelect
)

type manageFormField struct {
	Key     string
	Label   string
	Help    string
	Kind    manageFieldKind
	Value   string
	Options []string
}

type manageForm struct {
	Title  string
	Fields []manageFormField
	Index  int
	Input  textinput.Model
	Error  string
	Saving bool
}

type manageModel struct {
	configPath string
	width      int
	height     int
	form       *manageForm

	statusMessage string
	fatalErr      error
}

type manageLoadedMsg struct {
	cfg settings.Settings
	err error
}

type manageSaveMsg struct {
	message string
	err     error
}

var (
	manageTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	manageMutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	manageErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203")).Bold(true)
	manageOKStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	managePanelStyle = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

func runManage(args []string) error {
	fs := flag.NewFlagSet("manage", flag.ContinueOnError)
	config := fs.String("config", settings.DefaultConfigPath, "settings file path")
	fs.SetOutput(flag.CommandLine.Output())
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !stdinIsTTY() {
		return errors.New("manage requires an interactive terminal (TTY)")
	}

	m := manageModel{configPath: strings.TrimSpace(*config)}
	p := tea.NewProgram(m, tea.WithAltScreen())
	finalModel, err := p.Run()
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "tty") {
			return errors.New("manage requires an interactive terminal (TTY)")
		}
		return err
	}
	if fm, ok := finalModel.(manageModel); ok {
		return fm.fatalErr
	}
	return nil
}

func (m manageModel) Init() tea.Cmd {
	return loadSettingsCmd(m.configPath)
}

func loadSettingsCmd(configPath string) tea.Cmd {
	return func() tea.Msg {
		cfg, err := settings.Read(configPath)
		if err != nil {
			return manageLoadedMsg{err: err}
		}
		return manageLoadedMsg{cfg: cfg}
	}
}

func saveSettingsCmd(configPath string, cfg settings.Settings) tea.Cmd {
	return func() tea.Msg {
		res, err := settings.Update(settings.UpdateOptions{ConfigPath: configPath, Settings: cfg})
		if err != nil {
			return manageSaveMsg{err: err}
		}
		return manageSaveMsg{message: "settings saved to " + res.ConfigPath}
	}
}

func (m manageModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if m.form != nil {
			m.form.Input.Width = clampInt(m.width-8, 20, 120)
		}
		return m, nil
	case manageLoadedMsg:
		if msg.err != nil {
			m.fatalErr = msg.err
			return m, tea.Quit
		}
		m.form = newSettingsForm(msg.cfg, m.width)
		return m, nil
	case manageSaveMsg:
		if m.form != nil {
			m.form.Saving = false
		}
		if msg.err != nil {
			if m.form != nil {
				m.form.Error = msg.err.Error()
			}
			return m, nil
		}
		m.statusMessage = msg.message
		return m, tea.Quit
	case tea.KeyMsg:
		return m.updateForm(msg)
	}
	return m, nil
}

func (m manageModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.form == nil {
		if msg.String() == "ctrl+c" || msg.String() == "q" || msg.String() == "esc" {
			return m, tea.Quit
		}
		return m, nil
	}
	if m.form.Saving {
		return m, nil
	}

	key := strings.ToLower(msg.String())
	switch key {
	case "ctrl+c", "esc":
		m.statusMessage = "cancelled"
		return m, tea.Quit
	case "up", "shift+tab":
		m.form.commitInput()
		if m.form.Index > 0 {
			m.form.Index--
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case "down", "tab":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 {
			m.form.Index++
		}
		m.form.loadFieldIntoInput()
		return m, nil
	case " ", "space", "left", "right":
		switch m.form.currentField().Kind {
		case manageFieldBool:
			m.form.toggleBoolField()
			return m, nil
		case manageFieldSelect:
			if key == "left" {
				m.form.prevSelectOption()
			} else {
				m.form.nextSelectOption()
			}
			return m, nil
		}
	case "y":
		if m.form.currentField().Kind == manageFieldBool {
			m.form.setBoolField(true)
			return m, nil
		}
	case "n":
		if m.form.currentField().Kind == manageFieldBool {
			m.form.setBoolField(false)
			return m, nil
		}
	case "enter", "ctrl+s":
		m.form.commitInput()
		if m.form.Index < len(m.form.Fields)-1 && key != "ctrl+s" {
			m.form.Index++
			m.form.loadFieldIntoInput()
			return m, nil
		}
		cfg, err := m.form.toSettings()
		if err != nil {
			m.form.Error = err.Error()
			return m, nil
		}
		m.form.Error = ""
		m.form.Saving = true
		return m, saveSettingsCmd(m.configPath, cfg)
	}

	kind := m.form.currentField().Kind
	if kind == manageFieldBool || kind == manageFieldSelect {
		return m, nil
	}
	var cmd tea.Cmd
	m.form.Input, cmd = m.form.Input.Update(msg)
	m.form.Fields[m.form.Index].Value = m.form.Input.Value()
	return m, cmd
}

func (m manageModel) View() string {
	if m.form == nil {
		if m.statusMessage != "" {
			return manageOKStyle.Render(m.statusMessage) + "\n"
		}
		return manageMutedStyle.Render("loading settings...") + "\n"
	}

	header := manageTitleStyle.Render(m.form.Title)
	hints := manageMutedStyle.Render("tab/up/down: move | left/right/space: toggle | y/n: set | enter: next/save | ctrl+s: save | esc: cancel")

	lines := make([]string, 0, len(m.form.Fields))
	for i, f := range m.form.Fields {
		prefix := "  "
		if i == m.form.Index {
			prefix = "> "
		}
		display := strings.TrimSpace(f.Value)
		if f.Kind == manageFieldBool {
			v, _ := parseYN(display)
			display = yesNo(v)
		}
		if display == "" {
			display = manageMutedStyle.Render("(empty)")
		}
		if f.Kind == manageFieldSelect {
			display = "[" + display + "]"
		}
		line := fmt.Sprintf("%s%s: %s", prefix, f.Label, display)
		lines = append(lines, truncateRunes(line, maxInt(m.width-6, 20)))
	}

	curr := m.form.currentField()
	inputLabel := fmt.Sprintf("\n%s\n", curr.Label)
	inputHelp := ""
	if strings.TrimSpace(curr.Help) != "" {
		inputHelp = manageMutedStyle.Render(curr.Help) + "\n"
	}
	status := ""
	if m.form.Saving {
		status = manageMutedStyle.Render("\nSaving...")
	}
	if strings.TrimSpace(m.form.Error) != "" {
		status = "\n" + manageErrorStyle.Render(m.form.Error)
	}

	panel := managePanelStyle.Width(maxInt(m.width, 40)).Render(strings.Join(lines, "\n") + inputLabel + inputHelp + m.form.Input.View() + status)
	return lipgloss.JoinVertical(lipgloss.Left, header, hints, panel)
}

func newSettingsForm(cfg settings.Settings, width int) *manageForm {
	f := &manageForm{
		Title: "Download Settings",
		Fields: []manageFormField{
			{Key: "output_dir", Label: "Output Dir", Help: "Where downloads and the metadata ledger live", Kind: manageFieldString, Value: cfg.OutputDir},
			{Key: "platform", Label: "Platform", Help: "Default platform for URL validation", Kind: manageFieldSelect, Value: cfg.Platform, Options: []string{urls.PlatformTikTok, urls.PlatformYouTube, urls.PlatformInstagram, urls.PlatformTwitter}},
			{Key: "quality", Label: "Quality", Help: "best, 1080p, 720p, or audio", Kind: manageFieldSelect, Value: cfg.Quality, Options: []string{"best", "1080p", "720p", "audio"}},
			{Key: "base_name", Label: "Base Name", Help: "Files become <base>__<n>.<ext>; empty keeps titles", Kind: manageFieldString, Value: cfg.BaseName},
			{Key: "export_metadata", Label: "Export Metadata", Help: "Record each download in the xlsx ledger", Kind: manageFieldBool, Value: boolToYN(cfg.ExportMetadataEnabled())},
			{Key: "extract_audio", Label: "Extract Audio", Help: "Audio-only downloads", Kind: manageFieldBool, Value: boolToYN(cfg.ExtractAudio)},
			{Key: "write_sidecars", Label: "Write Sidecars", Help: "Write .info.json/thumbnail/description next to media", Kind: manageFieldBool, Value: boolToYN(cfg.WriteSidecars)},
		},
	}

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 2048
	input.Width = clampInt(width-8, 20, 120)
	f.Input = input
	f.loadFieldIntoInput()
	f.Input.Focus()
	return f
}

func (f *manageForm) toSettings() (settings.Settings, error) {
	if f == nil {
		return settings.Settings{}, errors.New("internal form error")
	}
	vals := make(map[string]string, len(f.Fields))
	for _, field := range f.Fields {
		v := strings.TrimSpace(field.Value)
		switch field.Kind {
		case manageFieldBool:
			if _, ok := parseYN(v); !ok {
				return settings.Settings{}, fmt.Errorf("%s must be y or n", strings.ToLower(field.Label))
			}
		case manageFieldSelect:
			matched := false
			for _, opt := range field.Options {
				if strings.EqualFold(opt, v) {
					v = opt
					matched = true
					break
				}
			}
			if !matched {
				return settings.Settings{}, fmt.Errorf("%s has invalid value", strings.ToLower(field.Label))
			}
		}
		vals[field.Key] = v
	}

	exportMetadata, _ := parseYN(vals["export_metadata"])
	extractAudio, _ := parseYN(vals["extract_audio"])
	writeSidecars, _ := parseYN(vals["write_sidecars"])
	cfg := settings.Settings{
		OutputDir:    vals["output_dir"],
		Platform:     vals["platform"],
		Quality:      vals["quality"],
		BaseName:     vals["base_name"],
		ExtractAudio: extractAudio,
	}
	cfg.WriteSidecars = writeSidecars
	b := exportMetadata
	cfg.ExportMetadata = &b
	return cfg, nil
}

func (f *manageForm) currentField() manageFormField {
	if len(f.Fields) == 0 {
		return manageFormField{}
	}
	if f.Index < 0 {
		f.Index = 0
	}
	if f.Index >= len(f.Fields) {
		f.Index = len(f.Fields) - 1
	}
	return f.Fields[f.Index]
}

func (f *manageForm) commitInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Fields[f.Index].Value = strings.TrimSpace(f.Input.Value())
}

func (f *manageForm) loadFieldIntoInput() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	f.Input.SetValue(f.Fields[f.Index].Value)
	f.Input.CursorEnd()
}

func (f *manageForm) toggleBoolField() {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldBool {
		return
	}
	v, ok := parseYN(curr.Value)
	if !ok {
		v = false
	}
	curr.Value = boolToYN(!v)
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *manageForm) setBoolField(v bool) {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldBool {
		return
	}
	curr.Value = boolToYN(v)
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}

func (f *manageForm) nextSelectOption() {
	f.cycleSelectOption(1)
}

func (f *manageForm) prevSelectOption() {
	f.cycleSelectOption(-1)
}

func (f *manageForm) cycleSelectOption(step int) {
	if f == nil || len(f.Fields) == 0 {
		return
	}
	curr := f.Fields[f.Index]
	if curr.Kind != manageFieldSelect || len(curr.Options) == 0 {
		return
	}
	current := strings.TrimSpace(curr.Value)
	pos := 0
	for i, opt := range curr.Options {
		if strings.EqualFold(opt, current) {
			pos = i
			break
		}
	}
	pos = (pos + step + len(curr.Options)) % len(curr.Options)
	curr.Value = curr.Options[pos]
	f.Fields[f.Index] = curr
	f.loadFieldIntoInput()
}
