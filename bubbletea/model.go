package bubbletea

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"voxd"
)

// line is one rendered transcript entry.
type line struct {
	speaker string
	text    string
	rt      voxd.ResponseType
	open    bool // segment still streaming
}

// Model is the console's Bubble Tea model.
type Model struct {
	ctrl   Controller
	feed   *Feed
	styles Styles

	input    textinput.Model
	viewport viewport.Model
	ready    bool

	lines      []line
	openSegID  string
	busy       bool
	statusNote string
}

// New creates the console model. The Feed must be the same instance wired
// into the platform as sink and notifier.
func New(ctrl Controller, feed *Feed) Model {
	ti := textinput.New()
	ti.Placeholder = "say something..."
	ti.Focus()
	ti.CharLimit = 512

	return Model{
		ctrl:   ctrl,
		feed:   feed,
		styles: DefaultStyles(),
		input:  ti,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		headerHeight := 1
		footerHeight := 3
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-headerHeight-footerHeight)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - headerHeight - footerHeight
		}
		m.refresh()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit
		case "enter":
			text := strings.TrimSpace(m.input.Value())
			if text == "" || m.busy {
				return m, nil
			}
			m.input.Reset()
			m.busy = true
			m.lines = append(m.lines, line{speaker: "you", text: text})
			m.refresh()
			return m, turnCmd(m.ctrl, text)
		case "ctrl+y":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, confirmCmd(m.ctrl)
		case "ctrl+n":
			if m.busy {
				return m, nil
			}
			m.busy = true
			return m, declineCmd(m.ctrl)
		}

	case SegmentChunkMsg:
		m.appendChunk(msg.Segment, msg.Chunk)
		m.refresh()
		return m, nil

	case SegmentClosedMsg:
		if m.openSegID == msg.Segment.ID {
			m.openSegID = ""
			for i := range m.lines {
				if m.lines[i].open {
					m.lines[i].open = false
				}
			}
		}
		return m, nil

	case NotificationMsg:
		m.statusNote = notificationText(msg.Notification)
		return m, nil

	case TurnDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.lines = append(m.lines, line{speaker: "voxd", text: msg.Err.Error(), rt: voxd.ResponseError})
			m.refresh()
		}
		return m, nil

	case SignalDoneMsg:
		m.busy = false
		if msg.Err != nil {
			m.lines = append(m.lines, line{speaker: "voxd", text: msg.Err.Error(), rt: voxd.ResponseError})
		} else if msg.Response.Text != "" {
			m.lines = append(m.lines, line{speaker: "voxd", text: msg.Response.Text, rt: voxd.ResponseTask})
		}
		m.refresh()
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	cmds = append(cmds, cmd)
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "starting..."
	}
	return m.statusLine() + "\n" + m.viewport.View() + "\n\n" + m.input.View()
}

func (m *Model) appendChunk(seg voxd.Segment, chunk string) {
	if m.openSegID == seg.ID {
		for i := len(m.lines) - 1; i >= 0; i-- {
			if m.lines[i].open {
				m.lines[i].text += chunk
				return
			}
		}
	}
	m.openSegID = seg.ID
	m.lines = append(m.lines, line{speaker: "voxd", text: chunk, rt: seg.Type, open: true})
}

func (m *Model) refresh() {
	if !m.ready {
		return
	}
	var b strings.Builder
	for _, l := range m.lines {
		if l.speaker == "you" {
			b.WriteString(m.styles.User.Render("you: " + l.text))
		} else {
			b.WriteString(m.styles.forResponse(l.rt).Render("voxd: " + l.text))
		}
		b.WriteByte('\n')
	}
	m.viewport.SetContent(b.String())
	m.viewport.GotoBottom()
}

func (m Model) statusLine() string {
	session := m.ctrl.Session()
	status := "no session"
	if session != nil {
		status = fmt.Sprintf("%s  %s  %s", session.ID, session.Settings.Model, session.Settings.Mode)
	}
	if m.busy {
		status += "  ..."
	}
	if m.statusNote != "" {
		status += "  [" + m.statusNote + "]"
	}
	return m.styles.Status.Render(status)
}

func notificationText(n voxd.Notification) string {
	switch v := n.(type) {
	case voxd.SessionWarning:
		return fmt.Sprintf("session ends in %ds", v.RemainingSeconds)
	case voxd.SessionTimeout:
		return "session timed out"
	case voxd.SessionReady:
		return "session ready"
	default:
		return n.Type()
	}
}
