// Package tui provides the Bubble Tea flashcard interface.
package tui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/verte-zerg/tango/internal/corpus"
	"github.com/verte-zerg/tango/internal/face"
	"github.com/verte-zerg/tango/internal/logging"
	"github.com/verte-zerg/tango/internal/mastery"
	"github.com/verte-zerg/tango/internal/model"
	"github.com/verte-zerg/tango/internal/selector"
	"github.com/verte-zerg/tango/internal/session"
)

type stage int

const (
	stagePicker stage = iota
	stageCount
	stageCard
	stageSummary
)

// SessionRecorder stores finished sessions.
type SessionRecorder interface {
	InsertSession(ctx context.Context, stats model.SessionStats) (int64, error)
}

// Model implements the Bubble Tea flashcard UI.
type Model struct {
	config   model.Config
	tracker  *mastery.Tracker
	recorder SessionRecorder
	sel      *selector.Selector
	reshow   session.ReshowPolicy
	logger   *slog.Logger

	width  int
	height int

	stage      stage
	categories []model.Category
	cursor     int

	category   model.Category
	cards      []model.Card
	countInput textinput.Model

	sess      *session.Session
	mode      model.Mode
	startedAt time.Time
	summary   session.Summary

	errMsg  string
	warnMsg string
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#F0F0F0"))
	headlineStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#C89A3A"))
	readingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B0B0B0"))
	meaningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F0F0F0"))
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	pendingStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8C8C8C"))
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF4D4F"))
	footerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
)

// NewModel constructs the practice model. When cfg.Category is set the
// category picker is skipped, and when cfg.Mode is set too the session starts
// right away.
func NewModel(cfg model.Config, tracker *mastery.Tracker, recorder SessionRecorder, sel *selector.Selector, logger *slog.Logger) *Model {
	if logger == nil {
		logger = logging.NewNop()
	}
	reshow, err := session.ParseReshowPolicy(cfg.Reshow)
	if err != nil {
		reshow = session.ReshowOnce
	}
	input := textinput.New()
	input.Prompt = "Cards: "
	input.Placeholder = strconv.Itoa(selector.DefaultCount)
	input.CharLimit = 6
	input.Validate = func(s string) error {
		for _, r := range s {
			if r < '0' || r > '9' {
				return errors.New("digits only")
			}
		}
		return nil
	}
	if cfg.Count > 0 {
		input.SetValue(strconv.Itoa(cfg.Count))
	}

	m := &Model{
		config:     cfg,
		tracker:    tracker,
		recorder:   recorder,
		sel:        sel,
		reshow:     reshow,
		logger:     logging.NewComponentLogger(logger, "tui"),
		categories: corpus.Categories(),
		countInput: input,
	}
	if cfg.Category != "" {
		m.chooseCategory(cfg.Category)
		if cfg.Mode != "" && m.stage == stageCount {
			m.startSession(cfg.Mode)
		}
	}
	return m
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.stage {
		case stagePicker:
			return m.updatePicker(msg)
		case stageCount:
			return m.updateCount(msg)
		case stageCard:
			return m.updateCard(msg)
		case stageSummary:
			return m.updateSummary(msg)
		}
	}
	return m, nil
}

func (m *Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.categories)-1 {
			m.cursor++
		}
	case "enter":
		m.chooseCategory(m.categories[m.cursor])
		if m.stage == stageCount {
			return m, textinput.Blink
		}
	}
	return m, nil
}

func (m *Model) chooseCategory(category model.Category) {
	cards, err := corpus.LoadNonEmpty(m.config.CorpusDir, category)
	if err != nil {
		m.logger.Error("failed to load corpus",
			logging.String("category", string(category)),
			logging.Error(err))
		m.errMsg = err.Error()
		m.stage = stagePicker
		return
	}
	m.category = category
	m.cards = cards
	m.errMsg = ""
	m.stage = stageCount
	m.countInput.Focus()
}

func (m *Model) updateCount(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.backToPicker()
		return m, nil
	case "enter":
		m.startSession(model.ModeNormal)
		return m, nil
	case "a":
		m.startSession(model.ModeAll)
		return m, nil
	case "s":
		m.startSession(model.ModeSmart)
		return m, nil
	}
	var cmd tea.Cmd
	m.countInput, cmd = m.countInput.Update(msg)
	return m, cmd
}

// resolveCount validates the count field for mode. ModeAll ignores it, and
// an empty field in ModeSmart means the whole corpus.
func (m *Model) resolveCount(mode model.Mode) (int, error) {
	raw := strings.TrimSpace(m.countInput.Value())
	switch mode {
	case model.ModeAll:
		return 0, nil
	case model.ModeSmart:
		if raw == "" {
			return 0, nil
		}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(m.cards) {
		return 0, fmt.Errorf("enter a number between 1 and %d", len(m.cards))
	}
	return n, nil
}

func (m *Model) startSession(mode model.Mode) {
	n, err := m.resolveCount(mode)
	if err != nil {
		m.errMsg = err.Error()
		return
	}
	m.errMsg = ""
	m.warnMsg = ""
	m.mode = mode
	if mode == model.ModeSmart {
		m.tracker.Refresh()
	}
	picked := m.sel.Select(m.cards, mode, n, m.tracker.Ledger())
	m.sess = session.New(picked, m.tracker, m.reshow)
	m.startedAt = time.Now()
	m.stage = stageCard
	m.countInput.Blur()
	m.noteLedgerError(m.sess.Start())
	if m.sess.Done() {
		m.finishSession()
	}
}

func (m *Model) updateCard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.backToPicker()
	case " ", "space":
		m.noteLedgerError(m.sess.Toggle())
	case "y":
		m.answer(true)
	case "n":
		m.answer(false)
	case "left", "p":
		if err := m.sess.Prev(); !errors.Is(err, session.ErrFirstCard) {
			m.noteLedgerError(err)
		}
	}
	return m, nil
}

func (m *Model) answer(knew bool) {
	err := m.sess.Answer(knew)
	if errors.Is(err, session.ErrNotRevealed) {
		return
	}
	m.noteLedgerError(err)
	if m.sess.Done() {
		m.finishSession()
	}
}

func (m *Model) updateSummary(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "enter", "esc":
		m.backToPicker()
	}
	return m, nil
}

func (m *Model) backToPicker() {
	m.stage = stagePicker
	m.sess = nil
	m.errMsg = ""
	m.countInput.Blur()
}

func (m *Model) noteLedgerError(err error) {
	if err == nil {
		return
	}
	m.logger.Warn("ledger update failed", logging.Error(err))
	var perr *mastery.PersistenceError
	if errors.As(err, &perr) {
		m.warnMsg = "progress not saved: " + perr.Err.Error()
		return
	}
	m.warnMsg = err.Error()
}

func (m *Model) finishSession() {
	m.summary = m.sess.Summary()
	m.stage = stageSummary
	if m.summary.CardsSeen == 0 || m.recorder == nil {
		return
	}
	stats := model.SessionStats{
		UUID:      uuid.NewString(),
		StartedAt: m.startedAt,
		EndedAt:   time.Now(),
		Category:  m.category,
		Mode:      m.mode,
		Cards:     m.summary.CardsSeen,
		Correct:   m.summary.Correct,
	}
	if _, err := m.recorder.InsertSession(context.Background(), stats); err != nil {
		m.logger.Error("failed to save session", logging.Error(err))
		m.warnMsg = "session history not saved"
		return
	}
	m.logger.Info("session finished",
		logging.String("session_uuid", stats.UUID),
		logging.String("category", string(stats.Category)),
		logging.String("mode", string(stats.Mode)),
		logging.Int("cards", stats.Cards),
		logging.Int("correct", stats.Correct))
}

// View implements tea.Model.
func (m *Model) View() string {
	var content string
	switch m.stage {
	case stagePicker:
		content = m.viewPicker()
	case stageCount:
		content = m.viewCount()
	case stageCard:
		content = m.viewCard()
	case stageSummary:
		content = m.viewSummary()
	}
	if m.width == 0 || m.height == 0 {
		return content
	}
	footer := m.renderFooter()
	if footer == "" || m.height < 3 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, content)
	}
	body := lipgloss.Place(m.width, m.height-1, lipgloss.Center, lipgloss.Center, content)
	footerLine := lipgloss.Place(m.width, 1, lipgloss.Center, lipgloss.Center, footer)
	return body + "\n" + footerLine
}

func (m *Model) viewPicker() string {
	lines := []string{titleStyle.Render("Choose a category"), ""}
	for i, category := range m.categories {
		label := corpus.Label(category)
		if i == m.cursor {
			lines = append(lines, selectedStyle.Render("> "+label))
			continue
		}
		lines = append(lines, pendingStyle.Render("  "+label))
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewCount() string {
	lines := []string{
		titleStyle.Render(fmt.Sprintf("%s · %d cards", corpus.Label(m.category), len(m.cards))),
		"",
		m.countInput.View(),
		"",
		pendingStyle.Render("enter: random  a: all  s: weakest first  esc: back"),
	}
	if m.errMsg != "" {
		lines = append(lines, "", errorStyle.Render(m.errMsg))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewCard() string {
	card, ok := m.sess.Current()
	if !ok {
		return ""
	}
	headline, reading := face.Front(card)
	lines := []string{headlineStyle.Render(headline)}
	if reading != "" {
		lines = append(lines, readingStyle.Render(reading))
	}
	lines = append(lines, "")
	if m.sess.State() == session.Revealed {
		for _, line := range face.Back(card) {
			for _, wrapped := range wrapText(line, m.contentWidth()) {
				lines = append(lines, meaningStyle.Render(wrapped))
			}
		}
		lines = append(lines, "", pendingStyle.Render("y: knew it  n: didn't know  space: hide"))
	} else {
		lines = append(lines, pendingStyle.Render("space: show meaning"))
	}
	return strings.Join(lines, "\n")
}

func (m *Model) viewSummary() string {
	sum := m.summary
	return strings.Join([]string{
		titleStyle.Render("Session complete"),
		"",
		fmt.Sprintf("Reviewed %d cards, %d correct (%.0f%%)", sum.CardsSeen, sum.Correct, sum.AccuracyPercent),
		"",
		pendingStyle.Render("enter: new session  q: quit"),
	}, "\n")
}

func (m *Model) contentWidth() int {
	if m.width == 0 {
		return 0
	}
	return max(1, int(float64(m.width)*0.70))
}

func (m *Model) renderFooter() string {
	segments := []string{}
	if m.stage == stageCard && m.sess != nil && m.sess.Len() > 0 {
		segments = append(segments, fmt.Sprintf("Card %d/%d", m.sess.Index()+1, m.sess.Len()))
		card, _ := m.sess.Current()
		if card.Tracked() {
			rec := m.tracker.Ledger().Get(card.ID)
			segments = append(segments, fmt.Sprintf("Seen %d · Known %d", rec.Shown, rec.Correct))
		}
		segments = append(segments, pendingStyle.Render("← p: back  esc: menu"))
	}
	if m.warnMsg != "" {
		segments = append(segments, errorStyle.Render(m.warnMsg))
	}
	if len(segments) == 0 {
		return ""
	}
	return footerStyle.Render(strings.Join(segments, "  "))
}
