package tui

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/NimbleMarkets/ntcharts/barchart"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sadopc/pomoplan/internal/store"
)

const historyDays = 14

type historyModel struct {
	store  *store.Store
	width  int
	height int

	sessions []store.Session
	offset   int // 14-day blocks back from today (0 = current)

	chart barchart.Model
}

func newHistoryModel(s *store.Store) historyModel {
	return historyModel{
		store: s,
		chart: barchart.New(60, 12),
	}
}

func (h *historyModel) setSize(w, ht int) {
	h.width = w
	h.height = ht
}

func (h historyModel) refresh() tea.Cmd {
	return func() tea.Msg {
		sessions, err := h.store.ListSessions()
		if err != nil {
			return statusMsg{text: err.Error(), isError: true}
		}
		return sessionsDataMsg{sessions: sessions}
	}
}

func (h historyModel) dateRange() (time.Time, time.Time) {
	now := time.Now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	end := today.AddDate(0, 0, 1-historyDays*h.offset)
	start := end.AddDate(0, 0, -historyDays)
	return start, end
}

func (h historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	switch msg := msg.(type) {
	case sessionsDataMsg:
		h.sessions = msg.sessions
		h.buildChart()
		return h, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Left):
			h.offset++
			h.buildChart()
			return h, nil
		case key.Matches(msg, keys.Right):
			if h.offset > 0 {
				h.offset--
				h.buildChart()
			}
			return h, nil
		}
	}
	return h, nil
}

func (h *historyModel) buildChart() {
	chartWidth := h.width - 8
	if chartWidth < 20 {
		chartWidth = 20
	}
	chartHeight := 12
	if h.height > 30 {
		chartHeight = 16
	}

	h.chart = barchart.New(chartWidth, chartHeight)

	from, to := h.dateRange()
	counts := h.dailyCounts(from, to)

	var bars []barchart.BarData
	for d := from; d.Before(to); d = d.AddDate(0, 0, 1) {
		dateStr := d.Format("2006-01-02")
		label := d.Format("02")

		value := float64(counts[dateStr])
		style := lipgloss.NewStyle().Foreground(colorPrimary)
		if value == 0 {
			style = lipgloss.NewStyle().Foreground(colorSubtle)
		}

		bars = append(bars, barchart.BarData{
			Label: label,
			Values: []barchart.BarValue{
				{Name: dateStr, Value: value, Style: style},
			},
		})
	}

	h.chart.PushAll(bars)
	h.chart.Draw()
}

// dailyCounts tallies qualifying sessions per calendar date inside the
// range.
func (h historyModel) dailyCounts(from, to time.Time) map[string]int {
	counts := make(map[string]int)
	for _, s := range h.sessions {
		if !s.Qualifying() || s.StartedAt.IsZero() {
			continue
		}
		if s.StartedAt.Before(from) || !s.StartedAt.Before(to) {
			continue
		}
		counts[s.StartedAt.Format("2006-01-02")]++
	}
	return counts
}

func (h historyModel) view() string {
	w := h.width - 4

	from, to := h.dateRange()
	dateLabel := mutedStyle.Render(fmt.Sprintf("%s — %s",
		from.Format("Jan 02"), to.Add(-24*time.Hour).Format("Jan 02, 2006")))

	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render("History"), "  ", dateLabel,
	)

	chartView := h.chart.View()
	tableView := h.renderSummary(from, to)
	nav := mutedStyle.Render("  ←/→: navigate")

	return panelStyle.Width(w).Render(
		lipgloss.JoinVertical(lipgloss.Left,
			header, "", chartView, "", tableView, "", nav,
		),
	)
}

func (h historyModel) renderSummary(from, to time.Time) string {
	total := 0
	minutes := 0
	byTask := make(map[string]int)
	for _, s := range h.sessions {
		if !s.Qualifying() || s.StartedAt.Before(from) || !s.StartedAt.Before(to) {
			continue
		}
		total++
		minutes += s.Duration
		title := "(no task)"
		if s.TaskTitle != nil {
			title = *s.TaskTitle
		}
		byTask[title]++
	}

	if total == 0 {
		return mutedStyle.Render("  No completed pomodoros in this period")
	}

	titles := make([]string, 0, len(byTask))
	for title := range byTask {
		titles = append(titles, title)
	}
	sort.Strings(titles)

	ruleWidth := h.width - 10
	if ruleWidth < 20 {
		ruleWidth = 20
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("  %s %s  %s %s",
		mutedStyle.Render("Completed:"), highlightStyle.Render(fmt.Sprintf("%d pomodoros", total)),
		mutedStyle.Render("Focus time:"), highlightStyle.Render(fmt.Sprintf("%dh %02dm", minutes/60, minutes%60)),
	))
	rows = append(rows, mutedStyle.Render("  "+strings.Repeat("─", min(ruleWidth, 54))))

	for _, title := range titles {
		rows = append(rows, fmt.Sprintf("  %-36s %3d", truncate(title, 36), byTask[title]))
	}

	return strings.Join(rows, "\n")
}
