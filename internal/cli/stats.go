package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/terraincognita07/mindful/internal/services"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

type StatsCmd struct {
	Email string `arg:"" help:"Email of the account."`
}

func (cmd *StatsCmd) Run(ctx *Context) error {
	user, repos, err := ctx.findUser(cmd.Email)
	if err != nil {
		return err
	}

	statsService := services.NewStatsService(repos.Entries, repos.Habits, repos.Badges, ctx.location())
	stats := statsService.UserStats(&user)
	now := ctx.now()
	status := services.BuildSubscriptionStatus(user.Profile(), now)

	fmt.Fprintln(ctx.Out, titleStyle.Render(fmt.Sprintf("%s (%s)", user.Email, status.Tier)))
	fmt.Fprintln(ctx.Out, renderTable([]string{"Metric", "Value"}, statsRows(stats)))

	overview, err := ctx.badgeService(repos).Overview(user.ID, now)
	if err != nil {
		return err
	}
	fmt.Fprintln(ctx.Out, titleStyle.Render(fmt.Sprintf("Badges %d/%d", overview.EarnedCount, overview.TotalCount)))
	rows := make([][]string, 0, len(overview.Badges))
	for _, progress := range overview.Badges {
		state := fmt.Sprintf("%d%%", progress.Percent)
		switch {
		case progress.Earned:
			state = "earned"
		case progress.Locked:
			state = mutedStyle.Render("locked")
		}
		rows = append(rows, []string{progress.Badge.Icon + " " + progress.Badge.Name, progress.Label, state})
	}
	fmt.Fprintln(ctx.Out, renderTable([]string{"Badge", "Progress", "State"}, rows))
	return nil
}

func statsRows(stats services.UserStats) [][]string {
	bestDay := stats.BestDay
	if bestDay == "" {
		bestDay = "-"
	}
	return [][]string{
		{"Total stars", strconv.Itoa(stats.TotalStars)},
		{"Current streak", strconv.Itoa(stats.CurrentStreak)},
		{"Longest streak", strconv.Itoa(stats.LongestStreak)},
		{"Full days", strconv.Itoa(stats.TotalCompletions)},
		{"Morning intentions", strconv.Itoa(stats.TotalMorningIntentions)},
		{"Evening reflections", strconv.Itoa(stats.TotalEveningReflections)},
		{"Average rating", strconv.FormatFloat(stats.AverageRating, 'f', 1, 64)},
		{"Best day", bestDay},
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Render()
}
