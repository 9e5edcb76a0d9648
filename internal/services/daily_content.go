package services

import "time"

const (
	ThemeMoney    = "money"
	ThemeMindset  = "mindset"
	ThemeProgress = "progress"
)

type QuickAction struct {
	ID   uint   `json:"id"`
	Text string `json:"action_text"`
}

type Tip struct {
	ID           uint          `json:"id"`
	Title        string        `json:"title"`
	Content      string        `json:"content"`
	Theme        string        `json:"theme"`
	QuickActions []QuickAction `json:"quick_actions"`
}

type Quote struct {
	Text   string `json:"text"`
	Author string `json:"author"`
	Theme  string `json:"theme"`
}

type DailyContent struct {
	Date  string `json:"date"`
	Tip   Tip    `json:"tip"`
	Quote Quote  `json:"quote"`
}

var builtinTips = []Tip{
	{
		ID: 1, Title: "Know where it goes", Theme: ThemeMoney,
		Content: "Awareness comes before change. Notice every purchase today without judging it.",
		QuickActions: []QuickAction{
			{ID: 101, Text: "Write down every expense today"},
			{ID: 102, Text: "Check your account balance once"},
			{ID: 103, Text: "Sort last week's spending into needs and wants"},
		},
	},
	{
		ID: 2, Title: "Pay yourself first", Theme: ThemeMoney,
		Content: "Saving works best when it happens before spending, not after.",
		QuickActions: []QuickAction{
			{ID: 201, Text: "Set up an automatic transfer to savings"},
			{ID: 202, Text: "Move a small amount into savings right now"},
			{ID: 203, Text: "Review one subscription you could cancel"},
		},
	},
	{
		ID: 3, Title: "Reframe the question", Theme: ThemeMindset,
		Content: "Swap \"I can't afford it\" for \"How could I afford it?\" and see what ideas show up.",
		QuickActions: []QuickAction{
			{ID: 301, Text: "Write three things you're grateful for about your finances"},
			{ID: 302, Text: "Challenge one limiting belief about money"},
			{ID: 303, Text: "Spend five minutes picturing a goal already reached"},
		},
	},
	{
		ID: 4, Title: "Enough is a number", Theme: ThemeMindset,
		Content: "Decide what enough looks like for you so that progress has a finish line.",
		QuickActions: []QuickAction{
			{ID: 401, Text: "Write down what financial security means to you"},
			{ID: 402, Text: "Name one purchase that truly made you happy"},
			{ID: 403, Text: "Skip one impulse purchase today"},
		},
	},
	{
		ID: 5, Title: "Small wins compound", Theme: ThemeProgress,
		Content: "A little progress each day adds up. Celebrate the small steps as well as the big ones.",
		QuickActions: []QuickAction{
			{ID: 501, Text: "Celebrate one financial win from this week"},
			{ID: 502, Text: "Set one measurable goal for the next 30 days"},
			{ID: 503, Text: "Write down where you are now compared to where you started"},
		},
	},
}

var builtinQuotes = []Quote{
	{Text: "It's not how much money you make, but how much money you keep.", Author: "Robert Kiyosaki", Theme: ThemeMoney},
	{Text: "Whether you think you can or you think you can't, you're right.", Author: "Henry Ford", Theme: ThemeMindset},
	{Text: "The way to get started is to quit talking and begin doing.", Author: "Walt Disney", Theme: ThemeMindset},
	{Text: "Progress, not perfection.", Author: "Anonymous", Theme: ThemeProgress},
	{Text: "The secret of getting ahead is getting started.", Author: "Mark Twain", Theme: ThemeProgress},
	{Text: "Don't watch the clock; do what it does. Keep going.", Author: "Sam Levenson", Theme: ThemeProgress},
	{Text: "Success is not final, failure is not fatal: it is the courage to continue that counts.", Author: "Winston Churchill", Theme: ThemeMindset},
}

// DailyContentFor picks the tip and quote shown on a calendar day. The choice
// rotates by day so every user sees the same content on the same date.
func DailyContentFor(day time.Time) DailyContent {
	ordinal := int(civilDay(day).Unix() / int64(24*time.Hour/time.Second))
	if ordinal < 0 {
		ordinal = -ordinal
	}
	return DailyContent{
		Date:  FormatCalendarDate(day),
		Tip:   builtinTips[ordinal%len(builtinTips)],
		Quote: builtinQuotes[ordinal%len(builtinQuotes)],
	}
}

// FindQuickAction looks up a quick action among all built-in tips.
func FindQuickAction(actionID uint) (Tip, QuickAction, bool) {
	for _, tip := range builtinTips {
		for _, action := range tip.QuickActions {
			if action.ID == actionID {
				return tip, action, true
			}
		}
	}
	return Tip{}, QuickAction{}, false
}
