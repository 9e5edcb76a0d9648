package cli

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/terraincognita07/mindful/internal/models"
	"github.com/terraincognita07/mindful/internal/services"
)

func newTestContext(t *testing.T) (*Context, *bytes.Buffer) {
	t.Helper()

	out := &bytes.Buffer{}
	ctx := NewContext(filepath.Join(t.TempDir(), "mindful-cli-test.db"), time.UTC)
	ctx.Out = out
	ctx.Now = func() time.Time { return time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC) }
	t.Cleanup(func() {
		_ = ctx.Close()
	})
	return ctx, out
}

func seedUser(t *testing.T, ctx *Context, email string) models.User {
	t.Helper()

	repos, err := ctx.Repositories()
	if err != nil {
		t.Fatalf("open repositories: %v", err)
	}
	user, err := services.NewAuthService(repos.Users, 0).Register(email, "StrongPass1", "", ctx.now())
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return user
}

func TestSetTierGrantsPremiumAndAwardsBadge(t *testing.T) {
	ctx, out := newTestContext(t)
	user := seedUser(t, ctx, "ada@example.com")

	if err := (&SetTierCmd{Email: user.Email, Tier: models.TierPremium, Days: 30}).Run(ctx); err != nil {
		t.Fatalf("set tier: %v", err)
	}

	repos, _ := ctx.Repositories()
	updated, err := repos.Users.FindByID(user.ID)
	if err != nil {
		t.Fatalf("reload user: %v", err)
	}
	if updated.SubscriptionTier != models.TierPremium || updated.SubscriptionEndsAt == nil {
		t.Fatalf("expected premium with end date, got %#v", updated)
	}
	if !strings.Contains(out.String(), "Premium Pioneer") {
		t.Fatalf("expected premium badge in output, got %q", out.String())
	}

	if err := (&SetTierCmd{Email: user.Email, Tier: "gold"}).Run(ctx); err == nil {
		t.Fatal("expected unknown tier to fail")
	}
}

func TestStatsRendersTables(t *testing.T) {
	ctx, out := newTestContext(t)
	user := seedUser(t, ctx, "ada@example.com")

	if err := (&StatsCmd{Email: user.Email}).Run(ctx); err != nil {
		t.Fatalf("stats: %v", err)
	}
	for _, expected := range []string{"Total stars", "Current streak", "First Steps"} {
		if !strings.Contains(out.String(), expected) {
			t.Fatalf("expected %q in stats output, got %q", expected, out.String())
		}
	}
}

func TestEvaluateBadgesAcrossAccounts(t *testing.T) {
	ctx, out := newTestContext(t)
	seedUser(t, ctx, "ada@example.com")
	seedUser(t, ctx, "bob@example.com")

	if err := (&EvaluateBadgesCmd{}).Run(ctx); err != nil {
		t.Fatalf("evaluate badges: %v", err)
	}
	if !strings.Contains(out.String(), "Evaluated 2 account(s), 0 new badge(s).") {
		t.Fatalf("unexpected evaluation summary %q", out.String())
	}
}

func TestAssignCoachAndReply(t *testing.T) {
	ctx, out := newTestContext(t)
	user := seedUser(t, ctx, "ada@example.com")

	if err := (&CoachReplyCmd{Email: user.Email, Message: "Hello"}).Run(ctx); err == nil {
		t.Fatal("expected reply without assignment to fail")
	}
	if err := (&AssignCoachCmd{Email: user.Email, Coach: "Maya", Limit: 3}).Run(ctx); err != nil {
		t.Fatalf("assign coach: %v", err)
	}
	if err := (&CoachReplyCmd{Email: user.Email, Message: "Start with a weekly budget."}).Run(ctx); err != nil {
		t.Fatalf("coach reply: %v", err)
	}

	repos, _ := ctx.Repositories()
	messages, err := repos.Coaching.ListMessages(user.ID)
	if err != nil {
		t.Fatalf("list messages: %v", err)
	}
	if len(messages) != 1 || messages[0].SenderType != models.SenderCoach {
		t.Fatalf("expected one coach message, got %#v", messages)
	}
	if !strings.Contains(out.String(), "Maya assigned to ada@example.com (0/3 messages used)") {
		t.Fatalf("unexpected assignment output %q", out.String())
	}
}

func TestNotifyReportsDispatchPass(t *testing.T) {
	ctx, out := newTestContext(t)
	seedUser(t, ctx, "ada@example.com")

	if err := (&NotifyCmd{Language: "en"}).Run(ctx); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if !strings.Contains(out.String(), "Reminders due: 0, sent: 0, failed: 0") {
		t.Fatalf("unexpected notify output %q", out.String())
	}
}
