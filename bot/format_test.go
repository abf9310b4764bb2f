package bot

import (
	"strings"
	"testing"

	"vitya-bot/game"
	"vitya-bot/leaderboard"
	"vitya-bot/model"
)

func TestFormatCooldown(t *testing.T) {
	cases := map[int64]string{
		85400: "23ч 43м",
		86400: "24ч 0м",
		59:    "0ч 0м",
		0:     "0ч 0м",
		-5:    "0ч 0м",
	}
	for in, want := range cases {
		if got := formatCooldown(in); got != want {
			t.Fatalf("formatCooldown(%d) = %q, want %q", in, got, want)
		}
	}
}

func TestExtractCommand(t *testing.T) {
	cases := []struct {
		text string
		want string
		ok   bool
	}{
		{"/Удар", "удар", true},
		{"/HIT@VityaBot", "hit", true},
		{"  /топ@other_bot please", "топ", true},
		{"/общий", "общий", true},
		{"удар", "", false},
		{"/", "", false},
		{"/@bot", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, ok := extractCommand(tc.text)
		if got != tc.want || ok != tc.ok {
			t.Fatalf("extractCommand(%q) = %q, %v; want %q, %v", tc.text, got, ok, tc.want, tc.ok)
		}
	}
}

func TestAliasSets(t *testing.T) {
	for _, cmd := range []string{"beat", "hit", "удар", "бей"} {
		if !beatAliases[cmd] {
			t.Fatalf("%q should be a hit alias", cmd)
		}
	}
	for _, cmd := range []string{"top", "топ", "лидерборд"} {
		if !topAliases[cmd] {
			t.Fatalf("%q should be a top alias", cmd)
		}
	}
	for _, cmd := range []string{"global", "all", "общий"} {
		if !globalAliases[cmd] {
			t.Fatalf("%q should be a global alias", cmd)
		}
	}
	if beatAliases["top"] || topAliases["hit"] {
		t.Fatal("alias sets overlap")
	}
}

func TestEventPayload(t *testing.T) {
	id, ok := parseEventPayload(eventPayload(42))
	if !ok || id != 42 {
		t.Fatalf("round trip = %d, %v", id, ok)
	}
	for _, bad := range []string{"", "event:", "event:x", "evt:3", "event:-1"} {
		if _, ok := parseEventPayload(bad); ok {
			t.Fatalf("parseEventPayload(%q) accepted", bad)
		}
	}
}

func TestEscapeHTML(t *testing.T) {
	if got := escapeHTML("<b>Tom & Jerry</b>"); got != "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt;" {
		t.Fatalf("escapeHTML = %q", got)
	}
}

func TestFormatLeaderboard(t *testing.T) {
	empty := formatLeaderboard("Топ", nil)
	if !strings.Contains(empty, "Пока никого нет.") {
		t.Fatalf("empty board = %q", empty)
	}

	text := formatLeaderboard("Топ", []leaderboard.Entry{
		{Rank: 1, UserID: 1, Name: "@alice", Power: 30},
		{Rank: 2, UserID: 2, Name: "<bob>", Power: 5},
	})
	lines := strings.Split(text, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines: %q", len(lines), text)
	}
	if lines[1] != "1. @alice: 30" || lines[2] != "2. &lt;bob&gt;: 5" {
		t.Fatalf("rows = %q", lines[1:])
	}
}

func TestFormatBoosts(t *testing.T) {
	if got := formatBoosts(game.ActiveBoosts(2, 0.5)); got != "мощь x2, кулдаун x0.5" {
		t.Fatalf("formatBoosts = %q", got)
	}
	if got := formatBoosts(game.ActiveBoosts(1, 1)); got != "" {
		t.Fatalf("no boosts = %q", got)
	}
}

func TestRespectTextShowsBalanceAndBoosts(t *testing.T) {
	text := respectText(&model.User{RespectPoints: 7, PendingPowerMultiplier: 2, PendingCooldownMultiplier: 1})
	if !strings.Contains(text, "<b>7</b>") || !strings.Contains(text, "мощь x2") {
		t.Fatalf("respectText = %q", text)
	}
	text = respectText(&model.User{PendingPowerMultiplier: 1, PendingCooldownMultiplier: 1})
	if !strings.Contains(text, "Активные бусты: нет") {
		t.Fatalf("respectText = %q", text)
	}
}

func TestShopTextListsCosts(t *testing.T) {
	text := shopText(game.DefaultBoosts(10, 15))
	if !strings.Contains(text, "стоимость 10") || !strings.Contains(text, "стоимость 15") {
		t.Fatalf("shopText = %q", text)
	}
}
