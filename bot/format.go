package bot

import (
	"fmt"
	"strconv"
	"strings"

	"vitya-bot/game"
	"vitya-bot/leaderboard"
	"vitya-bot/model"
)

var (
	beatAliases   = aliasSet("beat", "hit", "удар", "бей", "ударь", "ударить")
	topAliases    = aliasSet("top", "leaderboard", "топ", "лидерборд")
	globalAliases = aliasSet("global", "all", "общий", "общийтоп", "globaltop")
)

func aliasSet(names ...string) map[string]bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}

// extractCommand returns the lowercased command of a "/command[@bot] args"
// message without the @suffix.
func extractCommand(text string) (string, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", false
	}
	fields := strings.Fields(text[1:])
	if len(fields) == 0 {
		return "", false
	}
	command := fields[0]
	if i := strings.Index(command, "@"); i >= 0 {
		command = command[:i]
	}
	if command == "" {
		return "", false
	}
	return strings.ToLower(command), true
}

const eventPayloadPrefix = "event:"

func eventPayload(eventID uint) string {
	return eventPayloadPrefix + strconv.FormatUint(uint64(eventID), 10)
}

func parseEventPayload(data string) (uint, bool) {
	if !strings.HasPrefix(data, eventPayloadPrefix) {
		return 0, false
	}
	id, err := strconv.ParseUint(strings.TrimPrefix(data, eventPayloadPrefix), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func escapeHTML(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '<':
			b.WriteString("&lt;")
		case '>':
			b.WriteString("&gt;")
		case '&':
			b.WriteString("&amp;")
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

func formatCooldown(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%dч %dм", seconds/3600, (seconds%3600)/60)
}

func formatMultiplier(m float64) string {
	return "x" + strconv.FormatFloat(m, 'g', -1, 64)
}

func formatBoosts(boosts []game.ActiveBoost) string {
	parts := make([]string, 0, len(boosts))
	for _, b := range boosts {
		parts = append(parts, b.Label+" "+formatMultiplier(b.Multiplier))
	}
	return strings.Join(parts, ", ")
}

func formatLeaderboard(title string, entries []leaderboard.Entry) string {
	lines := []string{"<b>" + title + "</b>"}
	if len(entries) == 0 {
		return strings.Join(append(lines, "Пока никого нет."), "\n")
	}
	for _, e := range entries {
		lines = append(lines, fmt.Sprintf("%d. %s: %d", e.Rank, escapeHTML(e.Name), e.Power))
	}
	return strings.Join(lines, "\n")
}

const helpText = "🥊 <b>Команды:</b>\n" +
	"• /beat или /удар - ударить (раз в 24 часа)\n" +
	"• /rep - твой баланс респекта и бусты\n" +
	"• /shop - магазин бустов\n" +
	"• /buy &lt;vodka|time&gt; - купить буст\n" +
	"• /event - время до следующего ивента\n" +
	"• /top или /топ - лидерборд в чате\n" +
	"• /global или /общий - общий лидерборд\n"

func cooldownText(remaining int64) string {
	return "⏳ <b>Рано!</b>\n" +
		fmt.Sprintf("Кулдаун ещё: %s.\n", formatCooldown(remaining)) +
		"Попробуй позже."
}

func hitText(p game.Player, res *game.HitResult) string {
	text := fmt.Sprintf("💥 <b>%s</b> %s\n", escapeHTML(p.DisplayName()), res.Roll.Message) +
		fmt.Sprintf("🥋 Техника: %s\n", res.Roll.Outcome.Name) +
		fmt.Sprintf("⚡ Сила удара: <b>%d</b>\n", res.Delta) +
		fmt.Sprintf("🏆 Твоя мощь теперь: <b>%d</b>", res.Total)
	if boosts := res.Boosts(); len(boosts) > 0 {
		text += "\nБусты: " + formatBoosts(boosts)
	}
	return text
}

func claimText(p game.Player, res *game.ClaimResult) string {
	name := escapeHTML(p.DisplayName())
	if res.Kind.AffectsCooldown() {
		return fmt.Sprintf("⏩ %s воспользовался ивентом.\n", name) +
			fmt.Sprintf("Оставшийся кулдаун уменьшен: %s.", formatCooldown(res.Remaining))
	}
	return fmt.Sprintf("🎉 <b>%s</b> %s\n", name, res.Roll.Message) +
		fmt.Sprintf("🥋 Техника: %s\n", res.Roll.Outcome.Name) +
		fmt.Sprintf("🎯 Ивент: %s\n", res.Kind.Title) +
		fmt.Sprintf("⚡ Сила удара: <b>%d</b>\n", res.Delta) +
		fmt.Sprintf("🏆 Твоя мощь теперь: <b>%d</b>", res.Total)
}

func respectText(user *model.User) string {
	boosts := formatBoosts(game.ActiveBoosts(user.PendingPowerMultiplier, user.PendingCooldownMultiplier))
	if boosts == "" {
		boosts = "нет"
	}
	return "🪙 <b>Твой респект</b>\n" +
		fmt.Sprintf("Баланс: <b>%d</b>\n", user.RespectPoints) +
		fmt.Sprintf("Активные бусты: %s\n", boosts) +
		"Зарабатывай респект, чтобы покупать бусты в /shop."
}

func shopText(boosts []game.Boost) string {
	text := "🛒 <b>Магазин бустов</b>\n"
	for _, b := range boosts {
		switch b.Kind {
		case game.BoostVodka:
			text += fmt.Sprintf("• vodka - %s к мощности следующего удара (стоимость %d респекта)\n", formatMultiplier(b.Multiplier), b.Cost)
		case game.BoostTime:
			text += fmt.Sprintf("• time - кулдаун %s после следующего удара (стоимость %d респекта)\n", formatMultiplier(b.Multiplier), b.Cost)
		}
	}
	return text + "Купить: /buy &lt;vodka|time&gt;"
}

func announcementText(kind *game.EventKind, minutes int64) string {
	return fmt.Sprintf("%s\n%s\nИвент активен %d мин.!", kind.Title, kind.Description, minutes)
}
