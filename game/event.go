package game

// EventKind describes one kind of chat event.
type EventKind struct {
	Type               string
	Title              string
	Description        string
	ButtonText         string
	PowerMultiplier    float64
	CooldownMultiplier float64
}

const EventTime = "time"

// AffectsCooldown reports whether claiming shortens the remaining cooldown
// instead of rolling power.
func (k *EventKind) AffectsCooldown() bool {
	return k.Type == EventTime
}

var Catalog = []EventKind{
	{
		Type:               "women",
		Title:              "Ивент: Витя буянит",
		Description:        "Витя набухался и пристает к женщинам. Ебни его и получи x2 мощи!",
		ButtonText:         "Вмазать за x2",
		PowerMultiplier:    2.0,
		CooldownMultiplier: 1.0,
	},
	{
		Type:               "sober",
		Title:              "Ивент: Трезвый Витя",
		Description:        "Витя сегодня трезвый. Мощь снижается до x0.5.",
		ButtonText:         "Ударить за x0.5",
		PowerMultiplier:    0.5,
		CooldownMultiplier: 1.0,
	},
	{
		Type:               "fight",
		Title:              "Ивент: Витя хочет драться",
		Description:        "Встань напротив него и получи x3 мощи, но риски высоки!",
		ButtonText:         "Принять вызов x3",
		PowerMultiplier:    3.0,
		CooldownMultiplier: 1.0,
	},
	{
		Type:               EventTime,
		Title:              "Ивент: Потеря памяти",
		Description:        "Витя после бухича ничего не помнит, поэтому время быстро летит.",
		ButtonText:         "Сократить кулдаун",
		PowerMultiplier:    1.0,
		CooldownMultiplier: 0.5,
	},
}

// LookupEvent finds a kind by type; unknown types fall back to the first entry.
func LookupEvent(eventType string) *EventKind {
	for i := range Catalog {
		if Catalog[i].Type == eventType {
			return &Catalog[i]
		}
	}
	return &Catalog[0]
}

// PickEvent selects a kind uniformly at random.
func PickEvent(rng Random) *EventKind {
	return &Catalog[rng.IntRange(0, len(Catalog)-1)]
}
