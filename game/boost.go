package game

import (
	"strings"

	"vitya-bot/store"
)

const (
	BoostVodka = "vodka"
	BoostTime  = "time"
)

// Boost is a purchasable one-shot multiplier consumed by the next hit.
type Boost struct {
	Kind       string
	Label      string
	Column     string
	Multiplier float64
	Cost       int64
}

func DefaultBoosts(vodkaCost, timeCost int64) []Boost {
	return []Boost{
		{Kind: BoostVodka, Label: "мощь", Column: store.PowerMultiplierColumn, Multiplier: 2.0, Cost: vodkaCost},
		{Kind: BoostTime, Label: "кулдаун", Column: store.CooldownMultiplierColumn, Multiplier: 0.5, Cost: timeCost},
	}
}

func findBoost(boosts []Boost, kind string) *Boost {
	kind = strings.ToLower(strings.TrimSpace(kind))
	for i := range boosts {
		if boosts[i].Kind == kind {
			return &boosts[i]
		}
	}
	return nil
}

// ActiveBoost is a pending or just-applied multiplier, for display.
type ActiveBoost struct {
	Label      string
	Multiplier float64
}

func ActiveBoosts(powerMultiplier, cooldownMultiplier float64) []ActiveBoost {
	var active []ActiveBoost
	if powerMultiplier != 1.0 {
		active = append(active, ActiveBoost{Label: "мощь", Multiplier: powerMultiplier})
	}
	if cooldownMultiplier != 1.0 {
		active = append(active, ActiveBoost{Label: "кулдаун", Multiplier: cooldownMultiplier})
	}
	return active
}
