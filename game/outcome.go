package game

// Outcome is a weighted hit result template.
type Outcome struct {
	Name     string
	Weight   int
	PowerMin int
	PowerMax int
	Messages []string
}

// Roll is one drawn outcome with its raw power and flavor line.
type Roll struct {
	Outcome *Outcome
	Power   int64
	Message string
}

var Outcomes = []Outcome{
	{
		Name:     "Контратака: хук (бокс)",
		Weight:   6,
		PowerMin: -25,
		PowerMax: -10,
		Messages: []string{
			"VityaAlkogolik увернулся и пробил хук из бокса - это сильнее твоего замаха.",
			"Контратака: хук из бокса. По силе выше твоего промаха.",
			"Слишком слабый размах, VityaAlkogolik отвечает хуком.",
		},
	},
	{
		Name:     "Промах: уличный размах (стрит-файт)",
		Weight:   14,
		PowerMin: -9,
		PowerMax: -1,
		Messages: []string{
			"Промах: уличный размах слабее любого джеба.",
			"Ты задел воздух - даже уличная пощёчина была бы сильнее.",
			"Удар ушёл в пустоту. Хуже любой техники.",
		},
	},
	{
		Name:     "D-уровень: джеб (бокс)",
		Weight:   26,
		PowerMin: 1,
		PowerMax: 6,
		Messages: []string{
			"Джеб из бокса: слабее лоу-кика и локтя, но лучше промаха.",
			"Лёгкая пощёчина из стрит-файта - это ниже лоу-кика по силе.",
			"Легкий тычок: уступает карате-гэри, но всё же в цель.",
		},
	},
	{
		Name:     "C-уровень: лоу-кик (кикбоксинг)",
		Weight:   30,
		PowerMin: 7,
		PowerMax: 15,
		Messages: []string{
			"Лоу-кик из кикбоксинга: сильнее джеба, но слабее локтя.",
			"Маваши-гери из карате - уже ощутимо мощнее джеба.",
			"Неплохой удар: сильнее уличной пощёчины, но ниже критики.",
		},
	},
	{
		Name:     "B-уровень: локоть (муай-тай)",
		Weight:   18,
		PowerMin: 16,
		PowerMax: 28,
		Messages: []string{
			"Локоть из муай-тай: ощутимо сильнее лоу-кика.",
			"Сильный хук из бокса - выше среднего по силе.",
			"Удар коленом из муай-тай - мощнее большинства техник.",
		},
	},
	{
		Name:     "A-уровень: гильотина (джиу-джитсу)",
		Weight:   6,
		PowerMin: 29,
		PowerMax: 45,
		Messages: []string{
			"Гильотина из джиу-джитсу - самая сильная техника сегодня.",
			"Критика: удушение/рычаг из джиу-джитсу сильнее всех ударных техник.",
			"Комбо с локтями и добиванием - топ по силе!",
		},
	},
}

// RollOutcome draws an outcome by weight, then a power in its inclusive range.
func RollOutcome(rng Random, table []Outcome) Roll {
	weights := make([]int, len(table))
	for i, o := range table {
		weights[i] = o.Weight
	}
	outcome := &table[rng.Weighted(weights)]
	roll := Roll{
		Outcome: outcome,
		Power:   int64(rng.IntRange(outcome.PowerMin, outcome.PowerMax)),
	}
	if len(outcome.Messages) > 0 {
		roll.Message = outcome.Messages[rng.IntRange(0, len(outcome.Messages)-1)]
	}
	return roll
}
