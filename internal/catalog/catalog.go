// Package catalog holds the built-in question set and its validity checks.
// The catalog is fixed at process start; a Postgres-backed loader can replace
// the built-in set without changing its shape.
package catalog

import (
	"fmt"

	"timer-trivia-service/internal/domain"
)

// Validate checks structural invariants: unique IDs, at least two choices,
// and an answer index inside the choices list.
func Validate(c domain.Catalog) error {
	seen := make(map[int]bool, len(c.Questions))
	for i, q := range c.Questions {
		if seen[q.ID] {
			return fmt.Errorf("question %d: duplicate id %d", i, q.ID)
		}
		seen[q.ID] = true
		if len(q.Choices) < 2 {
			return fmt.Errorf("question %d: needs at least two choices", q.ID)
		}
		if q.AnswerIndex < 0 || q.AnswerIndex >= len(q.Choices) {
			return fmt.Errorf("question %d: answer index %d out of range", q.ID, q.AnswerIndex)
		}
		if q.MaxPoints < q.MinPoints {
			return fmt.Errorf("question %d: max points %d below min %d", q.ID, q.MaxPoints, q.MinPoints)
		}
	}
	return nil
}

// Builtin returns the default ten-question travel quiz. Point values ramp up
// so later questions decide the winner.
func Builtin() domain.Catalog {
	return domain.Catalog{Questions: []domain.Question{
		{
			ID:          1,
			Title:       "Q1 (warm-up, image)",
			Prompt:      "Which country does this flag belong to?",
			ImageURL:    "https://upload.wikimedia.org/wikipedia/en/c/c3/Flag_of_France.svg",
			Choices:     []string{"Italy", "France", "Netherlands", "Russia"},
			AnswerIndex: 1,
			Explanation: "The vertical blue-white-red tricolore is the flag of France.",
			MaxPoints:   600, MinPoints: 120,
		},
		{
			ID:          2,
			Title:       "Q2 (easy)",
			Prompt:      "What is the most basic instruction given during takeoff and landing?",
			Choices:     []string{"Choose your in-flight meal", "Fasten your seatbelt", "Buy duty-free goods", "Recline your seat"},
			AnswerIndex: 1,
			Explanation: "Fastening your seatbelt is the baseline safety rule for takeoff and landing.",
			MaxPoints:   650, MinPoints: 130,
		},
		{
			ID:          3,
			Title:       "Q3 (warming up)",
			Prompt:      "In European travel, what does 'overtourism' mean?",
			Choices:     []string{"Too few tourists, a depressed region", "Too many tourists overloading a destination", "Tours that cost too much", "Too many night tours"},
			AnswerIndex: 1,
			Explanation: "Tourist overcrowding strains residents, the environment, and infrastructure.",
			MaxPoints:   750, MinPoints: 150,
		},
		{
			ID:          4,
			Title:       "Q4 (image, landmark)",
			Prompt:      "Which city is most famous for this landmark?",
			ImageURL:    "https://upload.wikimedia.org/wikipedia/commons/6/6f/Colosseum_in_Rome%2C_Italy_-_April_2007.jpg",
			Choices:     []string{"Rome", "Paris", "London", "Vienna"},
			AnswerIndex: 0,
			Explanation: "The Colosseum is the symbol of Rome.",
			MaxPoints:   900, MinPoints: 170,
		},
		{
			ID:          5,
			Title:       "Q5 (travel tip)",
			Prompt:      "Which habit helps most against jet lag?",
			Choices:     []string{"A four-hour nap on arrival", "Getting sunlight on the destination's local schedule", "Drinking lots of coffee", "Skipping sleep entirely"},
			AnswerIndex: 1,
			Explanation: "Daylight is the strongest signal for resetting the body clock.",
			MaxPoints:   950, MinPoints: 180,
		},
		{
			ID:          6,
			Title:       "Q6 (intermediate)",
			Prompt:      "Which description best matches a land operator in the travel trade?",
			Choices:     []string{"Sells flight tickets only", "Coordinates local itineraries, transport, guides, and hotels", "Sells travel insurance only", "Handles currency exchange only"},
			AnswerIndex: 1,
			Explanation: "The land operator designs and runs most of what happens on the ground.",
			MaxPoints:   1100, MinPoints: 200,
		},
		{
			ID:          7,
			Title:       "Q7 (logic)",
			Prompt:      "To shorten a route of city A (2 nights) → city B (1 night) → city A (1 night), what do you change first?",
			Choices:     []string{"Number of meals", "City order and night allocation", "Traveler age", "Exchange rate"},
			AnswerIndex: 1,
			Explanation: "Route optimization starts with the lodging and transfer structure.",
			MaxPoints:   1250, MinPoints: 230,
		},
		{
			ID:          8,
			Title:       "Q8 (advanced)",
			Prompt:      "What is the most direct device for reducing drop-off in a quiz show?",
			Choices:     []string{"Harder questions", "Mid-game checkpoints with rankings and rewards", "Longer ads", "Longer questions"},
			AnswerIndex: 1,
			Explanation: "Checkpoints at 3/6/9 plus a lucky draw give players a reason to stay.",
			MaxPoints:   1500, MinPoints: 260,
		},
		{
			ID:          9,
			Title:       "Q9 (advanced, before the lucky draw)",
			Prompt:      "Which extension best addresses reaction-speed complaints in a timer-scored quiz?",
			Choices:     []string{"Raise the question count to 100", "Separate leagues by age group, or apply handicaps", "Never reveal answers", "Make the buttons smaller"},
			AnswerIndex: 1,
			Explanation: "League separation or handicaps strongly improve perceived fairness.",
			MaxPoints:   1800, MinPoints: 300,
		},
		{
			ID:          10,
			Title:       "Q10 (final, decides the winner)",
			Prompt:      "When players are tied, which tie-breaker separates them best?",
			Choices:     []string{"Nickname length", "Total elapsed time (0.01s precision) or last-question response time", "Age", "Browser used"},
			AnswerIndex: 1,
			Explanation: "Cumulative or last-question response time reflects real skill differences.",
			MaxPoints:   2500, MinPoints: 400,
		},
	}}
}
