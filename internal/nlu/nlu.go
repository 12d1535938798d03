package nlu

import "context"

// Intent labels produced by the classifier.
const (
	IntentGreeting        = "Greeting"
	IntentTodaysWeather   = "TodaysWeather"
	IntentWeatherForecast = "WeatherForecast"
	IntentCancel          = "Cancel"
	IntentHelp            = "Help"
	IntentNone            = "None"
)

// MinScore is the confidence floor below which a classification counts as
// IntentNone.
const MinScore = 0.5

// Intent is one ranked classification.
type Intent struct {
	Name  string
	Score float64
}

// DateTimeSpec is a datetime entity with the timex expressions it resolved
// to.
type DateTimeSpec struct {
	Type  string
	Timex []string
}

// Result is one utterance's classification: ranked intents plus extracted
// entities, grouped by entity type.
type Result struct {
	Text      string
	Intents   []Intent
	Entities  map[string][]string
	DateTimes []DateTimeSpec
}

// TopIntent returns the highest-scoring intent at or above MinScore, or
// IntentNone.
func (r *Result) TopIntent() (string, float64) {
	if r == nil {
		return IntentNone, 0
	}

	best := Intent{Name: IntentNone}
	for _, intent := range r.Intents {
		if intent.Score > best.Score {
			best = intent
		}
	}
	if best.Name == "" || best.Score < MinScore {
		return IntentNone, 0
	}
	return best.Name, best.Score
}

// Recognizer classifies a user utterance.
type Recognizer interface {
	Recognize(ctx context.Context, text string) (*Result, error)
}
