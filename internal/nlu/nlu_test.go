package nlu

import (
	"testing"
)

func TestTopIntent(t *testing.T) {
	tests := []struct {
		name      string
		result    *Result
		wantName  string
		wantScore float64
	}{
		{
			name:     "nil result",
			result:   nil,
			wantName: IntentNone,
		},
		{
			name:     "no intents",
			result:   &Result{},
			wantName: IntentNone,
		},
		{
			name: "picks highest",
			result: &Result{Intents: []Intent{
				{Name: IntentTodaysWeather, Score: 0.2},
				{Name: IntentHelp, Score: 0.85},
				{Name: IntentGreeting, Score: 0.6},
			}},
			wantName:  IntentHelp,
			wantScore: 0.85,
		},
		{
			name: "below threshold",
			result: &Result{Intents: []Intent{
				{Name: IntentCancel, Score: 0.49},
			}},
			wantName: IntentNone,
		},
		{
			name: "exactly at threshold",
			result: &Result{Intents: []Intent{
				{Name: IntentCancel, Score: 0.5},
			}},
			wantName:  IntentCancel,
			wantScore: 0.5,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			name, score := tt.result.TopIntent()
			if name != tt.wantName {
				t.Errorf("TopIntent() name = %q, want %q", name, tt.wantName)
			}
			if score != tt.wantScore {
				t.Errorf("TopIntent() score = %v, want %v", score, tt.wantScore)
			}
		})
	}
}
