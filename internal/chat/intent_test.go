package chat

import "testing"

func TestDetectIntent(t *testing.T) {
	tests := []struct {
		name       string
		utterance  string
		flowActive bool
		want       Intent
	}{
		{"greeting", "hello", false, IntentGreeting},
		{"greeting with punctuation words", "hey there!", false, IntentGreeting},
		{"good morning", "good morning", false, IntentGreeting},
		{"long greeting is not a greeting", "hi can i book an appointment today", false, IntentBooking},
		{"help", "what can you do", false, IntentHelp},
		{"help menu", "show me the menu", false, IntentHelp},
		{"lookup", "check my appointments", false, IntentLookup},
		{"lookup spaced", "can you look up my booking", false, IntentLookup},
		{"booking trigger", "i'd like to schedule a visit", false, IntentBooking},
		{"booking checkup", "need a check-up", false, IntentBooking},
		{"general", "what are your opening hours", false, IntentGeneral},
		{"empty", "", false, IntentGeneral},
		{"active flow wins over help", "what can you do", true, IntentBooking},
		{"active flow wins over greeting", "hello", true, IntentBooking},
		{"active flow wins over anything", "2pm", true, IntentBooking},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetectIntent(tt.utterance, tt.flowActive); got != tt.want {
				t.Errorf("DetectIntent(%q, %v) = %s, want %s", tt.utterance, tt.flowActive, got, tt.want)
			}
		})
	}
}
