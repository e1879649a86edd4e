package classifier

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestClassify_Precedence(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		category string
		priority string
		emotion  string
	}{
		{
			name:     "Defaults",
			text:     "Nothing to report",
			category: CategoryGeneral,
			priority: PriorityLow,
			emotion:  EmotionCalm,
		},
		{
			name:     "Hostel Beats Finance",
			text:     "Mess fee refund",
			category: CategoryHostel,
			priority: PriorityLow,
			emotion:  EmotionCalm,
		},
		{
			name:     "Critical Beats Medium",
			text:     "Please fix the wifi, urgent",
			category: CategoryInfrastructure,
			priority: PriorityCritical,
			emotion:  EmotionCalm,
		},
		{
			name:     "Multi Word Keyword",
			text:     "Projector NOT WORKING in lecture hall",
			category: CategoryAcademics,
			priority: PriorityHigh,
			emotion:  EmotionCalm,
		},
		{
			name:     "Disappointed Keyword Is Frustrated",
			text:     "Disappointed with the certificate office",
			category: CategoryAdministration,
			priority: PriorityLow,
			emotion:  EmotionFrustrated,
		},
		{
			name:     "Upset Beats Thank",
			text:     "Thank you but I am upset about my scholarship",
			category: CategoryFinance,
			priority: PriorityLow,
			emotion:  EmotionDisappointed,
		},
		{
			name:     "Angry First",
			text:     "Furious and frustrated, kindly respond",
			category: CategoryGeneral,
			priority: PriorityMedium,
			emotion:  EmotionAngry,
		},
		{
			name:     "Substring Containment",
			text:     "The classroom projector",
			category: CategoryHostel,
			priority: PriorityLow,
			emotion:  EmotionCalm,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.text)
			if got.Category != tt.category {
				t.Errorf("Category = %s, want %s", got.Category, tt.category)
			}
			if got.Priority != tt.priority {
				t.Errorf("Priority = %s, want %s", got.Priority, tt.priority)
			}
			if got.Emotion != tt.emotion {
				t.Errorf("Emotion = %s, want %s", got.Emotion, tt.emotion)
			}
		})
	}
}

func TestClassify_EndToEnd(t *testing.T) {
	text := "URGENT: water issue in hostel, please fix immediately"
	got := Classify(text)

	want := Analysis{Summary: text, Category: CategoryHostel, Priority: PriorityCritical, Emotion: EmotionCalm}
	if got != want {
		t.Errorf("Classify() = %+v, want %+v", got, want)
	}
}

func TestClassify_Deterministic(t *testing.T) {
	text := "Bus delay again, I am annoyed"
	first := Classify(text)
	for i := 0; i < 50; i++ {
		if got := Classify(text); got != first {
			t.Fatalf("run %d: %+v != %+v", i, got, first)
		}
	}
}

func TestSummarize(t *testing.T) {
	exact := strings.Repeat("a", 100)
	long := strings.Repeat("b", 150)

	if got := Summarize(exact); got != exact {
		t.Errorf("100 chars should be verbatim, got len %d", len(got))
	}
	if got := Summarize(""); got != "" {
		t.Errorf("empty text should stay empty, got %q", got)
	}

	got := Summarize(long)
	if len(got) != 103 {
		t.Errorf("len(summary) = %d, want 103", len(got))
	}
	if got != long[:100]+"..." {
		t.Errorf("summary should be the first 100 chars plus ellipsis")
	}

	runes := strings.Repeat("é", 120)
	got = Summarize(runes)
	if !utf8.ValidString(got) {
		t.Fatal("summary split a code point")
	}
	if n := utf8.RuneCountInString(got); n != 103 {
		t.Errorf("rune count = %d, want 103", n)
	}
}

func TestComplaintText(t *testing.T) {
	if got := ComplaintText("Water", "cut since morning"); got != "Water cut since morning" {
		t.Errorf("ComplaintText() = %q", got)
	}
	if got := ComplaintText("Title only", ""); got != "Title only" {
		t.Errorf("ComplaintText() = %q", got)
	}
}

func TestRules_ReturnsCopy(t *testing.T) {
	tables := Rules()
	tables.Category.Rules[0].Keywords[0] = "changed"
	tables.Priority.Rules = nil

	if got := Classify("hostel"); got.Category != CategoryHostel {
		t.Errorf("mutating Rules() leaked into classifier: %s", got.Category)
	}
	if got := Rules().Category.Rules[0].Label; got != CategoryHostel {
		t.Errorf("first category rule = %s, want %s", got, CategoryHostel)
	}
}
