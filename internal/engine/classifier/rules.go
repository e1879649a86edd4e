package classifier

import "strings"

// Rule labels text that contains any of its keywords.
type Rule struct {
	Label    string
	Keywords []string
}

// RuleSet is an ordered rule table with a fallback label. Order is
// precedence: the first rule with a matching keyword wins.
type RuleSet struct {
	Rules    []Rule
	Fallback string
}

const (
	CategoryHostel         = "Hostel"
	CategoryFinance        = "Finance"
	CategoryAcademics      = "Academics"
	CategoryAdministration = "Administration"
	CategoryInfrastructure = "Infrastructure"
	CategoryGeneral        = "General"

	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"

	EmotionAngry        = "Angry"
	EmotionFrustrated   = "Frustrated"
	EmotionDisappointed = "Disappointed"
	EmotionSatisfied    = "Satisfied"
	EmotionCalm         = "Calm"
)

var categories = RuleSet{
	Rules: []Rule{
		{CategoryHostel, []string{"hostel", "water", "room", "mess", "food"}},
		{CategoryFinance, []string{"fee", "fees", "payment", "refund", "scholarship"}},
		{CategoryAcademics, []string{"exam", "marks", "grade", "result", "class", "lecture"}},
		{CategoryAdministration, []string{"admin", "office", "document", "certificate", "permission"}},
		{CategoryInfrastructure, []string{"wifi", "internet", "network", "bus", "transport", "electricity"}},
	},
	Fallback: CategoryGeneral,
}

var priorities = RuleSet{
	Rules: []Rule{
		{PriorityCritical, []string{"urgent", "immediately", "asap", "emergency"}},
		{PriorityHigh, []string{"delay", "problem", "issue", "not working", "failed"}},
		{PriorityMedium, []string{"request", "please", "kindly"}},
	},
	Fallback: PriorityLow,
}

var emotions = RuleSet{
	Rules: []Rule{
		{EmotionAngry, []string{"angry", "furious", "outraged"}},
		{EmotionFrustrated, []string{"frustrated", "irritated", "annoyed", "disappointed"}},
		{EmotionDisappointed, []string{"sad", "upset", "worried"}},
		{EmotionSatisfied, []string{"thank", "happy", "satisfied", "appreciate"}},
	},
	Fallback: EmotionCalm,
}

// firstMatch expects lowered text.
func firstMatch(set RuleSet, lowered string) string {
	for _, rule := range set.Rules {
		for _, kw := range rule.Keywords {
			if strings.Contains(lowered, kw) {
				return rule.Label
			}
		}
	}
	return set.Fallback
}

// Tables is a copy of the rule tables used by Classify.
type Tables struct {
	Category RuleSet
	Priority RuleSet
	Emotion  RuleSet
}

// Rules returns copies of the classification tables, safe to modify.
func Rules() Tables {
	return Tables{
		Category: categories.clone(),
		Priority: priorities.clone(),
		Emotion:  emotions.clone(),
	}
}

func (s RuleSet) clone() RuleSet {
	out := RuleSet{Fallback: s.Fallback, Rules: make([]Rule, len(s.Rules))}
	for i, r := range s.Rules {
		out.Rules[i] = Rule{Label: r.Label, Keywords: append([]string(nil), r.Keywords...)}
	}
	return out
}
