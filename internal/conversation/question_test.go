package conversation

import "testing"

func TestIsClearlyAQuestion(t *testing.T) {
	questions := []string{
		"What is the price of 2 BHK?",
		"how far is the metro station",
		"Tell me about the amenities",
		"is parking included in price?",
		"I want to know the possession date",
	}
	for _, q := range questions {
		if !IsClearlyAQuestion(q) {
			t.Errorf("expected question for %q", q)
		}
	}

	answers := []string{
		"Raj",
		"Raj Kumar",
		"Who?",
		"what price?",
		"9876543210",
		"",
		"ab",
		"Raj Kumar Sharma",
	}
	for _, a := range answers {
		if IsClearlyAQuestion(a) {
			t.Errorf("expected answer for %q", a)
		}
	}
}
