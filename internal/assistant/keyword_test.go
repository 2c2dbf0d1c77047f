package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func sampleProperty() PropertyInfo {
	return PropertyInfo{
		ProjectName:  "Nivasa Enchante",
		Developer:    "Nivasa",
		Location:     "Dhanori, Pune",
		AvailableBHK: []string{"2 BHK", "3 BHK"},
		Pricing:      map[string]string{"3 BHK": "1.04 Cr", "2 BHK": "79.80 Lakhs"},
		Amenities:    []string{"Pool", "Gym", "Clubhouse"},
	}
}

func TestKeywordResponder_NoProperty(t *testing.T) {
	k := KeywordResponder{}
	assert.Equal(t, genericContactReply, k.Respond("price?", nil, PropertyInfo{}))
	history := []Turn{{RoleUser, "a"}, {RoleAssistant, "b"}, {RoleUser, "c"}}
	assert.Equal(t, followUpContactReply, k.Respond("price?", history, PropertyInfo{}))
}

func TestKeywordResponder_Topics(t *testing.T) {
	k := KeywordResponder{AgentName: "Pooja"}
	info := sampleProperty()

	assert.Contains(t, k.Respond("hi", nil, info), "I'm Pooja")
	assert.Contains(t, k.Respond("What is the price?", nil, info), "2 BHK: 79.80 Lakhs, 3 BHK: 1.04 Cr")
	assert.Contains(t, k.Respond("where is it", nil, info), "located in Dhanori, Pune")
	assert.Contains(t, k.Respond("which bhk options", nil, info), "2 BHK and 3 BHK")
	assert.Contains(t, k.Respond("amenities?", nil, info), "Pool, Gym, Clubhouse")
	assert.Contains(t, k.Respond("give me an overview", nil, info), "Nivasa Enchante. by Nivasa")
	assert.Contains(t, k.Respond("no", nil, info), "No worries")
	assert.Equal(t, openQuestionReply, k.Respond("something unrelated", nil, info))
}

func TestKeywordResponder_AffirmativeUsesLastAgentTurn(t *testing.T) {
	k := KeywordResponder{}
	info := sampleProperty()
	history := []Turn{
		{RoleUser, "where"},
		{RoleAssistant, "Nivasa Enchante is located in Dhanori, Pune. Shall I share more?"},
	}
	got := k.Respond("yes", history, info)
	assert.Contains(t, got, "Pricing starts from 79.80 Lakhs")
}

func TestKeywordRepliesDriveContactCapture(t *testing.T) {
	info := sampleProperty()
	got := KeywordResponder{}.Respond("How much does it cost", nil, info)
	assert.Contains(t, got, "Share your name and phone")
}
