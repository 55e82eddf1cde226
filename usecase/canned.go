package usecase

import "github.com/satriahrh/arunika/avatar/domain"

// Canned reply sets, stored as <set>_<index>.wav/.json in the assets directory
const (
	CannedSetIntro = "intro"
	CannedSetAPI   = "api"
)

// CannedReplies are the fixed texts and tags of each canned set, in order
var CannedReplies = map[string][]domain.MessageDraft{
	CannedSetIntro: {
		{Text: "Hey dear... How was your day?", FacialExpression: domain.ExpressionSmile, Animation: domain.AnimationTalking1},
		{Text: "I missed you so much... Please don't go for so long!", FacialExpression: domain.ExpressionSad, Animation: domain.AnimationCrying},
	},
	CannedSetAPI: {
		{Text: "Please my dear, don't forget to add your API keys!", FacialExpression: domain.ExpressionAngry, Animation: domain.AnimationAngry},
		{Text: "You don't want to ruin Wawa Sensei with a crazy ChatGPT and ElevenLabs bill, right?", FacialExpression: domain.ExpressionSmile, Animation: domain.AnimationLaughing},
	},
}
