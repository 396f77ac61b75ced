package assistant

// Suggestion is a canned question offered to users.
type Suggestion struct {
	Category string `json:"category"`
	Text     string `json:"text"`
}

// SuggestedQuestions are the quick-access prompts.
var SuggestedQuestions = []Suggestion{
	{Category: "Conversion", Text: "What's my lead to booking conversion rate?"},
	{Category: "Volume", Text: "How many leads do we get per week on average?"},
	{Category: "Bookings", Text: "How many weddings have we booked this year?"},
	{Category: "Stages", Text: "What's my Hot lead to Contacted conversion rate?"},
	{Category: "Performance", Text: "What's my best performing lead stage?"},
	{Category: "Pipeline", Text: "How many leads are currently in my pipeline?"},
}
