package models

import "time"

type Intent string

const (
	IntentCrops      Intent = "crops"
	IntentWeather    Intent = "weather"
	IntentPest       Intent = "pest"
	IntentFertilizer Intent = "fertilizer"
	IntentOrganic    Intent = "organic"
	IntentSoil       Intent = "soil"
	IntentIrrigation Intent = "irrigation"
	IntentUnknown    Intent = "unknown"
)

// AllIntents is the closed set the classifier can return.
var AllIntents = []Intent{
	IntentCrops, IntentWeather, IntentPest, IntentFertilizer,
	IntentOrganic, IntentSoil, IntentIrrigation, IntentUnknown,
}

type Message struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	IsBot       bool      `json:"isBot"`
	Timestamp   time.Time `json:"timestamp"`
	Intent      Intent    `json:"intent,omitempty"`
	Suggestions []string  `json:"suggestions,omitempty"`
}

type Conversation struct {
	ID        string    `json:"id"`
	Language  string    `json:"language"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"createdAt"`
}

type ChatRequest struct {
	ConversationID string `json:"conversationId" form:"conversationId"`
	Text           string `json:"text" form:"text"`
	Language       string `json:"language" form:"language"`
}

type Language struct {
	Code string `json:"code"`
	Name string `json:"name"`
	Flag string `json:"flag"`
}

type QuickSuggestion struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type ChatMeta struct {
	Languages        []Language        `json:"languages"`
	QuickSuggestions []QuickSuggestion `json:"quickSuggestions"`
}

type Transcript struct {
	Text   string `json:"text"`
	Locale string `json:"locale"`
}
