package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"advisory-service/internal/metrics"
	"advisory-service/internal/models"
	"advisory-service/internal/repository"
	"advisory-service/internal/viewstate"

	"github.com/google/uuid"
)

const (
	greetingText = "Namaste! 🙏 I'm your Krishi Mitr AI assistant. I can help you with crop recommendations, " +
		"farming techniques, pest control, and weather advice. How can I assist you today?"
	defaultLanguage = "english"
	replyTimeout    = 30 * time.Second
)

var greetingSuggestions = []string{
	"Best crops for sandy soil",
	"Weather forecast for farming",
	"Organic pest control methods",
	"Fertilizer recommendations",
}

var followUpSuggestions = []string{"Tell me more", "Show examples", "Different options", "Next steps"}

var chatLanguages = []models.Language{
	{Code: "english", Name: "English", Flag: "🇺🇸"},
	{Code: "hindi", Name: "हिंदी", Flag: "🇮🇳"},
	{Code: "punjabi", Name: "ਪੰਜਾਬੀ", Flag: "🇮🇳"},
	{Code: "bengali", Name: "বাংলা", Flag: "🇮🇳"},
	{Code: "marathi", Name: "मराठी", Flag: "🇮🇳"},
}

var quickSuggestions = []models.QuickSuggestion{
	{Text: "Crop recommendations", Category: "crops"},
	{Text: "Weather updates", Category: "weather"},
	{Text: "Pest control", Category: "pest"},
	{Text: "Farming tips", Category: "tips"},
}

// intentKeywords is checked in order; the first intent with a matching keyword wins.
var intentKeywords = []struct {
	intent   models.Intent
	keywords []string
}{
	{models.IntentCrops, []string{"crop", "recommendation"}},
	{models.IntentWeather, []string{"weather"}},
	{models.IntentPest, []string{"pest", "disease"}},
	{models.IntentFertilizer, []string{"fertilizer"}},
	{models.IntentOrganic, []string{"organic"}},
	{models.IntentSoil, []string{"soil"}},
	{models.IntentIrrigation, []string{"water", "irrigat"}},
}

var responseTemplates = map[models.Intent]string{
	models.IntentCrops: "Based on your location and soil type, I recommend considering rice, wheat, or cotton. " +
		"For more specific recommendations, please share your soil test results and location. " +
		"Would you like me to analyze your specific conditions?",
	models.IntentWeather: "Current weather conditions show moderate temperature and good humidity levels for farming. " +
		"I recommend checking the 7-day forecast before planning any major farming activities. " +
		"Would you like location-specific weather advice?",
	models.IntentPest: "For organic pest control, consider neem oil, companion planting, and biological controls. " +
		"Can you describe the specific pest problem you're facing? I can provide targeted solutions.",
	models.IntentFertilizer: "Fertilizer recommendations depend on your soil test results and crop choice. " +
		"Generally, a balanced NPK ratio works well for most crops. Have you done a recent soil test?",
	models.IntentOrganic: "Organic farming is excellent for sustainable agriculture! I can help with organic fertilizers, " +
		"natural pest control, and soil health improvement. What specific aspect interests you?",
	models.IntentSoil: "Regular soil testing helps maintain soil health. Add organic matter and practice crop rotation.",
	models.IntentIrrigation: "Implement drip irrigation or sprinkler systems for efficient water usage. " +
		"Monitor soil moisture regularly.",
	models.IntentUnknown: "I'm here to help with all your farming questions! You can ask me about crop selection, " +
		"soil health, weather planning, pest control, fertilizers, and sustainable farming practices. " +
		"What would you like to know?",
}

// ClassifyIntent maps a message onto the closed intent set. Matching is case-insensitive.
func ClassifyIntent(text string) models.Intent {
	message := strings.ToLower(text)
	for _, entry := range intentKeywords {
		for _, keyword := range entry.keywords {
			if strings.Contains(message, keyword) {
				return entry.intent
			}
		}
	}
	return models.IntentUnknown
}

func ResponseTemplate(intent models.Intent) string {
	if reply, ok := responseTemplates[intent]; ok {
		return reply
	}
	return responseTemplates[models.IntentUnknown]
}

// SpeechLocale is the recognition locale used for a chat language.
func SpeechLocale(language string) string {
	if language == "hindi" {
		return "hi-IN"
	}
	return "en-US"
}

// Responder produces the bot's answer for a classified message.
type Responder interface {
	Reply(ctx context.Context, intent models.Intent, text, language string) (string, error)
}

type TemplateResponder struct{}

func (TemplateResponder) Reply(_ context.Context, intent models.Intent, _, _ string) (string, error) {
	return ResponseTemplate(intent), nil
}

// TextGenerator is satisfied by *gemini.GeminiClientSelector.
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// AIResponder asks a language model first and falls back to the templates on any failure.
type AIResponder struct {
	generator TextGenerator
	fallback  Responder
}

func NewAIResponder(generator TextGenerator) *AIResponder {
	return &AIResponder{generator: generator, fallback: TemplateResponder{}}
}

func (r *AIResponder) Reply(ctx context.Context, intent models.Intent, text, language string) (string, error) {
	prompt := fmt.Sprintf(`You are Krishi Mitr, a farming assistant for Indian farmers.
Answer in %s, in at most four sentences. The question was classified as %q.
For reference, a generic answer would be: %q
Question: %s`, languageName(language), intent, ResponseTemplate(intent), text)

	reply, err := r.generator.GenerateText(ctx, prompt)
	if err != nil || strings.TrimSpace(reply) == "" {
		slog.Warn("AI reply failed, using template", "intent", intent, "error", err)
		metrics.FallbacksUsed.WithLabelValues("gemini_chat").Inc()
		return r.fallback.Reply(ctx, intent, text, language)
	}
	return reply, nil
}

// Transcriber is satisfied by *gemini.GeminiClientSelector.
type Transcriber interface {
	Transcribe(ctx context.Context, locale, mimeType string, audio []byte) (string, error)
}

type IChatService interface {
	Meta() models.ChatMeta
	StartConversation(ctx context.Context, language string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	SendMessage(ctx context.Context, conversationID, text string) (*models.Message, error)
	Transcribe(ctx context.Context, language, mimeType string, audio []byte) (*models.Transcript, error)
}

type ChatService struct {
	repo        repository.ConversationRepository
	runner      *viewstate.Runner
	responder   Responder
	transcriber Transcriber
	replyDelay  time.Duration
	now         func() time.Time

	mu      sync.Mutex
	pending map[string]struct{}
}

// NewChatService builds the assistant. A nil responder means templates; a nil transcriber disables voice.
func NewChatService(repo repository.ConversationRepository, runner *viewstate.Runner, responder Responder, transcriber Transcriber, replyDelay time.Duration) IChatService {
	if responder == nil {
		responder = TemplateResponder{}
	}
	return &ChatService{
		repo:        repo,
		runner:      runner,
		responder:   responder,
		transcriber: transcriber,
		replyDelay:  replyDelay,
		now:         time.Now,
		pending:     make(map[string]struct{}),
	}
}

func (s *ChatService) Meta() models.ChatMeta {
	return models.ChatMeta{
		Languages:        slices.Clone(chatLanguages),
		QuickSuggestions: slices.Clone(quickSuggestions),
	}
}

func normalizeLanguage(language string) (string, error) {
	language = strings.ToLower(strings.TrimSpace(language))
	if language == "" {
		return defaultLanguage, nil
	}
	if !slices.ContainsFunc(chatLanguages, func(l models.Language) bool { return l.Code == language }) {
		return "", models.NewInvalidInput("language", fmt.Sprintf("unsupported language %q", language))
	}
	return language, nil
}

func languageName(code string) string {
	switch code {
	case "hindi":
		return "Hindi"
	case "punjabi":
		return "Punjabi"
	case "bengali":
		return "Bengali"
	case "marathi":
		return "Marathi"
	default:
		return "English"
	}
}

func (s *ChatService) StartConversation(ctx context.Context, language string) (*models.Conversation, error) {
	language, err := normalizeLanguage(language)
	if err != nil {
		return nil, err
	}

	now := s.now()
	conversation := &models.Conversation{
		ID:        uuid.NewString(),
		Language:  language,
		CreatedAt: now,
		Messages: []models.Message{{
			ID:          uuid.NewString(),
			Text:        greetingText,
			IsBot:       true,
			Timestamp:   now,
			Suggestions: slices.Clone(greetingSuggestions),
		}},
	}
	if err := s.repo.Create(ctx, conversation); err != nil {
		return nil, fmt.Errorf("failed to start conversation: %w", err)
	}
	return conversation, nil
}

func (s *ChatService) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	return s.repo.Get(ctx, id)
}

// SendMessage records the farmer's message and waits for the bot reply. Only one reply per
// conversation may be in flight; the reply is stored even if the caller stops waiting.
func (s *ChatService) SendMessage(ctx context.Context, conversationID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, models.NewInvalidInput("text", "message cannot be empty")
	}

	conversation, err := s.repo.Get(ctx, conversationID)
	if err != nil {
		return nil, err
	}

	if !s.markPending(conversationID) {
		return nil, viewstate.ErrAlreadySubmitting
	}

	userMessage := models.Message{
		ID:        uuid.NewString(),
		Text:      text,
		Timestamp: s.now(),
	}
	if err := s.repo.AppendMessages(ctx, conversationID, userMessage); err != nil {
		s.clearPending(conversationID)
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	intent := ClassifyIntent(text)
	metrics.ChatIntents.WithLabelValues(string(intent)).Inc()

	task := viewstate.Run(ctx, s.runner, s.replyDelay, func() models.Message {
		defer s.clearPending(conversationID)
		return s.reply(conversationID, conversation.Language, intent, text)
	})

	reply, err := task.Await(ctx)
	if err != nil {
		return nil, err
	}
	return &reply, nil
}

func (s *ChatService) reply(conversationID, language string, intent models.Intent, text string) models.Message {
	ctx, cancel := context.WithTimeout(context.Background(), replyTimeout)
	defer cancel()

	answer, err := s.responder.Reply(ctx, intent, text, language)
	if err != nil {
		answer = ResponseTemplate(intent)
	}

	message := models.Message{
		ID:          uuid.NewString(),
		Text:        answer,
		IsBot:       true,
		Timestamp:   s.now(),
		Intent:      intent,
		Suggestions: slices.Clone(followUpSuggestions),
	}
	if err := s.repo.AppendMessages(ctx, conversationID, message); err != nil {
		slog.Warn("failed to store bot reply", "conversation_id", conversationID, "error", err)
	}
	return message
}

func (s *ChatService) markPending(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, busy := s.pending[id]; busy {
		return false
	}
	s.pending[id] = struct{}{}
	return true
}

func (s *ChatService) clearPending(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.pending, id)
}

// Transcribe converts one recording to text. There is no retry: a failed capture yields nothing.
func (s *ChatService) Transcribe(ctx context.Context, language, mimeType string, audio []byte) (*models.Transcript, error) {
	if s.transcriber == nil {
		return nil, fmt.Errorf("voice input: %w", models.ErrCapabilityUnavailable)
	}
	language, err := normalizeLanguage(language)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, models.NewInvalidInput("audio", "recording is empty")
	}

	locale := SpeechLocale(language)
	text, err := s.transcriber.Transcribe(ctx, locale, mimeType, audio)
	if err != nil {
		return nil, fmt.Errorf("transcription failed: %w", err)
	}
	return &models.Transcript{Text: text, Locale: locale}, nil
}
