package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

type GeminiClient struct {
	Client     *genai.Client
	FlashModel *genai.GenerativeModel
	ProModel   *genai.GenerativeModel
}

func NewGenAIClient(ctx context.Context, apiKey, flashModelName, proModelName string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("genai client init failed: %w", err)
	}

	return &GeminiClient{
		Client:     client,
		FlashModel: client.GenerativeModel(flashModelName),
		ProModel:   client.GenerativeModel(proModelName),
	}, nil
}

// NewClientsFromKeys builds one client per API key. Keys that fail to initialise are skipped.
func NewClientsFromKeys(ctx context.Context, keys []string, flashModelName, proModelName string) []GeminiClient {
	clients := make([]GeminiClient, 0, len(keys))
	for i, key := range keys {
		client, err := NewGenAIClient(ctx, key, flashModelName, proModelName)
		if err != nil {
			slog.Warn("skipping Gemini client", "index", i, "error", err)
			continue
		}
		clients = append(clients, *client)
	}
	return clients
}

func (g *GeminiClient) Close() error {
	return g.Client.Close()
}

func firstText(resp *genai.GenerateContentResponse) (string, error) {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", errors.New("no content returned from AI")
	}
	textPart, ok := resp.Candidates[0].Content.Parts[0].(genai.Text)
	if !ok {
		return "", fmt.Errorf("response part is not text, received %T", resp.Candidates[0].Content.Parts[0])
	}
	return string(textPart), nil
}

// StripJSONFence removes a ```json ... ``` wrapper if the model added one.
func StripJSONFence(aiResponse string) string {
	aiResponse = strings.TrimSpace(aiResponse)
	if strings.HasPrefix(aiResponse, "```") {
		aiResponse = strings.TrimPrefix(aiResponse, "```json")
		aiResponse = strings.TrimPrefix(aiResponse, "```")
		aiResponse = strings.TrimSuffix(aiResponse, "```")
	}
	return strings.TrimSpace(aiResponse)
}

// GenerateText asks the flash model for a plain-text answer.
func (g *GeminiClient) GenerateText(ctx context.Context, prompt string) (string, error) {
	resp, err := g.FlashModel.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := firstText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ExtractJSON sends a document (PDF or image) with a prompt and decodes the JSON answer into target.
func (g *GeminiClient) ExtractJSON(ctx context.Context, prompt string, mimeType string, data []byte, target any) error {
	resp, err := g.ProModel.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{
			MIMEType: mimeType,
			Data:     data,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to generate content: %w", err)
	}
	text, err := firstText(resp)
	if err != nil {
		return err
	}

	aiResponse := StripJSONFence(text)
	if err := json.Unmarshal([]byte(aiResponse), target); err != nil {
		return fmt.Errorf("failed to unmarshal AI response to JSON: %w. \nRaw response was: %s", err, aiResponse)
	}
	return nil
}

// Transcribe turns recorded speech into text. locale is a BCP 47 tag such as hi-IN.
func (g *GeminiClient) Transcribe(ctx context.Context, locale, mimeType string, audio []byte) (string, error) {
	prompt := fmt.Sprintf("Transcribe this recording. The speaker uses locale %s. Reply with the transcript only.", locale)
	resp, err := g.FlashModel.GenerateContent(ctx,
		genai.Text(prompt),
		genai.Blob{
			MIMEType: mimeType,
			Data:     audio,
		},
	)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	text, err := firstText(resp)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}
