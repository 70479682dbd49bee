package gemini

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// GeminiClientSelector manages round-robin selection and failover across multiple Gemini clients
type GeminiClientSelector struct {
	clients      []GeminiClient
	currentIndex int
	mutex        sync.Mutex
}

func NewGeminiClientSelector(clients []GeminiClient) *GeminiClientSelector {
	return &GeminiClientSelector{
		clients: clients,
	}
}

// GetNextClient returns the next client in round-robin order
func (s *GeminiClientSelector) GetNextClient() (*GeminiClient, int) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if len(s.clients) == 0 {
		return nil, -1
	}

	client := &s.clients[s.currentIndex]
	index := s.currentIndex
	s.currentIndex = (s.currentIndex + 1) % len(s.clients)

	return client, index
}

func (s *GeminiClientSelector) GetClientCount() int {
	return len(s.clients)
}

// TryAllClients attempts the operation with all clients until one succeeds
func (s *GeminiClientSelector) TryAllClients(operation func(*GeminiClient, int) error) error {
	clientCount := s.GetClientCount()
	if clientCount == 0 {
		return fmt.Errorf("no Gemini clients available")
	}

	var lastErr error
	for attempt := 0; attempt < clientCount; attempt++ {
		client, clientIdx := s.GetNextClient()

		err := operation(client, clientIdx)
		if err == nil {
			return nil
		}

		lastErr = err
		slog.Warn("Gemini API request failed, trying next client",
			"client_index", clientIdx,
			"attempt", attempt+1,
			"error", err)
	}

	slog.Error("All Gemini clients exhausted", "total_attempts", clientCount)
	return fmt.Errorf("all %d Gemini clients failed, last error: %w", clientCount, lastErr)
}

// GenerateText runs GenerateText with failover.
func (s *GeminiClientSelector) GenerateText(ctx context.Context, prompt string) (string, error) {
	var result string
	err := s.TryAllClients(func(client *GeminiClient, _ int) error {
		text, err := client.GenerateText(ctx, prompt)
		if err != nil {
			return err
		}
		result = text
		return nil
	})
	return result, err
}

// ExtractJSON runs ExtractJSON with failover.
func (s *GeminiClientSelector) ExtractJSON(ctx context.Context, prompt, mimeType string, data []byte, target any) error {
	return s.TryAllClients(func(client *GeminiClient, _ int) error {
		return client.ExtractJSON(ctx, prompt, mimeType, data, target)
	})
}

// Transcribe tries a single client only; a transcription either yields one result or none.
func (s *GeminiClientSelector) Transcribe(ctx context.Context, locale, mimeType string, audio []byte) (string, error) {
	client, _ := s.GetNextClient()
	if client == nil {
		return "", fmt.Errorf("no Gemini clients available")
	}
	return client.Transcribe(ctx, locale, mimeType, audio)
}

// Close releases every underlying client.
func (s *GeminiClientSelector) Close() {
	for i := range s.clients {
		if err := s.clients[i].Close(); err != nil {
			slog.Warn("failed to close Gemini client", "index", i, "error", err)
		}
	}
}
