// infrastructure/openai_recognizer.go
package infrastructure

import (
	"context"
	"errors"
	"net/url"

	"github.com/sashabaranov/go-openai"

	"github.com/vitovidale/video-recognition-service/domain"
)

const DefaultOpenAIModel = openai.GPT4o

// OpenAIRecognizer is a recognition capability backed by a chat completion
// model. Injections are placed counting Depth messages back from the end.
type OpenAIRecognizer struct {
	Client *openai.Client
	Model  string
}

func NewOpenAIRecognizer(apiKey, baseURL, model string) *OpenAIRecognizer {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if model == "" {
		model = DefaultOpenAIModel
	}
	return &OpenAIRecognizer{Client: openai.NewClientWithConfig(cfg), Model: model}
}

func (r *OpenAIRecognizer) Recognize(ctx context.Context, req domain.RecognitionRequest) (string, error) {
	resp, err := r.Client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    r.Model,
		Messages: chatMessages(req),
		Stream:   false,
	})
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("no response from OpenAI")
	}
	return resp.Choices[0].Message.Content, nil
}

func chatMessages(req domain.RecognitionRequest) []openai.ChatCompletionMessage {
	parts := []openai.ChatMessagePart{{
		Type: openai.ChatMessagePartTypeText,
		Text: "Video: " + req.Reference,
	}}
	if isAbsoluteURL(req.Reference) {
		parts = append(parts, openai.ChatMessagePart{
			Type:     openai.ChatMessagePartTypeImageURL,
			ImageURL: &openai.ChatMessageImageURL{URL: req.Reference},
		})
	}
	messages := []openai.ChatCompletionMessage{{
		Role:         openai.ChatMessageRoleUser,
		MultiContent: parts,
	}}

	for _, inj := range req.Injects {
		role := inj.Role
		if role == "" {
			role = openai.ChatMessageRoleSystem
		}
		msg := openai.ChatCompletionMessage{Role: role, Content: inj.Content}
		at := len(messages) - inj.Depth
		if at < 0 {
			at = 0
		}
		if at > len(messages) {
			at = len(messages)
		}
		messages = append(messages[:at], append([]openai.ChatCompletionMessage{msg}, messages[at:]...)...)
	}
	return messages
}

func isAbsoluteURL(ref string) bool {
	u, err := url.Parse(ref)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
