package chat

import (
	"context"
	"fmt"
	"strings"

	"bunpro-assist/lib/scrapers/bunpro"

	"github.com/google/generative-ai-go/genai"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"google.golang.org/api/option"
)

var tracer = otel.Tracer("services/chat")

// the model replied without any usable text content
var EmptyResponseErr = fmt.Errorf("model response contained no text")

const defaultModel = "gemini-1.5-flash"

// Service is a stateful tutoring conversation grounded in the user's
// harvested grammar data. The snapshot is baked into the system
// instruction once at construction, conversation history accumulates
// in the chat session.
type Service struct {
	client  *genai.Client
	session *genai.ChatSession
}

type ServiceOptions struct {
	ApiKey string
	// Model overrides the default Gemini model name
	Model string
	// Data is the grammar snapshot the tutor grounds its answers in
	Data bunpro.StudyData
}

func NewService(ctx context.Context, opts ServiceOptions) (*Service, error) {
	if opts.ApiKey == "" {
		return nil, fmt.Errorf("api key is required")
	}
	modelName := opts.Model
	if modelName == "" {
		modelName = defaultModel
	}

	prompt, err := BuildSystemPrompt(opts.Data)
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.ApiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	model := client.GenerativeModel(modelName)
	model.SystemInstruction = &genai.Content{
		Parts: []genai.Part{genai.Text(prompt)},
	}

	return &Service{
		client:  client,
		session: model.StartChat(),
	}, nil
}

// Ask sends one user question through the conversation and returns the
// tutor's reply.
func (s *Service) Ask(ctx context.Context, question string) (string, error) {
	ctx, span := tracer.Start(ctx, "service:Ask")
	defer span.End()

	res, err := s.session.SendMessage(ctx, genai.Text(question))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to send message")
		return "", err
	}

	answer, err := responseText(res)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		return "", err
	}
	return answer, nil
}

func (s *Service) Close() error {
	return s.client.Close()
}

func responseText(res *genai.GenerateContentResponse) (string, error) {
	if len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return "", EmptyResponseErr
	}
	var parts []string
	for _, part := range res.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			parts = append(parts, string(text))
		}
	}
	if len(parts) == 0 {
		return "", EmptyResponseErr
	}
	return strings.Join(parts, ""), nil
}
