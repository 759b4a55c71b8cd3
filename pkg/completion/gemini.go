package completion

import (
	"context"
	"os"
	"strings"
	"sync"

	genai "github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// EnvAPIKey is the environment variable holding the Gemini API key. It is
// read on every request so a missing key surfaces as an API failure on
// first use instead of a startup crash.
const EnvAPIKey = "API_KEY"

// GenerationParams are the model sampling parameters for a request.
type GenerationParams struct {
	Temperature     float32
	TopP            float32
	TopK            int32
	MaxOutputTokens int32
}

// GeminiConfig configures the Gemini-backed Completer.
type GeminiConfig struct {
	// Model is the generative model name, e.g. "gemini-1.5-flash".
	Model string

	// SystemPrompt is sent as the model's system instruction.
	SystemPrompt string

	Params GenerationParams
}

// Gemini implements Completer against Google's Gemini API. Generation
// parameters may be swapped at runtime; they apply to subsequent requests.
type Gemini struct {
	mu     sync.RWMutex
	config GeminiConfig
	logger *zap.Logger
}

// NewGemini creates a Gemini completer. No connection is made until the
// first Complete call.
func NewGemini(config GeminiConfig, logger *zap.Logger) *Gemini {
	return &Gemini{config: config, logger: logger}
}

// SetParams replaces the generation parameters used by future requests.
func (g *Gemini) SetParams(p GenerationParams) {
	g.mu.Lock()
	g.config.Params = p
	g.mu.Unlock()

	g.logger.Debug("generation parameters updated",
		zap.Float32("temperature", p.Temperature),
		zap.Float32("top_p", p.TopP),
		zap.Int32("top_k", p.TopK),
		zap.Int32("max_output_tokens", p.MaxOutputTokens),
	)
}

// Complete sends the conversation history to Gemini and returns the
// completion text. Errors are classified onto the failure taxonomy.
func (g *Gemini) Complete(ctx context.Context, history []Message) (string, error) {
	if len(history) == 0 {
		return "", &Error{Kind: KindAPI, Message: "empty completion context"}
	}

	apiKey := os.Getenv(EnvAPIKey)
	if apiKey == "" {
		return "", &Error{Kind: KindAPI, Message: EnvAPIKey + " environment variable is not set"}
	}

	g.mu.RLock()
	config := g.config
	g.mu.RUnlock()

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return "", Classify(err)
	}
	defer func() {
		if err := client.Close(); err != nil {
			g.logger.Warn("failed to close gemini client", zap.Error(err))
		}
	}()

	model := client.GenerativeModel(config.Model)
	model.SetTemperature(config.Params.Temperature)
	model.SetTopP(config.Params.TopP)
	model.SetTopK(config.Params.TopK)
	model.SetMaxOutputTokens(config.Params.MaxOutputTokens)
	if config.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(config.SystemPrompt)},
		}
	}

	// Everything before the final message becomes chat history; the final
	// message is the prompt itself.
	session := model.StartChat()
	prior, last := history[:len(history)-1], history[len(history)-1]
	for _, m := range prior {
		session.History = append(session.History, &genai.Content{
			Role:  geminiRole(m.Role),
			Parts: []genai.Part{genai.Text(m.Content)},
		})
	}

	g.logger.Debug("sending completion request",
		zap.String("model", config.Model),
		zap.Int("history_len", len(prior)),
	)

	resp, err := session.SendMessage(ctx, genai.Text(last.Content))
	if err != nil {
		return "", Classify(err)
	}

	text := responseText(resp)
	if text == "" {
		return "", &Error{Kind: KindAPI, Message: "model returned no text"}
	}

	return text, nil
}

// geminiRole maps our role names onto Gemini's ("assistant" is "model").
func geminiRole(role string) string {
	if role == RoleAssistant {
		return "model"
	}
	return "user"
}

func responseText(resp *genai.GenerateContentResponse) string {
	var b strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				b.WriteString(string(text))
			}
		}
	}
	return b.String()
}
