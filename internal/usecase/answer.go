package usecase

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"doc-chat/internal/domain"
)

const (
	DefaultModel       = "gpt-3.5-turbo"
	defaultTemperature = 0.7
	defaultMaxTokens   = 1500
	fallbackAnswer     = "Sorry, I couldn't generate a response."
)

type LLMClient interface {
	Ready(ctx context.Context) error
	Chat(ctx context.Context, in domain.CompletionRequest) (string, error)
}

type httpStatusCoder interface {
	HTTPStatusCode() int
}

type providerMessager interface {
	ProviderMessage() string
}

// AnswerService answers one question per call. It holds no per-request state
// and is safe for concurrent use.
type AnswerService struct {
	llm   LLMClient
	model string
}

type AnswerInput struct {
	Question string
	Context  string
}

type AnswerOutput struct {
	Answer string
}

func NewAnswerService(llm LLMClient, model string) (*AnswerService, error) {
	if llm == nil {
		return nil, errors.New("usecase: llm client must not be nil")
	}
	model = strings.TrimSpace(model)
	if model == "" {
		model = DefaultModel
	}
	return &AnswerService{llm: llm, model: model}, nil
}

// Answer validates the input, builds the prompt and calls the provider once.
// Every returned error is a *Error.
func (s *AnswerService) Answer(ctx context.Context, in AnswerInput) (AnswerOutput, error) {
	if err := s.llm.Ready(ctx); err != nil {
		if errors.Is(err, domain.ErrMissingCredential) {
			return AnswerOutput{}, newError(ErrorConfiguration, MsgMissingCredential, err)
		}
		return AnswerOutput{}, newError(ErrorConfiguration, msgCredentialLoadFail, err)
	}
	if in.Question == "" {
		return AnswerOutput{}, newError(ErrorValidation, MsgQuestionRequired, nil)
	}

	answer, err := s.llm.Chat(ctx, domain.CompletionRequest{
		Model:       s.model,
		Messages:    buildPromptMessages(in.Question, in.Context),
		Temperature: defaultTemperature,
		MaxTokens:   defaultMaxTokens,
	})
	if err != nil {
		return AnswerOutput{}, classifyChatError(err)
	}
	if answer == "" {
		answer = fallbackAnswer
	}
	return AnswerOutput{Answer: answer}, nil
}

func classifyChatError(err error) *Error {
	if status, ok := upstreamStatusCode(err); ok {
		msg := msgProviderUnknown
		var pm providerMessager
		if errors.As(err, &pm) && pm.ProviderMessage() != "" {
			msg = pm.ProviderMessage()
		}
		if status < 100 || status > 599 {
			status = http.StatusInternalServerError
		}
		e := newError(ErrorProvider, msgProviderPrefix+msg, err)
		e.Status = status
		return e
	}
	if errors.Is(err, domain.ErrMissingCredential) {
		return newError(ErrorConfiguration, MsgMissingCredential, err)
	}
	msg := err.Error()
	if msg == "" {
		msg = MsgInternalFallback
	}
	return newError(ErrorUnknown, msg, err)
}

func upstreamStatusCode(err error) (int, bool) {
	var statusErr httpStatusCoder
	if !errors.As(err, &statusErr) {
		return 0, false
	}
	return statusErr.HTTPStatusCode(), true
}
