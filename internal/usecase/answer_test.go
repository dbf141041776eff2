package usecase

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"doc-chat/internal/domain"
	"doc-chat/internal/integrations/openai"
)

type mockLLM struct {
	answer   string
	err      error
	readyErr error
	calls    int
	captured domain.CompletionRequest
}

func (m *mockLLM) Ready(_ context.Context) error {
	return m.readyErr
}

func (m *mockLLM) Chat(_ context.Context, in domain.CompletionRequest) (string, error) {
	m.calls++
	m.captured = in
	return m.answer, m.err
}

func newTestService(t *testing.T, llm LLMClient) *AnswerService {
	t.Helper()
	svc, err := NewAnswerService(llm, "")
	require.NoError(t, err)
	return svc
}

func expectAnswerError(t *testing.T, err error, code ErrorCode, message string) *Error {
	t.Helper()
	var usecaseErr *Error
	require.ErrorAs(t, err, &usecaseErr)
	require.Equal(t, code, usecaseErr.Code)
	require.Equal(t, message, usecaseErr.Message)
	return usecaseErr
}

func TestNewAnswerService_ValidatesDependencies(t *testing.T) {
	_, err := NewAnswerService(nil, "gpt-4o-mini")
	require.Error(t, err)

	svc, err := NewAnswerService(&mockLLM{}, "  ")
	require.NoError(t, err)
	require.Equal(t, DefaultModel, svc.model)

	svc, err = NewAnswerService(&mockLLM{}, "gpt-4o-mini")
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", svc.model)
}

func TestAnswer_WithContext(t *testing.T) {
	llm := &mockLLM{answer: "Returns are accepted within 30 days."}
	svc := newTestService(t, llm)

	question := "What is the refund policy?"
	docs := "Our refund policy allows returns within 30 days."
	out, err := svc.Answer(context.Background(), AnswerInput{Question: question, Context: docs})
	require.NoError(t, err)
	require.Equal(t, "Returns are accepted within 30 days.", out.Answer)

	require.Equal(t, 1, llm.calls)
	require.Equal(t, "gpt-3.5-turbo", llm.captured.Model)
	require.InDelta(t, 0.7, llm.captured.Temperature, 1e-9)
	require.Equal(t, 1500, llm.captured.MaxTokens)
	require.Len(t, llm.captured.Messages, 2)

	system := llm.captured.Messages[0]
	require.Equal(t, domain.RoleSystem, system.Role)
	require.Contains(t, system.Content, documentStartDelimiter+"\n"+docs+"\n"+documentEndDelimiter)

	user := llm.captured.Messages[1]
	require.Equal(t, domain.RoleUser, user.Role)
	require.Equal(t, question, user.Content)
}

func TestAnswer_ContextEmbeddedVerbatim(t *testing.T) {
	llm := &mockLLM{answer: "ok"}
	svc := newTestService(t, llm)

	docs := "  leading spaces\n\n\ttabbed line\n\nsecond doc  "
	_, err := svc.Answer(context.Background(), AnswerInput{Question: "  raw question? ", Context: docs})
	require.NoError(t, err)
	require.Contains(t, llm.captured.Messages[0].Content, documentStartDelimiter+"\n"+docs+"\n"+documentEndDelimiter)
	require.Equal(t, "  raw question? ", llm.captured.Messages[1].Content)
}

func TestAnswer_WithoutContext(t *testing.T) {
	for _, docs := range []string{"", "   ", "\n\n\t"} {
		t.Run(fmt.Sprintf("%q", docs), func(t *testing.T) {
			llm := &mockLLM{answer: "Hi."}
			svc := newTestService(t, llm)

			_, err := svc.Answer(context.Background(), AnswerInput{Question: "Hello?", Context: docs})
			require.NoError(t, err)
			require.Equal(t, genericSystemPrompt, llm.captured.Messages[0].Content)
			for _, m := range llm.captured.Messages {
				require.NotContains(t, m.Content, "DOCUMENT CONTENT")
			}
			require.Equal(t, "Hello?", llm.captured.Messages[1].Content)
		})
	}
}

func TestAnswer_EmptyQuestion(t *testing.T) {
	llm := &mockLLM{answer: "never"}
	svc := newTestService(t, llm)

	_, err := svc.Answer(context.Background(), AnswerInput{Context: "some docs"})
	expectAnswerError(t, err, ErrorValidation, MsgQuestionRequired)
	require.Zero(t, llm.calls)
}

func TestAnswer_MissingCredential(t *testing.T) {
	llm := &mockLLM{readyErr: openai.ErrMissingAPIKey}
	svc := newTestService(t, llm)

	_, err := svc.Answer(context.Background(), AnswerInput{Question: "What is the refund policy?"})
	expectAnswerError(t, err, ErrorConfiguration, MsgMissingCredential)
	require.Zero(t, llm.calls)
}

func TestAnswer_MissingCredentialCheckedBeforeValidation(t *testing.T) {
	llm := &mockLLM{readyErr: openai.ErrMissingAPIKey}
	svc := newTestService(t, llm)

	_, err := svc.Answer(context.Background(), AnswerInput{})
	expectAnswerError(t, err, ErrorConfiguration, MsgMissingCredential)
}

func TestAnswer_CredentialLoadFailure(t *testing.T) {
	llm := &mockLLM{readyErr: errors.New("ssm unavailable")}
	svc := newTestService(t, llm)

	_, err := svc.Answer(context.Background(), AnswerInput{Question: "Hi"})
	expectAnswerError(t, err, ErrorConfiguration, msgCredentialLoadFail)
	require.Zero(t, llm.calls)
}

func TestAnswer_FallbackOnEmptyCompletion(t *testing.T) {
	svc := newTestService(t, &mockLLM{answer: ""})
	out, err := svc.Answer(context.Background(), AnswerInput{Question: "Hi"})
	require.NoError(t, err)
	require.Equal(t, fallbackAnswer, out.Answer)
}

func TestAnswer_ProviderErrors(t *testing.T) {
	cases := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{
			name:    "rate limited with message",
			err:     fmt.Errorf("openai: request failed: %w", &openai.ProviderError{StatusCode: http.StatusTooManyRequests, Message: "Rate limit reached"}),
			status:  http.StatusTooManyRequests,
			message: "OpenAI API Error: Rate limit reached",
		},
		{
			name:    "unauthorized without message",
			err:     &openai.ProviderError{StatusCode: http.StatusUnauthorized},
			status:  http.StatusUnauthorized,
			message: "OpenAI API Error: Unknown error",
		},
		{
			name:    "nonsense status",
			err:     &openai.ProviderError{StatusCode: 42, Message: "weird"},
			status:  http.StatusInternalServerError,
			message: "OpenAI API Error: weird",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, &mockLLM{err: tc.err})
			_, err := svc.Answer(context.Background(), AnswerInput{Question: "Hi"})
			uerr := expectAnswerError(t, err, ErrorProvider, tc.message)
			require.Equal(t, tc.status, uerr.Status)
		})
	}
}

func TestAnswer_UnknownError(t *testing.T) {
	svc := newTestService(t, &mockLLM{err: errors.New("openai: request failed: connection refused")})
	_, err := svc.Answer(context.Background(), AnswerInput{Question: "Hi"})
	uerr := expectAnswerError(t, err, ErrorUnknown, "openai: request failed: connection refused")
	require.Zero(t, uerr.Status)
}

type blankError struct{}

func (blankError) Error() string { return "" }

func TestAnswer_UnknownErrorWithoutMessage(t *testing.T) {
	svc := newTestService(t, &mockLLM{err: blankError{}})
	_, err := svc.Answer(context.Background(), AnswerInput{Question: "Hi"})
	expectAnswerError(t, err, ErrorUnknown, MsgInternalFallback)
}

func TestBuildDocumentPrompt_IncludesRules(t *testing.T) {
	content := buildDocumentPrompt("doc text")
	require.Contains(t, content, "CRITICAL RULES:")
	require.Contains(t, content, "I don't see information about [topic]")
	require.Contains(t, content, "summarizing each document")
	require.Contains(t, content, "inconsistencies")
	require.Contains(t, content, "follow-up questions")
	require.Contains(t, content, "Do NOT tell the user that they forgot to ask a question")
	require.True(t, strings.HasSuffix(content, "Now answer questions based on this document content."))
}

func TestError_Format(t *testing.T) {
	e := newError(ErrorValidation, MsgQuestionRequired, nil)
	require.Equal(t, "usecase: VALIDATION_ERROR (Invalid request body: 'question' is required.)", e.Error())

	wrapped := errors.New("boom")
	e = newError(ErrorUnknown, "boom", wrapped)
	require.ErrorIs(t, e, wrapped)

	var nilErr *Error
	require.Equal(t, "", nilErr.Error())
	require.NoError(t, nilErr.Unwrap())
}
