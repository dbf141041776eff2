package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/aws/aws-lambda-go/events"
	"github.com/google/uuid"

	"doc-chat/internal/usecase"
)

const correlationHeader = "X-Correlation-Id"

// maxBodyBytes bounds the request body: documents travel inside it.
const maxBodyBytes = 8 << 20

type Answerer interface {
	Answer(ctx context.Context, in usecase.AnswerInput) (usecase.AnswerOutput, error)
}

type chatRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type answerData struct {
	Answer string `json:"answer"`
}

type successResponse struct {
	Success bool       `json:"success"`
	Data    answerData `json:"data"`
}

type errorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// Handler serves the chat endpoint for both API Gateway and plain net/http.
type Handler struct {
	answerer Answerer
	logger   *slog.Logger
}

func NewHandler(a Answerer) (*Handler, error) {
	if a == nil {
		return nil, errors.New("handler: answerer must not be nil")
	}
	return &Handler{answerer: a, logger: slog.Default()}, nil
}

// Handle is the Lambda entry point for API Gateway proxy events.
func (h *Handler) Handle(ctx context.Context, event events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	correlationID := headerValue(event.Headers, correlationHeader)
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	body := []byte(event.Body)
	if event.IsBase64Encoded {
		decoded, err := base64.StdEncoding.DecodeString(event.Body)
		if err != nil {
			body = nil
		} else {
			body = decoded
		}
	}

	status, payload := h.respond(ctx, correlationID, body)
	raw, err := json.Marshal(payload)
	if err != nil {
		return events.APIGatewayProxyResponse{}, fmt.Errorf("handler: marshal response: %w", err)
	}
	return events.APIGatewayProxyResponse{
		StatusCode: status,
		Headers: map[string]string{
			"Content-Type":    "application/json",
			correlationHeader: correlationID,
		},
		Body: string(raw),
	}, nil
}

// respond decodes the body, calls the answerer and maps the outcome to a
// status and JSON payload. It never panics outward.
func (h *Handler) respond(ctx context.Context, correlationID string, body []byte) (status int, payload any) {
	log := h.logger.With("correlation_id", correlationID)
	defer func() {
		if r := recover(); r != nil {
			log.ErrorContext(ctx, "panic while answering", "panic", r)
			status, payload = http.StatusInternalServerError, errorResponse{Error: usecase.MsgInternalFallback}
		}
	}()

	var req chatRequest
	if err := json.Unmarshal(body, &req); err != nil {
		log.WarnContext(ctx, "malformed request body", "err", err)
		return http.StatusBadRequest, errorResponse{Error: usecase.MsgMalformedBody}
	}

	log.InfoContext(ctx, "answering question",
		"question_length", len(req.Question),
		"context_length", len(req.Context),
		"has_context", strings.TrimSpace(req.Context) != "",
	)

	out, err := h.answerer.Answer(ctx, usecase.AnswerInput{Question: req.Question, Context: req.Context})
	if err != nil {
		status, message := mapError(err)
		if status < http.StatusInternalServerError {
			log.WarnContext(ctx, "request rejected", "status", status, "err", err)
		} else {
			log.ErrorContext(ctx, "answer failed", "status", status, "err", err)
		}
		return status, errorResponse{Error: message}
	}
	return http.StatusOK, successResponse{Success: true, Data: answerData{Answer: out.Answer}}
}

func mapError(err error) (int, string) {
	var uerr *usecase.Error
	if !errors.As(err, &uerr) {
		msg := err.Error()
		if msg == "" {
			msg = usecase.MsgInternalFallback
		}
		return http.StatusInternalServerError, msg
	}
	switch uerr.Code {
	case usecase.ErrorValidation:
		return http.StatusBadRequest, uerr.Message
	case usecase.ErrorProvider:
		if uerr.Status != 0 {
			return uerr.Status, uerr.Message
		}
		return http.StatusInternalServerError, uerr.Message
	default:
		return http.StatusInternalServerError, uerr.Message
	}
}

// headerValue looks up a header case-insensitively; API Gateway forwards
// headers with whatever casing the client sent.
func headerValue(headers map[string]string, name string) string {
	if v, ok := headers[name]; ok {
		return strings.TrimSpace(v)
	}
	for k, v := range headers {
		if strings.EqualFold(k, name) {
			return strings.TrimSpace(v)
		}
	}
	return ""
}
