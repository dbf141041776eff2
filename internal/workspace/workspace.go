// Package workspace owns the documents and chat transcript of one user and
// mirrors them to a key-value store after every change.
package workspace

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"doc-chat/internal/domain"
)

const (
	// StateKey is the single key the snapshot is stored under.
	StateKey = "rag-chatbot-data"

	apologyMessage   = "Sorry, something went wrong. Please try again."
	bootstrapFailure = "Error loading initial data. Please refresh the page."
)

var (
	ErrBusy          = errors.New("workspace: a question is already in flight")
	ErrEmptyQuestion = errors.New("workspace: question must not be blank")
)

type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
}

// Asker sends one question with its document context to the answer service.
type Asker interface {
	Ask(ctx context.Context, question, documentContext string) (string, error)
}

type Workspace struct {
	store     Store
	asker     Asker
	bootstrap Bootstrap
	logger    *slog.Logger

	mu    sync.Mutex
	state domain.PersistedState
	busy  atomic.Bool
}

type Option func(*Workspace)

func WithBootstrap(b Bootstrap) Option {
	return func(w *Workspace) {
		if b != nil {
			w.bootstrap = b
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(w *Workspace) {
		if l != nil {
			w.logger = l
		}
	}
}

func New(store Store, asker Asker, opts ...Option) (*Workspace, error) {
	if store == nil {
		return nil, errors.New("workspace: store must not be nil")
	}
	if asker == nil {
		return nil, errors.New("workspace: asker must not be nil")
	}
	w := &Workspace{
		store:     store,
		asker:     asker,
		bootstrap: EmbeddedBootstrap(),
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Load restores the saved snapshot. An absent, unreadable or corrupt value
// falls back to the bootstrap data, which is then saved. If the bootstrap
// also fails, the transcript holds a single error message and the bootstrap
// error is returned.
func (w *Workspace) Load(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	raw, ok, err := w.store.Get(ctx, StateKey)
	if err != nil {
		w.logger.WarnContext(ctx, "failed to read saved state, using bootstrap data", "err", err)
		ok = false
	}
	if ok {
		if state, valid := decodeState(raw); valid {
			w.state = state
			return nil
		}
		w.logger.WarnContext(ctx, "saved state is corrupt, using bootstrap data")
	}

	state, err := w.bootstrap(ctx)
	if err != nil {
		w.state = domain.PersistedState{
			Documents:   []domain.Document{},
			ChatHistory: []domain.ChatMessage{{Role: domain.AuthorAI, Content: bootstrapFailure}},
		}
		return fmt.Errorf("workspace: load bootstrap data: %w", err)
	}
	w.state = state
	return w.saveLocked(ctx)
}

// Save writes the current snapshot.
func (w *Workspace) Save(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.saveLocked(ctx)
}

// AddDocument appends doc and persists.
func (w *Workspace) AddDocument(ctx context.Context, doc domain.Document) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.Documents = append(w.state.Documents, doc)
	return w.saveLocked(ctx)
}

// Ask appends the question, asks the answer service and appends its answer.
// A failed call appends an apology instead; the failure is logged and the
// transcript is kept. Only one Ask may run at a time.
func (w *Workspace) Ask(ctx context.Context, question string) (domain.ChatMessage, error) {
	if strings.TrimSpace(question) == "" {
		return domain.ChatMessage{}, ErrEmptyQuestion
	}
	if !w.busy.CompareAndSwap(false, true) {
		return domain.ChatMessage{}, ErrBusy
	}
	defer w.busy.Store(false)

	w.mu.Lock()
	w.state.ChatHistory = append(w.state.ChatHistory, domain.ChatMessage{Role: domain.AuthorUser, Content: question})
	documentContext := domain.PromptContext(w.state.Documents)
	docCount := len(w.state.Documents)
	err := w.saveLocked(ctx)
	w.mu.Unlock()
	if err != nil {
		return domain.ChatMessage{}, err
	}

	if docCount > 0 && strings.TrimSpace(documentContext) == "" {
		w.logger.WarnContext(ctx, "documents exist but context is empty", "documents", docCount)
	}

	reply := domain.ChatMessage{Role: domain.AuthorAI}
	answer, askErr := w.asker.Ask(ctx, question, documentContext)
	if askErr != nil || answer == "" {
		w.logger.ErrorContext(ctx, "failed to get answer", "err", askErr)
		reply.Content = apologyMessage
	} else {
		reply.Content = answer
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.state.ChatHistory = append(w.state.ChatHistory, reply)
	if err := w.saveLocked(ctx); err != nil {
		return reply, err
	}
	return reply, nil
}

// Busy reports whether an Ask is in flight.
func (w *Workspace) Busy() bool {
	return w.busy.Load()
}

// Snapshot returns a copy of the current state.
func (w *Workspace) Snapshot() domain.PersistedState {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.PersistedState{
		Documents:   append([]domain.Document{}, w.state.Documents...),
		ChatHistory: append([]domain.ChatMessage{}, w.state.ChatHistory...),
	}
}

// Context is the prompt context the next question would carry.
func (w *Workspace) Context() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return domain.PromptContext(w.state.Documents)
}

func (w *Workspace) saveLocked(ctx context.Context) error {
	raw, err := encodeState(w.state)
	if err != nil {
		return err
	}
	if err := w.store.Put(ctx, StateKey, raw); err != nil {
		return fmt.Errorf("workspace: save state: %w", err)
	}
	return nil
}

// storedState uses pointers so that missing lists can be told apart from
// empty ones.
type storedState struct {
	Documents   *[]domain.Document    `json:"documents"`
	ChatHistory *[]domain.ChatMessage `json:"chatHistory"`
}

// decodeState accepts only values holding both lists.
func decodeState(raw []byte) (domain.PersistedState, bool) {
	var s storedState
	if err := json.Unmarshal(raw, &s); err != nil {
		return domain.PersistedState{}, false
	}
	if s.Documents == nil || s.ChatHistory == nil {
		return domain.PersistedState{}, false
	}
	return domain.PersistedState{Documents: *s.Documents, ChatHistory: *s.ChatHistory}, true
}

func encodeState(state domain.PersistedState) ([]byte, error) {
	if state.Documents == nil {
		state.Documents = []domain.Document{}
	}
	if state.ChatHistory == nil {
		state.ChatHistory = []domain.ChatMessage{}
	}
	raw, err := json.Marshal(state)
	if err != nil {
		return nil, fmt.Errorf("workspace: encode state: %w", err)
	}
	return raw, nil
}
