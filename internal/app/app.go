// Package app wires configuration into the concrete services shared by the
// binaries under cmd/.
package app

import (
	"context"
	"fmt"
	"io"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awsssm "github.com/aws/aws-sdk-go-v2/service/ssm"

	"doc-chat/internal/config"
	"doc-chat/internal/integrations/openai"
	"doc-chat/internal/integrations/paramstore"
	"doc-chat/internal/repository"
	"doc-chat/internal/usecase"
	"doc-chat/internal/workspace"
)

// NewAnswerService builds the OpenAI client and the answer service. AWS
// configuration is loaded only when PARAM_PREFIX is set.
func NewAnswerService(ctx context.Context, cfg *config.Config) (*usecase.AnswerService, *openai.Client, error) {
	opts := []openai.Option{
		openai.WithAPIKey(cfg.OpenAI.APIKey),
		openai.WithBaseURL(cfg.OpenAI.BaseURL),
		openai.WithTimeout(cfg.OpenAI.Timeout),
	}
	if cfg.ParamPrefix != "" {
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		ssmClient, err := paramstore.New(awsssm.NewFromConfig(awsCfg))
		if err != nil {
			return nil, nil, fmt.Errorf("app: create SSM client: %w", err)
		}
		opts = append(opts, openai.WithParamStore(ssmClient, cfg.ParamPrefix))
	}

	llm, err := openai.NewClient(opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("app: create OpenAI client: %w", err)
	}
	svc, err := usecase.NewAnswerService(llm, cfg.OpenAI.Model)
	if err != nil {
		return nil, nil, fmt.Errorf("app: create answer service: %w", err)
	}
	return svc, llm, nil
}

// NewStore opens the state backend named by STATE_BACKEND. The returned
// closer releases any connection the store holds.
func NewStore(ctx context.Context, cfg *config.Config) (workspace.Store, io.Closer, error) {
	switch cfg.State.Backend {
	case config.BackendMemory:
		return repository.NewMemoryStore(), nopCloser{}, nil
	case config.BackendDynamoDB:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, nil, fmt.Errorf("app: load AWS config: %w", err)
		}
		store, err := repository.NewDynamoStore(awsdynamodb.NewFromConfig(awsCfg), cfg.State.Table)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	case config.BackendRedis:
		client, err := repository.NewRedisClient(ctx, cfg.State.RedisAddr, cfg.State.RedisPassword, cfg.State.RedisDB)
		if err != nil {
			return nil, nil, err
		}
		store, err := repository.NewRedisStore(client)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		return store, client, nil
	default:
		store, err := repository.NewFileStore(cfg.State.Dir)
		if err != nil {
			return nil, nil, err
		}
		return store, nopCloser{}, nil
	}
}

// Bootstrap picks BOOTSTRAP_FILE when set and the embedded data otherwise.
func Bootstrap(cfg *config.Config) workspace.Bootstrap {
	if cfg.State.BootstrapFile != "" {
		return workspace.FileBootstrap(cfg.State.BootstrapFile)
	}
	return workspace.EmbeddedBootstrap()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
