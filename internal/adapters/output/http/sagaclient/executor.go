package sagaclient

import (
    "bytes"
    "context"
    "encoding/json"
    "fmt"
    "io"
    "log/slog"
    "net/http"
    "strings"
    "time"

    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/pkg/logattr"
)

const (
    commandsPath   = "/saga-commands"
    defaultTimeout = 10 * time.Second
)

// Executor runs saga steps on a remote participant process.
type Executor struct {
    baseURL    string
    token      string
    httpClient *http.Client
    logger     *slog.Logger
}

type ExecutorOpt func(e *Executor)

func WithBearerToken(token string) ExecutorOpt {
    return func(e *Executor) { e.token = token }
}

func WithHTTPClient(client *http.Client) ExecutorOpt {
    return func(e *Executor) { e.httpClient = client }
}

func NewExecutor(baseURL string, logger *slog.Logger, opts ...ExecutorOpt) *Executor {
    executor := &Executor{
        baseURL:    strings.TrimSuffix(baseURL, "/"),
        httpClient: &http.Client{Timeout: defaultTimeout},
        logger:     logger,
    }
    for _, opt := range opts {
        opt(executor)
    }
    return executor
}

func (e *Executor) Execute(ctx context.Context, stateMachine string, command dispatch.Command) (dispatch.Result, error) {
    body, err := dispatch.Encode(stateMachine, command)
    if err != nil {
        return nil, fmt.Errorf("%w: %s", shared.ErrInvalidSagaCommand, err.Error())
    }

    request, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+commandsPath, bytes.NewReader(body))
    if err != nil {
        return nil, fmt.Errorf("failed building saga command request: %w", err)
    }
    request.Header.Set("Content-Type", "application/json")
    if e.token != "" {
        request.Header.Set("Authorization", "Bearer "+e.token)
    }

    response, err := e.httpClient.Do(request)
    if err != nil {
        return nil, fmt.Errorf("%w: saga participant unreachable: %s", shared.ErrUnavailable, err.Error())
    }
    defer response.Body.Close()

    payload, err := io.ReadAll(response.Body)
    if err != nil {
        return nil, fmt.Errorf("%w: failed reading saga participant response: %s", shared.ErrUnavailable, err.Error())
    }

    if response.StatusCode < 200 || response.StatusCode > 299 {
        return nil, e.decodeError(response.StatusCode, payload, command.Action())
    }

    if len(bytes.TrimSpace(payload)) == 0 {
        return nil, nil
    }
    var result dispatch.Result
    err = json.Unmarshal(payload, &result)
    if err != nil {
        return nil, fmt.Errorf("failed decoding saga participant response: %w", err)
    }
    return result, nil
}

func (e *Executor) decodeError(status int, payload []byte, action string) error {
    var errorResponse dispatch.ErrorResponse
    err := json.Unmarshal(payload, &errorResponse)
    if err != nil || errorResponse.ErrorCode == "" {
        e.logger.Warn(
            "unexpected saga participant response",
            logattr.SagaStep(action),
            logattr.HttpStatus(status),
        )
        if status >= http.StatusInternalServerError {
            return fmt.Errorf("%w: saga participant answered %d", shared.ErrUnavailable, status)
        }
        return fmt.Errorf("saga participant answered %d", status)
    }
    return errorResponse.Err()
}
