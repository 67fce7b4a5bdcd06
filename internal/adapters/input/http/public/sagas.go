package public

import (
    "context"
    "net/http"

    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/saga"

    "github.com/danielgtaylor/huma/v2"
)

type sagaRunOutput struct {
    Body SagaRunResponse `json:"body"`
}

func (s *Server) registerSagas(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID: "list-saga-runs",
        Method:      http.MethodGet,
        Path:        "/sagas",
        Summary:     "List saga runs",
    }, func(ctx context.Context, input *struct {
        Status string `query:"status" enum:"RUNNING,COMPENSATING,COMPLETED,COMPENSATED,FAILED" required:"false"`
    }) (*struct {
        Body []SagaRunResponse `json:"body"`
    }, error) {
        runs, err := s.services.Sagas.List(ctx, saga.Status(input.Status))
        if err != nil {
            return nil, s.handleError(err, "list-saga-runs")
        }
        responses := make([]SagaRunResponse, 0, len(runs))
        for _, run := range runs {
            responses = append(responses, sagaRunResponse(run))
        }
        return &struct {
            Body []SagaRunResponse `json:"body"`
        }{Body: responses}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "get-saga-run",
        Method:      http.MethodGet,
        Path:        "/sagas/{id}",
        Summary:     "Get a saga run",
    }, func(ctx context.Context, input *idPath) (*sagaRunOutput, error) {
        run, err := s.services.Sagas.Find(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "get-saga-run")
        }
        return &sagaRunOutput{Body: sagaRunResponse(run)}, nil
    })

    huma.Register(api, huma.Operation{
        OperationID: "resume-saga-run",
        Method:      http.MethodPost,
        Path:        "/sagas/{id}/resume",
        Summary:     "Resume a failed saga run",
    }, func(ctx context.Context, input *idPath) (*sagaRunOutput, error) {
        run, err := s.services.Sagas.Resume(ctx, input.ID)
        if err != nil {
            return nil, s.handleError(err, "resume-saga-run")
        }
        return &sagaRunOutput{Body: sagaRunResponse(run)}, nil
    })
}

// registerSagaCommands exposes the participants to a remote orchestrator.
// The body is the flat step invocation produced by dispatch.Encode.
func (s *Server) registerSagaCommands(api huma.API) {
    huma.Register(api, huma.Operation{
        OperationID: "saga-command",
        Method:      http.MethodPost,
        Path:        "/saga-commands",
        Summary:     "Execute a saga step",
    }, func(ctx context.Context, input *struct {
        RawBody []byte
    }) (*struct {
        Body dispatch.Result `json:"body"`
    }, error) {
        taskContext, result, err := dispatch.Dispatch(ctx, s.services.SagaParticipants, input.RawBody)
        if err != nil {
            return nil, s.handleError(err, taskContext.StateMachine+"."+taskContext.Action)
        }
        if result == nil {
            result = dispatch.Result{}
        }
        return &struct {
            Body dispatch.Result `json:"body"`
        }{Body: result}, nil
    })
}
