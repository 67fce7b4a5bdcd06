package saga

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "log/slog"
    "time"

    "github.com/walletera/food-delivery/internal/aggregates"
    "github.com/walletera/food-delivery/internal/dispatch"
    "github.com/walletera/food-delivery/internal/domain/shared"
    "github.com/walletera/food-delivery/internal/eventstore"
    "github.com/walletera/food-delivery/pkg/logattr"

    "go.opentelemetry.io/otel"
    "go.opentelemetry.io/otel/attribute"
    "go.opentelemetry.io/otel/codes"
    "go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/walletera/food-delivery/internal/saga"

var (
    ErrUnknownSaga   = shared.NewError(shared.ErrInvalidSagaCommand, "unknown saga")
    ErrNotResumable  = shared.NewError(shared.ErrUnsupportedStateTransition, "saga run is not failed")
    ErrSagaRunFailed = errors.New("saga run failed")
)

// StepExecutor invokes a saga step on the participant owning it.
type StepExecutor interface {
    Execute(ctx context.Context, stateMachine string, command dispatch.Command) (dispatch.Result, error)
}

type Orchestrator struct {
    runs        *aggregates.Repository[*Run]
    executor    StepExecutor
    definitions map[string]Definition
    tracer      trace.Tracer
    now         func() time.Time
    logger      *slog.Logger
}

type OrchestratorOpt func(o *Orchestrator)

func WithClock(now func() time.Time) OrchestratorOpt {
    return func(o *Orchestrator) { o.now = now }
}

func WithTracer(tracer trace.Tracer) OrchestratorOpt {
    return func(o *Orchestrator) { o.tracer = tracer }
}

func NewOrchestrator(store aggregates.RecordStore, recorder *eventstore.Recorder, executor StepExecutor, logger *slog.Logger, opts ...OrchestratorOpt) *Orchestrator {
    orchestrator := &Orchestrator{
        runs:        aggregates.NewRepository(store, recorder, NewRun),
        executor:    executor,
        definitions: map[string]Definition{},
        tracer:      otel.Tracer(tracerName),
        now:         time.Now,
        logger:      logger,
    }
    for _, definition := range Definitions() {
        orchestrator.definitions[definition.Name] = definition
    }
    for _, opt := range opts {
        opt(orchestrator)
    }
    return orchestrator
}

// Start creates the run and drives it. Starting an existing run drives it
// further unless it already finished or failed.
func (o *Orchestrator) Start(ctx context.Context, sagaName string, runID string, data any) (*Run, error) {
    definition, ok := o.definitions[sagaName]
    if !ok {
        return nil, fmt.Errorf("%w: %s", ErrUnknownSaga, sagaName)
    }
    run := NewRun()
    run.ID = runID
    run.SagaName = sagaName
    run.Status = Running
    run.CreatedAt = o.now()
    run.UpdatedAt = run.CreatedAt
    if err := run.Merge(data); err != nil {
        return nil, err
    }
    _, err := o.runs.Create(ctx, run)
    if errors.Is(err, shared.ErrAlreadyExists) {
        run, err = o.runs.Find(ctx, runID)
        if err != nil {
            return nil, err
        }
        if run.Status.Terminal() || run.Status == Failed {
            o.logger.Info(
                "saga run already started",
                logattr.SagaRunId(runID),
                logattr.SagaStatus(string(run.Status)),
            )
            return run, nil
        }
    } else if err != nil {
        return nil, err
    } else {
        o.logger.Info("saga run started", logattr.SagaName(sagaName), logattr.SagaRunId(runID))
    }
    return o.drive(ctx, definition, run)
}

// Resume restarts a FAILED run at the step or compensation it stopped on.
func (o *Orchestrator) Resume(ctx context.Context, runID string) (*Run, error) {
    run, err := o.Find(ctx, runID)
    if err != nil {
        return nil, err
    }
    if run.Status != Failed {
        return nil, fmt.Errorf("%w: %s is %s", ErrNotResumable, runID, run.Status)
    }
    definition, ok := o.definitions[run.SagaName]
    if !ok {
        return nil, fmt.Errorf("%w: %s", ErrUnknownSaga, run.SagaName)
    }
    run.Status = Running
    if len(run.PendingCompensations) > 0 {
        run.Status = Compensating
    }
    run.FailedStep = ""
    run.ErrorCode = ""
    run.Error = ""
    if err := o.save(ctx, run); err != nil {
        return nil, err
    }
    o.logger.Info("saga run resumed", logattr.SagaRunId(runID), logattr.SagaStatus(string(run.Status)))
    return o.drive(ctx, definition, run)
}

func (o *Orchestrator) Find(ctx context.Context, runID string) (*Run, error) {
    run, err := o.runs.Find(ctx, runID)
    if errors.Is(err, shared.ErrNotFound) {
        return nil, fmt.Errorf("%w: %s", ErrRunNotFound, runID)
    }
    return run, err
}

// List returns the runs in the given status, or every run when status is
// empty.
func (o *Orchestrator) List(ctx context.Context, status Status) ([]*Run, error) {
    filter := aggregates.Filter{}
    if status != "" {
        filter["status"] = status
    }
    return o.runs.FindBy(ctx, filter)
}

// drive runs steps until the run completes, is compensated, fails or hits a
// transient error. Transient errors are returned untouched so the caller can
// retry the whole trigger; the run is left as it was.
func (o *Orchestrator) drive(ctx context.Context, definition Definition, run *Run) (*Run, error) {
    ctx, span := o.tracer.Start(ctx, "saga."+definition.Name, trace.WithAttributes(
        attribute.String("saga.run_id", run.ID),
    ))
    defer span.End()

    logger := o.logger.With(logattr.SagaName(definition.Name), logattr.SagaRunId(run.ID))
    for {
        var err error
        switch run.Status {
        case Running:
            if run.Cursor >= len(definition.Steps) {
                run.Status = Completed
                err = o.save(ctx, run)
                if err == nil {
                    logger.Info("saga run completed")
                }
                return o.finish(span, run, err)
            }
            err = o.forward(ctx, definition, run, logger)
        case Compensating:
            if len(run.PendingCompensations) == 0 {
                run.Status = Compensated
                err = o.save(ctx, run)
                if err == nil {
                    logger.Info("saga run compensated", logattr.SagaStep(run.FailedStep))
                }
                return o.finish(span, run, err)
            }
            err = o.compensate(ctx, definition, run, logger)
        case Failed:
            logger.Error(
                "saga run failed",
                logattr.SagaStep(run.FailedStep),
                logattr.Error(run.Error),
            )
            return o.finish(span, run, nil)
        default:
            return o.finish(span, run, nil)
        }
        if err != nil {
            return o.finish(span, run, err)
        }
    }
}

func (o *Orchestrator) forward(ctx context.Context, definition Definition, run *Run, logger *slog.Logger) error {
    step := definition.Steps[run.Cursor]
    result, err := o.execute(ctx, definition, run, step.Action)
    if err != nil && o.alreadyApplied(run, err) {
        logger.Warn("saga step already applied", logattr.SagaStep(step.Action), logattr.Error(err.Error()))
        err = nil
    }
    switch {
    case err == nil:
        if mergeErr := run.Merge(result); mergeErr != nil {
            return mergeErr
        }
        logger.Info("saga step succeeded", logattr.SagaStep(step.Action))
    case shared.IsTransient(err):
        return err
    case step.compensable(err):
        logger.Warn("saga step failed, compensating", logattr.SagaStep(step.Action), logattr.Error(err.Error()))
        run.Status = Compensating
        run.recordFailure(step.Action, err)
        run.PendingCompensations = compensationsFor(definition, run.CompensationStack)
        return o.save(ctx, run)
    case step.BestEffort:
        logger.Warn("best effort saga step failed", logattr.SagaStep(step.Action), logattr.Error(err.Error()))
    default:
        run.Status = Failed
        run.recordFailure(step.Action, err)
        return o.save(ctx, run)
    }
    run.CompensationStack = append(run.CompensationStack, step.Action)
    run.Cursor++
    run.Attempts = 0
    return o.save(ctx, run)
}

func (o *Orchestrator) compensate(ctx context.Context, definition Definition, run *Run, logger *slog.Logger) error {
    action := run.PendingCompensations[0]
    _, err := o.execute(ctx, definition, run, action)
    if err != nil && o.alreadyApplied(run, err) {
        logger.Warn("saga compensation already applied", logattr.SagaStep(action), logattr.Error(err.Error()))
        err = nil
    }
    if err != nil {
        if shared.IsTransient(err) {
            return err
        }
        run.Status = Failed
        run.recordFailure(action, err)
        return o.save(ctx, run)
    }
    logger.Info("saga compensation succeeded", logattr.SagaStep(action))
    run.PendingCompensations = run.PendingCompensations[1:]
    run.Attempts = 0
    return o.save(ctx, run)
}

// execute persists the attempt before calling the participant, so a retry
// after a crash knows the step may already have been applied.
func (o *Orchestrator) execute(ctx context.Context, definition Definition, run *Run, action string) (dispatch.Result, error) {
    ctx, span := o.tracer.Start(ctx, "saga.step."+action, trace.WithAttributes(
        attribute.String("saga.run_id", run.ID),
        attribute.Int("saga.attempt", run.Attempts+1),
    ))
    defer span.End()

    run.Attempts++
    if err := o.save(ctx, run); err != nil {
        run.Attempts--
        recordSpanError(span, err)
        return nil, err
    }
    command, err := o.command(definition, run, action)
    if err != nil {
        recordSpanError(span, err)
        return nil, err
    }
    result, err := o.executor.Execute(ctx, definition.Name, command)
    if err != nil {
        recordSpanError(span, err)
        return nil, err
    }
    return result, nil
}

func (o *Orchestrator) command(definition Definition, run *Run, action string) (dispatch.Command, error) {
    fields, err := json.Marshal(run.Data)
    if err != nil {
        return nil, err
    }
    return dispatch.DecodeCommand(dispatch.TaskContext{StateMachine: definition.Name, Action: action}, fields)
}

func (o *Orchestrator) alreadyApplied(run *Run, err error) bool {
    return run.Attempts > 1 && errors.Is(err, shared.ErrUnsupportedStateTransition)
}

func (o *Orchestrator) save(ctx context.Context, run *Run) error {
    run.UpdatedAt = o.now()
    _, err := o.runs.Update(ctx, run)
    return err
}

func (o *Orchestrator) finish(span trace.Span, run *Run, err error) (*Run, error) {
    span.SetAttributes(attribute.String("saga.status", string(run.Status)))
    if err != nil {
        recordSpanError(span, err)
        return run, err
    }
    if run.Status == Failed {
        span.SetStatus(codes.Error, run.Error)
    }
    return run, nil
}

// recordFailure clears the attempt counter: a known failure means the
// participant answered, so a resumed step is a fresh attempt.
func (r *Run) recordFailure(action string, err error) {
    r.Attempts = 0
    r.FailedStep = action
    r.ErrorCode = dispatch.ErrorCode(err)
    r.Error = err.Error()
}

// compensationsFor lists, newest first, the compensations of the succeeded
// steps followed by the terminal compensation of the saga.
func compensationsFor(definition Definition, stack []string) []string {
    var compensations []string
    for i := len(stack) - 1; i >= 0; i-- {
        step, ok := definition.step(stack[i])
        if ok && step.Compensation != "" {
            compensations = append(compensations, step.Compensation)
        }
    }
    if definition.OnCompensated != "" {
        compensations = append(compensations, definition.OnCompensated)
    }
    return compensations
}

func recordSpanError(span trace.Span, err error) {
    span.RecordError(err)
    span.SetStatus(codes.Error, err.Error())
}
