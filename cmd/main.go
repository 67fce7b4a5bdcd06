package main

import (
    "context"
    "encoding/json"
    "fmt"
    "os"
    "os/signal"
    "strings"
    "syscall"
    "time"

    "github.com/walletera/food-delivery/internal/app"
    "github.com/walletera/food-delivery/internal/config"
    "github.com/walletera/food-delivery/internal/saga"

    "github.com/jedib0t/go-pretty/v6/table"
    "github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var v = config.NewViper()

var rootCmd = &cobra.Command{
    Use:           "food-delivery",
    Short:         "Food delivery services with saga orchestration",
    SilenceUsage:  true,
    SilenceErrors: true,
}

func main() {
    addPersistentFlags()
    registerCommands()
    if err := rootCmd.Execute(); err != nil {
        fmt.Fprintln(os.Stderr, "error:", err)
        os.Exit(1)
    }
}

func addPersistentFlags() {
    flags := rootCmd.PersistentFlags()
    flags.StringP("config", "c", "", "path of a food-delivery.yml file")
    flags.String("storage", "", "storage backend: memory, mongodb, sqlite, mysql")
    flags.String("sequencer", "", "sequencer backend: store, redis")
    flags.String("mongodb-url", "", "mongodb connection string")
    flags.String("sql-dsn", "", "sqlite or mysql data source name")
    flags.String("redis-addr", "", "redis address")
    flags.String("transport", "", "transport backend: local, rabbitmq")
    bindFlag("config", "config")
    bindFlag("storage.backend", "storage")
    bindFlag("storage.sequencer", "sequencer")
    bindFlag("storage.mongodb_url", "mongodb-url")
    bindFlag("storage.sql_dsn", "sql-dsn")
    bindFlag("storage.redis_addr", "redis-addr")
    bindFlag("transport.backend", "transport")
}

// bindFlag binds a flag only when it is passed, so an unset flag does not
// shadow the config file.
func bindFlag(key string, flag string) {
    cobra.OnInitialize(func() {
        if rootCmd.PersistentFlags().Changed(flag) {
            _ = v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag))
        }
    })
}

func registerCommands() {
    rootCmd.AddCommand(serveCmd())
    rootCmd.AddCommand(sagasCmd())
    rootCmd.AddCommand(eventsCmd())
}

func loadConfig() (*config.Config, error) {
    return config.Load(v.GetString("config"), v)
}

func newApp(extra ...app.Option) (*app.App, error) {
    cfg, err := loadConfig()
    if err != nil {
        return nil, err
    }
    return app.NewApp(append(cfg.AppOptions(), extra...)...)
}

func serveCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "serve",
        Short: "Run the services, the relay and the public api",
        RunE: func(cmd *cobra.Command, args []string) error {
            ctx, ctxCancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
            defer ctxCancel()

            application, err := newApp()
            if err != nil {
                return err
            }

            err = application.Run(ctx)
            if err != nil {
                return err
            }

            <-ctx.Done()

            shutdownCtx, shutdownCtxCancel := context.WithTimeout(context.Background(), shutdownTimeout)
            defer shutdownCtxCancel()

            application.Stop(shutdownCtx)
            return nil
        },
    }
}

// withOpenApp runs fn against an app whose stores are open but which
// neither consumes nor serves.
func withOpenApp(cmd *cobra.Command, fn func(ctx context.Context, application *app.App) error) error {
    application, err := newApp()
    if err != nil {
        return err
    }
    ctx := cmd.Context()
    err = application.Open(ctx)
    if err != nil {
        return err
    }
    defer application.Close(ctx)
    return fn(ctx, application)
}

func sagasCmd() *cobra.Command {
    sagas := &cobra.Command{Use: "sagas", Short: "Inspect and resume saga runs"}
    sagas.AddCommand(sagasListCmd())
    sagas.AddCommand(sagasShowCmd())
    sagas.AddCommand(sagasResumeCmd())
    return sagas
}

func sagasListCmd() *cobra.Command {
    var status string
    cmd := &cobra.Command{
        Use:   "list",
        Short: "List saga runs",
        RunE: func(cmd *cobra.Command, args []string) error {
            return withOpenApp(cmd, func(ctx context.Context, application *app.App) error {
                runs, err := application.Orchestrator().List(ctx, saga.Status(strings.ToUpper(status)))
                if err != nil {
                    return err
                }
                tw := table.NewWriter()
                tw.SetOutputMirror(cmd.OutOrStdout())
                tw.AppendHeader(table.Row{"ID", "Saga", "Status", "Cursor", "Failed Step", "Error", "Updated"})
                for _, run := range runs {
                    tw.AppendRow(table.Row{
                        run.AggregateID(),
                        run.SagaName,
                        run.Status,
                        run.Cursor,
                        run.FailedStep,
                        run.ErrorCode,
                        run.UpdatedAt.Format(time.RFC3339),
                    })
                }
                tw.Render()
                return nil
            })
        },
    }
    cmd.Flags().StringVar(&status, "status", "", "only runs in this status")
    return cmd
}

func sagasShowCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "show <id>",
        Short: "Show a saga run",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            return withOpenApp(cmd, func(ctx context.Context, application *app.App) error {
                run, err := application.Orchestrator().Find(ctx, args[0])
                if err != nil {
                    return err
                }
                return printRun(cmd, run)
            })
        },
    }
}

func sagasResumeCmd() *cobra.Command {
    return &cobra.Command{
        Use:   "resume <id>",
        Short: "Resume a failed saga run from where it stopped",
        Args:  cobra.ExactArgs(1),
        RunE: func(cmd *cobra.Command, args []string) error {
            return withOpenApp(cmd, func(ctx context.Context, application *app.App) error {
                run, err := application.Orchestrator().Resume(ctx, args[0])
                if err != nil {
                    return err
                }
                return printRun(cmd, run)
            })
        },
    }
}

func printRun(cmd *cobra.Command, run *saga.Run) error {
    tw := table.NewWriter()
    tw.SetOutputMirror(cmd.OutOrStdout())
    tw.AppendRows([]table.Row{
        {"ID", run.AggregateID()},
        {"Saga", run.SagaName},
        {"Status", run.Status},
        {"Cursor", run.Cursor},
        {"Attempts", run.Attempts},
        {"Compensation Stack", strings.Join(run.CompensationStack, ", ")},
        {"Pending Compensations", strings.Join(run.PendingCompensations, ", ")},
        {"Failed Step", run.FailedStep},
        {"Error", strings.TrimSpace(run.ErrorCode + " " + run.Error)},
        {"Created", run.CreatedAt.Format(time.RFC3339)},
        {"Updated", run.UpdatedAt.Format(time.RFC3339)},
    })
    tw.Render()

    data, err := json.MarshalIndent(run.Data, "", "  ")
    if err != nil {
        return err
    }
    fmt.Fprintln(cmd.OutOrStdout(), string(data))
    return nil
}

func eventsCmd() *cobra.Command {
    events := &cobra.Command{Use: "events", Short: "Read the event store"}
    events.AddCommand(eventsListCmd())
    return events
}

func eventsListCmd() *cobra.Command {
    var (
        aggregate string
        after     uint64
        limit     int
    )
    cmd := &cobra.Command{
        Use:   "list",
        Short: "List the events of one aggregate type",
        RunE: func(cmd *cobra.Command, args []string) error {
            return withOpenApp(cmd, func(ctx context.Context, application *app.App) error {
                envelopes, err := application.EventStore().ReadStream(ctx, strings.ToUpper(aggregate), after, limit)
                if err != nil {
                    return err
                }
                tw := table.NewWriter()
                tw.SetOutputMirror(cmd.OutOrStdout())
                tw.AppendHeader(table.Row{"Event ID", "Aggregate ID", "Type", "Timestamp"})
                for _, envelope := range envelopes {
                    tw.AppendRow(table.Row{
                        envelope.SequenceNumber,
                        envelope.AggregateID,
                        envelope.EventType,
                        envelope.Timestamp.Format(time.RFC3339),
                    })
                }
                tw.Render()
                return nil
            })
        },
    }
    cmd.Flags().StringVar(&aggregate, "aggregate", "", "aggregate type, e.g. ORDER")
    cmd.Flags().Uint64Var(&after, "after", 0, "only events after this event id")
    cmd.Flags().IntVar(&limit, "limit", 100, "maximum number of events")
    _ = cmd.MarkFlagRequired("aggregate")
    return cmd
}
