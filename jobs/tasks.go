package jobs

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/contaflow/contaflow/internal/accounts"
)

const (
	// QueueDefault is the default queue name for background jobs.
	QueueDefault = "default"
	// TaskGenerateReport renders and uploads the full report of one
	// account.
	TaskGenerateReport = "report:generate"
	// TaskOverdueSweep transitions pending accounts past their due
	// date to overdue.
	TaskOverdueSweep = "accounts:overdue_sweep"
)

// GenerateReportPayload identifies the account to build a report for.
type GenerateReportPayload struct {
	AccountID uuid.UUID `json:"account_id"`
}

// NewGenerateReportTask constructs an Asynq task.
func NewGenerateReportTask(payload GenerateReportPayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskGenerateReport, data), nil
}

// NewOverdueSweepTask constructs the nightly sweep task. It takes no
// payload.
func NewOverdueSweepTask() *asynq.Task {
	return asynq.NewTask(TaskOverdueSweep, nil)
}

// AccountTasks binds task handlers to the accounts service.
type AccountTasks struct {
	accounts *accounts.Service
	logger   *slog.Logger
}

// NewAccountTasks builds AccountTasks instance.
func NewAccountTasks(svc *accounts.Service, logger *slog.Logger) *AccountTasks {
	return &AccountTasks{accounts: svc, logger: logger}
}

// HandleGenerateReport processes TaskGenerateReport tasks.
func (t *AccountTasks) HandleGenerateReport(ctx context.Context, task *asynq.Task) error {
	var payload GenerateReportPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return asynq.SkipRetry
	}
	url, err := t.accounts.GenerateFullReport(ctx, payload.AccountID)
	if err != nil {
		t.logger.Error("generate report task",
			slog.Any("error", err),
			slog.String("account_id", payload.AccountID.String()))
		return err
	}
	t.logger.Info("report generated",
		slog.String("account_id", payload.AccountID.String()),
		slog.String("url", url))
	return nil
}

// HandleOverdueSweep processes TaskOverdueSweep tasks.
func (t *AccountTasks) HandleOverdueSweep(ctx context.Context, task *asynq.Task) error {
	n, err := t.accounts.OverdueSweep(ctx)
	if err != nil {
		t.logger.Error("overdue sweep task", slog.Any("error", err))
		return err
	}
	t.logger.Info("overdue sweep finished", slog.Int64("transitioned", n))
	return nil
}
