package app

import (
	"context"
	stderrors "errors"
	"fmt"
	"sync"
	"time"

	"csvdash/domain/core"
	"csvdash/domain/dataset"
	"csvdash/internal"
	"csvdash/internal/errors"
	"csvdash/ports"

	"golang.org/x/sync/semaphore"
)

// Row-level causes reported inside a DeliveryError
var (
	ErrNoGeneratedEmail = stderrors.New("no generated email for row")
	ErrNoRecipient      = stderrors.New("row has no recipient address")
)

// Batch kinds
const (
	BatchGenerate = "generate"
	BatchSend     = "send"
)

// EmailServiceConfig holds the per-batch settings
type EmailServiceConfig struct {
	Subject         string
	RecipientColumn string
	// Concurrency bounds in-flight rows; 1 processes rows strictly in order.
	Concurrency int
}

// RowResult is the outcome for one row. Err is nil on success.
type RowResult struct {
	Index     int    `json:"index"`
	Recipient string `json:"recipient"`
	Body      string `json:"body,omitempty"`
	Err       error  `json:"-"`
	Error     string `json:"error,omitempty"`
	Code      string `json:"code,omitempty"`
}

// OK reports whether the row succeeded.
func (r RowResult) OK() bool { return r.Err == nil }

// BatchReport collects one generate or send run. Results are in dataset
// order whatever the concurrency.
type BatchReport struct {
	ID        core.BatchID  `json:"id"`
	Kind      string        `json:"kind"`
	Results   []RowResult   `json:"results"`
	Succeeded int           `json:"succeeded"`
	Failed    int           `json:"failed"`
	StartedAt time.Time     `json:"started_at"`
	Duration  time.Duration `json:"duration_ns"`
}

// Bodies returns the generated bodies of successful rows keyed by row index.
func (b *BatchReport) Bodies() map[int]string {
	out := make(map[int]string, b.Succeeded)
	for _, r := range b.Results {
		if r.OK() {
			out[r.Index] = r.Body
		}
	}
	return out
}

// EmailService generates and sends one email per dataset row. A failing row
// is recorded in the report and never stops the others.
type EmailService struct {
	generator ports.EmailGenerator
	sender    ports.EmailSender
	config    EmailServiceConfig
	logger    *internal.Logger
}

// NewEmailService creates an email service
func NewEmailService(generator ports.EmailGenerator, sender ports.EmailSender, config EmailServiceConfig) *EmailService {
	if config.Concurrency < 1 {
		config.Concurrency = 1
	}
	return &EmailService{
		generator: generator,
		sender:    sender,
		config:    config,
		logger:    internal.DefaultLogger.With("EmailService"),
	}
}

// Generate renders template for every row of ds.
func (s *EmailService) Generate(ctx context.Context, ds *dataset.Dataset, template string) (*BatchReport, error) {
	if template == "" {
		return nil, errors.InvalidInput("email template is empty")
	}

	report := s.run(ctx, BatchGenerate, ds, func(ctx context.Context, i int, res *RowResult) {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return
		}
		body, err := s.generator.GenerateEmail(ctx, template, ds.Record(i))
		if err != nil {
			res.Err = fmt.Errorf("row %d: %w", res.Index, err)
			return
		}
		res.Body = body
	})
	return report, nil
}

// Send posts the generated body of every row of ds to its recipient. Rows
// without a body or a recipient fail with a DeliveryError without a request.
func (s *EmailService) Send(ctx context.Context, ds *dataset.Dataset, bodies map[int]string) (*BatchReport, error) {
	if len(bodies) == 0 {
		return nil, errors.InvalidInput("no generated emails found; generate emails first")
	}
	col, err := ds.ColumnIndex(s.config.RecipientColumn)
	if err != nil {
		return nil, err
	}

	report := s.run(ctx, BatchSend, ds, func(ctx context.Context, i int, res *RowResult) {
		recipient := ds.Rows[i].Values[col]
		body, ok := bodies[res.Index]
		switch {
		case ctx.Err() != nil:
			res.Err = &errors.DeliveryError{Recipient: res.Recipient, Cause: ctx.Err()}
		case !ok:
			res.Err = &errors.DeliveryError{Recipient: res.Recipient, Cause: ErrNoGeneratedEmail}
		case recipient.IsMissing() || res.Recipient == "":
			res.Err = &errors.DeliveryError{Recipient: res.Recipient, Cause: ErrNoRecipient}
		default:
			res.Body = body
			res.Err = s.sender.SendEmail(ctx, ports.Email{
				Recipient: res.Recipient,
				Subject:   s.config.Subject,
				Body:      body,
			})
		}
	})
	return report, nil
}

// run processes the rows of ds through fn with at most Concurrency in
// flight. fn receives the result already carrying the row's Index and
// recipient. A panic in one row is converted to that row's error.
func (s *EmailService) run(ctx context.Context, kind string, ds *dataset.Dataset, fn func(context.Context, int, *RowResult)) *BatchReport {
	n := ds.Len()
	report := &BatchReport{
		ID:        core.NewBatchID(),
		Kind:      kind,
		Results:   make([]RowResult, n),
		StartedAt: time.Now(),
	}

	recipientCol, err := ds.ColumnIndex(s.config.RecipientColumn)
	if err != nil {
		recipientCol = -1
	}

	guarded := func(i int) {
		row := ds.Rows[i]
		res := RowResult{Index: row.Index}
		if recipientCol >= 0 {
			res.Recipient = row.Values[recipientCol].String()
		}
		defer func() {
			if p := recover(); p != nil {
				res.Body = ""
				res.Err = fmt.Errorf("row %d: panic: %v", row.Index, p)
			}
			report.Results[i] = res
		}()
		fn(ctx, i, &res)
	}

	sem := semaphore.NewWeighted(int64(s.config.Concurrency))
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		if err := sem.Acquire(ctx, 1); err != nil {
			// Cancelled: the remaining rows fail fast on ctx.Err().
			guarded(i)
			continue
		}
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			defer sem.Release(1)
			guarded(i)
		}(i)
	}
	wg.Wait()

	for i := range report.Results {
		r := &report.Results[i]
		if r.Err != nil {
			r.Error = r.Err.Error()
			r.Code = errors.GetCode(r.Err)
			report.Failed++
			s.logger.Warn("%s batch %s: row %d failed: %v", kind, report.ID, r.Index, r.Err)
			continue
		}
		report.Succeeded++
	}
	report.Duration = time.Since(report.StartedAt)

	s.logger.Info("%s batch %s finished: %d succeeded, %d failed in %s", kind, report.ID, report.Succeeded, report.Failed, report.Duration)
	return report
}
