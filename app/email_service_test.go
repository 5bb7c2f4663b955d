package app

import (
	"context"
	stderrors "errors"
	"testing"

	"csvdash/domain/dataset"
	"csvdash/internal/errors"
	"csvdash/internal/templating"
	"csvdash/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) SendEmail(ctx context.Context, email ports.Email) error {
	args := m.Called(ctx, email)
	return args.Error(0)
}

type panicGenerator struct{}

func (panicGenerator) GenerateEmail(_ context.Context, _ string, row dataset.Record) (string, error) {
	if row["Name"].String() == "Bob" {
		panic("boom")
	}
	return "ok", nil
}

func contacts() *dataset.Dataset {
	people := [][2]string{{"Ann", "ann@example.com"}, {"Bob", "bob@example.com"}, {"Cid", "cid@example.com"}}
	rows := make([]dataset.Row, len(people))
	for i, p := range people {
		rows[i] = dataset.Row{Index: i, Values: []dataset.Value{dataset.Text(p[0]), dataset.Text(p[1])}}
	}
	return dataset.New("contacts.csv", []dataset.Column{
		{Name: "Name", Kind: dataset.KindText},
		{Name: "Email", Kind: dataset.KindText},
	}, rows)
}

func newService(sender ports.EmailSender, concurrency int) *EmailService {
	return NewEmailService(templating.NewGenerator(), sender, EmailServiceConfig{
		Subject:         "Hello",
		RecipientColumn: "Email",
		Concurrency:     concurrency,
	})
}

func TestGenerateRendersEveryRow(t *testing.T) {
	svc := newService(&mockSender{}, 1)

	report, err := svc.Generate(context.Background(), contacts(), "Hi {Name}")
	require.NoError(t, err)
	assert.Equal(t, BatchGenerate, report.Kind)
	assert.NotEmpty(t, report.ID.String())
	assert.Equal(t, 3, report.Succeeded)
	assert.Equal(t, map[int]string{0: "Hi Ann", 1: "Hi Bob", 2: "Hi Cid"}, report.Bodies())
	assert.Equal(t, "bob@example.com", report.Results[1].Recipient)
}

func TestGenerateMissingFieldFailsEachRow(t *testing.T) {
	svc := newService(&mockSender{}, 2)

	report, err := svc.Generate(context.Background(), contacts(), "Hi {Nickname}")
	require.NoError(t, err)
	assert.Equal(t, 0, report.Succeeded)
	assert.Equal(t, 3, report.Failed)
	for _, r := range report.Results {
		var mf *errors.MissingFieldError
		require.True(t, stderrors.As(r.Err, &mf))
		assert.Equal(t, "Nickname", mf.Field)
		assert.Equal(t, errors.CodeMissingField, r.Code)
	}
	assert.Empty(t, report.Bodies())
}

func TestGenerateEmptyTemplate(t *testing.T) {
	_, err := newService(&mockSender{}, 1).Generate(context.Background(), contacts(), "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestGenerateRecoversPanickingRow(t *testing.T) {
	svc := NewEmailService(panicGenerator{}, &mockSender{}, EmailServiceConfig{RecipientColumn: "Email", Concurrency: 3})

	report, err := svc.Generate(context.Background(), contacts(), "x")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.Failed)
	assert.Contains(t, report.Results[1].Error, "panic")
	assert.Equal(t, "bob@example.com", report.Results[1].Recipient)
}

func TestGeneratePanicKeepsRowIdentityOnFilteredView(t *testing.T) {
	view := contacts().Where(func(r dataset.Row) bool { return r.Index != 0 })
	svc := NewEmailService(panicGenerator{}, &mockSender{}, EmailServiceConfig{RecipientColumn: "Email", Concurrency: 2})

	report, err := svc.Generate(context.Background(), view, "x")
	require.NoError(t, err)
	require.Len(t, report.Results, 2)

	bob := report.Results[0]
	assert.Equal(t, 1, bob.Index)
	assert.Equal(t, "bob@example.com", bob.Recipient)
	assert.Equal(t, "row 1: panic: boom", bob.Error)
	assert.Empty(t, bob.Body)

	assert.Equal(t, 2, report.Results[1].Index)
	assert.Equal(t, map[int]string{2: "ok"}, report.Bodies())
}

func TestSendIsolatesRowFailures(t *testing.T) {
	for _, concurrency := range []int{1, 3} {
		sender := &mockSender{}
		sender.On("SendEmail", mock.Anything, ports.Email{Recipient: "ann@example.com", Subject: "Hello", Body: "Hi Ann"}).Return(nil).Once()
		sender.On("SendEmail", mock.Anything, ports.Email{Recipient: "bob@example.com", Subject: "Hello", Body: "Hi Bob"}).
			Return(&errors.DeliveryError{Recipient: "bob@example.com", StatusCode: 500, Cause: stderrors.New("down")}).Once()
		sender.On("SendEmail", mock.Anything, ports.Email{Recipient: "cid@example.com", Subject: "Hello", Body: "Hi Cid"}).Return(nil).Once()

		svc := newService(sender, concurrency)
		report, err := svc.Send(context.Background(), contacts(), map[int]string{0: "Hi Ann", 1: "Hi Bob", 2: "Hi Cid"})
		require.NoError(t, err)

		assert.Equal(t, 2, report.Succeeded, concurrency)
		assert.Equal(t, 1, report.Failed, concurrency)
		assert.True(t, report.Results[0].OK())
		assert.False(t, report.Results[1].OK())
		assert.True(t, report.Results[2].OK())
		assert.Equal(t, errors.CodeDeliveryError, report.Results[1].Code)
		sender.AssertExpectations(t)
	}
}

func TestSendSkipsRowsWithoutBodyOrRecipient(t *testing.T) {
	ds := contacts()
	ds.Rows[2].Values[1] = dataset.Missing()

	sender := &mockSender{}
	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(e ports.Email) bool {
		return e.Recipient == "ann@example.com"
	})).Return(nil).Once()

	report, err := newService(sender, 1).Send(context.Background(), ds, map[int]string{0: "a", 2: "c"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Succeeded)

	var de *errors.DeliveryError
	require.True(t, stderrors.As(report.Results[1].Err, &de))
	assert.ErrorIs(t, report.Results[1].Err, ErrNoGeneratedEmail)
	assert.ErrorIs(t, report.Results[2].Err, ErrNoRecipient)
	sender.AssertExpectations(t)
	sender.AssertNumberOfCalls(t, "SendEmail", 1)
}

func TestSendRequiresGeneratedEmails(t *testing.T) {
	_, err := newService(&mockSender{}, 1).Send(context.Background(), contacts(), nil)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestSendUnknownRecipientColumn(t *testing.T) {
	svc := NewEmailService(templating.NewGenerator(), &mockSender{}, EmailServiceConfig{RecipientColumn: "Mail"})
	_, err := svc.Send(context.Background(), contacts(), map[int]string{0: "a"})
	assert.Equal(t, errors.CodeUnknownColumn, errors.GetCode(err))
}

func TestSendCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sender := &mockSender{}
	report, err := newService(sender, 1).Send(ctx, contacts(), map[int]string{0: "a", 1: "b", 2: "c"})
	require.NoError(t, err)
	assert.Equal(t, 3, report.Failed)
	for _, r := range report.Results {
		assert.ErrorIs(t, r.Err, context.Canceled)
	}
	sender.AssertNotCalled(t, "SendEmail", mock.Anything, mock.Anything)
}
