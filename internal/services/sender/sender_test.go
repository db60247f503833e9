package services_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/account-service/internal/lib/smtp"
	"github.com/magabrotheeeer/account-service/internal/models"
	services "github.com/magabrotheeeer/account-service/internal/services/sender"
)

// Мок для smtp.Client
type SMTPClientMock struct {
	mock.Mock
	written bytes.Buffer
}

func (m *SMTPClientMock) Mail(from string) error {
	args := m.Called(from)
	return args.Error(0)
}

func (m *SMTPClientMock) Rcpt(to string) error {
	args := m.Called(to)
	return args.Error(0)
}

type nopWriteCloser struct {
	*bytes.Buffer
}

func (nopWriteCloser) Close() error { return nil }

func (m *SMTPClientMock) Data() (io.WriteCloser, error) {
	args := m.Called()
	if args.Error(1) != nil {
		return nil, args.Error(1)
	}
	return nopWriteCloser{&m.written}, nil
}

func (m *SMTPClientMock) Quit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *SMTPClientMock) Close() error {
	args := m.Called()
	return args.Error(0)
}

// Мок для Transport
type TransportMock struct {
	mock.Mock
}

func (m *TransportMock) Connect() (smtp.Client, error) {
	args := m.Called()
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(smtp.Client), args.Error(1)
}

func (m *TransportMock) GetSMTPUser() string {
	args := m.Called()
	return args.String(0)
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendEmailMessage(t *testing.T) {
	client := new(SMTPClientMock)
	transport := new(TransportMock)
	svc := services.NewSenderService(newTestLogger(), transport)

	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(client, nil).Once()
	client.On("Mail", "noreply@example.com").Return(nil).Once()
	client.On("Rcpt", "user@example.com").Return(nil).Once()
	client.On("Data").Return(nil, nil).Once()
	client.On("Quit").Return(nil).Once()
	client.On("Close").Return(nil).Once()

	body, err := json.Marshal(models.EmailMessage{
		Email:   "user@example.com",
		Subject: "Your one-time code",
		Body:    "Your one-time code is: 123456",
	})
	require.NoError(t, err)

	err = svc.SendEmailMessage(body)
	require.NoError(t, err)

	sent := client.written.String()
	assert.Contains(t, sent, "To: user@example.com")
	assert.Contains(t, sent, "Subject: Your one-time code")
	assert.Contains(t, sent, "123456")

	client.AssertExpectations(t)
	transport.AssertExpectations(t)
}

func TestSendEmailMessage_BadJSON(t *testing.T) {
	transport := new(TransportMock)
	svc := services.NewSenderService(newTestLogger(), transport)

	err := svc.SendEmailMessage([]byte("{not json"))
	assert.Error(t, err)
	transport.AssertNotCalled(t, "Connect")
}

func TestSendEmailMessage_ConnectFailure(t *testing.T) {
	transport := new(TransportMock)
	svc := services.NewSenderService(newTestLogger(), transport)

	transport.On("GetSMTPUser").Return("noreply@example.com")
	transport.On("Connect").Return(nil, errors.New("connection refused")).Once()

	body, err := json.Marshal(models.EmailMessage{Email: "user@example.com"})
	require.NoError(t, err)

	err = svc.SendEmailMessage(body)
	assert.Error(t, err)
}
