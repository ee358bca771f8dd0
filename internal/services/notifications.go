package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/harentsoaR/clinic-api/internal/models"
	"go.uber.org/zap"
)

const smsTimeout = 15 * time.Second

// Notifier sends booking confirmations to patients.
type Notifier interface {
	SendAppointmentConfirmationSMS(clinicName string, patient *models.Patient, apt *models.Appointment)
}

// NotificationService talks to the Textbelt HTTP API. Without an API key it
// only logs.
type NotificationService struct {
	client *resty.Client
	apiKey string
	loc    *time.Location
	log    *zap.Logger
}

type textbeltResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	TextID  string `json:"textId"`
}

func NewNotificationService(baseURL, apiKey string, loc *time.Location, log *zap.Logger) *NotificationService {
	if loc == nil {
		loc = time.Local
	}
	client := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(smsTimeout).
		SetHeader("Content-Type", "application/json")
	return &NotificationService{client: client, apiKey: apiKey, loc: loc, log: log}
}

func (s *NotificationService) Enabled() bool { return s.apiKey != "" }

// SendAppointmentConfirmationSMS sends in the background so the booking
// response never waits on the SMS gateway.
func (s *NotificationService) SendAppointmentConfirmationSMS(clinicName string, patient *models.Patient, apt *models.Appointment) {
	if patient == nil || apt == nil {
		return
	}
	if patient.MobileNumber == "" {
		s.log.Info("sms not sent: patient has no phone number", zap.Uint("patient_id", patient.ID))
		return
	}
	if !s.Enabled() {
		s.log.Debug("sms disabled, skipping confirmation", zap.Uint("appointment_id", apt.ID))
		return
	}

	body := fmt.Sprintf(
		"Appointment Confirmed: %s at %s for %s on %s.",
		apt.Reason,
		clinicName,
		patient.Name,
		apt.Date.In(s.loc).Format("Jan 2 at 3:04 PM"),
	)

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), smsTimeout)
		defer cancel()
		if err := s.Send(ctx, patient.MobileNumber, body); err != nil {
			s.log.Warn("failed to send sms", zap.Uint("appointment_id", apt.ID), zap.Error(err))
			return
		}
		s.log.Info("sms sent", zap.Uint("appointment_id", apt.ID))
	}()
}

// Send posts one message to the /text endpoint.
func (s *NotificationService) Send(ctx context.Context, phone, message string) error {
	var result textbeltResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"phone":   phone,
			"message": message,
			"key":     s.apiKey,
		}).
		SetResult(&result).
		SetError(&result).
		Post("/text")
	if err != nil {
		return fmt.Errorf("textbelt request: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("textbelt returned %d: %s", resp.StatusCode(), result.Error)
	}
	if !result.Success {
		if result.Error == "" {
			return errors.New("textbelt rejected the message")
		}
		return errors.New(result.Error)
	}
	return nil
}
