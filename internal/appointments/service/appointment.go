package service

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	appointmentserrors "acuitysync/internal/appointments/errors"
	"acuitysync/internal/appointments/repository"
	"acuitysync/internal/appointments/validator"
	"acuitysync/pkg/config"
	apperrors "acuitysync/pkg/errors"
	"acuitysync/pkg/kafka"
	"acuitysync/pkg/locale"
	"acuitysync/pkg/model"
	"acuitysync/pkg/sanitizer"

	"go.mongodb.org/mongo-driver/mongo"
)

const (
	EventAppointmentCreated = "appointment.created"
	EventAppointmentUpdated = "appointment.updated"

	eventSchemaVersion = "1"
)

// EventPublisher publishes appointment lifecycle events. A nil publisher
// disables eventing; publish failures never fail the ingest.
type EventPublisher interface {
	Publish(ctx context.Context, msg kafka.Message) error
}

type AppointmentService interface {
	// Ingest normalizes one webhook item and upserts it keyed by the
	// provider's appointment id. The returned bool reports whether a new
	// record was created (as opposed to an existing one updated).
	Ingest(ctx context.Context, payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, bool, error)

	ListForCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, int64, error)
}

type appointmentService struct {
	repo      repository.AppointmentRepository
	validator *validator.AppointmentValidator
	publisher EventPublisher
	cfg       *config.Config
}

func NewAppointmentService(
	repo repository.AppointmentRepository,
	validator *validator.AppointmentValidator,
	publisher EventPublisher,
	cfg *config.Config,
) AppointmentService {
	return &appointmentService{
		repo:      repo,
		validator: validator,
		publisher: publisher,
		cfg:       cfg,
	}
}

func (s *appointmentService) Ingest(ctx context.Context, payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, bool, error) {
	if payload == nil {
		return nil, false, apperrors.InvalidInput("Appointment payload cannot be empty")
	}

	if err := s.validator.ValidatePayload(payload); err != nil {
		s.cfg.Log.Warn("Appointment payload validation failed",
			"external_id", payload.ExternalID(),
			"error", err,
		)
		return nil, false, apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}

	appointment, err := s.buildAppointment(payload, raw, customerID)
	if err != nil {
		return nil, false, err
	}

	var created bool
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		existing, err := s.repo.FindByID(sessCtx, appointment.ID)
		if err != nil && !errors.Is(err, appointmentserrors.ErrNotFound) {
			return apperrors.Internal("Failed to check appointment existence", err)
		}

		if existing != nil {
			s.mergeForUpdate(existing, appointment, payload)
			if _, err := s.repo.Update(sessCtx, appointment.ID, appointment); err != nil {
				return apperrors.Internal("Failed to update appointment", err)
			}
			created = false
			return nil
		}

		if err := s.repo.Insert(sessCtx, appointment); err != nil {
			// A concurrent delivery of the same id won the insert race.
			// Re-deliveries are updates, so fall through to the update path.
			if errors.Is(err, appointmentserrors.ErrDuplicateID) {
				current, findErr := s.repo.FindByID(sessCtx, appointment.ID)
				if findErr != nil {
					return apperrors.Internal("Failed to load appointment after insert conflict", findErr)
				}
				s.mergeForUpdate(current, appointment, payload)
				if _, updErr := s.repo.Update(sessCtx, appointment.ID, appointment); updErr != nil {
					return apperrors.Internal("Failed to update appointment after insert conflict", updErr)
				}
				created = false
				return nil
			}
			return apperrors.Internal("Failed to insert appointment", err)
		}
		created = true
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to upsert appointment",
			"external_id", appointment.ID,
			"error", err,
		)
		return nil, false, err
	}

	s.cfg.Log.Info("Appointment upserted successfully",
		"external_id", appointment.ID,
		"created", created,
		"customer_resolved", appointment.CustomerID != nil,
	)

	s.publishEvent(ctx, appointment, created)

	return appointment, created, nil
}

func (s *appointmentService) ListForCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, int64, error) {
	if customerID == "" {
		return nil, 0, apperrors.InvalidInput("Customer ID cannot be empty")
	}

	var count int64
	var appointments []*model.Appointment
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.CountByCustomer(ctx, customerID)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count appointments", "customer_id", customerID, "error", errCount)
			errCount = apperrors.Internal("Failed to count appointments", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		appointments, errFind = s.repo.FindByCustomer(ctx, customerID, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list appointments", "customer_id", customerID, "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve appointments", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	if appointments == nil {
		appointments = []*model.Appointment{}
	}

	return appointments, count, nil
}

// --- Helpers ---

// buildAppointment normalizes the provider payload into our record:
// contact fields cleaned, times parsed, paid flag collapsed, and the raw
// delivery preserved for audit.
func (s *appointmentService) buildAppointment(payload *model.WebhookPayload, raw []byte, customerID *string) (*model.Appointment, error) {
	startTime, err := model.ParseProviderTime(payload.Datetime)
	if err != nil {
		return nil, apperrors.Validation("Appointment validation failed", map[string]any{
			"error": appointmentserrors.ErrUnparseableDatetime.Error(),
		})
	}

	phone := sanitizer.NormalizePhone(payload.Phone)

	firstName := sanitizer.NormalizeName(payload.FirstName)
	lastName := sanitizer.NormalizeName(payload.LastName)
	if firstName == "" && lastName == "" {
		firstName = "Guest"
	}

	timezone := sanitizer.TrimAndNormalize(payload.Timezone)
	if timezone == "" {
		timezone = locale.InferTimezoneFromPhone(phone)
	}

	duration := payload.DurationMinutes()
	endTime := s.deriveEndTime(startTime, duration, payload.EndTime)

	appointment := &model.Appointment{
		ID:         payload.ExternalID(),
		CustomerID: customerID,

		FirstName: firstName,
		LastName:  lastName,
		Email:     sanitizer.NormalizeEmail(payload.Email),
		Phone:     phone,

		Datetime:        startTime,
		EndDatetime:     endTime,
		Timezone:        timezone,
		DurationMinutes: duration,

		Price:      sanitizer.TrimAndNormalize(payload.Price),
		Paid:       payload.PaidBool(),
		AmountPaid: sanitizer.TrimAndNormalize(payload.AmountPaid),

		AppointmentType:   sanitizer.TrimAndNormalize(payload.Type),
		AppointmentTypeID: payload.AppointmentTypeID,
		Calendar:          sanitizer.TrimAndNormalize(payload.Calendar),
		CalendarID:        payload.CalendarID,

		CanClientCancel:     payload.CanClientCancel,
		CanClientReschedule: payload.CanClientReschedule,
		Location:            sanitizer.TrimAndNormalize(payload.Location),
		Notes:               sanitizer.TrimAndNormalize(payload.Notes),
		ConfirmationPage:    sanitizer.NormalizeURL(payload.ConfirmationPage),

		AddonIDs: payload.AddonIDs,
	}

	if len(payload.Forms) > 0 {
		var forms any
		if err := json.Unmarshal(payload.Forms, &forms); err == nil {
			appointment.Forms = forms
		}
	}
	if len(payload.Labels) > 0 {
		var labels any
		if err := json.Unmarshal(payload.Labels, &labels); err == nil {
			appointment.Labels = labels
		}
	}

	if len(raw) > 0 {
		var rawPayload map[string]any
		if err := json.Unmarshal(raw, &rawPayload); err == nil {
			appointment.RawPayload = rawPayload
		}
	}

	return appointment, nil
}

// deriveEndTime prefers the duration over the provider's endTime string: the
// duration is always present on paid bookings while endTime is dropped by
// some webhook variants. With neither, the appointment is instantaneous.
func (s *appointmentService) deriveEndTime(start time.Time, durationMinutes int, providerEnd string) time.Time {
	if durationMinutes > 0 {
		return start.Add(time.Duration(durationMinutes) * time.Minute)
	}

	if providerEnd != "" {
		if end, err := model.ParseProviderTime(providerEnd); err == nil && end.After(start) {
			return end
		}
	}

	return start
}

// mergeForUpdate carries forward every field the incoming delivery does not
// assert, so a sparse re-delivery never blanks stored values. The original
// creation time is always kept; the customer link is kept when the
// re-delivery could not resolve one. The raw payload always reflects the
// latest delivery.
func (s *appointmentService) mergeForUpdate(existing, incoming *model.Appointment, payload *model.WebhookPayload) {
	incoming.CreatedAt = existing.CreatedAt

	if incoming.CustomerID == nil {
		incoming.CustomerID = existing.CustomerID
	}

	if sanitizer.NormalizeName(payload.FirstName) == "" && sanitizer.NormalizeName(payload.LastName) == "" {
		incoming.FirstName = existing.FirstName
		incoming.LastName = existing.LastName
	}
	if payload.Email == "" {
		incoming.Email = existing.Email
	}
	if payload.Phone == "" {
		incoming.Phone = existing.Phone
	}
	if payload.Timezone == "" && existing.Timezone != "" {
		incoming.Timezone = existing.Timezone
	}

	// Without a duration or end time the stored duration still applies,
	// re-anchored on the delivery's start time.
	if payload.Duration.String() == "" && payload.EndTime == "" && existing.DurationMinutes > 0 {
		incoming.DurationMinutes = existing.DurationMinutes
		incoming.EndDatetime = incoming.Datetime.Add(time.Duration(existing.DurationMinutes) * time.Minute)
	}

	if payload.Price == "" {
		incoming.Price = existing.Price
	}
	if payload.Paid == nil {
		incoming.Paid = existing.Paid
	}
	if payload.AmountPaid == "" {
		incoming.AmountPaid = existing.AmountPaid
	}

	if payload.Type == "" {
		incoming.AppointmentType = existing.AppointmentType
	}
	if payload.AppointmentTypeID == 0 {
		incoming.AppointmentTypeID = existing.AppointmentTypeID
	}
	if payload.Calendar == "" {
		incoming.Calendar = existing.Calendar
	}
	if payload.CalendarID == 0 {
		incoming.CalendarID = existing.CalendarID
	}

	if payload.CanClientCancel == nil {
		incoming.CanClientCancel = existing.CanClientCancel
	}
	if payload.CanClientReschedule == nil {
		incoming.CanClientReschedule = existing.CanClientReschedule
	}
	if payload.Location == "" {
		incoming.Location = existing.Location
	}
	if payload.Notes == "" {
		incoming.Notes = existing.Notes
	}
	if payload.ConfirmationPage == "" {
		incoming.ConfirmationPage = existing.ConfirmationPage
	}

	if len(payload.Forms) == 0 {
		incoming.Forms = existing.Forms
	}
	if len(payload.Labels) == 0 {
		incoming.Labels = existing.Labels
	}
	if len(payload.AddonIDs) == 0 {
		incoming.AddonIDs = existing.AddonIDs
	}
}

func (s *appointmentService) publishEvent(ctx context.Context, appointment *model.Appointment, created bool) {
	if s.publisher == nil {
		return
	}

	eventType := EventAppointmentUpdated
	if created {
		eventType = EventAppointmentCreated
	}

	msg := kafka.NewMessage().
		WithKey(appointment.ID).
		WithValue(appointment).
		WithEventType(eventType).
		WithSchemaVersion(eventSchemaVersion).
		WithSource(s.cfg.ServiceName).
		Build()

	if err := s.publisher.Publish(ctx, msg); err != nil {
		s.cfg.Log.Warn("Failed to publish appointment event",
			"external_id", appointment.ID,
			"event_type", eventType,
			"error", err,
		)
	}
}
