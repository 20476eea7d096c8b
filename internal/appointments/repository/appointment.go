package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentserrors "acuitysync/internal/appointments/errors"
	"acuitysync/pkg/config"
	mongotx "acuitysync/pkg/db/mongo"
	"acuitysync/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Appointments"
)

type mongoAppointmentRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type AppointmentRepository interface {
	Insert(ctx context.Context, appointment *model.Appointment) error
	FindByID(ctx context.Context, id string) (*model.Appointment, error)
	Update(ctx context.Context, id string, appointment *model.Appointment) (*mongo.UpdateResult, error)
	FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, error)
	CountByCustomer(ctx context.Context, customerID string) (int64, error)
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoAppointmentRepository(cfg *config.Config) AppointmentRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoAppointmentRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

// withTimeout wraps the context with a timeout if not already in a transaction.
// When inside a transaction (SessionContext), returns the original context unchanged
// with a no-op cancel function, as we cannot wrap SessionContext without breaking
// transaction semantics.
func (r *mongoAppointmentRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}

	deadline, hasDeadline := ctx.Deadline()
	if !hasDeadline {
		return context.WithTimeout(ctx, timeout)
	}

	remaining := time.Until(deadline)
	if remaining < timeout {
		return context.WithTimeout(ctx, remaining)
	}

	return context.WithTimeout(ctx, timeout)
}

func (r *mongoAppointmentRepository) Insert(ctx context.Context, appointment *model.Appointment) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	now := time.Now().UTC().Truncate(time.Millisecond)
	appointment.CreatedAt = now
	appointment.UpdatedAt = now

	_, err := r.collection.InsertOne(ctx, appointment)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return fmt.Errorf("%w: %s", appointmentserrors.ErrDuplicateID, appointment.ID)
		}
		return fmt.Errorf("failed to insert appointment: %w", err)
	}

	return nil
}

func (r *mongoAppointmentRepository) FindByID(ctx context.Context, id string) (*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"_id": id}

	var appointment model.Appointment
	err := r.collection.FindOne(ctx, filter).Decode(&appointment)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, appointmentserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find appointment: %w", err)
	}

	return &appointment, nil
}

func (r *mongoAppointmentRepository) Update(ctx context.Context, id string, appointment *model.Appointment) (*mongo.UpdateResult, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	filter := bson.M{"_id": id}
	update := bson.M{
		"$set": bson.M{
			"customer_id":           appointment.CustomerID,
			"first_name":            appointment.FirstName,
			"last_name":             appointment.LastName,
			"email":                 appointment.Email,
			"phone":                 appointment.Phone,
			"datetime":              appointment.Datetime,
			"end_datetime":          appointment.EndDatetime,
			"timezone":              appointment.Timezone,
			"duration_minutes":      appointment.DurationMinutes,
			"price":                 appointment.Price,
			"paid":                  appointment.Paid,
			"amount_paid":           appointment.AmountPaid,
			"appointment_type":      appointment.AppointmentType,
			"appointment_type_id":   appointment.AppointmentTypeID,
			"calendar":              appointment.Calendar,
			"calendar_id":           appointment.CalendarID,
			"can_client_cancel":     appointment.CanClientCancel,
			"can_client_reschedule": appointment.CanClientReschedule,
			"location":              appointment.Location,
			"notes":                 appointment.Notes,
			"confirmation_page":     appointment.ConfirmationPage,
			"forms":                 appointment.Forms,
			"labels":                appointment.Labels,
			"addon_ids":             appointment.AddonIDs,
			"raw_payload":           appointment.RawPayload,
			"updated_at":            time.Now().UTC().Truncate(time.Millisecond),
		},
	}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("failed to update appointment: %w", err)
	}

	if result.MatchedCount == 0 {
		return nil, appointmentserrors.ErrNotFound
	}

	return result, nil
}

func (r *mongoAppointmentRepository) FindByCustomer(ctx context.Context, customerID string, limit int, offset int64) ([]*model.Appointment, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "datetime", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{"customer_id": customerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appointments []*model.Appointment
	if err = cursor.All(ctx, &appointments); err != nil {
		return nil, fmt.Errorf("failed to decode appointments: %w", err)
	}

	return appointments, nil
}

func (r *mongoAppointmentRepository) CountByCustomer(ctx context.Context, customerID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{"customer_id": customerID})
	if err != nil {
		return 0, fmt.Errorf("failed to count appointments by customer: %w", err)
	}
	return count, nil
}

func (r *mongoAppointmentRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
