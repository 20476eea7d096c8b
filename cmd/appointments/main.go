package main

import (
	"acuitysync/internal/appointments/handler"
	"acuitysync/internal/appointments/repository"
	"acuitysync/internal/appointments/service"
	"acuitysync/internal/appointments/validator"
	"acuitysync/pkg/app"
	"acuitysync/pkg/client"
	"acuitysync/pkg/config"
	"acuitysync/pkg/kafka"
	kafka_config "acuitysync/pkg/kafka/config"
	kafka_middleware "acuitysync/pkg/kafka/middleware"
	"acuitysync/pkg/sealer"
)

const ServiceName = "appointments"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()
	defer cfg.GracefulShutdown()

	cfg.Log.Info("Starting Appointments service")

	sessionSealer, err := sealer.NewSealer(cfg.SessionSealKey)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize session sealer", "error", err)
	}

	// A nil *kafka.Producer must not reach the service as a non-nil
	// interface value.
	var publisher service.EventPublisher
	if p := initPublisher(cfg); p != nil {
		defer p.Close()
		publisher = p
	}

	appointmentService := initServices(cfg, publisher)
	appointmentHandler := handler.NewAppointmentHandler(
		appointmentService,
		client.NewCustomerClient(cfg.CustomerServiceURL),
		cfg.Log,
	)

	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(appointmentHandler, sessionSealer)
	serverApp.Run()
}

func initServices(cfg *config.Config, publisher service.EventPublisher) service.AppointmentService {
	appointmentValidator := validator.NewAppointmentValidator(cfg.Log)
	appointmentRepo := repository.NewMongoAppointmentRepository(cfg)
	appointmentService := service.NewAppointmentService(
		appointmentRepo,
		appointmentValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Appointment service initialized", "database", cfg.MongoDatabaseName)
	return appointmentService
}

// initPublisher builds the event producer, or returns nil when eventing is
// disabled. service.EventPublisher tolerates nil.
func initPublisher(cfg *config.Config) *kafka.Producer {
	if !cfg.KafkaEnabled {
		cfg.Log.Info("Kafka eventing disabled")
		return nil
	}

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	producer, err := kafka.NewProducer(kafkaCfg, cfg.AppointmentsTopic, cfg.AppointmentsDLQTopic)
	if err != nil {
		cfg.Log.Fatal("Failed to create Kafka producer", "error", err)
	}

	if kafkaCfg.EnableMiddleware {
		producer.Use(kafka_middleware.LoggingProducerMiddleware(cfg.Log))
		producer.Use(kafka_middleware.MetricsProducerMiddleware())
	}

	cfg.Log.Info("Kafka producer initialized",
		"topic", cfg.AppointmentsTopic,
		"dlq_topic", cfg.AppointmentsDLQTopic,
	)
	return producer
}
