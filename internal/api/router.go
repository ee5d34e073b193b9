package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/odrlabs/ondemand-reservation/internal/reservation"
)

type RouterConfig struct {
	Service        *reservation.Service
	PgPool         *pgxpool.Pool
	Redis          *redis.Client
	Log            *zerolog.Logger
	Env            string
	Version        string
	HorizonDays    int
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Log))
	if cfg.RateLimitRPS > 0 {
		r.Use(RateLimitMiddleware(cfg.RateLimitRPS, cfg.RateLimitBurst))
	}

	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/doctors", func(r chi.Router) {
		r.Post("/", createDoctorHandler(cfg.Service))
		r.Get("/", listDoctorsHandler(cfg.Service))
		r.Get("/{id}", getDoctorHandler(cfg.Service))
		r.Delete("/{id}", deleteDoctorHandler(cfg.Service))

		r.Post("/{id}/schedules", createScheduleHandler(cfg.Service))
		r.Get("/{id}/schedules", listSchedulesHandler(cfg.Service))

		r.Post("/{id}/appointments/generate", generateAppointmentsHandler(cfg.Service, cfg.HorizonDays))
		r.Get("/{id}/appointments", listAppointmentsHandler(cfg.Service, reservation.OwnerDoctor))
	})

	r.Route("/patients", func(r chi.Router) {
		r.Post("/", createPatientHandler(cfg.Service))
		r.Get("/{id}", getPatientHandler(cfg.Service))
		r.Delete("/{id}", deletePatientHandler(cfg.Service))

		r.Get("/{id}/appointments", listAppointmentsHandler(cfg.Service, reservation.OwnerPatient))
	})

	r.Route("/schedules", func(r chi.Router) {
		r.Put("/{id}", updateScheduleHandler(cfg.Service))
		r.Delete("/{id}", deleteScheduleHandler(cfg.Service))
	})

	r.Route("/appointments", func(r chi.Router) {
		r.Get("/{id}", getAppointmentHandler(cfg.Service))
		r.Post("/{id}/reserve", reserveAppointmentHandler(cfg.Service))
		r.Post("/{id}/cancel", cancelAppointmentHandler(cfg.Service, cfg.Log))
		r.Post("/{id}/attend", markAttendedHandler(cfg.Service))
	})

	return r
}
