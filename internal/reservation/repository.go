package reservation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrScheduleNotFound    = errors.New("schedule not found")
	ErrAppointmentNotFound = errors.New("appointment not found")
)

// Repository contains all DB interactions needed by the service.
//
// ReserveAppointment, ReopenAppointment and MarkAppointmentAttended are
// conditional updates: they only apply when the row is still in the
// expected status and return ErrAppointmentNotFound when no row
// matched. That conditional write is what makes the reserve
// check-then-act race safe at the store.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	ListDoctors(ctx context.Context) ([]Doctor, error)
	CreateDoctor(ctx context.Context, d *Doctor) error
	DeleteDoctorCascade(ctx context.Context, id uuid.UUID) error

	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	CreatePatient(ctx context.Context, p *Patient) error
	DeletePatientCascade(ctx context.Context, id uuid.UUID) error

	CreateSchedule(ctx context.Context, s *Schedule) error
	GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error)
	UpdateSchedule(ctx context.Context, s *Schedule) error
	DeleteSchedule(ctx context.Context, id uuid.UUID) error
	ListSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Schedule, error)

	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)
	ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error)
	ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error)

	// InsertOpenSlots inserts one open appointment per timestamp,
	// silently skipping (doctor, time) pairs that already exist.
	// Returns the number actually inserted.
	InsertOpenSlots(ctx context.Context, doctorID uuid.UUID, times []time.Time) (int, error)

	ReserveAppointment(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error)
	ReopenAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error)
	MarkAppointmentAttended(ctx context.Context, id uuid.UUID) (*Appointment, error)
}
