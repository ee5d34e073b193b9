package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	redisclient "github.com/odrlabs/ondemand-reservation/internal/redis"
)

var (
	ErrSlotUnavailable = errors.New("appointment slot is not available")
	ErrNotAuthorized   = errors.New("appointment is held by a different patient")
	ErrInvalidState    = errors.New("appointment state does not permit this transition")
)

// GenerationResult reports one slot-generation run. InvalidSchedules
// lists schedules the generator refused; their slots are not created
// but generation for the doctor's other schedules still happens.
type GenerationResult struct {
	Created          int
	InvalidSchedules []uuid.UUID
}

// Service is the appointment lifecycle engine. Every transition reads
// the current row from the store immediately before acting and then
// applies a conditional update, so concurrent callers cannot act on
// stale state.
type Service struct {
	repo    Repository
	locker  redisclient.Locker
	clock   Clock
	metrics *Metrics
	log     *zerolog.Logger
}

func NewService(repo Repository, locker redisclient.Locker, clock Clock, metrics *Metrics, log *zerolog.Logger) *Service {
	if clock == nil {
		clock = time.Now
	}
	return &Service{
		repo:    repo,
		locker:  locker,
		clock:   clock,
		metrics: metrics,
		log:     log,
	}
}

// GenerateAppointments expands the doctor's schedules into open slots
// over [today, today+horizonDays). Re-invocation is idempotent: the
// store skips (doctor, time) pairs that already exist, and the whole
// run is serialized per doctor via the lock.
func (s *Service) GenerateAppointments(ctx context.Context, doctorID uuid.UUID, horizonDays int) (GenerationResult, error) {
	var result GenerationResult

	if horizonDays < 0 {
		return result, fmt.Errorf("horizon days must be >= 0, got %d", horizonDays)
	}

	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return result, err
		}
		return result, fmt.Errorf("load doctor: %w", err)
	}

	schedules, err := s.repo.ListSchedulesByDoctor(ctx, doctorID)
	if err != nil {
		return result, fmt.Errorf("load schedules: %w", err)
	}

	now := s.clock()

	err = s.locker.WithLock(ctx, generationLockKey(doctorID), func(lockCtx context.Context) error {
		var times []time.Time
		for _, sched := range schedules {
			slots, err := ExpandSchedule(sched, now, horizonDays)
			if err != nil {
				// Malformed schedule: report it and keep going
				// with the rest.
				s.log.Warn().
					Str("doctor_id", doctorID.String()).
					Str("schedule_id", sched.ID.String()).
					Err(err).
					Msg("skipping invalid schedule during generation")
				result.InvalidSchedules = append(result.InvalidSchedules, sched.ID)
				continue
			}
			times = append(times, slots...)
		}

		if len(times) == 0 {
			return nil
		}

		created, err := s.repo.InsertOpenSlots(lockCtx, doctorID, times)
		if err != nil {
			return fmt.Errorf("insert open slots: %w", err)
		}
		result.Created = created
		return nil
	})
	if err != nil {
		return GenerationResult{}, err
	}

	s.metrics.AddSlotsGenerated(result.Created)
	s.log.Info().
		Str("doctor_id", doctorID.String()).
		Int("created", result.Created).
		Int("invalid_schedules", len(result.InvalidSchedules)).
		Int("horizon_days", horizonDays).
		Msg("slot generation complete")

	return result, nil
}

// Reserve books an open slot for a patient. Exactly one of several
// concurrent callers wins; the rest get ErrSlotUnavailable.
func (s *Service) Reserve(ctx context.Context, appointmentID, patientID uuid.UUID) (*Appointment, error) {
	if _, err := s.repo.GetPatientByID(ctx, patientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status != StatusOpen {
		s.metrics.IncReservations("rejected")
		return nil, ErrSlotUnavailable
	}

	var reserved *Appointment

	err = s.locker.WithLock(ctx, appointmentLockKey(appointmentID), func(lockCtx context.Context) error {
		updated, err := s.repo.ReserveAppointment(lockCtx, appointmentID, patientID)
		if err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				// Row exists but is no longer open: a concurrent
				// reserve got there first.
				return ErrSlotUnavailable
			}
			return fmt.Errorf("reserve appointment: %w", err)
		}
		reserved = updated
		return nil
	})
	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			s.metrics.IncReservations("contended")
			return nil, ErrSlotUnavailable
		}
		if errors.Is(err, ErrSlotUnavailable) {
			s.metrics.IncReservations("lost_race")
			return nil, ErrSlotUnavailable
		}
		return nil, err
	}

	s.metrics.IncReservations("ok")
	s.log.Info().
		Str("appointment_id", appointmentID.String()).
		Str("patient_id", patientID.String()).
		Msg("appointment reserved")

	return reserved, nil
}

// Cancel releases a reserved appointment back to open. Only the
// patient currently holding the slot may cancel it; the freed slot is
// immediately reservable again.
func (s *Service) Cancel(ctx context.Context, appointmentID, patientID uuid.UUID) error {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return fmt.Errorf("load appointment: %w", err)
	}
	if appt.Status != StatusReserved {
		s.metrics.IncCancellations("invalid_state")
		return ErrInvalidState
	}
	if appt.PatientID == nil || *appt.PatientID != patientID {
		s.metrics.IncCancellations("not_authorized")
		return ErrNotAuthorized
	}

	if _, err := s.repo.ReopenAppointment(ctx, appointmentID); err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			s.metrics.IncCancellations("invalid_state")
			return ErrInvalidState
		}
		return fmt.Errorf("reopen appointment: %w", err)
	}

	s.metrics.IncCancellations("ok")
	s.log.Info().
		Str("appointment_id", appointmentID.String()).
		Str("patient_id", patientID.String()).
		Msg("appointment cancelled, slot reopened")

	return nil
}

// MarkAttended records that the doctor saw the patient. Calling it on
// an already attended appointment is a no-op.
func (s *Service) MarkAttended(ctx context.Context, appointmentID uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, appointmentID)
	if err != nil {
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	if appt.Status == StatusAttended {
		return appt, nil
	}
	if appt.Status != StatusReserved {
		return nil, ErrInvalidState
	}

	updated, err := s.repo.MarkAppointmentAttended(ctx, appointmentID)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// Lost a race; re-read to honor idempotence if the
			// winner also marked it attended.
			current, readErr := s.repo.GetAppointmentByID(ctx, appointmentID)
			if readErr == nil && current.Status == StatusAttended {
				return current, nil
			}
			return nil, ErrInvalidState
		}
		return nil, fmt.Errorf("mark attended: %w", err)
	}

	s.metrics.IncAttended()
	s.log.Info().
		Str("appointment_id", appointmentID.String()).
		Msg("appointment marked attended")

	return updated, nil
}

// ListAppointments returns the owner's full appointment set.
func (s *Service) ListAppointments(ctx context.Context, owner Owner) ([]Appointment, error) {
	switch owner.Kind {
	case OwnerDoctor:
		return s.repo.ListAppointmentsByDoctor(ctx, owner.ID)
	case OwnerPatient:
		return s.repo.ListAppointmentsByPatient(ctx, owner.ID)
	default:
		return nil, fmt.Errorf("unknown owner kind %q", owner.Kind)
	}
}

// QueryToday returns the owner's appointments whose calendar date
// equals today's. Full year-month-day equality, not just day of month.
func (s *Service) QueryToday(ctx context.Context, owner Owner) ([]Appointment, error) {
	appts, err := s.ListAppointments(ctx, owner)
	if err != nil {
		return nil, err
	}
	return filterToday(appts, s.clock()), nil
}

// QueryPast returns the owner's appointments strictly before now.
func (s *Service) QueryPast(ctx context.Context, owner Owner) ([]Appointment, error) {
	appts, err := s.ListAppointments(ctx, owner)
	if err != nil {
		return nil, err
	}
	return filterPast(appts, s.clock()), nil
}

// QueryUpcomingToday returns today's appointments that have not
// started yet.
func (s *Service) QueryUpcomingToday(ctx context.Context, owner Owner) ([]Appointment, error) {
	appts, err := s.ListAppointments(ctx, owner)
	if err != nil {
		return nil, err
	}
	return filterUpcomingToday(appts, s.clock()), nil
}

func filterToday(appts []Appointment, now time.Time) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if sameDate(a.AppointmentTime, now) {
			out = append(out, a)
		}
	}
	return out
}

func filterPast(appts []Appointment, now time.Time) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if a.AppointmentTime.Before(now) {
			out = append(out, a)
		}
	}
	return out
}

func filterUpcomingToday(appts []Appointment, now time.Time) []Appointment {
	out := make([]Appointment, 0, len(appts))
	for _, a := range appts {
		if sameDate(a.AppointmentTime, now) && !a.AppointmentTime.Before(now) {
			out = append(out, a)
		}
	}
	return out
}

func sameDate(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func appointmentLockKey(id uuid.UUID) string {
	return "appointment:" + id.String()
}

func generationLockKey(doctorID uuid.UUID) string {
	return "generate:doctor:" + doctorID.String()
}
