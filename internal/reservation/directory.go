package reservation

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// Doctor, patient and schedule management. Thin wrappers over the
// repository plus the validation the lifecycle engine depends on.

func (s *Service) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.Name == "" {
		return fmt.Errorf("doctor name is required")
	}
	return s.repo.CreateDoctor(ctx, d)
}

func (s *Service) GetDoctor(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	return s.repo.GetDoctorByID(ctx, id)
}

func (s *Service) ListDoctors(ctx context.Context) ([]Doctor, error) {
	return s.repo.ListDoctors(ctx)
}

// DeleteDoctor removes the doctor together with their schedules and
// appointments.
func (s *Service) DeleteDoctor(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeleteDoctorCascade(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("doctor_id", id.String()).Msg("doctor deleted")
	return nil
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("patient name is required")
	}
	return s.repo.CreatePatient(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetPatientByID(ctx, id)
}

// DeletePatient detaches the patient from held appointments, reopening
// reserved slots, before removing the patient record.
func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.DeletePatientCascade(ctx, id); err != nil {
		return err
	}
	s.log.Info().Str("patient_id", id.String()).Msg("patient deleted")
	return nil
}

func (s *Service) CreateSchedule(ctx context.Context, sched *Schedule) error {
	if err := ValidateSchedule(*sched); err != nil {
		return err
	}
	if _, err := s.repo.GetDoctorByID(ctx, sched.DoctorID); err != nil {
		return err
	}
	return s.repo.CreateSchedule(ctx, sched)
}

func (s *Service) GetSchedule(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	return s.repo.GetScheduleByID(ctx, id)
}

func (s *Service) UpdateSchedule(ctx context.Context, sched *Schedule) error {
	if err := ValidateSchedule(*sched); err != nil {
		return err
	}
	return s.repo.UpdateSchedule(ctx, sched)
}

// DeleteSchedule removes the availability window. Appointments already
// generated from it are kept.
func (s *Service) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	return s.repo.DeleteSchedule(ctx, id)
}

func (s *Service) ListSchedules(ctx context.Context, doctorID uuid.UUID) ([]Schedule, error) {
	return s.repo.ListSchedulesByDoctor(ctx, doctorID)
}

func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	return s.repo.GetAppointmentByID(ctx, id)
}
