package reservation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty *string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Specialty = specialty
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email, phone *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&phone,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	p.Phone = phone
	return &p, nil
}

func scanSchedule(row pgx.Row) (*Schedule, error) {
	var s Schedule
	var dow int

	err := row.Scan(
		&s.ID,
		&s.DoctorID,
		&dow,
		&s.StartHour,
		&s.EndHour,
		&s.CreatedAt,
		&s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrScheduleNotFound
		}
		return nil, err
	}

	s.DayOfWeek = time.Weekday(dow)
	return &s, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var patientID *uuid.UUID

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&patientID,
		&a.AppointmentTime,
		&a.Status,
		&a.WasAttended,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.PatientID = patientID
	return &a, nil
}

const appointmentColumns = `id, doctor_id, patient_id, appointment_time, status, was_attended, created_at, updated_at`

// Doctors

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) ListDoctors(ctx context.Context) ([]Doctor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM doctors
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Doctor
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}

	return result, rows.Err()
}

func (r *PgRepository) CreateDoctor(ctx context.Context, d *Doctor) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO doctors (id, name, specialty, created_at, updated_at)
		VALUES ($1, $2, $3, now(), now())
	`, d.ID, d.Name, d.Specialty)
	if err != nil {
		return fmt.Errorf("insert doctor: %w", err)
	}

	return nil
}

// DeleteDoctorCascade removes the doctor's appointments and schedules
// before the doctor row itself, all in one transaction. Already
// generated appointments do not survive their owning doctor.
func (r *PgRepository) DeleteDoctorCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM appointments WHERE doctor_id = $1`, id); err != nil {
		return fmt.Errorf("delete doctor appointments: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM schedules WHERE doctor_id = $1`, id); err != nil {
		return fmt.Errorf("delete doctor schedules: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM doctors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrDoctorNotFound
	}

	return tx.Commit(ctx)
}

// Patients

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, phone, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) CreatePatient(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO patients (id, name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
	`, p.ID, p.Name, p.Email, p.Phone)
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}

	return nil
}

// DeletePatientCascade detaches the patient from any appointment they
// hold (reopening those slots) before deleting the patient row. The
// doctor keeps the freed slots.
func (r *PgRepository) DeletePatientCascade(ctx context.Context, id uuid.UUID) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET patient_id = NULL,
		    status = 'open',
		    updated_at = now()
		WHERE patient_id = $1
		  AND status = 'reserved'
	`, id)
	if err != nil {
		return fmt.Errorf("detach reserved appointments: %w", err)
	}

	// Attended history keeps no dangling reference either.
	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET patient_id = NULL,
		    updated_at = now()
		WHERE patient_id = $1
	`, id)
	if err != nil {
		return fmt.Errorf("detach appointments: %w", err)
	}

	tag, err := tx.Exec(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrPatientNotFound
	}

	return tx.Commit(ctx)
}

// Schedules

func (r *PgRepository) CreateSchedule(ctx context.Context, s *Schedule) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}

	_, err := r.pool.Exec(ctx, `
		INSERT INTO schedules (id, doctor_id, day_of_week, start_hour, end_hour, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, now(), now())
	`, s.ID, s.DoctorID, int(s.DayOfWeek), s.StartHour, s.EndHour)
	if err != nil {
		return fmt.Errorf("insert schedule: %w", err)
	}

	return nil
}

func (r *PgRepository) GetScheduleByID(ctx context.Context, id uuid.UUID) (*Schedule, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, day_of_week, start_hour, end_hour, created_at, updated_at
		FROM schedules
		WHERE id = $1
	`, id)
	return scanSchedule(row)
}

func (r *PgRepository) UpdateSchedule(ctx context.Context, s *Schedule) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE schedules
		SET day_of_week = $2,
		    start_hour = $3,
		    end_hour = $4,
		    updated_at = now()
		WHERE id = $1
	`, s.ID, int(s.DayOfWeek), s.StartHour, s.EndHour)
	if err != nil {
		return fmt.Errorf("update schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

// DeleteSchedule removes only the schedule row. Appointments already
// generated from it remain as historical records.
func (r *PgRepository) DeleteSchedule(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM schedules WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete schedule: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

func (r *PgRepository) ListSchedulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Schedule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, day_of_week, start_hour, end_hour, created_at, updated_at
		FROM schedules
		WHERE doctor_id = $1
		ORDER BY day_of_week, start_hour
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Schedule
	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *s)
	}

	return result, rows.Err()
}

// Appointments

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) ListAppointmentsByDoctor(ctx context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	return r.listAppointments(ctx, `doctor_id`, doctorID)
}

func (r *PgRepository) ListAppointmentsByPatient(ctx context.Context, patientID uuid.UUID) ([]Appointment, error) {
	return r.listAppointments(ctx, `patient_id`, patientID)
}

func (r *PgRepository) listAppointments(ctx context.Context, column string, id uuid.UUID) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE `+column+` = $1
		ORDER BY appointment_time
	`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	return result, rows.Err()
}

// InsertOpenSlots relies on the unique index on
// (doctor_id, appointment_time): duplicate slots from a re-run or a
// concurrent run hit ON CONFLICT DO NOTHING instead of inserting twice.
func (r *PgRepository) InsertOpenSlots(ctx context.Context, doctorID uuid.UUID, times []time.Time) (int, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	created := 0
	for _, t := range times {
		tag, err := tx.Exec(ctx, `
			INSERT INTO appointments (id, doctor_id, patient_id, appointment_time, status, was_attended, created_at, updated_at)
			VALUES ($1, $2, NULL, $3, 'open', false, now(), now())
			ON CONFLICT (doctor_id, appointment_time) DO NOTHING
		`, uuid.New(), doctorID, t)
		if err != nil {
			return 0, fmt.Errorf("insert open slot: %w", err)
		}
		created += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}

	return created, nil
}

func (r *PgRepository) ReserveAppointment(ctx context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'reserved',
		    patient_id = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'open'
		RETURNING `+appointmentColumns+`
	`, id, patientID)

	return scanAppointment(row)
}

func (r *PgRepository) ReopenAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'open',
		    patient_id = NULL,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'reserved'
		RETURNING `+appointmentColumns+`
	`, id)

	return scanAppointment(row)
}

func (r *PgRepository) MarkAppointmentAttended(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = 'attended',
		    was_attended = true,
		    updated_at = now()
		WHERE id = $1
		  AND status = 'reserved'
		RETURNING `+appointmentColumns+`
	`, id)

	return scanAppointment(row)
}
