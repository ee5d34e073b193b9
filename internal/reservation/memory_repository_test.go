package reservation

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// memRepo is an in-memory Repository for tests. All conditional
// updates run under one mutex, mirroring the atomic conditional
// UPDATE the Postgres repository relies on.
type memRepo struct {
	mu           sync.Mutex
	doctors      map[uuid.UUID]Doctor
	patients     map[uuid.UUID]Patient
	schedules    map[uuid.UUID]Schedule
	appointments map[uuid.UUID]Appointment
}

func newMemRepo() *memRepo {
	return &memRepo{
		doctors:      make(map[uuid.UUID]Doctor),
		patients:     make(map[uuid.UUID]Patient),
		schedules:    make(map[uuid.UUID]Schedule),
		appointments: make(map[uuid.UUID]Appointment),
	}
}

func (r *memRepo) addDoctor() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.doctors[id] = Doctor{ID: id, Name: "Dr. Test"}
	return id
}

func (r *memRepo) addPatient() uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.patients[id] = Patient{ID: id, Name: "Test Patient"}
	return id
}

func (r *memRepo) addSchedule(doctorID uuid.UUID, day time.Weekday, startHour, endHour int) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	id := uuid.New()
	r.schedules[id] = Schedule{ID: id, DoctorID: doctorID, DayOfWeek: day, StartHour: startHour, EndHour: endHour}
	return id
}

func (r *memRepo) addAppointment(a Appointment) uuid.UUID {
	r.mu.Lock()
	defer r.mu.Unlock()
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	r.appointments[a.ID] = a
	return a.ID
}

func (r *memRepo) GetDoctorByID(_ context.Context, id uuid.UUID) (*Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.doctors[id]
	if !ok {
		return nil, ErrDoctorNotFound
	}
	return &d, nil
}

func (r *memRepo) ListDoctors(_ context.Context) ([]Doctor, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Doctor, 0, len(r.doctors))
	for _, d := range r.doctors {
		out = append(out, d)
	}
	return out, nil
}

func (r *memRepo) CreateDoctor(_ context.Context, d *Doctor) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	r.doctors[d.ID] = *d
	return nil
}

func (r *memRepo) DeleteDoctorCascade(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.doctors[id]; !ok {
		return ErrDoctorNotFound
	}
	for aid, a := range r.appointments {
		if a.DoctorID == id {
			delete(r.appointments, aid)
		}
	}
	for sid, s := range r.schedules {
		if s.DoctorID == id {
			delete(r.schedules, sid)
		}
	}
	delete(r.doctors, id)
	return nil
}

func (r *memRepo) GetPatientByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.patients[id]
	if !ok {
		return nil, ErrPatientNotFound
	}
	return &p, nil
}

func (r *memRepo) CreatePatient(_ context.Context, p *Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.patients[p.ID] = *p
	return nil
}

func (r *memRepo) DeletePatientCascade(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.patients[id]; !ok {
		return ErrPatientNotFound
	}
	for aid, a := range r.appointments {
		if a.PatientID != nil && *a.PatientID == id {
			a.PatientID = nil
			if a.Status == StatusReserved {
				a.Status = StatusOpen
			}
			r.appointments[aid] = a
		}
	}
	delete(r.patients, id)
	return nil
}

func (r *memRepo) CreateSchedule(_ context.Context, s *Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	r.schedules[s.ID] = *s
	return nil
}

func (r *memRepo) GetScheduleByID(_ context.Context, id uuid.UUID) (*Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.schedules[id]
	if !ok {
		return nil, ErrScheduleNotFound
	}
	return &s, nil
}

func (r *memRepo) UpdateSchedule(_ context.Context, s *Schedule) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[s.ID]; !ok {
		return ErrScheduleNotFound
	}
	r.schedules[s.ID] = *s
	return nil
}

func (r *memRepo) DeleteSchedule(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.schedules[id]; !ok {
		return ErrScheduleNotFound
	}
	delete(r.schedules, id)
	return nil
}

func (r *memRepo) ListSchedulesByDoctor(_ context.Context, doctorID uuid.UUID) ([]Schedule, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Schedule
	for _, s := range r.schedules {
		if s.DoctorID == doctorID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memRepo) GetAppointmentByID(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok {
		return nil, ErrAppointmentNotFound
	}
	return &a, nil
}

func (r *memRepo) ListAppointmentsByDoctor(_ context.Context, doctorID uuid.UUID) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) ListAppointmentsByPatient(_ context.Context, patientID uuid.UUID) ([]Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Appointment
	for _, a := range r.appointments {
		if a.PatientID != nil && *a.PatientID == patientID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *memRepo) InsertOpenSlots(_ context.Context, doctorID uuid.UUID, times []time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing := make(map[time.Time]bool)
	for _, a := range r.appointments {
		if a.DoctorID == doctorID {
			existing[a.AppointmentTime] = true
		}
	}

	created := 0
	for _, t := range times {
		if existing[t] {
			continue
		}
		id := uuid.New()
		r.appointments[id] = Appointment{
			ID:              id,
			DoctorID:        doctorID,
			AppointmentTime: t,
			Status:          StatusOpen,
		}
		existing[t] = true
		created++
	}
	return created, nil
}

func (r *memRepo) ReserveAppointment(_ context.Context, id, patientID uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != StatusOpen {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusReserved
	a.PatientID = &patientID
	r.appointments[id] = a
	return &a, nil
}

func (r *memRepo) ReopenAppointment(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != StatusReserved {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusOpen
	a.PatientID = nil
	r.appointments[id] = a
	return &a, nil
}

func (r *memRepo) MarkAppointmentAttended(_ context.Context, id uuid.UUID) (*Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appointments[id]
	if !ok || a.Status != StatusReserved {
		return nil, ErrAppointmentNotFound
	}
	a.Status = StatusAttended
	a.WasAttended = true
	r.appointments[id] = a
	return &a, nil
}

// noopLocker runs the critical section directly. The memRepo mutex
// already makes conditional updates atomic.
type noopLocker struct{}

func (noopLocker) WithLock(ctx context.Context, _ string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}
