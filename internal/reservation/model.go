package reservation

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	StatusOpen      AppointmentStatus = "open"
	StatusReserved  AppointmentStatus = "reserved"
	StatusCancelled AppointmentStatus = "cancelled"
	StatusAttended  AppointmentStatus = "attended"
)

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	Phone     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Schedule is a doctor's recurring weekly availability window.
// StartHour and EndHour bound a half-open interval [StartHour, EndHour)
// in whole hours of the day.
type Schedule struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	DayOfWeek time.Weekday
	StartHour int
	EndHour   int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is a single bookable slot owned by a doctor. PatientID is
// set while the slot is reserved or attended and nil otherwise.
// AppointmentTime never changes after the slot is generated.
type Appointment struct {
	ID              uuid.UUID
	DoctorID        uuid.UUID
	PatientID       *uuid.UUID
	AppointmentTime time.Time
	Status          AppointmentStatus
	WasAttended     bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type OwnerKind string

const (
	OwnerDoctor  OwnerKind = "doctor"
	OwnerPatient OwnerKind = "patient"
)

// Owner identifies whose appointment collection a query runs against.
type Owner struct {
	Kind OwnerKind
	ID   uuid.UUID
}

func DoctorOwner(id uuid.UUID) Owner  { return Owner{Kind: OwnerDoctor, ID: id} }
func PatientOwner(id uuid.UUID) Owner { return Owner{Kind: OwnerPatient, ID: id} }

// Clock supplies the current time. Injected so that generation and the
// today/past/upcoming filters are deterministic in tests.
type Clock func() time.Time
