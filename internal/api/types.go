package api

import (
	"time"

	"github.com/google/uuid"

	"github.com/odrlabs/ondemand-reservation/internal/reservation"
)

type CreateDoctorRequest struct {
	Name      string  `json:"name"`
	Specialty *string `json:"specialty,omitempty"`
}

type CreatePatientRequest struct {
	Name  string  `json:"name"`
	Email *string `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

type ScheduleRequest struct {
	DayOfWeek int `json:"day_of_week"` // 0 = Sunday ... 6 = Saturday
	StartHour int `json:"start_hour"`
	EndHour   int `json:"end_hour"`
}

type GenerateRequest struct {
	HorizonDays *int `json:"horizon_days,omitempty"`
}

type ReserveRequest struct {
	PatientID string `json:"patient_id"`
}

type CancelRequest struct {
	PatientID string `json:"patient_id"`
}

type DoctorResponse struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Specialty *string   `json:"specialty,omitempty"`
}

type PatientResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email *string   `json:"email,omitempty"`
	Phone *string   `json:"phone,omitempty"`
}

type ScheduleResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	DayOfWeek int       `json:"day_of_week"`
	StartHour int       `json:"start_hour"`
	EndHour   int       `json:"end_hour"`
}

type AppointmentResponse struct {
	ID              uuid.UUID  `json:"id"`
	DoctorID        uuid.UUID  `json:"doctor_id"`
	PatientID       *uuid.UUID `json:"patient_id,omitempty"`
	AppointmentTime time.Time  `json:"appointment_time"`
	Status          string     `json:"status"`
	WasAttended     bool       `json:"was_attended"`
}

type GenerateResponse struct {
	Created          int         `json:"created"`
	InvalidSchedules []uuid.UUID `json:"invalid_schedules,omitempty"`
}

type CancelResponse struct {
	Cancelled bool   `json:"cancelled"`
	Message   string `json:"message"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func toAppointmentResponse(a *reservation.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:              a.ID,
		DoctorID:        a.DoctorID,
		PatientID:       a.PatientID,
		AppointmentTime: a.AppointmentTime,
		Status:          string(a.Status),
		WasAttended:     a.WasAttended,
	}
}

func toAppointmentResponses(appts []reservation.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for i := range appts {
		out = append(out, toAppointmentResponse(&appts[i]))
	}
	return out
}

func toScheduleResponse(s *reservation.Schedule) ScheduleResponse {
	return ScheduleResponse{
		ID:        s.ID,
		DoctorID:  s.DoctorID,
		DayOfWeek: int(s.DayOfWeek),
		StartHour: s.StartHour,
		EndHour:   s.EndHour,
	}
}
