package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/odrlabs/ondemand-reservation/internal/reservation"
)

func createDoctorHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreateDoctorRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_name", "name is required")
			return
		}

		d := &reservation.Doctor{Name: req.Name, Specialty: req.Specialty}
		if err := svc.CreateDoctor(r.Context(), d); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, DoctorResponse{ID: d.ID, Name: d.Name, Specialty: d.Specialty})
	}
}

func listDoctorsHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctors, err := svc.ListDoctors(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]DoctorResponse, 0, len(doctors))
		for _, d := range doctors {
			out = append(out, DoctorResponse{ID: d.ID, Name: d.Name, Specialty: d.Specialty})
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func getDoctorHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_doctor_id")
		if !ok {
			return
		}

		d, err := svc.GetDoctor(r.Context(), id)
		if err != nil {
			if errors.Is(err, reservation.ErrDoctorNotFound) {
				writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, DoctorResponse{ID: d.ID, Name: d.Name, Specialty: d.Specialty})
	}
}

func deleteDoctorHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_doctor_id")
		if !ok {
			return
		}

		if err := svc.DeleteDoctor(r.Context(), id); err != nil {
			if errors.Is(err, reservation.ErrDoctorNotFound) {
				writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func createPatientHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req CreatePatientRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		if req.Name == "" {
			writeError(w, http.StatusBadRequest, "invalid_name", "name is required")
			return
		}

		p := &reservation.Patient{Name: req.Name, Email: req.Email, Phone: req.Phone}
		if err := svc.CreatePatient(r.Context(), p); err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, PatientResponse{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone})
	}
}

func getPatientHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_patient_id")
		if !ok {
			return
		}

		p, err := svc.GetPatient(r.Context(), id)
		if err != nil {
			if errors.Is(err, reservation.ErrPatientNotFound) {
				writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, PatientResponse{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone})
	}
}

func deletePatientHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_patient_id")
		if !ok {
			return
		}

		if err := svc.DeletePatient(r.Context(), id); err != nil {
			if errors.Is(err, reservation.ErrPatientNotFound) {
				writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func createScheduleHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(w, r, "id", "invalid_doctor_id")
		if !ok {
			return
		}

		var req ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		sched := &reservation.Schedule{
			DoctorID:  doctorID,
			DayOfWeek: time.Weekday(req.DayOfWeek),
			StartHour: req.StartHour,
			EndHour:   req.EndHour,
		}
		if err := svc.CreateSchedule(r.Context(), sched); err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toScheduleResponse(sched))
	}
}

func listSchedulesHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(w, r, "id", "invalid_doctor_id")
		if !ok {
			return
		}

		schedules, err := svc.ListSchedules(r.Context(), doctorID)
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		out := make([]ScheduleResponse, 0, len(schedules))
		for i := range schedules {
			out = append(out, toScheduleResponse(&schedules[i]))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

func updateScheduleHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_schedule_id")
		if !ok {
			return
		}

		existing, err := svc.GetSchedule(r.Context(), id)
		if err != nil {
			handleScheduleError(w, err)
			return
		}

		var req ScheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		sched := &reservation.Schedule{
			ID:        id,
			DoctorID:  existing.DoctorID,
			DayOfWeek: time.Weekday(req.DayOfWeek),
			StartHour: req.StartHour,
			EndHour:   req.EndHour,
		}
		if err := svc.UpdateSchedule(r.Context(), sched); err != nil {
			handleScheduleError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toScheduleResponse(sched))
	}
}

func deleteScheduleHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_schedule_id")
		if !ok {
			return
		}

		if err := svc.DeleteSchedule(r.Context(), id); err != nil {
			handleScheduleError(w, err)
			return
		}

		w.WriteHeader(http.StatusNoContent)
	}
}

func handleScheduleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reservation.ErrScheduleNotFound):
		writeError(w, http.StatusNotFound, "schedule_not_found", err.Error())
	case errors.Is(err, reservation.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, reservation.ErrInvalidSchedule):
		writeError(w, http.StatusUnprocessableEntity, "invalid_schedule", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}
