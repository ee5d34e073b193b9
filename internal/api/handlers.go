package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/odrlabs/ondemand-reservation/internal/reservation"
	redisclient "github.com/odrlabs/ondemand-reservation/internal/redis"
)

func generateAppointmentsHandler(svc *reservation.Service, defaultHorizon int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, ok := parseUUIDParam(w, r, "id", "invalid_doctor_id")
		if !ok {
			return
		}

		horizon := defaultHorizon
		if r.Body != nil && r.ContentLength > 0 {
			var req GenerateRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
				return
			}
			if req.HorizonDays != nil {
				horizon = *req.HorizonDays
			}
		}
		if horizon < 0 {
			writeError(w, http.StatusBadRequest, "invalid_horizon", "horizon_days must be >= 0")
			return
		}

		result, err := svc.GenerateAppointments(r.Context(), doctorID, horizon)
		if err != nil {
			if errors.Is(err, reservation.ErrDoctorNotFound) {
				writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, GenerateResponse{
			Created:          result.Created,
			InvalidSchedules: result.InvalidSchedules,
		})
	}
}

func reserveAppointmentHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUIDParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		var req ReserveRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		appt, err := svc.Reserve(r.Context(), appointmentID, patientID)
		if err != nil {
			handleReserveError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

// cancelAppointmentHandler never propagates a cancellation failure as
// an error status: the caller's flow continues with a soft message
// either way. The real reason still goes to the log.
func cancelAppointmentHandler(svc *reservation.Service, log *zerolog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUIDParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		var req CancelRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}

		if err := svc.Cancel(r.Context(), appointmentID, patientID); err != nil {
			log.Error().
				Str("appointment_id", appointmentID.String()).
				Str("patient_id", patientID.String()).
				Err(err).
				Msg("cancellation failed")
			writeJSON(w, http.StatusOK, CancelResponse{
				Cancelled: false,
				Message:   "appointment cancellation failed",
			})
			return
		}

		writeJSON(w, http.StatusOK, CancelResponse{
			Cancelled: true,
			Message:   "appointment cancelled",
		})
	}
}

func markAttendedHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUIDParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.MarkAttended(r.Context(), appointmentID)
		if err != nil {
			handleTransitionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc *reservation.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appointmentID, ok := parseUUIDParam(w, r, "id", "invalid_appointment_id")
		if !ok {
			return
		}

		appt, err := svc.GetAppointment(r.Context(), appointmentID)
		if err != nil {
			if errors.Is(err, reservation.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func listAppointmentsHandler(svc *reservation.Service, kind reservation.OwnerKind) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, ok := parseUUIDParam(w, r, "id", "invalid_owner_id")
		if !ok {
			return
		}
		owner := reservation.Owner{Kind: kind, ID: id}

		var (
			appts []reservation.Appointment
			err   error
		)
		switch r.URL.Query().Get("filter") {
		case "", "all":
			appts, err = svc.ListAppointments(r.Context(), owner)
		case "today":
			appts, err = svc.QueryToday(r.Context(), owner)
		case "past":
			appts, err = svc.QueryPast(r.Context(), owner)
		case "upcoming-today":
			appts, err = svc.QueryUpcomingToday(r.Context(), owner)
		default:
			writeError(w, http.StatusBadRequest, "invalid_filter", "filter must be one of all, today, past, upcoming-today")
			return
		}
		if err != nil {
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func handleReserveError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reservation.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, reservation.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, reservation.ErrSlotUnavailable),
		errors.Is(err, redisclient.ErrLockNotAcquired):
		writeError(w, http.StatusConflict, "slot_unavailable", "appointment slot is not available")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleTransitionError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, reservation.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.Is(err, reservation.ErrNotAuthorized):
		writeError(w, http.StatusForbidden, "not_authorized", err.Error())
	case errors.Is(err, reservation.ErrInvalidState):
		writeError(w, http.StatusConflict, "invalid_state", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func parseUUIDParam(w http.ResponseWriter, r *http.Request, name, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, name))
	if err != nil {
		writeError(w, http.StatusBadRequest, code, name+" must be a valid UUID")
		return uuid.Nil, false
	}
	return id, true
}
