package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"rucja-api/config"
	"rucja-api/mail"
	"rucja-api/middleware"
)

type MailHandler struct {
	cfg    config.Config
	sender mail.Sender
}

func NewMailHandler(cfg config.Config, sender mail.Sender) *MailHandler {
	return &MailHandler{cfg: cfg, sender: sender}
}

// mailRequest covers every mail endpoint; each handler reads the fields it
// needs. Field names are part of the public API.
type mailRequest struct {
	PatientEmail    string `json:"patientEmail"`
	DoctorEmail     string `json:"doctorEmail"`
	CcMail          string `json:"ccMail"`
	BccMail         string `json:"bccMail"`
	DoctorName      string `json:"doctorName"`
	PatientName     string `json:"patientName"`
	AppointmentID   string `json:"appointmentID"`
	AppointmentDate string `json:"appointmentDate"`
	AppointmentTime string `json:"appointmentTime"`
	Password        string `json:"password"`
}

type mailResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// SendMailHandler notifies a patient they were added by a doctor.
func (h *MailHandler) SendMailHandler(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeMailRequest(r)
	if err != nil {
		return err
	}

	msg := mail.Message{
		To:          mail.Recipients(req.PatientEmail),
		Cc:          mail.Recipients(req.CcMail),
		Bcc:         mail.Recipients(req.BccMail),
		FromName:    h.cfg.Mail.SenderName,
		FromAddress: h.cfg.Mail.SenderEmail,
		Subject:     fmt.Sprintf("Hi %s, You have been added as a patient", req.PatientName),
		HTML:        patientAddedBody(req.DoctorName),
	}
	return h.dispatch(w, r, msg)
}

// PatientAddedMailHandler is the older variant of SendMailHandler kept for
// clients that still post to /patient-added-mail.
func (h *MailHandler) PatientAddedMailHandler(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeMailRequest(r)
	if err != nil {
		return err
	}

	msg := mail.Message{
		To:          mail.Recipients(req.PatientEmail),
		Cc:          mail.Recipients(req.CcMail),
		Bcc:         mail.Recipients(req.BccMail),
		FromName:    "",
		FromAddress: h.cfg.Mail.SenderEmail,
		Subject:     fmt.Sprintf("Hi %s, You have been added patient", req.PatientName),
		HTML:        patientAddedBody(req.DoctorName),
	}
	return h.dispatch(w, r, msg)
}

// MeetingConfirmationPatientHandler mails the patient their appointment
// details, including the join link with the patient role.
func (h *MailHandler) MeetingConfirmationPatientHandler(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeMailRequest(r)
	if err != nil {
		return err
	}

	joinLink := fmt.Sprintf("%s?sessionID=%s&userName=%s&password=%s&role=0",
		h.cfg.Mail.MeetingLink, req.AppointmentID, req.PatientName, req.Password)

	msg := mail.Message{
		To:          mail.Recipients(req.PatientEmail),
		Cc:          mail.Recipients(req.CcMail),
		Bcc:         mail.Recipients(req.BccMail),
		FromName:    "Dr. " + req.DoctorName,
		FromAddress: h.cfg.Mail.SenderEmail,
		Subject:     fmt.Sprintf("Hi %s, You have an appointment scheduled", req.PatientName),
		HTML: meetingBody(
			fmt.Sprintf("Hello Mr. %s,", req.PatientName),
			fmt.Sprintf("You have an upcoming appointment with Dr.%s.", req.DoctorName),
			req, joinLink,
		),
	}
	return h.dispatch(w, r, msg)
}

// MeetingConfirmationDoctorHandler mails the doctor the same appointment
// details with the doctor-role join link.
func (h *MailHandler) MeetingConfirmationDoctorHandler(w http.ResponseWriter, r *http.Request) error {
	req, err := decodeMailRequest(r)
	if err != nil {
		return err
	}

	joinLink := fmt.Sprintf("%s?sessionID=%s&userName=%s&password=%s&role=1",
		h.cfg.Mail.MeetingLink, req.AppointmentID, req.DoctorName, req.Password)

	msg := mail.Message{
		To:          mail.Recipients(req.DoctorEmail),
		Cc:          mail.Recipients(req.CcMail),
		Bcc:         mail.Recipients(req.BccMail),
		FromName:    "Cancer Unwired",
		FromAddress: h.cfg.Mail.SenderEmail,
		Subject:     fmt.Sprintf("Hi Dr. %s, You have an upcoming appointment with %s", req.DoctorName, req.PatientName),
		HTML: meetingBody(
			fmt.Sprintf("Hello Dr. %s,", req.DoctorName),
			fmt.Sprintf("You have an upcoming appointment with %s.", req.PatientName),
			req, joinLink,
		),
	}
	return h.dispatch(w, r, msg)
}

func (h *MailHandler) dispatch(w http.ResponseWriter, r *http.Request, msg mail.Message) error {
	// No timeout on the provider call: a slow SMTP server holds the
	// handler open until it settles, as the legacy server did.
	if err := h.sender.Send(r.Context(), msg); err != nil {
		return writeJSON(w, http.StatusInternalServerError, mailResponse{Success: false, Message: "Error sending email"})
	}
	return writeJSON(w, http.StatusOK, mailResponse{Success: true, Message: "Email sent successfully"})
}

func decodeMailRequest(r *http.Request) (mailRequest, error) {
	var req mailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return mailRequest{}, middleware.NewAppError(http.StatusBadRequest, "Invalid request payload", err)
	}
	return req, nil
}

func patientAddedBody(doctorName string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Rucja Medical Application</title>
    <style>
        body { font-family: Arial, sans-serif; }
        .header { text-align: center; padding: 10px; background-color: #f8f9fa; }
        .content { margin: 20px; text-align: center; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Welcome to Rucja Medical Application</h1>
    </div>
    <div class="content">
        <p>%s Doctor has added you as a patient.</p>
    </div>
</body>
</html>
`, doctorName)
}

func meetingBody(greeting, intro string, req mailRequest, joinLink string) string {
	return fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <title>Appointment Confirmation</title>
    <style>
        body { font-family: Arial, sans-serif; }
        .header { text-align: center; padding: 10px; background-color: #f5f5f5; }
        h1 { color: #5b0374; }
        .content { margin: 0 auto; width: 60%%; text-align: left; padding: 20px; border: 1px solid #ccc; border-radius: 10px; margin-top: 50px; }
        .meeting-details { margin-top: 30px; }
        .send-meeting-section { text-align: center; margin-top: 20px; }
        .send-meeting-button { background-color: #9426b2; color: white; border: none; padding: 10px 20px; border-radius: 5px; text-decoration: none; }
    </style>
</head>
<body>
    <div class="header">
        <h1>Cancer Unwired Meeting</h1>
    </div>
    <div class="content">
        <h4>%s</h4>
        <p>%s</p>
        <div class="meeting-details">
            <h4>Meeting Details:</h4>
            <p>Meeting/SessionID: %s</p>
            <p>password: %s</p>
            <p>Date: %s</p>
            <p>Time: %s</p>
            <p>Meeting Link: %s</p>
        </div>
        <div class="send-meeting-section">
            <button class="send-meeting-button">
                <a href="%s" style="color: white; text-decoration: none;">Join Meeting</a>
            </button>
        </div>
    </div>
</body>
</html>
`, greeting, intro, req.AppointmentID, req.Password, req.AppointmentDate, req.AppointmentTime, joinLink, joinLink)
}
