package routes

import (
	"rucja-api/config"
	"rucja-api/handlers"
	"rucja-api/middleware"

	"github.com/gorilla/mux"
)

// SetupRoutes wires the full surface: dedicated auth and mail endpoints
// first, then the generic CRUD catch-all. Middleware order matters: the
// guard must run before enrichment so ownership stamping can read the
// authenticated claims. Static files are handled outside the router, in
// main, because router middleware only runs for matched routes.
func SetupRoutes(cfg config.Config, authHandler *handlers.AuthHandler, crudHandler *handlers.CrudHandler, mailHandler *handlers.MailHandler) *mux.Router {
	router := mux.NewRouter()

	router.Use(
		middleware.RequestID,
		middleware.RequestLogger,
		middleware.Guard(cfg),
		middleware.Enrich,
	)

	router.HandleFunc("/register", middleware.ErrorHandler(authHandler.RegisterHandler)).Methods("POST")
	router.HandleFunc("/login", middleware.ErrorHandler(authHandler.LoginHandler)).Methods("POST")

	router.HandleFunc("/sendmail", middleware.ErrorHandler(mailHandler.SendMailHandler)).Methods("POST")
	router.HandleFunc("/patient-added-mail", middleware.ErrorHandler(mailHandler.PatientAddedMailHandler)).Methods("POST")
	router.HandleFunc("/meeting-email-confirmation-patient", middleware.ErrorHandler(mailHandler.MeetingConfirmationPatientHandler)).Methods("POST")
	router.HandleFunc("/meeting-email-confirmation-doctor", middleware.ErrorHandler(mailHandler.MeetingConfirmationDoctorHandler)).Methods("POST")

	router.HandleFunc("/health", handlers.HealthHandler).Methods("GET")

	router.HandleFunc("/{resource}", middleware.ErrorHandler(crudHandler.ListHandler)).Methods("GET")
	router.HandleFunc("/{resource}", middleware.ErrorHandler(crudHandler.CreateHandler)).Methods("POST")
	router.HandleFunc("/{resource}/{id}", middleware.ErrorHandler(crudHandler.GetHandler)).Methods("GET")
	router.HandleFunc("/{resource}/{id}", middleware.ErrorHandler(crudHandler.ReplaceHandler)).Methods("PUT")
	router.HandleFunc("/{resource}/{id}", middleware.ErrorHandler(crudHandler.PatchHandler)).Methods("PATCH")
	router.HandleFunc("/{resource}/{id}", middleware.ErrorHandler(crudHandler.DeleteHandler)).Methods("DELETE")

	return router
}
