package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/middleware"
	"github.com/harentsoaR/clinic-api/internal/models"
)

// RegisterRoutes mounts every endpoint on r.
func (h *Handler) RegisterRoutes(r *gin.Engine, tokens middleware.TokenValidator) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	auth := middleware.AuthMiddleware(tokens)
	terms := middleware.RequireTerms()
	doctorOnly := middleware.RequireRole(models.RoleDoctor)
	receptionistOnly := middleware.RequireRole(models.RoleReceptionist)

	r.GET("/ws", auth, h.ServeWS)

	api := r.Group("/api")

	doctors := api.Group("/doctors")
	{
		doctors.POST("/register", h.RegisterDoctor)
		doctors.POST("/login", h.Login)
		doctors.POST("/accept-terms-and-conditions", auth, doctorOnly, h.AcceptTerms)

		secured := doctors.Group("", auth, terms)
		secured.POST("/change-password", doctorOnly, h.ChangeDoctorPassword)
		secured.POST("/fees", doctorOnly, h.SetFees)
		secured.GET("/fees", h.GetFees)
		secured.PUT("/set-check-in-out-time", doctorOnly, h.SetClinicHours)
		secured.GET("/get-check-in-out-time", h.GetClinicHours)
		secured.POST("/payment-qr", h.SetPaymentQR)
		secured.GET("/payment-qr", h.GetPaymentQR)
		secured.POST("/add-signature", doctorOnly, h.AddSignature)
		secured.GET("/get-signature", doctorOnly, h.GetSignature)
		secured.PUT("/profile", doctorOnly, h.ChangeProfile)
		secured.PUT("/", doctorOnly, h.EditDoctor)
		secured.DELETE("/", doctorOnly, h.RemoveDoctor)
		secured.GET("/get-doctor", doctorOnly, h.GetDoctor)
		secured.GET("/appointments-stats", h.AppointmentStats)
		secured.GET("/age-group-counts", doctorOnly, h.AgeGroupCounts)
		secured.GET("/gender-percentage", doctorOnly, h.GenderPercentage)
		secured.GET("/revenue", doctorOnly, h.RevenueByMonth)
		secured.GET("/revenue-by-year", doctorOnly, h.RevenueByYear)
	}

	receptionists := api.Group("/receptionists")
	{
		receptionists.POST("/login", h.Login)

		secured := receptionists.Group("", auth, terms)
		secured.POST("/", doctorOnly, h.AddReceptionist)
		secured.GET("/", doctorOnly, h.ListReceptionists)
		secured.GET("/me", receptionistOnly, h.Me)
		secured.PUT("/profile", receptionistOnly, h.ChangeProfile)
		secured.POST("/check-in", receptionistOnly, h.CheckIn)
		secured.POST("/check-out", receptionistOnly, h.CheckOut)
		secured.GET("/:id", doctorOnly, h.GetReceptionist)
		secured.PUT("/:id", doctorOnly, h.EditReceptionist)
		secured.DELETE("/:id", doctorOnly, h.RemoveReceptionist)
		secured.PUT("/:id/password", doctorOnly, h.ChangeReceptionistPassword)
		secured.GET("/:id/attendance", doctorOnly, h.AttendanceHistory)
		secured.GET("/:id/attendance/export", doctorOnly, h.ExportAttendance)
		secured.GET("/:id/attendance/stats", h.AttendanceStats)
	}

	patients := api.Group("/patients", auth, terms)
	{
		patients.POST("/", h.RegisterPatient)
		patients.GET("/", h.ListPatients)
		patients.GET("/search", receptionistOnly, h.SearchPatients)
		patients.POST("/:id/appointments", receptionistOnly, h.BookAppointment)
		patients.PUT("/:id/toxicity", doctorOnly, h.ToggleToxicity)
	}

	medicines := api.Group("/medicines", auth, terms)
	{
		medicines.POST("/add", receptionistOnly, h.AddMedicine)
		medicines.GET("/", h.ListMedicines)
		medicines.PUT("/:id", receptionistOnly, h.EditMedicine)
		medicines.DELETE("/:id", receptionistOnly, h.DeleteMedicine)
	}

	appointments := api.Group("/appointments", auth, terms)
	{
		appointments.POST("/extra-charges/:id", h.AddExtraCharges)
		appointments.POST("/payment-mode/:id", h.AddPaymentMode)
		appointments.POST("/prescription/:id", h.AddDocument)
		appointments.PUT("/parameters/:id", h.AddParameters)
		appointments.POST("/submit-prescription/:id", doctorOnly, h.SubmitPrescription)
		appointments.PUT("/submit-appointment/:id", h.SubmitAppointment)
		appointments.GET("/todays-appointments", h.TodaysAppointments)
		appointments.GET("/patient-appointments/:id", doctorOnly, h.PatientAppointments)
		appointments.PUT("/set-current-appointment/:id", h.SetAppointmentStatus)
		appointments.GET("/current-appointment", h.CurrentAppointment)
	}
}
