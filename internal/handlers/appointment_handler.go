package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/services"
)

// --- CHARGES & PAYMENT ---

func (h *Handler) AddExtraCharges(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		ExtraCharges any `json:"extraCharges"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	apt, err := h.Services.Appointments.AddExtraCharges(c.Request.Context(), principal(c), id, req.ExtraCharges)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Extra charges added successfully", "appointment": apt})
}

func (h *Handler) AddPaymentMode(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		PaymentMode string `json:"paymentMode"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	apt, err := h.Services.Appointments.AddPaymentMode(c.Request.Context(), principal(c), id, req.PaymentMode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Payment mode updated successfully", "appointment": apt})
}

// --- CLINICAL DATA ---

// AddDocument takes {"image": "data:<mime>;base64,<payload>"}.
func (h *Handler) AddDocument(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		Image string `json:"image"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	apt, err := h.Services.Appointments.AddDocument(c.Request.Context(), principal(c), id, req.Image)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prescription uploaded successfully", "appointment": apt})
}

func (h *Handler) AddParameters(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		Parameters json.RawMessage `json:"parameters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	apt, err := h.Services.Appointments.AddParameters(c.Request.Context(), principal(c), id, req.Parameters)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Parameters updated successfully", "appointment": apt})
}

func (h *Handler) SubmitPrescription(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		Prescription json.RawMessage `json:"prescription"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	apt, err := h.Services.Appointments.SubmitPrescription(c.Request.Context(), principal(c), id, req.Prescription)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Prescription submitted successfully", "appointment": apt})
}

func (h *Handler) SubmitAppointment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req services.SubmitInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	apt, err := h.Services.Appointments.Submit(c.Request.Context(), principal(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment submitted successfully", "appointment": apt})
}

// --- QUEUE ---

// SetAppointmentStatus defaults to "in" when the body carries no status.
func (h *Handler) SetAppointmentStatus(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		Status string `json:"status"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			h.badRequest(c, "Invalid request body")
			return
		}
	}
	if req.Status == "" {
		req.Status = models.StatusIn
	}
	apt, err := h.Services.Appointments.SetStatus(c.Request.Context(), principal(c), id, req.Status)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Appointment status updated successfully", "appointment": apt})
}

func (h *Handler) TodaysAppointments(c *gin.Context) {
	list, err := h.Services.Appointments.ListToday(c.Request.Context(), principal(c), c.Query("search"), c.Query("date"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointments": list})
}

func (h *Handler) CurrentAppointment(c *gin.Context) {
	apt, err := h.Services.Appointments.FirstToAttend(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"appointment": apt})
}

func (h *Handler) PatientAppointments(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	patient, err := h.Services.Appointments.PatientAppointments(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient})
}
