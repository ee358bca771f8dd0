package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/services"
)

func (h *Handler) RegisterPatient(c *gin.Context) {
	var req services.RegisterPatientInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	booking, err := h.Services.Patients.Register(c.Request.Context(), principal(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

func (h *Handler) BookAppointment(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req services.BookInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, err.Error())
		return
	}
	booking, err := h.Services.Patients.Book(c.Request.Context(), principal(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, booking)
}

// ListPatients accepts ?date=YYYY-MM-DD&search=name.
func (h *Handler) ListPatients(c *gin.Context) {
	list, err := h.Services.Patients.ListByDate(c.Request.Context(), principal(c), c.Query("date"), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": list})
}

func (h *Handler) SearchPatients(c *gin.Context) {
	list, err := h.Services.Patients.SearchForBooking(c.Request.Context(), principal(c), c.Query("q"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patients": list})
}

func (h *Handler) ToggleToxicity(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	patient, err := h.Services.Patients.ToggleToxicity(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"patient": patient})
}
