package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/services"
)

// --- PROFILE ---

func (h *Handler) GetDoctor(c *gin.Context) {
	profile, err := h.Services.Doctors.Profile(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"doctor": profile})
}

func (h *Handler) EditDoctor(c *gin.Context) {
	var req services.EditDoctorInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	profile, err := h.Services.Doctors.EditProfile(c.Request.Context(), principal(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor updated successfully", "doctor": profile})
}

func (h *Handler) RemoveDoctor(c *gin.Context) {
	if err := h.Services.Doctors.Remove(c.Request.Context(), principal(c)); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Doctor removed successfully!"})
}

// --- CLINIC SETTINGS ---

func (h *Handler) SetFees(c *gin.Context) {
	var req struct {
		Fees any `json:"fees"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	fees, err := h.Services.Doctors.SetFees(c.Request.Context(), principal(c), req.Fees)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Fees updated successfully!", "fees": fees})
}

func (h *Handler) GetFees(c *gin.Context) {
	fees, err := h.Services.Doctors.GetFees(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"fees": fees})
}

func (h *Handler) SetClinicHours(c *gin.Context) {
	var req services.ClinicHours
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	hours, err := h.Services.Doctors.SetHours(c.Request.Context(), principal(c), req.CheckInTime, req.CheckOutTime)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hours)
}

func (h *Handler) GetClinicHours(c *gin.Context) {
	hours, err := h.Services.Doctors.GetHours(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, hours)
}

// --- DASHBOARD ---

func (h *Handler) AppointmentStats(c *gin.Context) {
	stats, err := h.Services.Doctors.AppointmentStats(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

func (h *Handler) AgeGroupCounts(c *gin.Context) {
	groups, err := h.Services.Doctors.AgeGroups(c.Request.Context(), principal(c), c.Query("month"), c.Query("year"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": groups})
}

func (h *Handler) GenderPercentage(c *gin.Context) {
	share, err := h.Services.Doctors.GenderPercentage(c.Request.Context(), principal(c), c.Query("month"), c.Query("year"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": share})
}

func (h *Handler) RevenueByMonth(c *gin.Context) {
	revenue, err := h.Services.Doctors.RevenueByMonth(c.Request.Context(), principal(c), c.Query("month"), c.Query("year"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revenue": revenue})
}

func (h *Handler) RevenueByYear(c *gin.Context) {
	revenue, err := h.Services.Doctors.RevenueByYear(c.Request.Context(), principal(c), c.Query("year"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, revenue)
}
