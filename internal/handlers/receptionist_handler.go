package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/services"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func (h *Handler) AddReceptionist(c *gin.Context) {
	var req services.AddReceptionistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	rec, err := h.Services.Receptionists.Add(c.Request.Context(), principal(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Receptionist added successfully", "receptionist": rec})
}

func (h *Handler) EditReceptionist(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req services.EditReceptionistInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	rec, err := h.Services.Receptionists.Edit(c.Request.Context(), principal(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Receptionist updated successfully", "receptionist": rec})
}

func (h *Handler) RemoveReceptionist(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.Services.Receptionists.Remove(c.Request.Context(), principal(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Receptionist removed successfully"})
}

func (h *Handler) ListReceptionists(c *gin.Context) {
	list, err := h.Services.Receptionists.List(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receptionists": list})
}

func (h *Handler) GetReceptionist(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	rec, err := h.Services.Receptionists.Get(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receptionist": rec})
}

func (h *Handler) Me(c *gin.Context) {
	rec, err := h.Services.Receptionists.Me(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"receptionist": rec})
}

func (h *Handler) ChangeReceptionistPassword(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req struct {
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Password is required")
		return
	}
	if err := h.Services.Receptionists.ChangePassword(c.Request.Context(), principal(c), id, req.Password); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Password changed successfully"})
}

// --- ATTENDANCE ---

func (h *Handler) CheckIn(c *gin.Context) {
	att, err := h.Services.Attendance.CheckIn(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Checked in successfully", "attendance": att})
}

func (h *Handler) CheckOut(c *gin.Context) {
	att, err := h.Services.Attendance.CheckOut(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Checked out successfully", "attendance": att})
}

func (h *Handler) AttendanceHistory(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	entries, err := h.Services.Attendance.History(c.Request.Context(), principal(c), id,
		c.Query("month"), c.Query("year"), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"attendance": entries})
}

func (h *Handler) AttendanceStats(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	stats, err := h.Services.Attendance.Stats(c.Request.Context(), principal(c), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func (h *Handler) ExportAttendance(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	export, err := h.Services.Attendance.Export(c.Request.Context(), principal(c), id, c.Query("month"), c.Query("year"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+export.FileName+`"`)
	c.Data(http.StatusOK, xlsxContentType, export.Data)
}
