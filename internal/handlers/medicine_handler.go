package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/services"
)

func (h *Handler) AddMedicine(c *gin.Context) {
	var req services.MedicineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	m, err := h.Services.Medicines.Add(c.Request.Context(), principal(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Medicine added successfully", "medicine": m})
}

func (h *Handler) ListMedicines(c *gin.Context) {
	list, err := h.Services.Medicines.List(c.Request.Context(), principal(c), c.Query("search"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"medicines": list})
}

func (h *Handler) EditMedicine(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	var req services.EditMedicineInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "Invalid request body")
		return
	}
	m, err := h.Services.Medicines.Edit(c.Request.Context(), principal(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medicine updated successfully", "medicine": m})
}

func (h *Handler) DeleteMedicine(c *gin.Context) {
	id, ok := h.idParam(c)
	if !ok {
		return
	}
	if err := h.Services.Medicines.Delete(c.Request.Context(), principal(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Medicine deleted successfully"})
}
