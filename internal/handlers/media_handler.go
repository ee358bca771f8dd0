package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// imageRequest carries {"image": "data:<mime>;base64,<payload>"}.
type imageRequest struct {
	Image string `json:"image"`
}

func (h *Handler) bindImage(c *gin.Context) (string, bool) {
	var req imageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.badRequest(c, "No file provided")
		return "", false
	}
	return req.Image, true
}

func (h *Handler) SetPaymentQR(c *gin.Context) {
	encoded, ok := h.bindImage(c)
	if !ok {
		return
	}
	img, err := h.Services.Doctors.SetPaymentQR(c.Request.Context(), principal(c), encoded)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":       "Payment QR updated successfully",
		"paymentQr":     img.Data,
		"qrContentType": img.ContentType,
	})
}

func (h *Handler) GetPaymentQR(c *gin.Context) {
	img, err := h.Services.Doctors.PaymentQR(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"paymentQr": img.Data, "qrContentType": img.ContentType})
}

func (h *Handler) AddSignature(c *gin.Context) {
	encoded, ok := h.bindImage(c)
	if !ok {
		return
	}
	img, err := h.Services.Doctors.SetSignature(c.Request.Context(), principal(c), encoded)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":              "Signature added successfully",
		"signature":            img.Data,
		"signatureContentType": img.ContentType,
	})
}

func (h *Handler) GetSignature(c *gin.Context) {
	img, err := h.Services.Doctors.Signature(c.Request.Context(), principal(c))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"signature": img.Data, "signatureContentType": img.ContentType})
}

// ChangeProfile serves both doctors and receptionists.
func (h *Handler) ChangeProfile(c *gin.Context) {
	encoded, ok := h.bindImage(c)
	if !ok {
		return
	}
	img, err := h.Services.Auth.ChangeProfile(c.Request.Context(), principal(c), encoded)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":     "Profile updated successfully",
		"profile":     img.Data,
		"contentType": img.ContentType,
	})
}
