package v1

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/domain/patient"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/mailer"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/qr"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/service"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/auth"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/metrics"
)

const (
	dobLayout       = "2006-01-02"
	editCookieName  = "edit_token"
	hospitalMapsURL = "https://www.google.com/maps/search/hospital+near+me/"
)

type Handler struct {
	patients   *service.PatientService
	builder    *qr.Builder
	dispatcher *mailer.Dispatcher
	editTokens *auth.EditTokenManager
	tokenTTL   time.Duration
	metrics    *metrics.Collector
	log        *zap.Logger
}

func NewHandler(
	patients *service.PatientService,
	builder *qr.Builder,
	dispatcher *mailer.Dispatcher,
	editTokens *auth.EditTokenManager,
	tokenTTL time.Duration,
	collector *metrics.Collector,
	log *zap.Logger,
) *Handler {
	return &Handler{
		patients:   patients,
		builder:    builder,
		dispatcher: dispatcher,
		editTokens: editTokens,
		tokenTTL:   tokenTTL,
		metrics:    collector,
		log:        log,
	}
}

func (h *Handler) Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", nil)
}

func (h *Handler) RegisterForm(c *gin.Context) {
	c.HTML(http.StatusOK, "register.html", gin.H{})
}

func (h *Handler) RegisterSubmit(c *gin.Context) {
	cmd := &patient.CreatePatientCommand{
		Name:               c.PostForm("name"),
		BloodGroup:         c.PostForm("blood_group"),
		Allergies:          c.PostForm("allergies"),
		Diseases:           c.PostForm("diseases"),
		Medicines:          c.PostForm("medicines"),
		EmergencyContact1:  c.PostForm("emergency_contact_1"),
		EmergencyRelation1: c.PostForm("emergency_relation_1"),
		EmergencyContact2:  c.PostForm("emergency_contact_2"),
		EmergencyRelation2: c.PostForm("emergency_relation_2"),
		EditPassword:       c.PostForm("edit_password"),
	}

	if raw := c.PostForm("date_of_birth"); raw != "" {
		dob, err := time.Parse(dobLayout, raw)
		if err != nil {
			c.HTML(http.StatusBadRequest, "register.html", gin.H{
				"Errors": []string{"date_of_birth must be in YYYY-MM-DD format"},
			})
			return
		}
		cmd.DateOfBirth = dob
	}

	p, err := h.patients.Register(c.Request.Context(), cmd)
	if err != nil {
		var validErr *service.ValidationError
		if errors.As(err, &validErr) {
			c.HTML(http.StatusBadRequest, "register.html", gin.H{"Errors": validErr.Fields})
			return
		}
		respondServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/generate_qr/%d", p.ID))
}

func (h *Handler) GenerateQR(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	art, err := h.builder.Build(p.ID)
	if err != nil {
		h.log.Error("failed to build qr artifact", zap.Uint("patient_id", p.ID), zap.Error(err))
		respondPlain(c, http.StatusInternalServerError, "Could not generate QR code")
		return
	}
	h.metrics.QRArtifactsBuilt.Inc()

	c.HTML(http.StatusOK, "qr_view.html", gin.H{
		"Patient":      p,
		"ImageURL":     "/qr_codes/" + art.FileName,
		"ScanURL":      art.ScanURL,
		"DownloadURL":  fmt.Sprintf("/download/%d", p.ID),
		"SendEmailURL": fmt.Sprintf("/send_email/%d", p.ID),
		"MailEnabled":  h.dispatcher.ActiveTransport() != "",
	})
}

func (h *Handler) Scan(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	view, err := h.patients.Scan(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.HTML(http.StatusOK, "emergency_view.html", gin.H{
		"Patient": view.Patient,
		"Age":     view.Age,
		"Risk":    string(view.Triage.Risk),
		"Triage":  string(view.Triage.Code),
	})
}

// Download serves the previously generated artifact as an attachment. The
// offered filename comes from the sanitized patient name; on disk the file
// stays keyed by id.
func (h *Handler) Download(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	path := h.builder.ArtifactPath(p.ID)
	if _, err := os.Stat(path); err != nil {
		respondPlain(c, http.StatusNotFound, "QR code has not been generated yet")
		return
	}

	c.FileAttachment(path, fmt.Sprintf("QR_%s.png", p.SanitizedName()))
}

// SendEmail dispatches the artifact to the supplied address and redirects
// back no matter what happened; the outcome lives in logs and metrics only.
func (h *Handler) SendEmail(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	fallback := fmt.Sprintf("/generate_qr/%d", id)

	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	to := c.PostForm("email")
	if to == "" {
		h.log.Warn("send_email without recipient", zap.Uint("patient_id", id))
		backToReferer(c, fallback)
		return
	}

	content, err := os.ReadFile(h.builder.ArtifactPath(p.ID))
	if err != nil {
		h.log.Warn("artifact missing for email, rebuilding", zap.Uint("patient_id", id))
		art, buildErr := h.builder.Build(p.ID)
		if buildErr != nil {
			h.log.Error("failed to rebuild artifact", zap.Uint("patient_id", id), zap.Error(buildErr))
			backToReferer(c, fallback)
			return
		}
		h.metrics.QRArtifactsBuilt.Inc()
		content, err = os.ReadFile(art.Path)
		if err != nil {
			h.log.Error("failed to read rebuilt artifact", zap.Error(err))
			backToReferer(c, fallback)
			return
		}
	}

	att := mailer.Attachment{
		Name:    fmt.Sprintf("QR_%s.png", p.SanitizedName()),
		Content: content,
	}
	status, err := h.dispatcher.Send(c.Request.Context(), to, att)
	h.metrics.EmailsTotal.WithLabelValues(string(status)).Inc()

	switch status {
	case mailer.StatusSent:
		h.log.Info("qr emailed", zap.Uint("patient_id", id), zap.String("transport", h.dispatcher.ActiveTransport()))
	case mailer.StatusFailed:
		h.log.Error("qr email failed", zap.Uint("patient_id", id), zap.Error(err))
	case mailer.StatusNotConfigured:
		h.log.Warn("qr email skipped: no mail transport configured", zap.Uint("patient_id", id))
	}

	backToReferer(c, fallback)
}

func (h *Handler) VerifyPassword(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}

	granted, err := h.patients.VerifyEditPassword(c.Request.Context(), id, c.PostForm("password"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	if !granted {
		respondPlain(c, http.StatusForbidden, "Wrong Password")
		return
	}

	token, err := h.editTokens.Issue(id)
	if err != nil {
		h.log.Error("failed to issue edit token", zap.Error(err))
		respondPlain(c, http.StatusInternalServerError, "internal server error")
		return
	}

	c.SetCookie(editCookieName, token, int(h.tokenTTL.Seconds()), "/", "", false, true)
	c.Redirect(http.StatusFound, fmt.Sprintf("/edit/%d", id))
}

func (h *Handler) requireEditToken(c *gin.Context, id uint) bool {
	token, err := c.Cookie(editCookieName)
	if err != nil || h.editTokens.Verify(token, id) != nil {
		respondPlain(c, http.StatusForbidden, "Edit session expired. Verify the password again.")
		return false
	}
	return true
}

func (h *Handler) EditForm(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !h.requireEditToken(c, id) {
		return
	}

	p, err := h.patients.Get(c.Request.Context(), id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	c.HTML(http.StatusOK, "edit.html", gin.H{
		"Patient": p,
		"DOB":     p.DateOfBirth.Format(dobLayout),
	})
}

func (h *Handler) EditSubmit(c *gin.Context) {
	id, ok := parseID(c)
	if !ok {
		return
	}
	if !h.requireEditToken(c, id) {
		return
	}

	cmd := &patient.UpdatePatientCommand{}
	set := func(dst **string, field string) {
		if v, exists := c.GetPostForm(field); exists {
			*dst = &v
		}
	}
	set(&cmd.Name, "name")
	set(&cmd.BloodGroup, "blood_group")
	set(&cmd.Allergies, "allergies")
	set(&cmd.Diseases, "diseases")
	set(&cmd.Medicines, "medicines")
	set(&cmd.EmergencyContact1, "emergency_contact_1")
	set(&cmd.EmergencyRelation1, "emergency_relation_1")
	set(&cmd.EmergencyContact2, "emergency_contact_2")
	set(&cmd.EmergencyRelation2, "emergency_relation_2")

	if raw, exists := c.GetPostForm("date_of_birth"); exists && raw != "" {
		dob, err := time.Parse(dobLayout, raw)
		if err != nil {
			respondPlain(c, http.StatusBadRequest, "Invalid input: date_of_birth must be in YYYY-MM-DD format")
			return
		}
		cmd.DateOfBirth = &dob
	}

	if _, err := h.patients.Update(c.Request.Context(), id, cmd); err != nil {
		respondServiceError(c, err)
		return
	}

	c.Redirect(http.StatusFound, fmt.Sprintf("/scan/%d", id))
}

func (h *Handler) FindHospital(c *gin.Context) {
	c.Redirect(http.StatusFound, hospitalMapsURL)
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
