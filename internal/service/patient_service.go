package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/domain/patient"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/triage"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/metrics"
)

const createdAtLayout = "2006-01-02 15:04:05"

type PatientService struct {
	repo    patient.Repository
	metrics *metrics.Collector
	log     *zap.Logger
	tracer  trace.Tracer
}

func NewPatientService(repo patient.Repository, collector *metrics.Collector, log *zap.Logger) *PatientService {
	return &PatientService{
		repo:    repo,
		metrics: collector,
		log:     log,
		tracer:  otel.Tracer("patient-service"),
	}
}

// ScanView is everything the public emergency page needs for one record.
type ScanView struct {
	Patient *patient.Patient
	Age     int
	Triage  triage.Result
}

func (s *PatientService) Register(ctx context.Context, cmd *patient.CreatePatientCommand) (*patient.Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.register")
	defer span.End()

	if err := validateCreateCommand(cmd); err != nil {
		return nil, err
	}

	p := &patient.Patient{
		Name:               strings.TrimSpace(cmd.Name),
		DateOfBirth:        cmd.DateOfBirth,
		BloodGroup:         strings.TrimSpace(cmd.BloodGroup),
		Allergies:          cmd.Allergies,
		Diseases:           cmd.Diseases,
		Medicines:          cmd.Medicines,
		EmergencyContact1:  strings.TrimSpace(cmd.EmergencyContact1),
		EmergencyRelation1: strings.TrimSpace(cmd.EmergencyRelation1),
		EmergencyContact2:  strings.TrimSpace(cmd.EmergencyContact2),
		EmergencyRelation2: strings.TrimSpace(cmd.EmergencyRelation2),
		EditPassword:       cmd.EditPassword,
		CreatedAt:          time.Now().Format(createdAtLayout),
	}

	if err := s.repo.Create(ctx, p); err != nil {
		s.log.Error("failed to create patient", zap.Error(err))
		return nil, fmt.Errorf("creating patient: %w", err)
	}

	s.metrics.PatientsRegistered.Inc()
	span.SetAttributes(attribute.Int("patient.id", int(p.ID)))
	s.log.Info("patient registered", zap.Uint("patient_id", p.ID))

	return p, nil
}

func (s *PatientService) Get(ctx context.Context, id uint) (*patient.Patient, error) {
	return s.repo.GetByID(ctx, id)
}

// Scan resolves a record and classifies it for the public emergency view.
func (s *PatientService) Scan(ctx context.Context, id uint) (*ScanView, error) {
	ctx, span := s.tracer.Start(ctx, "patient.scan",
		trace.WithAttributes(attribute.Int("patient.id", int(id))))
	defer span.End()

	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	age := p.Age()
	result := triage.Assess(age, p.Diseases)
	s.metrics.ScansTotal.WithLabelValues(string(result.Code)).Inc()

	return &ScanView{Patient: p, Age: age, Triage: result}, nil
}

func (s *PatientService) Update(ctx context.Context, id uint, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	ctx, span := s.tracer.Start(ctx, "patient.update",
		trace.WithAttributes(attribute.Int("patient.id", int(id))))
	defer span.End()

	if err := validateUpdateCommand(cmd); err != nil {
		return nil, err
	}

	p, err := s.repo.Update(ctx, id, cmd)
	if err != nil {
		return nil, err
	}

	s.log.Info("patient updated", zap.Uint("patient_id", id))
	return p, nil
}

// VerifyEditPassword is the edit gate: a verbatim comparison against the
// stored secret. A missing record denies the same way a mismatch does;
// the error return is reserved for store failures.
func (s *PatientService) VerifyEditPassword(ctx context.Context, id uint, supplied string) (bool, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if err == patient.ErrPatientNotFound {
			return false, nil
		}
		return false, err
	}
	return p.EditPassword == supplied, nil
}

func validateCreateCommand(cmd *patient.CreatePatientCommand) error {
	var errs []string

	if strings.TrimSpace(cmd.Name) == "" {
		errs = append(errs, "name is required")
	}
	if cmd.DateOfBirth.IsZero() {
		errs = append(errs, "date_of_birth is required")
	} else if cmd.DateOfBirth.After(time.Now()) {
		errs = append(errs, "date_of_birth cannot be in the future")
	}
	if strings.TrimSpace(cmd.EmergencyContact1) == "" {
		errs = append(errs, "emergency_contact_1 is required")
	}
	if cmd.EditPassword == "" {
		errs = append(errs, "edit_password is required")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}

func validateUpdateCommand(cmd *patient.UpdatePatientCommand) error {
	var errs []string

	if cmd.Name != nil && strings.TrimSpace(*cmd.Name) == "" {
		errs = append(errs, "name must not be empty")
	}
	if cmd.DateOfBirth != nil && cmd.DateOfBirth.After(time.Now()) {
		errs = append(errs, "date_of_birth cannot be in the future")
	}
	if cmd.EmergencyContact1 != nil && strings.TrimSpace(*cmd.EmergencyContact1) == "" {
		errs = append(errs, "emergency_contact_1 must not be empty")
	}

	if len(errs) > 0 {
		return &ValidationError{Fields: errs}
	}
	return nil
}
