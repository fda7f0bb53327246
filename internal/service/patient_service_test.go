package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/domain/patient"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/repository"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/triage"
	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/pkg/metrics"
)

// Prometheus collectors register globally; one per test binary.
var testCollector = metrics.NewCollector("test_service")

func newTestService(t *testing.T) *PatientService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("opening in-memory database: %v", err)
	}
	if err := db.AutoMigrate(&patient.Patient{}); err != nil {
		t.Fatalf("migrating: %v", err)
	}
	return NewPatientService(repository.NewPatientRepository(db), testCollector, zap.NewNop())
}

func dobForAge(age int) time.Time {
	// Birthday falls before today, so the derived age is exact.
	return time.Now().AddDate(-age, 0, -1)
}

func validCommand() *patient.CreatePatientCommand {
	return &patient.CreatePatientCommand{
		Name:              "Asha Rao",
		DateOfBirth:       dobForAge(65),
		Diseases:          "Type 2 Diabetes",
		EmergencyContact1: "+91 98765 43210",
		EditPassword:      "letmein",
	}
}

func TestRegisterAndScanHighRisk(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, validCommand())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if p.ID == 0 {
		t.Fatal("registered patient has no id")
	}
	if p.CreatedAt == "" {
		t.Error("CreatedAt not set at registration")
	}

	view, err := svc.Scan(ctx, p.ID)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if view.Age != 65 {
		t.Errorf("Age = %d, want 65", view.Age)
	}
	if view.Triage.Risk != triage.RiskHigh || view.Triage.Code != triage.CodeRed {
		t.Errorf("Triage = %+v, want HIGH/RED", view.Triage)
	}
}

func TestRegisterAndScanLowRisk(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	cmd := &patient.CreatePatientCommand{
		Name:              "Raj",
		DateOfBirth:       dobForAge(25),
		EmergencyContact1: "+91 91234 56789",
		EditPassword:      "pw",
	}
	p, err := svc.Register(ctx, cmd)
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	view, err := svc.Scan(ctx, p.ID)
	if err != nil {
		t.Fatalf("Scan: %v", err)
	}
	if view.Triage.Risk != triage.RiskLow || view.Triage.Code != triage.CodeGreen {
		t.Errorf("Triage = %+v, want LOW/GREEN", view.Triage)
	}
}

func TestScanMissingRecord(t *testing.T) {
	svc := newTestService(t)

	_, err := svc.Scan(context.Background(), 999999)
	if !errors.Is(err, patient.ErrPatientNotFound) {
		t.Errorf("Scan(999999) error = %v, want ErrPatientNotFound", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	svc := newTestService(t)

	tests := []struct {
		name   string
		mutate func(*patient.CreatePatientCommand)
		field  string
	}{
		{"missing name", func(c *patient.CreatePatientCommand) { c.Name = "  " }, "name is required"},
		{"missing dob", func(c *patient.CreatePatientCommand) { c.DateOfBirth = time.Time{} }, "date_of_birth is required"},
		{"future dob", func(c *patient.CreatePatientCommand) { c.DateOfBirth = time.Now().AddDate(1, 0, 0) }, "date_of_birth cannot be in the future"},
		{"missing contact", func(c *patient.CreatePatientCommand) { c.EmergencyContact1 = "" }, "emergency_contact_1 is required"},
		{"missing password", func(c *patient.CreatePatientCommand) { c.EditPassword = "" }, "edit_password is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd := validCommand()
			tt.mutate(cmd)

			_, err := svc.Register(context.Background(), cmd)
			var validErr *ValidationError
			if !errors.As(err, &validErr) {
				t.Fatalf("Register error = %v, want ValidationError", err)
			}
			found := false
			for _, f := range validErr.Fields {
				if f == tt.field {
					found = true
				}
			}
			if !found {
				t.Errorf("ValidationError fields %v missing %q", validErr.Fields, tt.field)
			}
		})
	}
}

func TestVerifyEditPassword(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, validCommand())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	granted, err := svc.VerifyEditPassword(ctx, p.ID, "letmein")
	if err != nil || !granted {
		t.Errorf("correct password: granted=%v err=%v, want granted", granted, err)
	}

	granted, err = svc.VerifyEditPassword(ctx, p.ID, "LETMEIN")
	if err != nil || granted {
		t.Errorf("wrong case password: granted=%v err=%v, want denied", granted, err)
	}

	granted, err = svc.VerifyEditPassword(ctx, 424242, "letmein")
	if err != nil || granted {
		t.Errorf("missing record: granted=%v err=%v, want denied", granted, err)
	}
}

func TestUpdateDoesNotTouchImmutableFields(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, validCommand())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	meds := "insulin"
	updated, err := svc.Update(ctx, p.ID, &patient.UpdatePatientCommand{Medicines: &meds})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Medicines != meds {
		t.Errorf("Medicines = %q, want %q", updated.Medicines, meds)
	}
	if updated.EditPassword != p.EditPassword {
		t.Errorf("EditPassword changed on update")
	}
	if updated.CreatedAt != p.CreatedAt {
		t.Errorf("CreatedAt changed on update")
	}
}

func TestUpdateValidation(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	p, err := svc.Register(ctx, validCommand())
	if err != nil {
		t.Fatalf("Register: %v", err)
	}

	empty := ""
	_, err = svc.Update(ctx, p.ID, &patient.UpdatePatientCommand{EmergencyContact1: &empty})
	var validErr *ValidationError
	if !errors.As(err, &validErr) {
		t.Errorf("Update with empty contact error = %v, want ValidationError", err)
	}
}
