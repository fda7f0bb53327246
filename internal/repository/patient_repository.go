package repository

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/sonuy10/Ai-Emergency-Qr-Health-System/internal/domain/patient"
)

// PatientRepository is the GORM-backed implementation of patient.Repository.
type PatientRepository struct {
	db *gorm.DB
}

func NewPatientRepository(db *gorm.DB) *PatientRepository {
	return &PatientRepository{db: db}
}

var _ patient.Repository = (*PatientRepository)(nil)

func (r *PatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	if err := r.db.WithContext(ctx).Create(p).Error; err != nil {
		return err
	}
	return nil
}

func (r *PatientRepository) GetByID(ctx context.Context, id uint) (*patient.Patient, error) {
	var p patient.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, patient.ErrPatientNotFound
		}
		return nil, err
	}
	return &p, nil
}

func (r *PatientRepository) Update(ctx context.Context, id uint, cmd *patient.UpdatePatientCommand) (*patient.Patient, error) {
	updates := map[string]any{}
	if cmd.Name != nil {
		updates["name"] = *cmd.Name
	}
	if cmd.DateOfBirth != nil {
		updates["date_of_birth"] = *cmd.DateOfBirth
	}
	if cmd.BloodGroup != nil {
		updates["blood_group"] = *cmd.BloodGroup
	}
	if cmd.Allergies != nil {
		updates["allergies"] = *cmd.Allergies
	}
	if cmd.Diseases != nil {
		updates["diseases"] = *cmd.Diseases
	}
	if cmd.Medicines != nil {
		updates["medicines"] = *cmd.Medicines
	}
	if cmd.EmergencyContact1 != nil {
		updates["emergency_contact_1"] = *cmd.EmergencyContact1
	}
	if cmd.EmergencyRelation1 != nil {
		updates["emergency_relation_1"] = *cmd.EmergencyRelation1
	}
	if cmd.EmergencyContact2 != nil {
		updates["emergency_contact_2"] = *cmd.EmergencyContact2
	}
	if cmd.EmergencyRelation2 != nil {
		updates["emergency_relation_2"] = *cmd.EmergencyRelation2
	}

	if len(updates) > 0 {
		res := r.db.WithContext(ctx).Model(&patient.Patient{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return nil, res.Error
		}
		if res.RowsAffected == 0 {
			return nil, patient.ErrPatientNotFound
		}
	}

	return r.GetByID(ctx, id)
}
