package patient

import (
	"strings"
	"time"
)

// Patient is a single emergency medical profile. One row per registered
// person; the record is reachable by anyone scanning the printed QR code,
// so it carries only what a first responder needs.
type Patient struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	// Set once by the service at insert time; never touched again.
	CreatedAt string `gorm:"column:created_at;type:text;autoCreateTime:false;autoUpdateTime:false"`

	Name        string    `gorm:"column:name;type:text;not null"`
	DateOfBirth time.Time `gorm:"column:date_of_birth;not null"`
	BloodGroup  string    `gorm:"column:blood_group;type:text"`
	Allergies   string    `gorm:"column:allergies;type:text"`
	Diseases    string    `gorm:"column:diseases;type:text"`
	Medicines   string    `gorm:"column:medicines;type:text"`

	EmergencyContact1  string `gorm:"column:emergency_contact_1;type:text;not null"`
	EmergencyRelation1 string `gorm:"column:emergency_relation_1;type:text"`
	EmergencyContact2  string `gorm:"column:emergency_contact_2;type:text"`
	EmergencyRelation2 string `gorm:"column:emergency_relation_2;type:text"`

	// EditPassword is a per-record shared secret compared verbatim on the
	// edit flow. It is never rendered in any view.
	EditPassword string `gorm:"column:edit_password;type:text"`
}

func (Patient) TableName() string {
	return "patient"
}

// Age returns the exact calendar age: the year delta, minus one when the
// birthday has not yet occurred this year.
func (p *Patient) Age() int {
	return AgeAt(p.DateOfBirth, time.Now())
}

// AgeAt computes the calendar age at a reference instant.
func AgeAt(dob, at time.Time) int {
	years := at.Year() - dob.Year()
	if at.Month() < dob.Month() ||
		(at.Month() == dob.Month() && at.Day() < dob.Day()) {
		years--
	}
	return years
}

// SanitizedName is the patient name with whitespace runs replaced by
// underscores, used only for download filenames, never for storage.
func (p *Patient) SanitizedName() string {
	return strings.Join(strings.Fields(p.Name), "_")
}

type CreatePatientCommand struct {
	Name               string
	DateOfBirth        time.Time
	BloodGroup         string
	Allergies          string
	Diseases           string
	Medicines          string
	EmergencyContact1  string
	EmergencyRelation1 string
	EmergencyContact2  string
	EmergencyRelation2 string
	EditPassword       string
}

// UpdatePatientCommand carries the mutable fields. ID, CreatedAt and
// EditPassword are immutable after registration.
type UpdatePatientCommand struct {
	Name               *string
	DateOfBirth        *time.Time
	BloodGroup         *string
	Allergies          *string
	Diseases           *string
	Medicines          *string
	EmergencyContact1  *string
	EmergencyRelation1 *string
	EmergencyContact2  *string
	EmergencyRelation2 *string
}
