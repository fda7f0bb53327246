package patient

import "context"

type Repository interface {
	// Create persists a new patient and fills in the assigned ID.
	Create(ctx context.Context, p *Patient) error

	// GetByID retrieves a patient by primary key. Returns ErrPatientNotFound if not found.
	GetByID(ctx context.Context, id uint) (*Patient, error)

	// Update applies partial updates to an existing patient record.
	// Concurrent updates to the same row are not serialized; the last
	// write wins.
	Update(ctx context.Context, id uint, cmd *UpdatePatientCommand) (*Patient, error)
}
