package resumes

import "context"

// Repo defines persistence operations for generated resumes.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, userID, id string) (Document, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Document, error)
	Update(ctx context.Context, doc Document) error
	Delete(ctx context.Context, userID, id string) error
}
