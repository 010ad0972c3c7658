package registry

import "context"

// SourceRepository provides access to stored NAMASTE codes.
type SourceRepository interface {
	List(ctx context.Context) ([]SourceCode, error)
	Search(ctx context.Context, query, system string, limit int) ([]*SourceCode, error)
	GetByCode(ctx context.Context, code string) (*SourceCode, error)
}

// TargetRepository provides access to stored ICD-11 codes.
type TargetRepository interface {
	List(ctx context.Context) ([]TargetCode, error)
	Search(ctx context.Context, query, module string, limit int) ([]*TargetCode, error)
	GetByCode(ctx context.Context, code string) (*TargetCode, error)
}
