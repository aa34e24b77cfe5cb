package repositories

import "context"

// Repository aggregates all domain repositories behind one interface.
type Repository interface {
	User() UserRepository
	Course() CourseRepository
	Enrollment() EnrollmentRepository
	Community() CommunityRepository
	Membership() MembershipRepository

	// WithTransaction runs fn against a repository bound to a single
	// database transaction. Multi-step invariants (idempotent joins, the
	// last-admin rule) must go through here.
	WithTransaction(ctx context.Context, fn func(Repository) error) error

	Ping(ctx context.Context) error
	Close() error
}

// RepositoryManager handles repository lifecycle.
type RepositoryManager interface {
	Initialize() error
	GetRepository() Repository
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
