package repository

import (
	"context"
	"errors"

	"github.com/giglink/giglink/pkg/models"
)

// Repository interfaces for domain entities. These are the public contracts
// consumers should depend on; concrete implementations live under internal/.
//
// Lookups return (nil, nil) when no row matches; sentinel errors below signal
// conflicts the caller must resolve.

var (
	// ErrDuplicateUser is returned when a signup reuses a username or email
	// already taken for the same role.
	ErrDuplicateUser = errors.New("username or email already in use")

	// ErrDuplicateRequest is returned when a connection request between the
	// same (sender, receiver) pair already exists.
	ErrDuplicateRequest = errors.New("connection request already exists")

	// ErrPaymentConflict is returned when a paid job is asked to record a
	// different transaction hash than the one already stored.
	ErrPaymentConflict = errors.New("job already paid with a different transaction hash")
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) (int64, error)
	GetUserByID(ctx context.Context, role models.Role, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, role models.Role, username string) (*models.User, error)
	UpdateUser(ctx context.Context, u *models.User) error
	DeleteUsers(ctx context.Context) error
}

type JobRepo interface {
	CreateJob(ctx context.Context, j *models.Job) (int64, error)
	GetJobByID(ctx context.Context, id int64) (*models.Job, error)
	ListJobs(ctx context.Context, limit, offset int) ([]models.Job, error)
	ListJobsByProducer(ctx context.Context, producerID int64) ([]models.Job, error)
	MarkPaid(ctx context.Context, jobID int64, txHash, network string) error
	ApplyToJob(ctx context.Context, jobID, freelancerID int64) error
	ListApplicants(ctx context.Context, jobID int64) ([]models.User, error)
	ListAppliedJobs(ctx context.Context, freelancerID int64) ([]models.Job, error)
	DeleteJobs(ctx context.Context) error
}

type ConnectionRepo interface {
	CreateRequest(ctx context.Context, cr *models.ConnectionRequest) (int64, error)
	GetRequestByID(ctx context.Context, id int64) (*models.ConnectionRequest, error)
	UpdateRequestStatus(ctx context.Context, id int64, status models.ConnectionStatus) error
	ListIncoming(ctx context.Context, role models.Role, receiverID int64) ([]models.ConnectionRequest, error)
	DeleteRequests(ctx context.Context) error
}

type MessageRepo interface {
	CreateMessage(ctx context.Context, m *models.Message) (int64, error)
	ListConversation(ctx context.Context, a models.Role, aID int64, b models.Role, bID int64, limit int) ([]models.Message, error)
	DeleteMessages(ctx context.Context) error
}
