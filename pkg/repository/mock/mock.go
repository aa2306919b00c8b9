package mock

import (
	"context"

	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
)

// Test helpers and mocks
type Mocks struct {
	Users       *UserRepo
	Jobs        *JobRepo
	Connections *ConnectionRepo
	Messages    *MessageRepo
}

func NewMocks() *Mocks {
	return &Mocks{
		Users:       &UserRepo{},
		Jobs:        &JobRepo{},
		Connections: &ConnectionRepo{},
		Messages:    &MessageRepo{},
	}
}

type UserRepo struct {
	Stored    []*models.User
	CreateErr error
	UpdateErr error
	nextID    int64
}

var _ repository.UserRepo = (*UserRepo)(nil)

func (m *UserRepo) CreateUser(ctx context.Context, u *models.User) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, s := range m.Stored {
		if s.Role == u.Role && (s.Username == u.Username || s.Email == u.Email) {
			return 0, repository.ErrDuplicateUser
		}
	}
	m.nextID++
	stored := *u
	stored.ID = m.nextID
	m.Stored = append(m.Stored, &stored)
	return stored.ID, nil
}

func (m *UserRepo) GetUserByID(ctx context.Context, role models.Role, id int64) (*models.User, error) {
	for _, s := range m.Stored {
		if s.Role == role && s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) GetUserByUsername(ctx context.Context, role models.Role, username string) (*models.User, error) {
	for _, s := range m.Stored {
		if s.Role == role && s.Username == username {
			return s, nil
		}
	}
	return nil, nil
}

func (m *UserRepo) UpdateUser(ctx context.Context, u *models.User) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for i, s := range m.Stored {
		if s.ID == u.ID {
			updated := *u
			m.Stored[i] = &updated
			return nil
		}
	}
	return nil
}

func (m *UserRepo) DeleteUsers(ctx context.Context) error {
	m.Stored = nil
	return nil
}

type JobRepo struct {
	Stored     []*models.Job
	Applicants map[int64][]models.User // keyed by job id, returned as-is
	Applied    map[int64][]int64       // job id -> freelancer ids
	CreateErr  error
	ApplyErr   error
	nextID     int64
}

var _ repository.JobRepo = (*JobRepo)(nil)

func (m *JobRepo) CreateJob(ctx context.Context, j *models.Job) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	stored := *j
	stored.ID = m.nextID
	m.Stored = append(m.Stored, &stored)
	return stored.ID, nil
}

func (m *JobRepo) GetJobByID(ctx context.Context, id int64) (*models.Job, error) {
	for _, s := range m.Stored {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *JobRepo) ListJobs(ctx context.Context, limit, offset int) ([]models.Job, error) {
	var out []models.Job
	for _, s := range m.Stored {
		out = append(out, *s)
	}
	return out, nil
}

func (m *JobRepo) ListJobsByProducer(ctx context.Context, producerID int64) ([]models.Job, error) {
	var out []models.Job
	for _, s := range m.Stored {
		if s.ProducerID == producerID {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *JobRepo) MarkPaid(ctx context.Context, jobID int64, txHash, network string) error {
	for _, s := range m.Stored {
		if s.ID != jobID {
			continue
		}
		if s.PaymentStatus == models.PaymentPaid {
			if s.TransactionHash != txHash {
				return repository.ErrPaymentConflict
			}
			return nil
		}
		s.PaymentStatus = models.PaymentPaid
		s.TransactionHash = txHash
		s.Network = network
		return nil
	}
	return repository.ErrPaymentConflict
}

func (m *JobRepo) ApplyToJob(ctx context.Context, jobID, freelancerID int64) error {
	if m.ApplyErr != nil {
		return m.ApplyErr
	}
	if m.Applied == nil {
		m.Applied = make(map[int64][]int64)
	}
	for _, id := range m.Applied[jobID] {
		if id == freelancerID {
			return nil
		}
	}
	m.Applied[jobID] = append(m.Applied[jobID], freelancerID)
	return nil
}

func (m *JobRepo) ListApplicants(ctx context.Context, jobID int64) ([]models.User, error) {
	return m.Applicants[jobID], nil
}

func (m *JobRepo) ListAppliedJobs(ctx context.Context, freelancerID int64) ([]models.Job, error) {
	var out []models.Job
	for jobID, ids := range m.Applied {
		for _, id := range ids {
			if id != freelancerID {
				continue
			}
			if j, _ := m.GetJobByID(ctx, jobID); j != nil {
				out = append(out, *j)
			}
		}
	}
	return out, nil
}

func (m *JobRepo) DeleteJobs(ctx context.Context) error {
	m.Stored = nil
	m.Applied = nil
	return nil
}

type ConnectionRepo struct {
	Stored    []*models.ConnectionRequest
	CreateErr error
	UpdateErr error
	nextID    int64
}

var _ repository.ConnectionRepo = (*ConnectionRepo)(nil)

func (m *ConnectionRepo) CreateRequest(ctx context.Context, cr *models.ConnectionRequest) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	for _, s := range m.Stored {
		if s.SenderID == cr.SenderID && s.SenderRole == cr.SenderRole &&
			s.ReceiverID == cr.ReceiverID && s.ReceiverRole == cr.ReceiverRole {
			return 0, repository.ErrDuplicateRequest
		}
	}
	m.nextID++
	stored := *cr
	stored.ID = m.nextID
	stored.Status = models.ConnectionPending
	m.Stored = append(m.Stored, &stored)
	return stored.ID, nil
}

func (m *ConnectionRepo) GetRequestByID(ctx context.Context, id int64) (*models.ConnectionRequest, error) {
	for _, s := range m.Stored {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *ConnectionRepo) UpdateRequestStatus(ctx context.Context, id int64, status models.ConnectionStatus) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	for _, s := range m.Stored {
		if s.ID == id {
			s.Status = status
		}
	}
	return nil
}

func (m *ConnectionRepo) ListIncoming(ctx context.Context, role models.Role, receiverID int64) ([]models.ConnectionRequest, error) {
	var out []models.ConnectionRequest
	for _, s := range m.Stored {
		if s.ReceiverRole == role && s.ReceiverID == receiverID && s.Status == models.ConnectionPending {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (m *ConnectionRepo) DeleteRequests(ctx context.Context) error {
	m.Stored = nil
	return nil
}

type MessageRepo struct {
	Stored    []models.Message
	CreateErr error
	nextID    int64
}

var _ repository.MessageRepo = (*MessageRepo)(nil)

func (m *MessageRepo) CreateMessage(ctx context.Context, msg *models.Message) (int64, error) {
	if m.CreateErr != nil {
		return 0, m.CreateErr
	}
	m.nextID++
	msg.ID = m.nextID
	if msg.Created <= 0 {
		msg.Created = m.nextID
	}
	m.Stored = append(m.Stored, *msg)
	return msg.ID, nil
}

func (m *MessageRepo) ListConversation(ctx context.Context, a models.Role, aID int64, b models.Role, bID int64, limit int) ([]models.Message, error) {
	var out []models.Message
	for _, s := range m.Stored {
		fromAToB := s.SenderRole == a && s.SenderID == aID && s.ReceiverRole == b && s.ReceiverID == bID
		fromBToA := s.SenderRole == b && s.SenderID == bID && s.ReceiverRole == a && s.ReceiverID == aID
		if fromAToB || fromBToA {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *MessageRepo) DeleteMessages(ctx context.Context) error {
	m.Stored = nil
	return nil
}
