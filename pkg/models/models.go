package models

// Domain models matching the database schema in db/migrations/0001_init.sql

type Role string

const (
	RoleProducer   Role = "producer"
	RoleFreelancer Role = "freelancer"
)

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleProducer || r == RoleFreelancer
}

type User struct {
	ID            int64    `json:"id" db:"id"`
	Role          Role     `json:"role" db:"role"`
	Username      string   `json:"username" db:"username"`
	Email         string   `json:"email" db:"email"`
	PasswordHash  string   `json:"-" db:"password_hash"`
	WalletAddress string   `json:"wallet_address,omitempty" db:"wallet_address"`
	Name          string   `json:"name,omitempty" db:"name"`
	Bio           string   `json:"bio,omitempty" db:"bio"`
	LinkedInURL   string   `json:"linkedin_url,omitempty" db:"linkedin_url"`
	Website       string   `json:"website,omitempty" db:"website"`
	Skills        []string `json:"skills,omitempty" db:"skills"`
	AISkills      []string `json:"ai_skills,omitempty" db:"ai_skills"`
	Created       int64    `json:"created" db:"created"`
}

// Employment types accepted on job creation.
const (
	EmploymentFullTime  = "Full-time"
	EmploymentPartTime  = "Part-time"
	EmploymentContract  = "Contract"
	EmploymentFreelance = "Freelance"
)

// ValidEmploymentType reports whether t is a member of the employment enum.
func ValidEmploymentType(t string) bool {
	switch t {
	case EmploymentFullTime, EmploymentPartTime, EmploymentContract, EmploymentFreelance:
		return true
	}
	return false
}

const (
	JobTypeJob  = "job"
	JobTypePost = "post"

	PaymentUnpaid = "unpaid"
	PaymentPaid   = "paid"
)

type Job struct {
	ID              int64    `json:"id" db:"id"`
	ProducerID      int64    `json:"producer_id" db:"producer_id"`
	Title           string   `json:"title" db:"title"`
	Description     string   `json:"description" db:"description"`
	Requirements    []string `json:"requirements,omitempty" db:"requirements"`
	SkillsRequired  []string `json:"skills_required,omitempty" db:"skills_required"`
	EmploymentType  string   `json:"employment_type" db:"employment_type"`
	Location        string   `json:"location,omitempty" db:"location"`
	Salary          float64  `json:"salary,omitempty" db:"salary"`
	Type            string   `json:"type" db:"type"`
	PaymentStatus   string   `json:"payment_status" db:"payment_status"`
	TransactionHash string   `json:"transaction_hash,omitempty" db:"transaction_hash"`
	Network         string   `json:"network,omitempty" db:"network"`
	Tags            []string `json:"tags,omitempty" db:"tags"`
	Posted          int64    `json:"posted" db:"posted"`
}

// Application links a freelancer to a job. The (job, freelancer) pair is
// unique at the database level so a double apply collapses to one row.
type Application struct {
	JobID        int64 `json:"job_id" db:"job_id"`
	FreelancerID int64 `json:"freelancer_id" db:"freelancer_id"`
	Created      int64 `json:"created" db:"created"`
}

// Applicant is a user augmented with the match score against a job.
type Applicant struct {
	User
	Score int `json:"score"`
}

type ConnectionStatus string

const (
	ConnectionPending  ConnectionStatus = "pending"
	ConnectionAccepted ConnectionStatus = "accepted"
	ConnectionRejected ConnectionStatus = "rejected"
)

type ConnectionRequest struct {
	ID           int64            `json:"id" db:"id"`
	SenderID     int64            `json:"sender_id" db:"sender_id"`
	SenderRole   Role             `json:"sender_role" db:"sender_role"`
	ReceiverID   int64            `json:"receiver_id" db:"receiver_id"`
	ReceiverRole Role             `json:"receiver_role" db:"receiver_role"`
	Status       ConnectionStatus `json:"status" db:"status"`
	Created      int64            `json:"created" db:"created"`
	Updated      int64            `json:"updated" db:"updated"`

	// Sender profile resolved for incoming-request listings; not persisted.
	Sender *User `json:"sender,omitempty" db:"-"`
}

type Message struct {
	ID           int64  `json:"id" db:"id"`
	SenderID     int64  `json:"sender_id" db:"sender_id"`
	SenderRole   Role   `json:"sender_role" db:"sender_role"`
	ReceiverID   int64  `json:"receiver_id" db:"receiver_id"`
	ReceiverRole Role   `json:"receiver_role" db:"receiver_role"`
	Content      string `json:"content" db:"content"`
	Created      int64  `json:"created" db:"created"`
}
