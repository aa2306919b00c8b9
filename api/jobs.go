package api

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"

	"github.com/giglink/giglink/internal/blockchain"
	"github.com/giglink/giglink/internal/match"
	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository"
	"github.com/gorilla/mux"
	"github.com/qri-io/jsonschema"
)

//go:embed schema/job_v1.json
var jobSchemaJSON []byte

// txVerifier is the slice of the blockchain verifier the jobs handler needs.
type txVerifier interface {
	Verify(ctx context.Context, txHash string, network blockchain.Network) blockchain.Result
}

type JobsHandler struct {
	jobRepo   repository.JobRepo
	verifier  txVerifier
	jobSchema *jsonschema.Schema
}

func NewJobsHandler(jr repository.JobRepo, verifier txVerifier) (*JobsHandler, error) {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal(jobSchemaJSON, rs); err != nil {
		return nil, fmt.Errorf("compile job schema: %w", err)
	}
	return &JobsHandler{jobRepo: jr, verifier: verifier, jobSchema: rs}, nil
}

type createJobRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Requirements    []string `json:"requirements"`
	SkillsRequired  []string `json:"skills_required"`
	EmploymentType  string   `json:"employment_type"`
	Location        string   `json:"location"`
	Salary          float64  `json:"salary"`
	Type            string   `json:"type"`
	Tags            []string `json:"tags"`
	TransactionHash string   `json:"transaction_hash"`
	Network         string   `json:"network"`
}

type createJobResponse struct {
	Job     *models.Job        `json:"job"`
	Payment *blockchain.Result `json:"payment,omitempty"`
}

// CreateJob stores a new posting owned by the authenticated producer. The job
// always starts unpaid; when the request carries a transaction hash the
// payment is verified on-chain and recorded in the same call.
func (h *JobsHandler) CreateJob(w http.ResponseWriter, r *http.Request) {
	producerID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	const maxSize = 64 * 1024
	body, err := io.ReadAll(io.LimitReader(r.Body, maxSize+1))
	if err != nil || len(body) > maxSize {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	keyErrs, err := h.jobSchema.ValidateBytes(ctx, body)
	if err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}
	if len(keyErrs) > 0 {
		http.Error(w, fmt.Sprintf("invalid job: %v", keyErrs[0]), http.StatusBadRequest)
		return
	}

	var req createJobRequest
	if err := json.Unmarshal(body, &req); err != nil {
		http.Error(w, "invalid json", http.StatusBadRequest)
		return
	}

	if !models.ValidEmploymentType(req.EmploymentType) {
		http.Error(w, "invalid employment type", http.StatusBadRequest)
		return
	}

	jobType := req.Type
	if jobType == "" {
		jobType = models.JobTypeJob
	}

	job := &models.Job{
		ProducerID:     producerID,
		Title:          req.Title,
		Description:    req.Description,
		Requirements:   req.Requirements,
		SkillsRequired: req.SkillsRequired,
		EmploymentType: req.EmploymentType,
		Location:       req.Location,
		Salary:         req.Salary,
		Type:           jobType,
		PaymentStatus:  models.PaymentUnpaid,
		Tags:           req.Tags,
	}

	jobID, err := h.jobRepo.CreateJob(ctx, job)
	if err != nil {
		http.Error(w, "failed to store job", http.StatusInternalServerError)
		return
	}
	job.ID = jobID

	resp := createJobResponse{Job: job}
	if req.TransactionHash != "" {
		result := h.verifier.Verify(ctx, req.TransactionHash, blockchain.Network(req.Network))
		resp.Payment = &result
		if result.OK {
			if err := h.jobRepo.MarkPaid(ctx, jobID, req.TransactionHash, req.Network); err == nil {
				job.PaymentStatus = models.PaymentPaid
				job.TransactionHash = req.TransactionHash
				job.Network = req.Network
			}
		}
	}

	writeJSON(w, resp, http.StatusCreated)
}

// ListProducerJobs returns the postings owned by the authenticated producer.
func (h *JobsHandler) ListProducerJobs(w http.ResponseWriter, r *http.Request) {
	producerID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobs, err := h.jobRepo.ListJobsByProducer(r.Context(), producerID)
	if err != nil {
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	writeJSON(w, jobs, http.StatusOK)
}

// ListJobs is the open browse endpoint, newest first.
func (h *JobsHandler) ListJobs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit := 50
	if l := q.Get("limit"); l != "" {
		if v, err := strconv.Atoi(l); err == nil && v > 0 && v <= 500 {
			limit = v
		}
	}
	offset := 0
	if o := q.Get("offset"); o != "" {
		if v, err := strconv.Atoi(o); err == nil && v >= 0 {
			offset = v
		}
	}

	jobs, err := h.jobRepo.ListJobs(r.Context(), limit, offset)
	if err != nil {
		http.Error(w, "failed to list jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	writeJSON(w, map[string]any{"limit": limit, "offset": offset, "items": jobs}, http.StatusOK)
}

// Apply records the authenticated freelancer as an applicant. A repeated
// apply for the same job is a no-op.
func (h *JobsHandler) Apply(w http.ResponseWriter, r *http.Request) {
	freelancerID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobID, err := jobIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobRepo.GetJobByID(r.Context(), jobID)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}

	if err := h.jobRepo.ApplyToJob(r.Context(), jobID, freelancerID); err != nil {
		http.Error(w, "failed to apply", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"job_id": jobID, "applied": true}, http.StatusOK)
}

// ListAppliedJobs returns the jobs the authenticated freelancer applied to.
func (h *JobsHandler) ListAppliedJobs(w http.ResponseWriter, r *http.Request) {
	freelancerID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobs, err := h.jobRepo.ListAppliedJobs(r.Context(), freelancerID)
	if err != nil {
		http.Error(w, "failed to list applied jobs", http.StatusInternalServerError)
		return
	}
	if jobs == nil {
		jobs = []models.Job{}
	}

	writeJSON(w, jobs, http.StatusOK)
}

// ListApplicants returns the applicants of an owned job, each with the match
// score against the job's required skills, best matches first.
func (h *JobsHandler) ListApplicants(w http.ResponseWriter, r *http.Request) {
	producerID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobID, err := jobIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	job, err := h.jobRepo.GetJobByID(r.Context(), jobID)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if job.ProducerID != producerID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	users, err := h.jobRepo.ListApplicants(r.Context(), jobID)
	if err != nil {
		http.Error(w, "failed to list applicants", http.StatusInternalServerError)
		return
	}

	applicants := make([]models.Applicant, 0, len(users))
	for _, u := range users {
		u.PasswordHash = ""
		applicants = append(applicants, models.Applicant{
			User:  u,
			Score: match.Score(job.SkillsRequired, candidateSkills(&u)),
		})
	}
	sort.SliceStable(applicants, func(i, j int) bool { return applicants[i].Score > applicants[j].Score })

	writeJSON(w, applicants, http.StatusOK)
}

type recordPaymentRequest struct {
	TransactionHash string `json:"transaction_hash"`
	Network         string `json:"network"`
}

// RecordPayment verifies the transaction on-chain and flips the owned job to
// paid. Re-recording the same hash is a no-op; a different hash is rejected.
func (h *JobsHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	producerID, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	jobID, err := jobIDFromPath(r)
	if err != nil {
		http.Error(w, "invalid job id", http.StatusBadRequest)
		return
	}

	var req recordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.TransactionHash == "" || !blockchain.ValidNetwork(blockchain.Network(req.Network)) {
		http.Error(w, "transaction_hash and a supported network are required", http.StatusBadRequest)
		return
	}

	ctx := r.Context()

	job, err := h.jobRepo.GetJobByID(ctx, jobID)
	if err != nil {
		http.Error(w, "failed to load job", http.StatusInternalServerError)
		return
	}
	if job == nil {
		http.Error(w, "job not found", http.StatusNotFound)
		return
	}
	if job.ProducerID != producerID {
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	result := h.verifier.Verify(ctx, req.TransactionHash, blockchain.Network(req.Network))
	if !result.OK {
		writeJSON(w, map[string]any{"recorded": false, "payment": result}, http.StatusOK)
		return
	}

	if err := h.jobRepo.MarkPaid(ctx, jobID, req.TransactionHash, req.Network); err != nil {
		if errors.Is(err, repository.ErrPaymentConflict) {
			http.Error(w, "job already paid with a different transaction hash", http.StatusConflict)
			return
		}
		http.Error(w, "failed to record payment", http.StatusInternalServerError)
		return
	}

	writeJSON(w, map[string]any{"recorded": true, "payment": result}, http.StatusOK)
}

// candidateSkills prefers the freelancer's declared skills and falls back to
// the extracted ones.
func candidateSkills(u *models.User) []string {
	if len(u.Skills) > 0 {
		return u.Skills
	}
	return u.AISkills
}

func jobIDFromPath(r *http.Request) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
}
