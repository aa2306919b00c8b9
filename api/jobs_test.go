package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giglink/giglink/api"
	"github.com/giglink/giglink/internal/blockchain"
	"github.com/giglink/giglink/pkg/models"
	"github.com/giglink/giglink/pkg/repository/mock"
	"github.com/gorilla/mux"
)

type stubVerifier struct {
	result   blockchain.Result
	calls    int
	lastHash string
}

func (s *stubVerifier) Verify(ctx context.Context, txHash string, network blockchain.Network) blockchain.Result {
	s.calls++
	s.lastHash = txHash
	return s.result
}

// asUser injects an authenticated identity, standing in for the JWT middleware.
func asUser(id int64, role models.Role, h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), api.CtxUserID, id)
		ctx = context.WithValue(ctx, api.CtxUserRole, role)
		h(w, r.WithContext(ctx))
	}
}

func jobsRouter(t *testing.T, m *mock.Mocks, v *stubVerifier, userID int64, role models.Role) *mux.Router {
	t.Helper()

	h, err := api.NewJobsHandler(m.Jobs, v)
	if err != nil {
		t.Fatalf("NewJobsHandler: %v", err)
	}
	r := mux.NewRouter()
	r.HandleFunc("/producer/jobs", asUser(userID, role, h.CreateJob)).Methods(http.MethodPost)
	r.HandleFunc("/producer/jobs", asUser(userID, role, h.ListProducerJobs)).Methods(http.MethodGet)
	r.HandleFunc("/producer/jobs/{id:[0-9]+}/applicants", asUser(userID, role, h.ListApplicants)).Methods(http.MethodGet)
	r.HandleFunc("/producer/jobs/{id:[0-9]+}/payment", asUser(userID, role, h.RecordPayment)).Methods(http.MethodPatch)
	r.HandleFunc("/jobs", h.ListJobs).Methods(http.MethodGet)
	r.HandleFunc("/jobs/{id:[0-9]+}/apply", asUser(userID, role, h.Apply)).Methods(http.MethodPost)
	r.HandleFunc("/freelancer/applied-jobs", asUser(userID, role, h.ListAppliedJobs)).Methods(http.MethodGet)
	return r
}

func validJobBody() map[string]any {
	return map[string]any{
		"title":           "Backend engineer",
		"description":     "Build the API",
		"employment_type": models.EmploymentContract,
		"skills_required": []string{"go", "sql"},
		"salary":          120.5,
	}
}

func TestCreateJob(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(body map[string]any)
		wantStatus int
	}{
		{
			name:       "Valid",
			mutate:     func(map[string]any) {},
			wantStatus: http.StatusCreated,
		},
		{
			name:       "MissingTitle",
			mutate:     func(b map[string]any) { delete(b, "title") },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "EmptyDescription",
			mutate:     func(b map[string]any) { b["description"] = "" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadEmploymentType",
			mutate:     func(b map[string]any) { b["employment_type"] = "gig" },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "NegativeSalary",
			mutate:     func(b map[string]any) { b["salary"] = -1 },
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "BadType",
			mutate:     func(b map[string]any) { b["type"] = "gig" },
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mocks := mock.NewMocks()
			router := jobsRouter(t, mocks, &stubVerifier{}, 1, models.RoleProducer)

			body := validJobBody()
			tt.mutate(body)
			b, _ := json.Marshal(body)
			req := httptest.NewRequest(http.MethodPost, "/producer/jobs", bytes.NewReader(b))
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d body=%s", w.Code, tt.wantStatus, w.Body.String())
			}
			if tt.wantStatus == http.StatusCreated {
				if len(mocks.Jobs.Stored) != 1 {
					t.Fatalf("expected one stored job")
				}
				job := mocks.Jobs.Stored[0]
				if job.ProducerID != 1 {
					t.Fatalf("producer id = %d, want 1", job.ProducerID)
				}
				if job.PaymentStatus != models.PaymentUnpaid {
					t.Fatalf("payment status = %q, want unpaid", job.PaymentStatus)
				}
			} else if len(mocks.Jobs.Stored) != 0 {
				t.Fatalf("rejected job was stored")
			}
		})
	}
}

func TestCreateJobWithInlinePayment(t *testing.T) {
	t.Run("VerifiedHashMarksPaid", func(t *testing.T) {
		mocks := mock.NewMocks()
		verifier := &stubVerifier{result: blockchain.Result{OK: true}}
		router := jobsRouter(t, mocks, verifier, 1, models.RoleProducer)

		body := validJobBody()
		body["transaction_hash"] = "0xabc"
		body["network"] = "sepolia"
		b, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/producer/jobs", bytes.NewReader(b)))

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		if verifier.calls != 1 || verifier.lastHash != "0xabc" {
			t.Fatalf("verifier calls=%d lastHash=%q", verifier.calls, verifier.lastHash)
		}
		if got := mocks.Jobs.Stored[0].PaymentStatus; got != models.PaymentPaid {
			t.Fatalf("payment status = %q, want paid", got)
		}
	})

	t.Run("FailedVerificationStaysUnpaid", func(t *testing.T) {
		mocks := mock.NewMocks()
		verifier := &stubVerifier{result: blockchain.Result{OK: false, Reason: blockchain.ReasonRequestFailed}}
		router := jobsRouter(t, mocks, verifier, 1, models.RoleProducer)

		body := validJobBody()
		body["transaction_hash"] = "0xabc"
		body["network"] = "sepolia"
		b, _ := json.Marshal(body)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/producer/jobs", bytes.NewReader(b)))

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		if got := mocks.Jobs.Stored[0].PaymentStatus; got != models.PaymentUnpaid {
			t.Fatalf("payment status = %q, want unpaid", got)
		}
	})

	t.Run("NoHashSkipsVerifier", func(t *testing.T) {
		mocks := mock.NewMocks()
		verifier := &stubVerifier{}
		router := jobsRouter(t, mocks, verifier, 1, models.RoleProducer)

		b, _ := json.Marshal(validJobBody())
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/producer/jobs", bytes.NewReader(b)))

		if w.Code != http.StatusCreated {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		if verifier.calls != 0 {
			t.Fatalf("verifier calls = %d, want 0", verifier.calls)
		}
	})
}

func TestApply(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 9, Title: "x"}}
	router := jobsRouter(t, mocks, &stubVerifier{}, 7, models.RoleFreelancer)

	apply := func(path string) int {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, path, nil))
		return w.Code
	}

	if code := apply("/jobs/1/apply"); code != http.StatusOK {
		t.Fatalf("apply status = %d", code)
	}
	// repeated apply is a no-op, not an error
	if code := apply("/jobs/1/apply"); code != http.StatusOK {
		t.Fatalf("second apply status = %d", code)
	}
	if got := mocks.Jobs.Applied[1]; len(got) != 1 || got[0] != 7 {
		t.Fatalf("applied = %v, want [7]", got)
	}
	if code := apply("/jobs/42/apply"); code != http.StatusNotFound {
		t.Fatalf("unknown job status = %d, want 404", code)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/freelancer/applied-jobs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("applied-jobs status = %d body=%s", w.Code, w.Body.String())
	}
	var applied []models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &applied); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(applied) != 1 || applied[0].ID != 1 {
		t.Fatalf("applied = %v, want the single applied job", applied)
	}
}

func TestListApplicants(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 1, SkillsRequired: []string{"go", "sql"}}}
	mocks.Jobs.Applicants = map[int64][]models.User{
		1: {
			{ID: 10, Username: "partial", Skills: []string{"go"}, PasswordHash: "secret"},
			{ID: 11, Username: "full", Skills: []string{"go", "sql"}},
			{ID: 12, Username: "fallback", AISkills: []string{"sql"}},
		},
	}

	t.Run("ScoredAndSorted", func(t *testing.T) {
		router := jobsRouter(t, mocks, &stubVerifier{}, 1, models.RoleProducer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/producer/jobs/1/applicants", nil))

		if w.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		var applicants []models.Applicant
		if err := json.Unmarshal(w.Body.Bytes(), &applicants); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if len(applicants) != 3 {
			t.Fatalf("got %d applicants, want 3", len(applicants))
		}
		if applicants[0].Username != "full" || applicants[0].Score != 100 {
			t.Fatalf("first = %s/%d, want full/100", applicants[0].Username, applicants[0].Score)
		}
		if applicants[1].Score != 50 || applicants[2].Score != 50 {
			t.Fatalf("tail scores = %d,%d, want 50,50", applicants[1].Score, applicants[2].Score)
		}
		for _, a := range applicants {
			if a.PasswordHash != "" {
				t.Fatalf("password hash leaked for %s", a.Username)
			}
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		router := jobsRouter(t, mocks, &stubVerifier{}, 2, models.RoleProducer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/producer/jobs/1/applicants", nil))
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})

	t.Run("UnknownJob", func(t *testing.T) {
		router := jobsRouter(t, mocks, &stubVerifier{}, 1, models.RoleProducer)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/producer/jobs/99/applicants", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", w.Code)
		}
	})
}

func TestRecordPayment(t *testing.T) {
	paymentReq := func(hash, network string) *http.Request {
		b, _ := json.Marshal(map[string]string{"transaction_hash": hash, "network": network})
		return httptest.NewRequest(http.MethodPatch, "/producer/jobs/1/payment", bytes.NewReader(b))
	}

	t.Run("Success", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 1, PaymentStatus: models.PaymentUnpaid}}
		router := jobsRouter(t, mocks, &stubVerifier{result: blockchain.Result{OK: true}}, 1, models.RoleProducer)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, paymentReq("0xabc", "sepolia"))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		job := mocks.Jobs.Stored[0]
		if job.PaymentStatus != models.PaymentPaid || job.TransactionHash != "0xabc" {
			t.Fatalf("job = %+v, want paid with 0xabc", job)
		}
	})

	t.Run("VerificationFailedNotRecorded", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 1, PaymentStatus: models.PaymentUnpaid}}
		router := jobsRouter(t, mocks, &stubVerifier{result: blockchain.Result{OK: false, Reason: blockchain.ReasonRequestFailed}}, 1, models.RoleProducer)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, paymentReq("0xabc", "sepolia"))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
		var resp struct {
			Recorded bool `json:"recorded"`
		}
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if resp.Recorded {
			t.Fatalf("payment recorded despite failed verification")
		}
		if mocks.Jobs.Stored[0].PaymentStatus != models.PaymentUnpaid {
			t.Fatalf("job flipped to paid")
		}
	})

	t.Run("DifferentHashConflicts", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 1, PaymentStatus: models.PaymentPaid, TransactionHash: "0xfirst"}}
		router := jobsRouter(t, mocks, &stubVerifier{result: blockchain.Result{OK: true}}, 1, models.RoleProducer)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, paymentReq("0xother", "sepolia"))
		if w.Code != http.StatusConflict {
			t.Fatalf("status = %d, want 409", w.Code)
		}
		if mocks.Jobs.Stored[0].TransactionHash != "0xfirst" {
			t.Fatalf("stored hash overwritten")
		}
	})

	t.Run("SameHashIdempotent", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 1, PaymentStatus: models.PaymentPaid, TransactionHash: "0xfirst"}}
		router := jobsRouter(t, mocks, &stubVerifier{result: blockchain.Result{OK: true}}, 1, models.RoleProducer)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, paymentReq("0xfirst", "sepolia"))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
		}
	})

	t.Run("UnsupportedNetwork", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 1}}
		verifier := &stubVerifier{result: blockchain.Result{OK: true}}
		router := jobsRouter(t, mocks, verifier, 1, models.RoleProducer)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, paymentReq("0xabc", "mainnet"))
		if w.Code != http.StatusBadRequest {
			t.Fatalf("status = %d, want 400", w.Code)
		}
		if verifier.calls != 0 {
			t.Fatalf("verifier called for unsupported network")
		}
	})

	t.Run("NotOwner", func(t *testing.T) {
		mocks := mock.NewMocks()
		mocks.Jobs.Stored = []*models.Job{{ID: 1, ProducerID: 9}}
		router := jobsRouter(t, mocks, &stubVerifier{result: blockchain.Result{OK: true}}, 1, models.RoleProducer)

		w := httptest.NewRecorder()
		router.ServeHTTP(w, paymentReq("0xabc", "sepolia"))
		if w.Code != http.StatusForbidden {
			t.Fatalf("status = %d, want 403", w.Code)
		}
	})
}

func TestListJobs(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Jobs.Stored = []*models.Job{
		{ID: 1, ProducerID: 1, Title: "a"},
		{ID: 2, ProducerID: 2, Title: "b"},
	}
	router := jobsRouter(t, mocks, &stubVerifier{}, 1, models.RoleProducer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/jobs?limit=10", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Limit  int          `json:"limit"`
		Items  []models.Job `json:"items"`
		Offset int          `json:"offset"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Limit != 10 || len(resp.Items) != 2 {
		t.Fatalf("limit=%d items=%d, want 10/2", resp.Limit, len(resp.Items))
	}
}

func TestListProducerJobs(t *testing.T) {
	mocks := mock.NewMocks()
	mocks.Jobs.Stored = []*models.Job{
		{ID: 1, ProducerID: 1, Title: "mine"},
		{ID: 2, ProducerID: 2, Title: "theirs"},
	}
	router := jobsRouter(t, mocks, &stubVerifier{}, 1, models.RoleProducer)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/producer/jobs", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var jobs []models.Job
	if err := json.Unmarshal(w.Body.Bytes(), &jobs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(jobs) != 1 || jobs[0].Title != "mine" {
		t.Fatalf("jobs = %v, want only the owned one", jobs)
	}
}
