package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"carepath/internal/patient"
	"carepath/internal/platform/middleware"
	"carepath/internal/recommendation"
	"carepath/internal/recommendation/handler/mocks"
	"carepath/internal/recommendation/service"
	dErrors "carepath/pkg/domain-errors"
	"carepath/pkg/testutil"
)

//go:generate mockgen -source=handler.go -destination=mocks/handler-mocks.go -package=mocks Service

// allowAllValidator accepts any bearer token. Handler tests exercise routing
// and response shaping; token verification is covered in the jwt_token tests.
type allowAllValidator struct{}

func (allowAllValidator) ValidateToken(string) (*middleware.TokenClaims, error) {
	return &middleware.TokenClaims{Username: "tester"}, nil
}

// denyAllValidator rejects every token.
type denyAllValidator struct{}

func (denyAllValidator) ValidateToken(string) (*middleware.TokenClaims, error) {
	return nil, errors.New("invalid token")
}

type EvaluateHandlerSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	service *mocks.MockService
	router  chi.Router
}

func TestEvaluateHandlerSuite(t *testing.T) {
	suite.Run(t, new(EvaluateHandlerSuite))
}

func (s *EvaluateHandlerSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.service = mocks.NewMockService(s.ctrl)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.service, logger, allowAllValidator{})
	s.router = chi.NewRouter()
	h.Register(s.router)
}

func (s *EvaluateHandlerSuite) TearDownTest() {
	s.ctrl.Finish()
}

func validBody() map[string]any {
	return map[string]any{
		"first_name":     "Margaret",
		"last_name":      "Okafor",
		"age":            67,
		"bmi":            37.0,
		"chronic_pain":   true,
		"recent_surgery": false,
	}
}

// =============================================================================
// POST /evaluate
// =============================================================================

func (s *EvaluateHandlerSuite) TestEvaluateFreshResultOmitsMessage() {
	s.service.EXPECT().
		Evaluate(gomock.Any(), service.EvaluateRequest{
			FirstName: "Margaret",
			LastName:  "Okafor",
			Attributes: patient.Attributes{
				Age:         67,
				BMI:         37.0,
				ChronicPain: true,
			},
		}).
		Return(&service.EvaluateResult{
			Recommendations: []string{recommendation.LabelPhysicalTherapy, recommendation.LabelWeightManagement},
		}, nil)

	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/evaluate", validBody()), "token")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)

	// A fresh result must not carry a message key at all.
	body := testutil.UnmarshalResponse[map[string]any](s.T(), rr)
	s.NotContains(*body, "message")
	s.Contains(*body, "recommendations")
}

func (s *EvaluateHandlerSuite) TestEvaluateCachedResultCarriesMessage() {
	s.service.EXPECT().
		Evaluate(gomock.Any(), gomock.Any()).
		Return(&service.EvaluateResult{
			Message:         service.MessageServedFromCache,
			Recommendations: []string{recommendation.LabelGeneralCheckup},
		}, nil)

	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/evaluate", validBody()), "token")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertJSONContains(s.T(), rr, "message", service.MessageServedFromCache)
}

func (s *EvaluateHandlerSuite) TestEvaluateMalformedBody() {
	req := testutil.WithBearer(
		testutil.NewRequestWithBody(s.T(), http.MethodPost, "/evaluate", "{not json"), "token")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(dErrors.CodeBadRequest))
}

func (s *EvaluateHandlerSuite) TestEvaluateValidation() {
	cases := []struct {
		name     string
		mutate   func(map[string]any)
		wantCode dErrors.Code
	}{
		{"missing first name", func(b map[string]any) { b["first_name"] = "" }, dErrors.CodeBadRequest},
		{"missing last name", func(b map[string]any) { b["last_name"] = "" }, dErrors.CodeBadRequest},
		{"negative age", func(b map[string]any) { b["age"] = -1 }, dErrors.CodeInvalidInput},
		{"zero bmi", func(b map[string]any) { b["bmi"] = 0.0 }, dErrors.CodeInvalidInput},
	}

	for _, tc := range cases {
		s.Run(tc.name, func() {
			body := validBody()
			tc.mutate(body)
			req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/evaluate", body), "token")
			rr := testutil.DoRequest(s.router, req)
			testutil.AssertStatusAndError(s.T(), rr, http.StatusBadRequest, string(tc.wantCode))
		})
	}
}

func (s *EvaluateHandlerSuite) TestEvaluateServiceError() {
	s.service.EXPECT().
		Evaluate(gomock.Any(), gomock.Any()).
		Return(nil, dErrors.New(dErrors.CodeInternal, "failed to evaluate patient"))

	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/evaluate", validBody()), "token")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusInternalServerError, string(dErrors.CodeInternal))
}

func (s *EvaluateHandlerSuite) TestEvaluateRequiresToken() {
	req := testutil.NewJSONRequest(s.T(), http.MethodPost, "/evaluate", validBody())
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

func (s *EvaluateHandlerSuite) TestEvaluateRejectsBadToken() {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := New(s.service, logger, denyAllValidator{})
	router := chi.NewRouter()
	h.Register(router)

	req := testutil.WithBearer(testutil.NewJSONRequest(s.T(), http.MethodPost, "/evaluate", validBody()), "garbage")
	rr := testutil.DoRequest(router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

// =============================================================================
// GET /recommendation/{id}
// =============================================================================

func (s *EvaluateHandlerSuite) TestGetRecommendation() {
	rec := &recommendation.Recommendation{
		ID:        "rec-1",
		PatientID: 42,
		Label:     recommendation.LabelPhysicalTherapy,
	}
	s.service.EXPECT().GetByID(gomock.Any(), "rec-1").Return(rec, nil)

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/recommendation/rec-1"), "token")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	testutil.AssertJSONContains(s.T(), rr, "recommendation", recommendation.LabelPhysicalTherapy)
	testutil.AssertJSONContains(s.T(), rr, "patient_id", float64(42))
}

func (s *EvaluateHandlerSuite) TestGetRecommendationNotFound() {
	s.service.EXPECT().
		GetByID(gomock.Any(), "missing").
		Return(nil, dErrors.New(dErrors.CodeNotFound, "recommendation not found"))

	req := testutil.WithBearer(testutil.NewRequest(s.T(), http.MethodGet, "/recommendation/missing"), "token")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatusAndError(s.T(), rr, http.StatusNotFound, string(dErrors.CodeNotFound))
}

func (s *EvaluateHandlerSuite) TestGetRecommendationRequiresToken() {
	req := testutil.NewRequest(s.T(), http.MethodGet, "/recommendation/rec-1")
	rr := testutil.DoRequest(s.router, req)

	testutil.AssertStatus(s.T(), rr, http.StatusUnauthorized)
}

// =============================================================================
// Debug Listings
// =============================================================================

func (s *EvaluateHandlerSuite) TestListPatientsIsOpen() {
	s.service.EXPECT().ListPatients(gomock.Any()).Return([]*patient.Patient{
		{ID: 1, FirstName: "Jane", LastName: "Doe"},
	}, nil)

	// No bearer token on purpose.
	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/patients"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	body := testutil.UnmarshalResponse[[]map[string]any](s.T(), rr)
	s.Len(*body, 1)
}

func (s *EvaluateHandlerSuite) TestListPatientsEmptyIsArray() {
	s.service.EXPECT().ListPatients(gomock.Any()).Return(nil, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/patients"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq("[]", rr.Body.String())
}

func (s *EvaluateHandlerSuite) TestListRecommendationsEmptyIsArray() {
	s.service.EXPECT().ListRecommendations(gomock.Any()).Return(nil, nil)

	rr := testutil.DoRequest(s.router, testutil.NewRequest(s.T(), http.MethodGet, "/recommendations"))

	testutil.AssertStatus(s.T(), rr, http.StatusOK)
	s.JSONEq("[]", rr.Body.String())
}
