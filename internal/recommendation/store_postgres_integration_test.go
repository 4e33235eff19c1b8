//go:build integration

package recommendation

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"carepath/pkg/platform/sentinel"
	"carepath/pkg/testutil/containers"
)

type RecommendationPostgresSuite struct {
	suite.Suite
	pg    *containers.PostgresContainer
	store *PostgresStore
}

func TestRecommendationPostgresSuite(t *testing.T) {
	suite.Run(t, new(RecommendationPostgresSuite))
}

func (s *RecommendationPostgresSuite) SetupSuite() {
	s.pg = containers.NewPostgresContainer(s.T())
	s.store = NewPostgresStore(s.pg.DB)
}

func (s *RecommendationPostgresSuite) SetupTest() {
	s.Require().NoError(s.pg.Truncate(context.Background()))
}

// seedPatient inserts a patient row directly so the FK constraint is
// satisfied, and returns its id.
func (s *RecommendationPostgresSuite) seedPatient(firstName, lastName string) int64 {
	var id int64
	err := s.pg.DB.QueryRowContext(context.Background(), `
		INSERT INTO patients (first_name, last_name, age, bmi, chronic_pain, recent_surgery)
		VALUES ($1, $2, 40, 22.0, false, false)
		RETURNING id
	`, firstName, lastName).Scan(&id)
	s.Require().NoError(err)
	return id
}

func (s *RecommendationPostgresSuite) TestSaveAndFindByID() {
	ctx := context.Background()
	patientID := s.seedPatient("Jane", "Doe")

	rec := &Recommendation{
		ID:        "rec-1",
		PatientID: patientID,
		Label:     LabelPhysicalTherapy,
		CreatedAt: time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.store.Save(ctx, rec))

	got, err := s.store.FindByID(ctx, "rec-1")
	s.Require().NoError(err)
	s.Equal(LabelPhysicalTherapy, got.Label)
	s.Equal(patientID, got.PatientID)
	s.True(got.CreatedAt.Equal(rec.CreatedAt))
}

func (s *RecommendationPostgresSuite) TestFindByIDNotFound() {
	_, err := s.store.FindByID(context.Background(), "missing")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RecommendationPostgresSuite) TestListByPatientBetween() {
	ctx := context.Background()
	janeID := s.seedPatient("Jane", "Doe")
	johnID := s.seedPatient("John", "Roe")

	day := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	save := func(id string, patientID int64, label string, at time.Time) {
		s.Require().NoError(s.store.Save(ctx, &Recommendation{
			ID: id, PatientID: patientID, Label: label, CreatedAt: at,
		}))
	}

	save("a", janeID, LabelPostOpRehab, day.Add(9*time.Hour))
	save("b", janeID, LabelWeightManagement, day.Add(9*time.Hour))
	save("c", johnID, LabelGeneralCheckup, day.Add(10*time.Hour))
	save("d", janeID, LabelGeneralCheckup, day.Add(-time.Hour))
	save("e", janeID, LabelGeneralCheckup, day.Add(24*time.Hour))

	from, to := DayWindow(day.Add(12 * time.Hour))
	recs, err := s.store.ListByPatientBetween(ctx, janeID, from, to)
	s.Require().NoError(err)
	s.Require().Len(recs, 2)

	// seq ordering: insertion order within the window, not id order.
	s.Equal("a", recs[0].ID)
	s.Equal("b", recs[1].ID)
}

func (s *RecommendationPostgresSuite) TestListPreservesInsertionOrder() {
	ctx := context.Background()
	patientID := s.seedPatient("Jane", "Doe")

	at := time.Date(2025, 6, 15, 10, 0, 0, 0, time.UTC)
	ids := []string{"z", "m", "a", "q"}
	for _, id := range ids {
		s.Require().NoError(s.store.Save(ctx, &Recommendation{
			ID: id, PatientID: patientID, Label: LabelGeneralCheckup, CreatedAt: at,
		}))
	}

	recs, err := s.store.List(ctx)
	s.Require().NoError(err)
	s.Require().Len(recs, 4)
	for i, id := range ids {
		s.Equal(id, recs[i].ID)
	}
}

func (s *RecommendationPostgresSuite) TestPatientDeleteCascades() {
	ctx := context.Background()
	patientID := s.seedPatient("Jane", "Doe")

	s.Require().NoError(s.store.Save(ctx, &Recommendation{
		ID: "rec-1", PatientID: patientID, Label: LabelGeneralCheckup,
		CreatedAt: time.Now().UTC(),
	}))

	_, err := s.pg.DB.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, patientID)
	s.Require().NoError(err)

	_, err = s.store.FindByID(ctx, "rec-1")
	s.ErrorIs(err, sentinel.ErrNotFound)
}
