package patient_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/dentaldesk/internal/service/patient"
	"github.com/Alijeyrad/dentaldesk/internal/table/tabletest"
)

func historyBackend(items ...map[string]any) *tabletest.Backend {
	b := tabletest.NewBackend(items...)
	b.GetBy = "patientId"
	return b
}

func TestLookupTreatsMissingAsAbsent(t *testing.T) {
	svc := patient.NewHistoryService(historyBackend(), nil)

	rec, err := svc.Lookup(context.Background(), "42")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestLookupRequiresPatient(t *testing.T) {
	svc := patient.NewHistoryService(historyBackend(), nil)

	_, err := svc.Lookup(context.Background(), "")
	assert.ErrorIs(t, err, patient.ErrPatientIDRequired)
}

func TestSaveCreatesUnderPatient(t *testing.T) {
	backend := historyBackend()
	svc := patient.NewHistoryService(backend, nil)

	rec, err := svc.Save(context.Background(), "42", patient.SaveRequest{
		Fields:     map[string]any{"medications": "ibuprofen"},
		Conditions: map[string]bool{"diabetes": true, "smoker": false},
	})
	require.NoError(t, err)
	assert.NotNil(t, rec["id"])

	posts := backend.Calls("POST")
	require.Len(t, posts, 1)
	assert.Equal(t, "42", posts[0].RelatedID)
	body := posts[0].Body
	assert.Equal(t, "42", body["patientId"])
	assert.Equal(t, "ibuprofen", body["medications"])
	assert.Equal(t, true, body["diabetes"])
	assert.Equal(t, false, body["smoker"])
	assert.Equal(t, false, body["asthma"])
	assert.Empty(t, backend.Calls("PUT"))
}

func TestSaveUpdatesExistingHistory(t *testing.T) {
	backend := historyBackend(map[string]any{
		"id":              "h1",
		"patientId":       "42",
		"diabetes":        true,
		"lastDentalVisit": "2023-11-02T00:00:00Z",
	})
	svc := patient.NewHistoryService(backend, nil)

	_, err := svc.Save(context.Background(), "42", patient.SaveRequest{
		Conditions: map[string]bool{"diabetes": false, "asthma": true},
	})
	require.NoError(t, err)

	puts := backend.Calls("PUT")
	require.Len(t, puts, 1)
	assert.Equal(t, "h1", puts[0].ID)
	body := puts[0].Body
	assert.Equal(t, false, body["diabetes"])
	assert.Equal(t, true, body["asthma"])
	assert.Equal(t, false, body["pregnant"])
	assert.Equal(t, "2023-11-02", body["lastDentalVisit"])
	assert.Empty(t, backend.Calls("POST"))
}

func TestSaveRejectsUnknownCondition(t *testing.T) {
	backend := historyBackend()
	svc := patient.NewHistoryService(backend, nil)

	_, err := svc.Save(context.Background(), "42", patient.SaveRequest{
		Conditions: map[string]bool{"gills": true},
	})
	assert.ErrorIs(t, err, patient.ErrUnknownCondition)
	assert.Empty(t, backend.Calls("POST"))
}

func TestSaveRejectsOwnershipFields(t *testing.T) {
	svc := patient.NewHistoryService(historyBackend(), nil)

	_, err := svc.Save(context.Background(), "42", patient.SaveRequest{
		Fields: map[string]any{"patientId": "43"},
	})
	assert.ErrorIs(t, err, patient.ErrReadOnlyField)
}

func TestSaveSurfacesBackendFailure(t *testing.T) {
	backend := historyBackend()
	backend.FailCreate = true
	svc := patient.NewHistoryService(backend, nil)

	_, err := svc.Save(context.Background(), "42", patient.SaveRequest{})
	assert.ErrorIs(t, err, tabletest.ErrBackend)
}

func TestConditionsAreCopied(t *testing.T) {
	svc := patient.NewHistoryService(historyBackend(), nil)

	conds := svc.Conditions()
	require.NotEmpty(t, conds)
	conds[0].Key = "changed"
	assert.NotEqual(t, "changed", svc.Conditions()[0].Key)
}
