package main

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glowupgrow/terrarium-api/internal/testutil"
)

func TestAPIClient_SessionAndTerrariumFlow(t *testing.T) {
	ts := testutil.NewTestServer(t)
	client := NewAPIClient(ts.BaseURL())

	session, err := client.Register("alice", "pw123!", "a@x.com")
	require.NoError(t, err)
	assert.True(t, session.Success)

	me, err := client.Me()
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)

	models, err := client.ListModels()
	require.NoError(t, err)
	plants, err := client.ListPlants()
	require.NoError(t, err)
	model, ok := findModel(models, 1)
	require.True(t, ok)
	basil, ok := findPlant(plants, "Basil")
	require.True(t, ok)

	terrarium, err := client.CreateTerrarium(session.ID, model.ID)
	require.NoError(t, err)
	_, err = client.AssignPlant(terrarium.ID, basil.ID)
	require.NoError(t, err)

	temperature := 23.0
	updated, err := client.RecordReadings(Readings{TerrariumID: terrarium.ID, Temperature: &temperature})
	require.NoError(t, err)
	assert.Equal(t, 23.0, updated.Temperature)
	assert.Equal(t, basil.ID, updated.Plant)

	list, err := client.ListTerrariums(session.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, client.Logout())

	_, err = client.Me()
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusForbidden, statusErr.Status)
	assert.Equal(t, "not logged in", statusErr.Message)
}
