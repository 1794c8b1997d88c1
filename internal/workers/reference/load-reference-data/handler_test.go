package loadreferencedata

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agency-workers/internal/agencyapi"
	"agency-workers/internal/common/errors"
	"agency-workers/internal/common/logger"
	"agency-workers/internal/models"
)

type fakeLoader struct {
	data  *agencyapi.ReferenceData
	err   error
	calls int
}

func (f *fakeLoader) LoadReferenceData(context.Context, *agencyapi.Cache) (*agencyapi.ReferenceData, error) {
	f.calls++
	return f.data, f.err
}

func testData() *agencyapi.ReferenceData {
	return &agencyapi.ReferenceData{
		Institutes:    []models.Institute{{ID: "i1", Name: "North College"}, {ID: "i2", Name: "South College"}},
		Terms:         []models.Term{{ID: "t1", Term: "Autumn"}},
		Courses:       []models.Course{{ID: "c1", Name: "BSc Computing"}},
		AcademicYears: []models.AcademicYear{{ID: "y1", AcademicYear: "2024/25"}},
	}
}

func TestExecute(t *testing.T) {
	loader := &fakeLoader{data: testData()}
	h := NewHandler(LoadConfig(nil), loader, nil, logger.NewTestLogger(t))

	out, err := h.Execute(context.Background(), &Input{})
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)
	assert.Equal(t, 2, out.Counts[agencyapi.ResourceInstitutes])
	assert.Equal(t, 1, out.Counts[agencyapi.ResourceAcademicYears])
	assert.Equal(t, "BSc Computing", out.ReferenceData.Courses[0].Name)
}

func TestExecute_RefreshInvalidatesCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	require.NoError(t, mr.Set("ref:terms", `[]`))
	require.NoError(t, mr.Set("ref:other", `[]`))

	cache := agencyapi.NewCache(rdb, time.Minute, logger.NewTestLogger(t))
	h := NewHandler(LoadConfig(nil), &fakeLoader{data: testData()}, cache, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{Refresh: false})
	require.NoError(t, err)
	assert.True(t, mr.Exists("ref:terms"))

	_, err = h.Execute(context.Background(), &Input{Refresh: true})
	require.NoError(t, err)
	assert.False(t, mr.Exists("ref:terms"))
	assert.True(t, mr.Exists("ref:other"))
}

func TestExecute_LoadError(t *testing.T) {
	h := NewHandler(LoadConfig(nil), &fakeLoader{err: errors.NewAPITimeoutError("GET", "/terms")}, nil, logger.NewTestLogger(t))

	_, err := h.Execute(context.Background(), &Input{})
	require.Error(t, err)
	assert.Equal(t, string(errors.ErrCodeAPITimeout), errors.Code(err))
}

func TestInputSchema(t *testing.T) {
	assert.True(t, inputSchema.Validate(`{"refresh":true}`).Valid)
	assert.True(t, inputSchema.Validate(`{}`).Valid)
	assert.False(t, inputSchema.Validate(`{"refresh":"yes"}`).Valid)
}
