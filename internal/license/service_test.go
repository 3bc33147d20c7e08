package license

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrollcast/backend/config"
)

type fakeCounter struct {
	completed int
	monthly   int
}

func (f *fakeCounter) CountByStatus(ctx context.Context, status string) (int, error) {
	return f.completed, nil
}

func (f *fakeCounter) CountInMonth(ctx context.Context, month string) (int, error) {
	return f.monthly, nil
}

func plansConfig(plan string) config.PlansConfig {
	return config.PlansConfig{
		Plan:         plan,
		LicenseKey:   "key",
		FreeLimit:    1,
		StarterLimit: 50,
		ProLimit:     100,
		AgencyLimit:  500,
	}
}

func TestLimitPerPlan(t *testing.T) {
	counter := &fakeCounter{}
	assert.Equal(t, 1, NewService(plansConfig("free"), counter, nil, nil).Limit())
	assert.Equal(t, 50, NewService(plansConfig("starter"), counter, nil, nil).Limit())
	assert.Equal(t, 100, NewService(plansConfig("pro"), counter, nil, nil).Limit())
	assert.Equal(t, 500, NewService(plansConfig("agency"), counter, nil, nil).Limit())
	// unknown plans get the free allotment
	assert.Equal(t, 1, NewService(plansConfig("enterprise"), counter, nil, nil).Limit())
}

func TestFreePlanLifetimeLimit(t *testing.T) {
	svc := NewService(plansConfig("free"), &fakeCounter{completed: 0}, nil, nil)
	ok, reason, err := svc.CanCreate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, reason)

	svc = NewService(plansConfig("free"), &fakeCounter{completed: 1}, nil, nil)
	ok, reason, err = svc.CanCreate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "Free recording used. Upgrade to create more recordings.", reason)
}

func TestFreePlanIgnoresMonthlyCount(t *testing.T) {
	// the free tier counts completed recordings over the lifetime, never
	// the monthly count
	svc := NewService(plansConfig("free"), &fakeCounter{completed: 1, monthly: 0}, nil, nil)
	ok, _, err := svc.CanCreate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPaidPlanMonthlyLimit(t *testing.T) {
	svc := NewService(plansConfig("starter"), &fakeCounter{completed: 200, monthly: 49}, nil, nil)
	ok, _, err := svc.CanCreate(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	svc = NewService(plansConfig("starter"), &fakeCounter{completed: 200, monthly: 50}, nil, nil)
	ok, reason, err := svc.CanCreate(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "You have reached your monthly recording limit.", reason)
}

func TestCurrentStatus(t *testing.T) {
	svc := NewService(plansConfig("pro"), &fakeCounter{completed: 80, monthly: 12}, nil, nil)
	st, err := svc.CurrentStatus(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "pro", st.Plan)
	assert.Equal(t, 100, st.UsageLimit)
	assert.Equal(t, 12, st.CurrentUsage)
	assert.Equal(t, 80, st.TotalCompleted)
	assert.True(t, st.CanCreate)
	assert.Equal(t, "Active plan", st.Message)
}

func TestCurrentStatusAtLimit(t *testing.T) {
	svc := NewService(plansConfig("free"), &fakeCounter{completed: 1}, nil, nil)
	st, err := svc.CurrentStatus(context.Background())
	require.NoError(t, err)
	assert.False(t, st.CanCreate)
	assert.Equal(t, "Free recording used. Upgrade to create more recordings.", st.Message)
}
