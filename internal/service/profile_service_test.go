package service

import (
	"alcyxob/fitgen/internal/domain"
	"alcyxob/fitgen/internal/repository"
	"alcyxob/fitgen/internal/repository/memory"
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

// stubGenerator records invocations and answers with reply or err.
type stubGenerator struct {
	mu       sync.Mutex
	calls    int
	payloads []map[string]any
	reply    func(payload map[string]any) string
	err      error
}

func (g *stubGenerator) GenerateProgram(ctx context.Context, payload map[string]any) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.calls++
	g.payloads = append(g.payloads, payload)
	if g.err != nil {
		return "", g.err
	}
	return g.reply(payload), nil
}

func fixed(text string) *stubGenerator {
	return &stubGenerator{reply: func(map[string]any) string { return text }}
}

type stubExporter struct {
	objects map[string][]byte
	putErr  error
}

func (e *stubExporter) PutObject(ctx context.Context, key, contentType string, body []byte) error {
	if e.putErr != nil {
		return e.putErr
	}
	if e.objects == nil {
		e.objects = map[string][]byte{}
	}
	e.objects[key] = body
	return nil
}

func (e *stubExporter) GeneratePresignedDownloadURL(ctx context.Context, key string, expires time.Duration) (string, error) {
	return "https://storage.test/" + key + "?sig=1", nil
}

type fixture struct {
	svc      *profileService
	profiles *memory.ProfileRepository
	programs *memory.ProgramRepository
	gen      *stubGenerator
	exporter *stubExporter
}

func newFixture(t *testing.T, gen *stubGenerator) *fixture {
	t.Helper()
	f := &fixture{
		profiles: memory.NewProfileRepository(),
		programs: memory.NewProgramRepository(),
		gen:      gen,
		exporter: &stubExporter{},
	}
	clock := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	svc := NewProfileService(f.profiles, f.programs, gen, f.exporter).(*profileService)
	svc.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	f.svc = svc
	return f
}

func validSteps() []domain.StepUpdate {
	return []domain.StepUpdate{
		domain.Step1{Gender: ptr(domain.GenderMale), Age: ptr(30), Height: ptr(180), Weight: ptr(80)},
		domain.Step2{Goal: ptr(domain.GoalBench100kg), Months: ptr(6)},
		domain.Step3{CurrentResults: ptr("bench 80kg x5"), LastTrained: ptr(domain.ExperienceCurrently)},
		domain.Step4{WorkoutsPerWeek: ptr(3), WorkoutDuration: ptr(60), TrainingStyle: ptr(domain.StyleStrength)},
		domain.Step5{HealthRestrictions: ptr(""), Preferences: ptr("")},
	}
}

func (f *fixture) completeProfile(t *testing.T) *domain.Profile {
	t.Helper()
	ctx := context.Background()
	p, err := f.svc.CreateProfile(ctx, nil)
	require.NoError(t, err)
	for _, step := range validSteps() {
		p, err = f.svc.UpdateStep(ctx, p.ID, step)
		require.NoError(t, err)
	}
	require.True(t, p.IsComplete())
	return p
}

func TestCreateProfile_StartsIncomplete(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()

	p, err := f.svc.CreateProfile(ctx, ptr("tg-7"))
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.False(t, p.IsComplete())

	stored, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, stored.ID)

	byOwner, err := f.svc.GetProfileByOwner(ctx, "tg-7")
	require.NoError(t, err)
	assert.Equal(t, p.ID, byOwner.ID)
}

func TestUpdateStep_CompletesInAnyOrder(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()

	p, err := f.svc.CreateProfile(ctx, nil)
	require.NoError(t, err)

	steps := validSteps()
	order := []int{4, 2, 0, 3, 1}
	for i, idx := range order {
		p, err = f.svc.UpdateStep(ctx, p.ID, steps[idx])
		require.NoError(t, err)
		assert.Equal(t, i == len(order)-1, p.IsComplete(), "after %d steps", i+1)
	}

	stored, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.IsComplete())
}

func TestUpdateStep_Idempotent(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()

	p, err := f.svc.CreateProfile(ctx, nil)
	require.NoError(t, err)
	step := validSteps()[0]

	once, err := f.svc.UpdateStep(ctx, p.ID, step)
	require.NoError(t, err)
	twice, err := f.svc.UpdateStep(ctx, p.ID, step)
	require.NoError(t, err)

	assert.True(t, twice.UpdatedAt.After(once.UpdatedAt))
	twice.UpdatedAt = once.UpdatedAt
	assert.Equal(t, once, twice)
}

func TestUpdateStep_OutOfRangeLeavesProfileUntouched(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()

	p, err := f.svc.CreateProfile(ctx, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateStep(ctx, p.ID, validSteps()[0])
	require.NoError(t, err)

	_, err = f.svc.UpdateStep(ctx, p.ID, domain.Step1{Gender: ptr(domain.GenderMale), Age: ptr(5), Height: ptr(180), Weight: ptr(80)})
	require.ErrorIs(t, err, domain.ErrValidation)
	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "age", verr.Field)
	assert.Equal(t, "min=10", verr.Constraint)

	stored, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 30, *stored.Age)
}

func TestUpdateStep_UnknownProfile(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	_, err := f.svc.UpdateStep(context.Background(), "missing", validSteps()[0])
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestGenerateProgram_IncompleteNeverCallsGateway(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()

	p, err := f.svc.CreateProfile(ctx, nil)
	require.NoError(t, err)
	for _, step := range validSteps()[:4] {
		_, err = f.svc.UpdateStep(ctx, p.ID, step)
		require.NoError(t, err)
	}

	_, err = f.svc.GenerateProgram(ctx, p.ID)
	require.ErrorIs(t, err, ErrIncompleteProfile)
	assert.Contains(t, err.Error(), "health_restrictions")
	assert.Zero(t, f.gen.calls)

	programs, err := f.svc.ListPrograms(ctx, p.ID)
	require.NoError(t, err)
	assert.Empty(t, programs)
}

func TestGenerateProgram_AppendsFixedText(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()
	p := f.completeProfile(t)

	first, err := f.svc.GenerateProgram(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "PLAN-A", first.Content)
	assert.Equal(t, p.ID, first.ProfileID)

	second, err := f.svc.GenerateProgram(ctx, p.ID)
	require.NoError(t, err)

	programs, err := f.svc.ListPrograms(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, *first, programs[0])
	assert.Equal(t, *second, programs[1])

	stored, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.GeneratedProgram)
	assert.Equal(t, "PLAN-A", *stored.GeneratedProgram)
	assert.True(t, stored.IsComplete())
}

func TestGenerateProgram_KeepsStepsAppliedDuringGeneration(t *testing.T) {
	gen := &stubGenerator{}
	f := newFixture(t, gen)
	ctx := context.Background()
	p := f.completeProfile(t)

	gen.reply = func(map[string]any) string {
		_, err := f.svc.UpdateStep(ctx, p.ID, domain.Step1{Gender: ptr(domain.GenderMale), Age: ptr(55), Height: ptr(180), Weight: ptr(80)})
		require.NoError(t, err)
		return "PLAN-A"
	}

	_, err := f.svc.GenerateProgram(ctx, p.ID)
	require.NoError(t, err)

	stored, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Age)
	assert.Equal(t, 55, *stored.Age)
	require.NotNil(t, stored.GeneratedProgram)
	assert.Equal(t, "PLAN-A", *stored.GeneratedProgram)
}

func TestGenerateProgram_GatewayFailureWritesNothing(t *testing.T) {
	gen := fixed("PLAN-A")
	f := newFixture(t, gen)
	ctx := context.Background()
	p := f.completeProfile(t)

	_, err := f.svc.GenerateProgram(ctx, p.ID)
	require.NoError(t, err)
	before, err := f.svc.ListPrograms(ctx, p.ID)
	require.NoError(t, err)
	profileBefore, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)

	netErr := errors.New("dial tcp: connection refused")
	gen.err = netErr

	_, err = f.svc.GenerateProgram(ctx, p.ID)
	require.ErrorIs(t, err, ErrLLMService)
	require.ErrorIs(t, err, netErr)
	var lerr *LLMServiceError
	require.ErrorAs(t, err, &lerr)
	assert.Equal(t, netErr.Error(), lerr.Message)

	after, err := f.svc.ListPrograms(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, len(before), len(after))

	profileAfter, err := f.svc.GetProfile(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, profileBefore, profileAfter)
}

func TestGenerateProgram_EchoesGoal(t *testing.T) {
	gen := &stubGenerator{reply: func(payload map[string]any) string {
		return fmt.Sprintf("program for goal %v", payload["goal"])
	}}
	f := newFixture(t, gen)
	ctx := context.Background()

	p, err := f.svc.CreateProfile(ctx, nil)
	require.NoError(t, err)
	_, err = f.svc.UpdateStep(ctx, p.ID, domain.Step1{Gender: ptr(domain.GenderMale), Age: ptr(30), Height: ptr(180), Weight: ptr(80)})
	require.NoError(t, err)
	_, err = f.svc.UpdateStep(ctx, p.ID, domain.Step2{Goal: ptr(domain.GoalPullups12), Months: ptr(4)})
	require.NoError(t, err)
	_, err = f.svc.UpdateStep(ctx, p.ID, domain.Step3{CurrentResults: ptr("5 pullups"), LastTrained: ptr(domain.ExperienceLessThan3Months)})
	require.NoError(t, err)
	_, err = f.svc.UpdateStep(ctx, p.ID, domain.Step4{WorkoutsPerWeek: ptr(4), WorkoutDuration: ptr(45), TrainingStyle: ptr(domain.StyleBalanced)})
	require.NoError(t, err)
	p, err = f.svc.UpdateStep(ctx, p.ID, domain.Step5{HealthRestrictions: ptr(""), Preferences: ptr("")})
	require.NoError(t, err)
	require.True(t, p.IsComplete())

	program, err := f.svc.GenerateProgram(ctx, p.ID)
	require.NoError(t, err)
	assert.Contains(t, program.Content, "pullups_12")

	require.Len(t, gen.payloads, 1)
	assert.Equal(t, "pullups_12", gen.payloads[0]["goal"])
	assert.Equal(t, 30, gen.payloads[0]["age"])
	assert.Nil(t, gen.payloads[0]["custom_goal"])
}

func TestListPrograms_ThreeDistinctRecords(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()
	p := f.completeProfile(t)

	for i := 0; i < 3; i++ {
		_, err := f.svc.GenerateProgram(ctx, p.ID)
		require.NoError(t, err)
	}

	programs, err := f.svc.ListPrograms(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, programs, 3)

	ids := map[string]bool{}
	for i, prog := range programs {
		ids[prog.ID] = true
		if i > 0 {
			assert.False(t, prog.CreatedAt.Before(programs[i-1].CreatedAt))
		}
	}
	assert.Len(t, ids, 3)

	latest, err := f.svc.LatestProgram(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, programs[2].ID, latest.ID)
}

func TestListPrograms_UnknownProfile(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	_, err := f.svc.ListPrograms(context.Background(), "missing")
	require.ErrorIs(t, err, ErrProfileNotFound)
}

func TestLatestProgram_None(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	p := f.completeProfile(t)
	_, err := f.svc.LatestProgram(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrProgramNotFound)
}

func TestExportProgram(t *testing.T) {
	f := newFixture(t, fixed("PLAN-A"))
	ctx := context.Background()
	p := f.completeProfile(t)

	program, err := f.svc.GenerateProgram(ctx, p.ID)
	require.NoError(t, err)

	url, err := f.svc.ExportProgram(ctx, p.ID, program.ID)
	require.NoError(t, err)
	key := fmt.Sprintf("programs/%s/%s.txt", p.ID, program.ID)
	assert.Equal(t, "https://storage.test/"+key+"?sig=1", url)
	assert.Equal(t, []byte("PLAN-A"), f.exporter.objects[key])

	_, err = f.svc.ExportProgram(ctx, p.ID, "missing")
	require.ErrorIs(t, err, ErrProgramNotFound)

	f.exporter.putErr = errors.New("bucket gone")
	_, err = f.svc.ExportProgram(ctx, p.ID, program.ID)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket gone")
}

func TestExportProgram_Unavailable(t *testing.T) {
	svc := NewProfileService(memory.NewProfileRepository(), memory.NewProgramRepository(), fixed("x"), nil)
	_, err := svc.ExportProgram(context.Background(), "any", "any")
	require.ErrorIs(t, err, ErrExportUnavailable)
}

type failingProfiles struct {
	repository.ProfileRepository
	err error
}

func (r failingProfiles) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	return nil, r.err
}

func TestGetProfile_StoreErrorPropagates(t *testing.T) {
	storeErr := errors.New("connection reset")
	svc := NewProfileService(failingProfiles{err: storeErr}, memory.NewProgramRepository(), fixed("x"), nil)

	_, err := svc.GetProfile(context.Background(), "id")
	require.ErrorIs(t, err, storeErr)
	assert.NotErrorIs(t, err, ErrProfileNotFound)
}
