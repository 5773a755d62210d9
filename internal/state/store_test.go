package state

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ---- NewID tests ------------------------------------------------------------

func TestNewID_Shape(t *testing.T) {
	t.Parallel()

	id := NewID()
	assert.Len(t, id, 8)

	// Ids must be unique enough for directory names.
	assert.NotEqual(t, id, NewID())
}

// ---- Create / Load tests ----------------------------------------------------

func TestStore_CreateAndLoad(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Create("abc12345", "42", WorkflowSDLC)
	require.NoError(t, err)

	assert.Equal(t, PhaseClassify, rec.CurrentPhase)
	assert.Empty(t, rec.CompletedPhases)
	assert.Equal(t, rec.CreatedAt, rec.UpdatedAt)

	loaded, err := store.Load("abc12345")
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, rec, loaded)
}

func TestStore_LoadMissingReturnsNil(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Load("nonexistent")
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestStore_LoadCorruptFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store := NewStore(dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "bad"), 0o755))
	require.NoError(t, os.WriteFile(store.Path("bad"), []byte("not json"), 0o644))

	_, err := store.Load("bad")
	assert.Error(t, err)
}

// ---- Save / round-trip tests ------------------------------------------------

func TestStore_SaveRefreshesUpdatedAt(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Create("abc12345", "7", WorkflowPlanBuild)
	require.NoError(t, err)

	rec.BranchName = "feat-7-toggle"
	require.NoError(t, store.Save(rec))

	loaded, err := store.Load("abc12345")
	require.NoError(t, err)
	assert.Equal(t, "feat-7-toggle", loaded.BranchName)
	assert.GreaterOrEqual(t, loaded.UpdatedAt, loaded.CreatedAt)
}

func TestStore_RoundTripStableExceptUpdatedAt(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Create("abc12345", "7", WorkflowPatch)
	require.NoError(t, err)
	rec.PlanFile = "specs/plan.md"
	require.NoError(t, store.Save(rec))

	first, err := os.ReadFile(store.Path("abc12345"))
	require.NoError(t, err)

	loaded, err := store.Load("abc12345")
	require.NoError(t, err)
	require.NoError(t, store.Save(loaded))

	second, err := os.ReadFile(store.Path("abc12345"))
	require.NoError(t, err)

	var a, b map[string]any
	require.NoError(t, json.Unmarshal(first, &a))
	require.NoError(t, json.Unmarshal(second, &b))
	delete(a, "updated_at")
	delete(b, "updated_at")
	assert.Equal(t, a, b)
}

// ---- Advance tests ----------------------------------------------------------

func TestStore_AdvanceRecordsCompletedPhase(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Create("abc12345", "1", WorkflowSDLC)
	require.NoError(t, err)

	require.NoError(t, store.Advance(rec, PhaseBranch))
	assert.Equal(t, PhaseBranch, rec.CurrentPhase)
	assert.Equal(t, []Phase{PhaseClassify}, rec.CompletedPhases)

	require.NoError(t, store.Advance(rec, PhasePlan))
	assert.Equal(t, []Phase{PhaseClassify, PhaseBranch}, rec.CompletedPhases)
}

func TestStore_AdvanceDoesNotDuplicateRerunPhase(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Create("abc12345", "1", WorkflowSDLC)
	require.NoError(t, err)

	require.NoError(t, store.Advance(rec, PhaseBranch))

	// A rerun moves back to a completed phase and advances again.
	rec.CurrentPhase = PhaseClassify
	require.NoError(t, store.Advance(rec, PhaseBranch))
	assert.Equal(t, []Phase{PhaseClassify}, rec.CompletedPhases)
}

// ---- MarkError tests --------------------------------------------------------

func TestStore_MarkError(t *testing.T) {
	t.Parallel()

	store := NewStore(t.TempDir())
	rec, err := store.Create("abc12345", "9", WorkflowPlanBuildTest)
	require.NoError(t, err)

	require.NoError(t, store.MarkError(rec, "Tests failed after 4 attempts"))

	loaded, err := store.Load("abc12345")
	require.NoError(t, err)
	assert.Equal(t, "Tests failed after 4 attempts", loaded.Error)
}

// ---- ReviewAttempt tests ----------------------------------------------------

func TestReviewAttempt_Blockers(t *testing.T) {
	t.Parallel()

	attempt := ReviewAttempt{
		Issues: []ReviewIssue{
			{File: "a.go", Severity: SeverityBlocker, Description: "broken"},
			{File: "b.go", Severity: SeverityWarning, Description: "smelly"},
			{File: "c.go", Severity: SeverityBlocker, Description: "unsafe"},
			{File: "d.go", Severity: SeveritySuggestion, Description: "style"},
		},
	}

	blockers := attempt.Blockers()
	require.Len(t, blockers, 2)
	assert.Equal(t, "a.go", blockers[0].File)
	assert.Equal(t, "c.go", blockers[1].File)
}
