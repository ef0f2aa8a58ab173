package postgres_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenboard/eco-intake/internal/adapter/repo/postgres"
	"github.com/greenboard/eco-intake/internal/domain"
)

type fakeTx struct {
	execs      []string
	args       [][]any
	execErrAt  int // 1-based index of the Exec call that fails; 0 = never
	execErr    error
	zeroRowsAt int // 1-based index of the Exec call returning RowsAffected 0
	committed  bool
	rolledBack bool
}

func (t *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	t.execs = append(t.execs, sql)
	t.args = append(t.args, args)
	n := len(t.execs)
	if t.execErrAt != 0 && n == t.execErrAt {
		return pgconn.CommandTag{}, t.execErr
	}
	if t.zeroRowsAt != 0 && n == t.zeroRowsAt {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

func (t *fakeTx) Commit(context.Context) error {
	if t.rolledBack {
		return errors.New("tx closed")
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback(context.Context) error {
	if t.committed {
		return pgx.ErrTxClosed
	}
	t.rolledBack = true
	return nil
}

type fakeBeginner struct {
	tx       *fakeTx
	beginErr error
}

func (b *fakeBeginner) Begin(context.Context) (postgres.Tx, error) {
	if b.beginErr != nil {
		return nil, b.beginErr
	}
	return b.tx, nil
}

type fakeRow struct {
	vals []any
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	for i := range dest {
		switch d := dest[i].(type) {
		case *bool:
			*d = r.vals[i].(bool)
		}
	}
	return nil
}

type fakePool struct{ row fakeRow }

func (p *fakePool) Exec(context.Context, string, ...any) (pgconn.CommandTag, error) {
	return pgconn.NewCommandTag(""), nil
}
func (p *fakePool) QueryRow(context.Context, string, ...any) pgx.Row { return p.row }
func (p *fakePool) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not implemented")
}

func sampleSubmission() domain.Submission {
	return domain.Submission{
		StudentID:      "stu-1",
		AssignmentID:   "asg-1",
		FileLocator:    "01X_essay.pdf",
		FileName:       "essay.pdf",
		MIME:           "application/pdf",
		Size:           1024,
		PageCount:      3,
		Impact:         domain.ComputeImpact(3),
		IntegrityScore: 7,
	}
}

func TestCreateWithImpact_CommitsBothWrites(t *testing.T) {
	t.Parallel()
	tx := &fakeTx{}
	repo := postgres.NewSubmissionRepo(&fakePool{}, &fakeBeginner{tx: tx})

	out, err := repo.CreateWithImpact(context.Background(), sampleSubmission())
	require.NoError(t, err)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, domain.StatusSubmitted, out.Status)
	assert.False(t, out.CreatedAt.IsZero())

	require.Len(t, tx.execs, 2)
	assert.Contains(t, tx.execs[0], "INSERT INTO submissions")
	assert.Contains(t, tx.execs[1], "UPDATE students")
	assert.True(t, tx.committed)
	assert.False(t, tx.rolledBack)

	// The increment is a relative delta carrying this submission's impact.
	inc := tx.args[1]
	assert.Equal(t, "stu-1", inc[0])
	assert.Equal(t, 3, inc[1])
	assert.Equal(t, 4.86, inc[2])
	assert.Equal(t, 0.027, inc[3])
}

func TestCreateWithImpact_IncrementFailureRollsBackInsert(t *testing.T) {
	t.Parallel()
	tx := &fakeTx{execErrAt: 2, execErr: errors.New("disk on fire")}
	repo := postgres.NewSubmissionRepo(&fakePool{}, &fakeBeginner{tx: tx})

	_, err := repo.CreateWithImpact(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.False(t, tx.committed)
	assert.True(t, tx.rolledBack, "insert must not survive a failed increment")
}

func TestCreateWithImpact_InsertFailure(t *testing.T) {
	t.Parallel()
	tx := &fakeTx{execErrAt: 1, execErr: errors.New("duplicate key")}
	repo := postgres.NewSubmissionRepo(&fakePool{}, &fakeBeginner{tx: tx})

	_, err := repo.CreateWithImpact(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.False(t, tx.committed)
	require.Len(t, tx.execs, 1)
}

func TestCreateWithImpact_UnknownStudent(t *testing.T) {
	t.Parallel()
	tx := &fakeTx{zeroRowsAt: 2}
	repo := postgres.NewSubmissionRepo(&fakePool{}, &fakeBeginner{tx: tx})

	_, err := repo.CreateWithImpact(context.Background(), sampleSubmission())
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.False(t, tx.committed)
}

func TestCreateWithImpact_BeginFailure(t *testing.T) {
	t.Parallel()
	repo := postgres.NewSubmissionRepo(&fakePool{}, &fakeBeginner{beginErr: errors.New("pool exhausted")})
	_, err := repo.CreateWithImpact(context.Background(), sampleSubmission())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "op=submission.begin"))
}

func TestGet_NotFound(t *testing.T) {
	t.Parallel()
	repo := postgres.NewSubmissionRepo(&fakePool{row: fakeRow{err: pgx.ErrNoRows}}, &fakeBeginner{})
	_, err := repo.Get(context.Background(), "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocatorExists(t *testing.T) {
	t.Parallel()
	repo := postgres.NewSubmissionRepo(&fakePool{row: fakeRow{vals: []any{true}}}, &fakeBeginner{})
	ok, err := repo.LocatorExists(context.Background(), "01X_essay.pdf")
	require.NoError(t, err)
	assert.True(t, ok)
}
