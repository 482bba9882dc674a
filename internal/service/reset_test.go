package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"

	"github.com/aliskhannn/examprep-bot/internal/infra/postgres/repository"
)

// fakeTx records statements; only Exec is used by the reset path.
type fakeTx struct {
	pgx.Tx
	rows  int64
	execs []string
}

func (tx *fakeTx) Exec(_ context.Context, sql string, _ ...any) (pgconn.CommandTag, error) {
	tx.execs = append(tx.execs, sql)
	if tx.rows == 0 {
		return pgconn.NewCommandTag("UPDATE 0"), nil
	}
	return pgconn.NewCommandTag("UPDATE 1"), nil
}

type fakeTransactor struct {
	tx        *fakeTx
	committed bool
}

func (t *fakeTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context, tx pgx.Tx) error) error {
	if err := fn(ctx, t.tx); err != nil {
		return err
	}
	t.committed = true
	return nil
}

func TestResetService_ResetUser(t *testing.T) {
	tr := &fakeTransactor{tx: &fakeTx{rows: 1}}
	svc := NewResetService(tr, zap.NewNop())

	if err := svc.ResetUser(context.Background(), 42); err != nil {
		t.Fatal(err)
	}
	if !tr.committed {
		t.Fatal("transaction not committed")
	}
	if len(tr.tx.execs) != 2 {
		t.Fatalf("execs = %d, want 2", len(tr.tx.execs))
	}
	if !strings.Contains(tr.tx.execs[0], "UPDATE users") {
		t.Errorf("first statement = %q", tr.tx.execs[0])
	}
	if !strings.Contains(tr.tx.execs[1], "user_settings") {
		t.Errorf("second statement = %q", tr.tx.execs[1])
	}
}

func TestResetService_UnknownUser(t *testing.T) {
	tr := &fakeTransactor{tx: &fakeTx{}}
	svc := NewResetService(tr, zap.NewNop())

	err := svc.ResetUser(context.Background(), 42)
	if !errors.Is(err, repository.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
	if tr.committed {
		t.Fatal("committed after failure")
	}
	if len(tr.tx.execs) != 1 {
		t.Fatalf("settings touched after failure: %d execs", len(tr.tx.execs))
	}
}
