package limiter

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

type fakeRow struct{ scan func(dest ...any) error }

func (r fakeRow) Scan(dest ...any) error { return r.scan(dest...) }

type fakePool struct {
	qrErr         error
	qrBlockedTill time.Time
	qrFailsRet    int

	lastExecSQL string
	lastArgs    []any
	execErr     error
}

func (f *fakePool) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.lastExecSQL = sql
	f.lastArgs = args
	return pgconn.CommandTag{}, f.execErr
}

func (f *fakePool) QueryRow(_ context.Context, sql string, _ ...any) pgx.Row {
	switch {
	case strings.Contains(sql, "SELECT blocked_until"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*time.Time)) = f.qrBlockedTill
			return nil
		}}
	case strings.Contains(sql, "RETURNING fail_count"):
		return fakeRow{scan: func(dest ...any) error {
			if f.qrErr != nil {
				return f.qrErr
			}
			*(dest[0].(*int)) = f.qrFailsRet
			return nil
		}}
	default:
		return fakeRow{scan: func(...any) error { return errors.New("unexpected query") }}
	}
}

var testPolicy = Policy{Window: 5 * time.Minute, MaxFails: 5, BlockFor: 10 * time.Minute}

func TestPGAllow_NoRow_Allows(t *testing.T) {
	l := NewPG(&fakePool{qrErr: pgx.ErrNoRows}, testPolicy)

	ok, dur, err := l.Allow(context.Background(), "a@x.io", "h")
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow no-row: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestPGAllow_BlockedUntilFuture(t *testing.T) {
	l := NewPG(&fakePool{qrBlockedTill: time.Now().Add(10 * time.Minute)}, testPolicy)

	ok, dur, err := l.Allow(context.Background(), "a@x.io", "h")
	if err != nil || ok || dur <= 0 {
		t.Fatalf("Allow blocked: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestPGAllow_PastOrEpoch_Allows(t *testing.T) {
	l := NewPG(&fakePool{qrBlockedTill: time.Unix(0, 0)}, testPolicy)

	ok, dur, err := l.Allow(context.Background(), "a@x.io", "h")
	if err != nil || !ok || dur != 0 {
		t.Fatalf("Allow epoch: ok=%v dur=%v err=%v", ok, dur, err)
	}
}

func TestPGAllow_DBError_Propagates(t *testing.T) {
	l := NewPG(&fakePool{qrErr: errors.New("db boom")}, testPolicy)

	ok, _, err := l.Allow(context.Background(), "a@x.io", "h")
	if err == nil || ok {
		t.Fatalf("want error propagate, got ok=%v err=%v", ok, err)
	}
}

func TestPGSuccess_DeletesPair(t *testing.T) {
	fp := &fakePool{}
	l := NewPG(fp, testPolicy)

	if err := l.Success(context.Background(), "a@x.io", "h"); err != nil {
		t.Fatalf("success err: %v", err)
	}
	if !strings.Contains(fp.lastExecSQL, "DELETE FROM login_attempts") {
		t.Fatalf("unexpected exec: %s", fp.lastExecSQL)
	}

	fp.execErr = errors.New("exec fail")
	if err := l.Success(context.Background(), "a@x.io", "h"); err == nil {
		t.Fatalf("want exec error")
	}
}

func TestPGFailure_Increments_NoBlock(t *testing.T) {
	l := NewPG(&fakePool{qrFailsRet: 2}, testPolicy)

	blocked, dur, err := l.Failure(context.Background(), "a@x.io", "h")
	if err != nil || blocked || dur != 0 {
		t.Fatalf("Failure no block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
}

func TestPGFailure_BlocksAtThreshold(t *testing.T) {
	fp := &fakePool{qrFailsRet: 5}
	l := NewPG(fp, testPolicy)

	blocked, dur, err := l.Failure(context.Background(), "a@x.io", "h")
	if err != nil || !blocked || dur != 10*time.Minute {
		t.Fatalf("Failure block: blocked=%v dur=%v err=%v", blocked, dur, err)
	}
	if !strings.Contains(fp.lastExecSQL, "UPDATE login_attempts SET blocked_until") {
		t.Fatalf("must update blocked_until, exec=%s", fp.lastExecSQL)
	}
	if len(fp.lastArgs) != 3 || fp.lastArgs[0] != "a@x.io" {
		t.Fatalf("unexpected args: %v", fp.lastArgs)
	}
}

func TestPGFailure_DBErrorOnReturning(t *testing.T) {
	l := NewPG(&fakePool{qrErr: errors.New("query error")}, testPolicy)

	if _, _, err := l.Failure(context.Background(), "a@x.io", "h"); err == nil {
		t.Fatalf("want error from returning fail_count")
	}
}

func TestHashIP_Determinism(t *testing.T) {
	a := HashIP("1.2.3.4")
	b := HashIP("1.2.3.4")
	c := HashIP("5.6.7.8")
	if a != b || a == c || len(a) != 64 {
		t.Fatalf("hash mismatch/len: %d", len(a))
	}
}
