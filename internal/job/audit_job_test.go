package job

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-kratos/kratos/v2/log"

	"github.com/bankcore/transfer-service/internal/conf"
)

// stubAccountRepo returns scripted totals for successive audit passes.
type stubAccountRepo struct {
	totals []int64
	calls  int
	err    error
}

func (s *stubAccountRepo) Debit(context.Context, string, int64) error  { return nil }
func (s *stubAccountRepo) Credit(context.Context, string, int64) error { return nil }
func (s *stubAccountRepo) GetBalance(context.Context, string) (int64, error) {
	return 0, nil
}

func (s *stubAccountRepo) TotalBalance(context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	total := s.totals[s.calls%len(s.totals)]
	s.calls++
	return total, nil
}

func TestConservationAuditJob_Baseline(t *testing.T) {
	repo := &stubAccountRepo{totals: []int64{1500, 1500}}
	j := NewConservationAuditJob(&conf.Audit{Enabled: true}, repo, log.DefaultLogger)

	ctx := context.Background()
	j.execute(ctx)
	if !j.hasBaseline {
		t.Fatal("expected baseline after first pass")
	}
	if j.lastTotal != 1500 {
		t.Fatalf("expected lastTotal 1500, got %d", j.lastTotal)
	}

	j.execute(ctx)
	if repo.calls != 2 {
		t.Fatalf("expected 2 audit passes, got %d", repo.calls)
	}
}

func TestConservationAuditJob_DriftUpdatesTotal(t *testing.T) {
	repo := &stubAccountRepo{totals: []int64{1500, 1400}}
	j := NewConservationAuditJob(&conf.Audit{Enabled: true}, repo, log.DefaultLogger)

	ctx := context.Background()
	j.execute(ctx)
	j.execute(ctx)

	// Drift is logged, and the new total becomes the next baseline.
	if j.lastTotal != 1400 {
		t.Fatalf("expected lastTotal 1400, got %d", j.lastTotal)
	}
}

func TestConservationAuditJob_ErrorKeepsBaseline(t *testing.T) {
	repo := &stubAccountRepo{totals: []int64{1500}}
	j := NewConservationAuditJob(&conf.Audit{Enabled: true}, repo, log.DefaultLogger)

	ctx := context.Background()
	j.execute(ctx)

	repo.err = errors.New("db down")
	j.execute(ctx)

	if j.lastTotal != 1500 {
		t.Fatalf("expected lastTotal to stay 1500, got %d", j.lastTotal)
	}
}

func TestConservationAuditJob_Config(t *testing.T) {
	repo := &stubAccountRepo{totals: []int64{0}}

	j := NewConservationAuditJob(nil, repo, log.DefaultLogger)
	if j.Enabled() {
		t.Fatal("expected disabled job without config")
	}
	if j.interval != defaultAuditInterval {
		t.Fatalf("expected default interval, got %s", j.interval)
	}

	j = NewConservationAuditJob(&conf.Audit{Enabled: true, Interval: conf.Duration(10 * time.Second)}, repo, log.DefaultLogger)
	if !j.Enabled() {
		t.Fatal("expected enabled job")
	}
	if j.interval != 10*time.Second {
		t.Fatalf("expected 10s interval, got %s", j.interval)
	}
}

func TestRegistry_Servers(t *testing.T) {
	repo := &stubAccountRepo{totals: []int64{0}}

	enabled := NewConservationAuditJob(&conf.Audit{Enabled: true}, repo, log.DefaultLogger)
	r := &Registry{Audit: enabled}
	if len(r.Servers()) != 1 {
		t.Fatalf("expected 1 server, got %d", len(r.Servers()))
	}

	disabled := NewConservationAuditJob(&conf.Audit{Enabled: false}, repo, log.DefaultLogger)
	r = &Registry{Audit: disabled}
	if len(r.Servers()) != 0 {
		t.Fatalf("expected 0 servers, got %d", len(r.Servers()))
	}
}
