package retry

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestDoReturnsFirstSuccess(t *testing.T) {
	calls := 0
	out, err := Do(context.Background(), 3, time.Millisecond, func(ctx context.Context) (string, error) {
		calls++
		return "ok", nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out != "ok" || calls != 1 {
		t.Fatalf("expected one successful call, got out=%q calls=%d", out, calls)
	}
}

func TestDoRetriesTransientFailuresWithBackoff(t *testing.T) {
	calls := 0
	start := time.Now()
	base := 20 * time.Millisecond
	out, err := Do(context.Background(), 3, base, func(ctx context.Context) (int, error) {
		calls++
		if calls <= 2 {
			return 0, errors.New("dial tcp: connection refused")
		}
		return 42, nil
	})
	if err != nil {
		t.Fatalf("Do: %v", err)
	}
	if out != 42 || calls != 3 {
		t.Fatalf("expected success on third call, got out=%d calls=%d", out, calls)
	}
	// two delays: base and 2*base
	if elapsed := time.Since(start); elapsed < 3*base {
		t.Fatalf("expected at least %v of backoff, got %v", 3*base, elapsed)
	}
}

func TestDoFailsImmediatelyOnNonRetryable(t *testing.T) {
	calls := 0
	wantErr := errors.New("motion api rejected request: status 400")
	start := time.Now()
	_, err := Do(context.Background(), 3, 500*time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected original error identity, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt, got %d", calls)
	}
	if elapsed := time.Since(start); elapsed > 100*time.Millisecond {
		t.Fatalf("expected no backoff delay, slept %v", elapsed)
	}
}

func TestDoReturnsLastErrorAfterFinalAttempt(t *testing.T) {
	calls := 0
	wantErr := errors.New("http status 503 from upstream")
	_, err := Do(context.Background(), 3, time.Millisecond, func(ctx context.Context) (int, error) {
		calls++
		return 0, wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected last error, got %v", err)
	}
	if calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", calls)
	}
}

func TestDoStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err := Do(ctx, 5, time.Second, func(ctx context.Context) (int, error) {
		calls++
		return 0, errors.New("connection reset by peer")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected a single attempt before cancellation, got %d", calls)
	}
}

func TestRetryable(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"deadline", context.DeadlineExceeded, true},
		{"refused", errors.New("dial tcp 127.0.0.1:5001: connection refused"), true},
		{"reset", errors.New("read: connection reset by peer"), true},
		{"server error", errors.New("motion api http status 502: bad gateway"), true},
		{"timeout", errors.New("motion api timeout: context deadline exceeded"), true},
		{"client error", errors.New("motion api rejected request: status 422"), false},
		{"parse", errors.New("motion api response parse: invalid character"), false},
	}
	for _, tc := range cases {
		if got := Retryable(tc.err); got != tc.want {
			t.Errorf("%s: Retryable=%v want %v", tc.name, got, tc.want)
		}
	}
}
