package reconcile

import (
	"context"
	"log"
	"time"

	"bookmap/internal/isbn"
	"bookmap/internal/provider"
	"bookmap/pkg/models"
)

// Source is the provider surface the reconciler drives. *provider.Retailer
// satisfies it.
type Source interface {
	Lookup(ctx context.Context, isbn13 string) (provider.Response, error)
	Search(ctx context.Context, query string) (provider.Response, error)
}

type State string

const (
	Attempting         State = "attempting"
	FallbackAttempting State = "fallback_attempting"
	Succeeded          State = "succeeded"
	ExhaustedEmpty     State = "exhausted_empty"
	TransportFailed    State = "transport_failed"
)

type Strategy string

const (
	StrategyLookup Strategy = "lookup"
	StrategySearch Strategy = "search"
)

// Hint is the last provider-reported diagnostic seen before giving up.
type Hint struct {
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

type Attempt struct {
	Strategy  Strategy `json:"strategy"`
	N         int      `json:"n"`
	Items     int      `json:"items"`
	ErrorCode string   `json:"error_code,omitempty"`
	ErrorMsg  string   `json:"error_message,omitempty"`
}

type Result struct {
	ISBN     string              `json:"isbn"`
	State    State               `json:"state"`
	Strategy Strategy            `json:"strategy,omitempty"`
	Items    []models.LookupItem `json:"items"`
	Hint     *Hint               `json:"hint,omitempty"`
	Attempts []Attempt           `json:"attempts"`
}

// Empty reports a soft "no items found" outcome.
func (r Result) Empty() bool { return r.State == ExhaustedEmpty }

type Reconciler struct {
	Source           Source
	PrimaryAttempts  int
	FallbackAttempts int
	Cooldown         time.Duration
	// Wait sleeps between attempts; replaced in tests.
	Wait func(ctx context.Context, d time.Duration) error
}

func New(src Source) *Reconciler {
	return &Reconciler{
		Source:           src,
		PrimaryAttempts:  3,
		FallbackAttempts: 2,
		Cooldown:         250 * time.Millisecond,
		Wait:             sleep,
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// Resolve turns a raw identifier into lookup items. An exhausted run is not an
// error: it returns State ExhaustedEmpty with the latest hint. Transport and
// parse failures stop the run and come back as the error with State
// TransportFailed.
func (rc *Reconciler) Resolve(ctx context.Context, raw string) (Result, error) {
	code, err := isbn.ToISBN13(raw)
	if err != nil {
		return Result{}, err
	}

	res := Result{ISBN: code, State: Attempting, Items: []models.LookupItem{}}
	var primaryHint, fallbackHint *Hint

	steps := []struct {
		state    State
		strategy Strategy
		attempts int
		call     func(context.Context, string) (provider.Response, error)
		hint     **Hint
	}{
		{Attempting, StrategyLookup, rc.PrimaryAttempts, rc.Source.Lookup, &primaryHint},
		{FallbackAttempting, StrategySearch, rc.FallbackAttempts, rc.Source.Search, &fallbackHint},
	}

	for _, step := range steps {
		res.State = step.state
		for n := 1; n <= step.attempts; n++ {
			if n > 1 {
				if err := rc.wait(ctx); err != nil {
					return res, err
				}
			}

			resp, err := step.call(ctx, code)
			if err != nil {
				res.State = TransportFailed
				res.Strategy = step.strategy
				log.Printf("[reconcile] %s %s attempt %d: %v", code, step.strategy, n, err)
				return res, err
			}

			res.Attempts = append(res.Attempts, Attempt{
				Strategy:  step.strategy,
				N:         n,
				Items:     len(resp.Items),
				ErrorCode: resp.ErrorCode,
				ErrorMsg:  resp.ErrorMessage,
			})
			if resp.HasError() {
				*step.hint = &Hint{Code: resp.ErrorCode, Message: resp.ErrorMessage}
			}
			if len(resp.Items) > 0 {
				res.State = Succeeded
				res.Strategy = step.strategy
				res.Items = resp.Items
				return res, nil
			}
		}
	}

	res.State = ExhaustedEmpty
	res.Hint = fallbackHint
	if res.Hint == nil {
		res.Hint = primaryHint
	}
	if res.Hint == nil {
		res.Hint = &Hint{Message: "no items found"}
	}
	log.Printf("[reconcile] %s exhausted after %d attempts", code, len(res.Attempts))
	return res, nil
}

func (rc *Reconciler) wait(ctx context.Context) error {
	if rc.Cooldown <= 0 {
		return ctx.Err()
	}
	w := rc.Wait
	if w == nil {
		w = sleep
	}
	return w(ctx, rc.Cooldown)
}
