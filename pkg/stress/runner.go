// Copyright (C) 2026 Storj Labs, Inc.
// See LICENSE for copying information.

package stress

import (
	"context"
	"io"

	"github.com/zeebo/errs"
	"go.uber.org/zap"

	"storj.io/kvstress/internal/errs2"
	"storj.io/kvstress/storage"
)

// Mode selects what a run does.
type Mode int

const (
	// ModeStress verifies, deletes every key and inserts keys forever.
	ModeStress Mode = iota
	// ModeCheck verifies and probes the last key without mutating.
	ModeCheck
	// ModeDump prints every record without verifying.
	ModeDump
)

// ParseMode parses the optional mode argument.
func ParseMode(token string) (Mode, error) {
	switch token {
	case "":
		return ModeStress, nil
	case "check":
		return ModeCheck, nil
	case "dump":
		return ModeDump, nil
	default:
		return ModeStress, Error.New("unknown mode %q, expected \"check\" or \"dump\"", token)
	}
}

// String implements fmt.Stringer.
func (mode Mode) String() string {
	switch mode {
	case ModeCheck:
		return "check"
	case ModeDump:
		return "dump"
	default:
		return "stress"
	}
}

// Runner sequences the verifier, the tail locator and the executor.
type Runner struct {
	log    *zap.Logger
	env    storage.Env
	config Config
	out    io.Writer
}

// NewRunner creates a runner. Dump output goes to out.
func NewRunner(log *zap.Logger, env storage.Env, config Config, out io.Writer) *Runner {
	return &Runner{
		log:    log,
		env:    env,
		config: config,
		out:    out,
	}
}

// Run runs mode until it finishes, fails or ctx is cancelled. A cancelled
// stress run stops between transactions and returns nil.
func (runner *Runner) Run(ctx context.Context, mode Mode) (err error) {
	defer mon.Task()(&ctx)(&err)

	verifier := NewVerifier(runner.log.Named("verify"), runner.config.MaxValueSize)

	if mode == ModeDump {
		summary, err := verifier.Dump(ctx, runner.env, runner.out)
		runner.log.Debug("dumped", zap.Uint64("records", summary.Records))
		return err
	}

	if _, err := ReportStats(ctx, runner.log.Named("stats"), runner.env); err != nil {
		return err
	}

	runner.log.Info("verifying database")
	summary, err := verifier.Verify(ctx, runner.env)
	if err != nil {
		return err
	}
	runner.log.Info("ok", zap.Uint64("records", summary.Records), zap.Int64("value bytes", summary.Bytes))

	lastKey, ok, err := LastKey(ctx, runner.env)
	if err != nil {
		return err
	}
	if ok {
		runner.log.Info("last key in database", zap.Uint64("last key", lastKey))
	} else {
		runner.log.Info("empty database")
	}

	if mode == ModeCheck {
		return runner.probe(ctx, lastKey)
	}

	executor := NewExecutor(runner.log.Named("executor"), runner.env, runner.config)

	lastKey, err = executor.DeleteDown(ctx, lastKey)
	if err != nil {
		if errs2.IsCanceled(err) {
			return runner.stopped(ctx, verifier, lastKey)
		}
		return err
	}

	next, err := executor.InsertUp(ctx, 1, runner.config.InsertLimit)
	if err := errs2.IgnoreCanceled(err); err != nil {
		return err
	}
	return runner.stopped(ctx, verifier, next-1)
}

// probe reads lastKey in a read-only transaction. An empty database probes
// key 0, which does not exist.
func (runner *Runner) probe(ctx context.Context, lastKey uint64) (err error) {
	tx, err := runner.env.BeginRead(ctx)
	if err != nil {
		return Error.Wrap(err)
	}
	defer func() { err = errs.Combine(err, Error.Wrap(tx.Rollback())) }()

	value, err := tx.Get(EncodeKey(lastKey))
	if err != nil {
		return Error.Wrap(err)
	}
	runner.log.Info("key present", zap.Uint64("key", lastKey), zap.Int("value length", len(value)))
	return nil
}

// stopped handles a graceful stop with the range [1, lastKey] committed.
func (runner *Runner) stopped(ctx context.Context, verifier *Verifier, lastKey uint64) error {
	runner.log.Info("stopped", zap.Uint64("last key", lastKey))
	if !runner.config.VerifyOnStop {
		return nil
	}

	summary, err := verifier.Verify(context.WithoutCancel(ctx), runner.env)
	if err != nil {
		return err
	}
	if summary.Records != lastKey {
		return &IntegrityError{Kind: CountMismatch, Expected: lastKey, Actual: summary.Records}
	}
	runner.log.Info("ok", zap.Uint64("records", summary.Records))
	return nil
}
