// Package pipeline wires the selector, the symbol index and the assembly
// builder into the dev-agent flow: rank the candidate symbols, lay down stub
// context, escalate tier by tier while the task warrants it, then render the
// final prompt context and record what happened.
package pipeline

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"weft/internal/assembly"
	"weft/internal/config"
	"weft/internal/index"
	"weft/internal/milestone"
	"weft/internal/selector"
	"weft/internal/storage"
)

// Escalation reasons recorded in the builder log.
const (
	ReasonComplexity   = "complexity_signal"
	ReasonInsufficient = "insufficient_context"
)

// ContextSource supplies per-tier text for symbols. *index.Index satisfies
// it; tests plug in their own. Fingerprint must change whenever the symbol
// content changes, since cached results are keyed to it.
type ContextSource interface {
	Names() []string
	Fingerprint() string
	Stub(name string) (string, bool)
	Body(name string) (string, bool)
	Dependencies(name string) []index.Dependency
}

// resultCache is the slice of the redis store the pipeline uses, behind an
// interface so the cache path is testable without a live server.
type resultCache interface {
	GetAssembly(key string) (*storage.AssemblyRecord, error)
	CacheAssembly(key string, rec *storage.AssemblyRecord, ttl time.Duration) error
}

// Result is one finished assembly.
type Result struct {
	MilestoneID string
	Task        string
	Context     string
	Meta        assembly.Metadata
	Ranked      []selector.ScoredSymbol
	Primary     []string
	Duration    time.Duration
	FromCache   bool
}

// Assembler runs the context-assembly flow. The selector is pure and the
// source is read-only after load, so one Assembler can serve concurrent
// requests; each request gets its own builder.
type Assembler struct {
	cfg     *config.Config
	source  ContextSource
	sel     *selector.Selector
	cache   resultCache
	history *storage.SQLite
}

// Option configures an Assembler.
type Option func(*Assembler)

// WithCache attaches a Redis result cache.
func WithCache(r *storage.Redis) Option {
	return func(a *Assembler) { a.cache = r }
}

// WithHistory attaches the sqlite assembly history.
func WithHistory(s *storage.SQLite) Option {
	return func(a *Assembler) { a.history = s }
}

// New creates an Assembler over a context source.
func New(cfg *config.Config, source ContextSource, opts ...Option) *Assembler {
	a := &Assembler{
		cfg:    cfg,
		source: source,
		sel:    cfg.Selector(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assemble builds the context for one task. milestoneID may be empty for
// ad hoc tasks.
func (a *Assembler) Assemble(milestoneID, task string) (*Result, error) {
	start := time.Now()

	// Ranking is pure and cheap, so it runs even for cache hits; only the
	// assembled context and its metadata come out of the cache.
	ranked := a.sel.RankDetailed(task, a.source.Names())
	rankedNames := make([]string, len(ranked))
	for i, r := range ranked {
		rankedNames[i] = r.Name
	}
	primary := a.sel.PrimaryTargets(task, rankedNames)

	cacheKey := assemblyKey(a.source.Fingerprint(), milestoneID, task)
	if a.cache != nil {
		if rec, err := a.cache.GetAssembly(cacheKey); err == nil {
			return &Result{
				MilestoneID: rec.MilestoneID,
				Task:        rec.Task,
				Context:     rec.Context,
				Meta:        rec.Meta,
				Ranked:      ranked,
				Primary:     primary,
				Duration:    time.Since(start),
				FromCache:   true,
			}, nil
		}
	}

	b := assembly.New(a.cfg.Assembly.MaxTokens, assembly.WithPolicy(a.cfg.Policy()))
	b.SetPrimaryTargets(primary)

	// Stub tier: signatures for the top-ranked symbols.
	stubCount := a.cfg.Assembly.StubCount
	if stubCount <= 0 || stubCount > len(rankedNames) {
		stubCount = len(rankedNames)
	}
	for _, name := range rankedNames[:stubCount] {
		stub, ok := a.source.Stub(name)
		if !ok || stub == "" {
			continue
		}
		if err := b.AddContext(stub, assembly.TierStub, name, assembly.KindStub); err != nil {
			return nil, fmt.Errorf("stub tier: %w", err)
		}
	}

	// Local-body tier: full implementations of the primary targets, but only
	// when the task looks complex enough to need them.
	if b.ShouldEscalate(task, "") && b.Escalate(assembly.TierLocalBody, ReasonComplexity) {
		for _, name := range primary {
			body, ok := a.source.Body(name)
			if !ok || body == "" {
				continue
			}
			if err := b.AddContext(body, assembly.TierLocalBody, name, assembly.KindFullBody); err != nil {
				return nil, fmt.Errorf("local-body tier: %w", err)
			}
		}

		// Dependency tier: what the primaries call and are called by. The
		// budget is advisory here (the builder trims at render time), but
		// there is no point escalating past an already-blown budget.
		provisional := b.BuildFinalContext(task, milestoneID)
		if b.CurrentTokens() < b.MaxTokens() && b.ShouldEscalate(task, provisional) &&
			b.Escalate(assembly.TierDependencies, ReasonInsufficient) {
			a.addDependencies(b, primary)
		}
	}

	out := b.BuildFinalContext(task, milestoneID)
	meta := b.Metadata()

	res := &Result{
		MilestoneID: milestoneID,
		Task:        task,
		Context:     out,
		Meta:        meta,
		Ranked:      ranked,
		Primary:     primary,
		Duration:    time.Since(start),
	}

	a.record(cacheKey, res)
	return res, nil
}

// addDependencies adds related bodies for each primary target, stopping once
// the accumulated cost passes the budget.
func (a *Assembler) addDependencies(b *assembly.Builder, primary []string) {
	seen := make(map[string]bool, len(primary))
	for _, p := range primary {
		seen[p] = true
	}
	for _, p := range primary {
		for _, dep := range a.source.Dependencies(p) {
			if b.CurrentTokens() >= b.MaxTokens() {
				return
			}
			if seen[dep.Symbol] {
				continue
			}
			seen[dep.Symbol] = true
			// AddContext cannot fail here: the builder already sits at the
			// dependencies tier.
			_ = b.AddContext(dep.Body, assembly.TierDependencies, dep.Symbol, assembly.KindDependency)
		}
	}
}

// record writes the result to cache and history; both are best-effort.
func (a *Assembler) record(cacheKey string, res *Result) {
	if a.cache != nil {
		ttl := time.Duration(a.cfg.Cache.Redis.TTLHours) * time.Hour
		_ = a.cache.CacheAssembly(cacheKey, &storage.AssemblyRecord{
			MilestoneID: res.MilestoneID,
			Task:        res.Task,
			Context:     res.Context,
			Meta:        res.Meta,
			CreatedAt:   time.Now().UTC(),
		}, ttl)
	}
	if a.history != nil {
		_ = a.history.SaveAssembly(storage.HistoryEntry{
			MilestoneID: res.MilestoneID,
			Task:        res.Task,
			Tier:        res.Meta.Tier,
			TokensUsed:  res.Meta.TokensUsed,
			MaxTokens:   a.cfg.Assembly.MaxTokens,
			Symbols:     res.Meta.SymbolsProcessed,
			Escalations: len(res.Meta.Escalations),
		})
	}
}

// AssembleMilestone looks the milestone up in the store and assembles its
// task.
func (a *Assembler) AssembleMilestone(store *milestone.Store, id string) (*Result, error) {
	m, err := store.Get(id)
	if err != nil {
		return nil, err
	}
	task := m.Description
	if task == "" {
		task = m.Title
	}
	return a.Assemble(m.ID, task)
}

// AssembleAll runs every milestone in the store. Builders are per-request
// and the shared pieces are read-only, so the runs proceed concurrently.
func (a *Assembler) AssembleAll(ctx context.Context, store *milestone.Store) ([]*Result, error) {
	milestones, err := store.List()
	if err != nil {
		return nil, err
	}

	results := make([]*Result, len(milestones))
	g, _ := errgroup.WithContext(ctx)
	g.SetLimit(4)
	for i, m := range milestones {
		i, m := i, m
		g.Go(func() error {
			res, err := a.AssembleMilestone(store, m.ID)
			if err != nil {
				return fmt.Errorf("milestone %s: %w", m.ID, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// assemblyKey ties a cached result to the exact index content as well as the
// task, so a re-index invalidates stale entries without any explicit flush.
func assemblyKey(indexFingerprint, milestoneID, task string) string {
	h := sha256.Sum256([]byte(indexFingerprint + "\x00" + milestoneID + "\x00" + task))
	return hex.EncodeToString(h[:])
}
