package core

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"milkchain/core/events"
	"milkchain/core/state"
	"milkchain/native/access"
	nativecommon "milkchain/native/common"
	"milkchain/native/itemfactory"
	"milkchain/native/milk"
	"milkchain/native/rewards"
	"milkchain/observability"
	telemetry "milkchain/observability/otel"
	"milkchain/storage"
)

// Components bundles the native modules an operation may touch.
type Components struct {
	MilkRoles    *access.Registry
	FactoryRoles *access.Registry
	Ledger       *milk.Ledger
	Rewards      *rewards.Registry
	Factory      *itemfactory.Engine
}

// Options configures a Node.
type Options struct {
	Token   milk.Metadata
	Factory itemfactory.Config
	// Rarity replaces the default thresholds reported before any admin
	// update. Nil keeps the built-in defaults.
	Rarity *rewards.Thresholds
	Pauses nativecommon.PauseView
	Logger *slog.Logger
	// Emitter receives every event of a committed operation, in order.
	Emitter events.Emitter
	Tracer  trace.Tracer
}

// Node is the single sequencer for all state mutations. Each Apply runs to
// completion under the write lock and either commits as one storage batch or
// leaves state exactly as it was.
type Node struct {
	mu         sync.RWMutex
	db         storage.Database
	state      *state.Manager
	buffer     *events.Buffer
	downstream events.Emitter
	components *Components
	logger     *slog.Logger
	tracer     trace.Tracer
	decimals   uint8
}

// NewNode wires the native modules over the provided database.
func NewNode(db storage.Database, opts Options) (*Node, error) {
	if db == nil {
		return nil, fmt.Errorf("core: database required")
	}
	mgr := state.NewManager(db)
	buffer := &events.Buffer{}

	milkRoles := access.NewRegistry(mgr, milk.ModuleName)
	factoryRoles := access.NewRegistry(mgr, itemfactory.ModuleName)
	ledger := milk.NewLedger(mgr, milkRoles, opts.Token)
	rewardsRegistry := rewards.NewRegistry(mgr, factoryRoles)
	if opts.Rarity != nil {
		if err := rewardsRegistry.SetDefaults(*opts.Rarity); err != nil {
			return nil, fmt.Errorf("core: rarity defaults: %w", err)
		}
	}
	factory := itemfactory.NewEngine(mgr, factoryRoles, rewardsRegistry, ledger, opts.Factory)

	milkRoles.SetEmitter(buffer)
	factoryRoles.SetEmitter(buffer)
	ledger.SetEmitter(buffer)
	rewardsRegistry.SetEmitter(buffer)
	factory.SetEmitter(buffer)

	ledger.SetPauses(opts.Pauses)
	rewardsRegistry.SetPauses(opts.Pauses)
	factory.SetPauses(opts.Pauses)

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	tracer := opts.Tracer
	if tracer == nil {
		tracer = telemetry.Tracer()
	}
	downstream := opts.Emitter
	if downstream == nil {
		downstream = events.NoopEmitter{}
	}

	return &Node{
		db:         db,
		state:      mgr,
		buffer:     buffer,
		downstream: downstream,
		components: &Components{
			MilkRoles:    milkRoles,
			FactoryRoles: factoryRoles,
			Ledger:       ledger,
			Rewards:      rewardsRegistry,
			Factory:      factory,
		},
		logger:   logger.With(slog.String("component", "core")),
		tracer:   tracer,
		decimals: ledger.Metadata().Decimals,
	}, nil
}

// Apply runs fn as one atomic operation. On error every write fn made is
// reverted and its events are dropped; on success the writes are committed
// in a single batch and the events are forwarded downstream. The committed
// events are returned.
func (n *Node) Apply(ctx context.Context, op string, fn func(*Components) error) (committed []events.Event, err error) {
	ctx, span := n.tracer.Start(ctx, "milkchain."+op, trace.WithAttributes(attribute.String("op", op)))
	defer span.End()
	start := time.Now()

	n.mu.Lock()
	defer n.mu.Unlock()
	defer func() {
		observability.Ledger().ObserveOp(op, err, time.Since(start))
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap := n.state.Snapshot()
	if err := fn(n.components); err != nil {
		n.buffer.Drop()
		if revertErr := n.state.RevertToSnapshot(snap); revertErr != nil {
			n.state.Discard()
			err = errors.Join(err, revertErr)
		}
		n.logger.Warn("operation rejected", slog.String("op", op), slog.String("outcome", "rejected"), slog.Any("error", err))
		return nil, err
	}

	written, err := n.state.Commit()
	if err != nil {
		n.buffer.Drop()
		n.state.Discard()
		n.logger.Error("commit failed", slog.String("op", op), slog.String("outcome", "error"), slog.Any("error", err))
		return nil, err
	}

	committed = n.buffer.Flush(n.downstream)
	n.publish(committed)
	span.SetAttributes(attribute.Int("keys", written), attribute.Int("events", len(committed)))
	n.logger.Debug("operation committed",
		slog.String("op", op),
		slog.String("outcome", "committed"),
		slog.Int("keys", written),
		slog.Int("events", len(committed)))
	return committed, nil
}

// View runs fn against committed state under the read lock. fn must not
// mutate state.
func (n *Node) View(fn func(*Components) error) error {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return fn(n.components)
}

// Close releases the underlying database.
func (n *Node) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.state.Discard()
	n.db.Close()
}

func (n *Node) publish(committed []events.Event) {
	metrics := observability.Events()
	for _, evt := range committed {
		metrics.RecordEvent(evt.EventType())
		switch e := evt.(type) {
		case events.Transfer:
			metrics.RecordTransfer(e.Asset)
		case events.TokenSupply:
			observability.Ledger().SetSupply(e.Token, e.Total, n.decimals)
		case events.DailyClaim:
			observability.Ledger().RecordClaim(e.Tier)
		}
	}
}
