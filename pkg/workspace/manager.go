package workspace

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/itemtree/internal/logging"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/layout"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
)

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// HooksFunc returns the hooks to install on every node of the named tree.
type HooksFunc func(tree string) domain.Hooks

// Manager owns named trees and serializes access to each of them.
// It uses reference counting to garbage collect unused locks.
type Manager struct {
	doc ports.Document

	mu    sync.Mutex            // guards locks and trees
	locks map[string]*lockEntry // active per-tree locks
	trees map[string]*tree.Node

	locker  ports.DistributedLocker
	lockTTL time.Duration
	hooks   []HooksFunc
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the expiry of distributed locks. Defaults to 30s.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithHooks installs per-tree observability hooks. It may be given several times.
func WithHooks(fn HooksFunc) Option {
	return func(m *Manager) {
		m.hooks = append(m.hooks, fn)
	}
}

// NewManager creates a Manager whose trees are built in doc.
func NewManager(doc ports.Document, opts ...Option) *Manager {
	m := &Manager{
		doc:     doc,
		locks:   make(map[string]*lockEntry),
		trees:   make(map[string]*tree.Node),
		lockTTL: 30 * time.Second,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Document returns the document trees are built in.
func (m *Manager) Document() ports.Document {
	return m.doc
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(name) after unlocking.
func (m *Manager) acquire(name string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		entry = &lockEntry{}
		m.locks[name] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[name]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, name)
	}
}

func (m *Manager) lookup(name string) (*tree.Node, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	root, ok := m.trees[name]
	return root, ok
}

func (m *Manager) hooksFor(name string) domain.Hooks {
	var h domain.Hooks
	for _, fn := range m.hooks {
		h = h.Chain(fn(name))
	}
	return h
}

// withLock executes fn while holding the local and, if configured, the distributed lock.
func (m *Manager) withLock(ctx context.Context, name string, fn func(context.Context) error) error {
	entry := m.acquire(name)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(name)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, name, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"tree", name,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Open creates an empty widget named name unless it already exists.
// It reports whether a tree was created.
func (m *Manager) Open(ctx context.Context, name string) (bool, error) {
	return m.open(ctx, name, func() (*tree.Node, error) {
		return tree.NewWidget(m.doc, name, tree.WithHooks(m.hooksFor(name)))
	})
}

// OpenLayout builds the tree described by spec under name, replacing any existing tree.
// The root's id is forced to name.
func (m *Manager) OpenLayout(ctx context.Context, name string, spec domain.NodeSpec) error {
	if name == "" {
		return fmt.Errorf("open tree: empty name: %w", domain.ErrInvalidArgument)
	}
	spec.ID = name
	return m.withLock(ctx, name, func(ctx context.Context) error {
		root, err := layout.Build(m.doc, spec, tree.WithHooks(m.hooksFor(name)))
		if err != nil {
			return fmt.Errorf("build tree %q: %w", name, err)
		}
		m.mu.Lock()
		m.trees[name] = root
		m.mu.Unlock()
		m.logger.Info("Tree built from layout", "tree", name, "children", root.Len())
		return nil
	})
}

func (m *Manager) open(ctx context.Context, name string, create func() (*tree.Node, error)) (bool, error) {
	if name == "" {
		return false, fmt.Errorf("open tree: empty name: %w", domain.ErrInvalidArgument)
	}
	created := false
	err := m.withLock(ctx, name, func(ctx context.Context) error {
		if _, ok := m.lookup(name); ok {
			return nil
		}
		root, err := create()
		if err != nil {
			return fmt.Errorf("create tree %q: %w", name, err)
		}
		m.mu.Lock()
		m.trees[name] = root
		m.mu.Unlock()
		created = true
		m.logger.Info("Tree opened", "tree", name)
		return nil
	})
	return created, err
}

// WithTree runs fn on the root of the named tree while holding its lock.
func (m *Manager) WithTree(ctx context.Context, name string, fn func(ctx context.Context, root *tree.Node) error) error {
	return m.withLock(ctx, name, func(ctx context.Context) error {
		root, ok := m.lookup(name)
		if !ok {
			return fmt.Errorf("%q: %w", name, domain.ErrTreeNotFound)
		}
		return fn(ctx, root)
	})
}

// NewNode creates a detached node that reports its mutations through the named tree's hooks.
func (m *Manager) NewNode(name, tag string, opts ...tree.Option) (*tree.Node, error) {
	opts = append(opts, tree.WithHooks(m.hooksFor(name)))
	return tree.New(m.doc, tag, opts...)
}

// Build creates a detached subtree from spec whose nodes report through the named tree's hooks.
func (m *Manager) Build(name string, spec domain.NodeSpec) (*tree.Node, error) {
	return layout.Build(m.doc, spec, tree.WithHooks(m.hooksFor(name)))
}

// Close forgets the named tree.
func (m *Manager) Close(ctx context.Context, name string) error {
	return m.withLock(ctx, name, func(ctx context.Context) error {
		m.mu.Lock()
		defer m.mu.Unlock()
		if _, ok := m.trees[name]; !ok {
			return fmt.Errorf("%q: %w", name, domain.ErrTreeNotFound)
		}
		delete(m.trees, name)
		m.logger.Info("Tree closed", "tree", name)
		return nil
	})
}

// List returns the names of open trees, sorted.
func (m *Manager) List() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.trees))
	for name := range m.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
