package workspace_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/itemtree/pkg/adapters/memory"
	"github.com/aretw0/itemtree/pkg/domain"
	"github.com/aretw0/itemtree/pkg/ports"
	"github.com/aretw0/itemtree/pkg/tree"
	"github.com/aretw0/itemtree/pkg/workspace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	args := m.Called(ctx, key, ttl)
	unlock, _ := args.Get(0).(ports.UnlockFunc)
	return unlock, args.Error(1)
}

func TestManager_OpenAndList(t *testing.T) {
	mgr := workspace.NewManager(memory.NewDocument())
	ctx := context.Background()

	created, err := mgr.Open(ctx, "b")
	require.NoError(t, err)
	assert.True(t, created)
	created, err = mgr.Open(ctx, "b")
	require.NoError(t, err)
	assert.False(t, created, "opening twice keeps the existing tree")
	_, err = mgr.Open(ctx, "a")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, mgr.List())

	err = mgr.WithTree(ctx, "a", func(ctx context.Context, root *tree.Node) error {
		ok, err := root.ClassList().Contains(domain.ClassWidget)
		require.NoError(t, err)
		assert.True(t, ok, "roots are widgets")
		assert.Equal(t, "a", root.ID())
		return nil
	})
	require.NoError(t, err)

	_, err = mgr.Open(ctx, "")
	assert.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func TestManager_UnknownTree(t *testing.T) {
	mgr := workspace.NewManager(memory.NewDocument())
	ctx := context.Background()

	err := mgr.WithTree(ctx, "missing", func(ctx context.Context, root *tree.Node) error {
		t.Fatal("fn must not run")
		return nil
	})
	assert.ErrorIs(t, err, domain.ErrTreeNotFound)
	assert.ErrorIs(t, mgr.Close(ctx, "missing"), domain.ErrTreeNotFound)
}

func TestManager_ConcurrentMutations(t *testing.T) {
	mgr := workspace.NewManager(memory.NewDocument())
	ctx := context.Background()
	_, err := mgr.Open(ctx, "main")
	require.NoError(t, err)

	var wg sync.WaitGroup
	const writers = 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := mgr.WithTree(ctx, "main", func(ctx context.Context, root *tree.Node) error {
				n, err := mgr.NewNode("main", "div", tree.WithID(fmt.Sprintf("n%d", i)))
				if err != nil {
					return err
				}
				_, err = root.InsertAt(0, n)
				return err
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	err = mgr.WithTree(ctx, "main", func(ctx context.Context, root *tree.Node) error {
		assert.Equal(t, writers, root.Len())
		children, err := root.View().Children()
		require.NoError(t, err)
		assert.Len(t, children, writers)
		return nil
	})
	require.NoError(t, err)
}

func TestManager_Hooks(t *testing.T) {
	var (
		mu     sync.Mutex
		events = map[string][]domain.MutationEvent{}
	)
	hooks := func(name string) domain.Hooks {
		return domain.Hooks{OnMutation: func(e domain.MutationEvent) {
			mu.Lock()
			defer mu.Unlock()
			events[name] = append(events[name], e)
		}}
	}
	mgr := workspace.NewManager(memory.NewDocument(), workspace.WithHooks(hooks))
	ctx := context.Background()
	_, err := mgr.Open(ctx, "main")
	require.NoError(t, err)

	err = mgr.WithTree(ctx, "main", func(ctx context.Context, root *tree.Node) error {
		panel, err := mgr.NewNode("main", "div", tree.WithID("panel"))
		if err != nil {
			return err
		}
		if _, err := root.Add(panel); err != nil {
			return err
		}
		leaf, err := mgr.NewNode("main", "span", tree.WithID("leaf"))
		if err != nil {
			return err
		}
		_, err = panel.Add(leaf)
		return err
	})
	require.NoError(t, err)

	require.Len(t, events["main"], 2)
	assert.Equal(t, "main", events["main"][0].ParentID)
	assert.Equal(t, "panel", events["main"][1].ParentID)
}

func TestManager_OpenLayout(t *testing.T) {
	mgr := workspace.NewManager(memory.NewDocument())
	ctx := context.Background()

	spec := domain.NodeSpec{ID: "ignored", Kind: domain.KindWidget, Children: []domain.NodeSpec{
		{ID: "opts", Kind: domain.KindOptions},
	}}
	require.NoError(t, mgr.OpenLayout(ctx, "main", spec))

	err := mgr.WithTree(ctx, "main", func(ctx context.Context, root *tree.Node) error {
		assert.Equal(t, "main", root.ID())
		assert.Equal(t, []string{"opts"}, root.IDs())
		return nil
	})
	require.NoError(t, err)

	bad := domain.NodeSpec{Kind: domain.KindNode, Tag: "div", Children: []domain.NodeSpec{{Classes: []string{"two words"}}}}
	assert.ErrorIs(t, mgr.OpenLayout(ctx, "broken", bad), domain.ErrInvalidArgument)
	assert.Equal(t, []string{"main"}, mgr.List())
}

func TestManager_DistributedLock(t *testing.T) {
	locker := new(MockLocker)
	var released int
	unlock := ports.UnlockFunc(func(ctx context.Context) error {
		released++
		return nil
	})
	locker.On("Lock", mock.Anything, "main", 5*time.Second).Return(unlock, nil)

	mgr := workspace.NewManager(memory.NewDocument(),
		workspace.WithLocker(locker),
		workspace.WithLockTTL(5*time.Second),
	)
	ctx := context.Background()

	_, err := mgr.Open(ctx, "main")
	require.NoError(t, err)
	require.NoError(t, mgr.WithTree(ctx, "main", func(ctx context.Context, root *tree.Node) error { return nil }))

	locker.AssertNumberOfCalls(t, "Lock", 2)
	assert.Equal(t, 2, released)
}

func TestManager_DistributedLockFailure(t *testing.T) {
	locker := new(MockLocker)
	errDown := errors.New("redis down")
	locker.On("Lock", mock.Anything, "main", mock.Anything).Return(nil, errDown)

	mgr := workspace.NewManager(memory.NewDocument(), workspace.WithLocker(locker))
	_, err := mgr.Open(context.Background(), "main")

	assert.ErrorIs(t, err, errDown)
	assert.Empty(t, mgr.List())
	locker.AssertExpectations(t)
}
