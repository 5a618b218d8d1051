package observability

import (
	"log/slog"

	"github.com/aretw0/itemtree/pkg/domain"
)

// LogHooks returns a hooks factory that logs every mutation at debug level.
func LogHooks(logger *slog.Logger) func(tree string) domain.Hooks {
	return func(tree string) domain.Hooks {
		return domain.Hooks{
			OnMutation: func(e domain.MutationEvent) {
				logger.Debug("tree_mutation",
					"tree", tree,
					"op", e.Op,
					"parent", e.ParentID,
					"item", e.ItemID,
					"index", e.Index,
				)
			},
		}
	}
}
