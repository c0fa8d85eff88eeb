package driving

import (
	"context"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// ThreadService manages chat threads.
type ThreadService interface {
	// Create starts a new thread and makes it active.
	Create(ctx context.Context, title string) (*domain.ChatThread, error)

	// List fetches all threads and refreshes the local store.
	List(ctx context.Context) ([]domain.ChatThread, error)

	// Get fetches a thread with its messages.
	Get(ctx context.Context, id string) (*domain.ChatThread, error)

	// Delete removes a thread remotely and locally.
	Delete(ctx context.Context, id string) error

	// Select loads a thread and makes it active.
	Select(ctx context.Context, id string) (*domain.ChatThread, error)

	// Active returns the active thread, if any.
	Active() (domain.ChatThread, bool)
}
