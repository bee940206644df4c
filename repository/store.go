package repository

import "context"

// Tx groups the repositories bound to one transaction.
type Tx interface {
	Tasks() TaskRepository
	Subtasks() SubtaskRepository
	Events() EventRepository
}

// Store is the durable task store. Every externally triggered operation runs
// inside one InTx call: either all writes made through tx commit or none do.
type Store interface {
	InTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Ping(ctx context.Context) error
	Close() error
}
