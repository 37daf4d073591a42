package queue

// Option applies a configuration option to the Mailbox.
type Option func(*Mailbox)

// WithCapacity sets how many tasks may wait in the mailbox.
func WithCapacity(capacity int) Option {
	return func(q *Mailbox) {
		if capacity > 0 {
			q.capacity = capacity
		}
	}
}

// WithName labels the mailbox in logs.
func WithName(name string) Option {
	return func(q *Mailbox) {
		if name != "" {
			q.name = name
		}
	}
}
