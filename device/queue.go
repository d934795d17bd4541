package device

import (
	"gbcart/cartridge"
	"log"
	"sync"
)

// Queue serializes every access to one cartridge. A single goroutine owns the
// cartridge and executes commands in submission order, so no two commands
// ever drive the bus at the same time no matter how many transports submit.
type Queue struct {
	// driver name
	name string

	cart *cartridge.Cartridge

	// unbuffered: a command is only accepted while the owner goroutine runs
	cq   chan CommandWithCompletion
	done chan struct{}

	closeOnce sync.Once
	closeErr  error
}

func NewQueue(name string, cart *cartridge.Cartridge) *Queue {
	if cart == nil {
		panic("cartridge must not be nil")
	}

	q := &Queue{
		name: name,
		cart: cart,
		cq:   make(chan CommandWithCompletion),
		done: make(chan struct{}),
	}

	go q.handleQueue()

	return q
}

func (q *Queue) Name() string { return q.name }

// Done is closed once the queue has stopped and the cartridge is closed.
func (q *Queue) Done() <-chan struct{} { return q.done }

func (q *Queue) Enqueue(cmd CommandWithCompletion) error {
	select {
	case <-q.done:
		return ErrQueueClosed
	case q.cq <- cmd:
		return nil
	}
}

// Do enqueues cmd and blocks until it has executed.
func (q *Queue) Do(cmd Command) error {
	result := make(chan error, 1)
	err := q.Enqueue(CommandWithCompletion{
		Command: cmd,
		Completion: func(_ Command, err error) {
			result <- err
		},
	})
	if err != nil {
		return err
	}
	return <-result
}

// Close stops the queue after the commands already accepted and closes the
// cartridge.
func (q *Queue) Close() error {
	// ErrQueueClosed here only means someone else stopped it first
	_ = q.Enqueue(CommandWithCompletion{Command: &CloseCommand{}})
	<-q.done
	return q.closeErr
}

func (q *Queue) handleQueue() {
	var err error
	doClose := func() {
		q.closeOnce.Do(func() {
			if err != nil {
				log.Printf("%s: %v\n", q.name, err)
			}

			log.Printf("%s: closing cartridge\n", q.name)
			q.closeErr = q.cart.Close()
			if q.closeErr != nil {
				log.Printf("%s: %v\n", q.name, q.closeErr)
			}

			close(q.done)
		})
	}
	defer doClose()

	for pair := range q.cq {
		cmd := pair.Command
		if cmd == nil {
			break
		}

		terminal := false
		if _, ok := cmd.(*CloseCommand); ok {
			log.Printf("%s: processing CloseCommand\n", q.name)
			terminal = true
		}

		err = cmd.Execute(q.cart)
		if err != nil && IsTerminalError(err) {
			terminal = true
		}
		if pair.Completion != nil {
			pair.Completion(cmd, err)
		} else if err != nil {
			log.Printf("%s: %v\n", q.name, err)
		}

		if terminal {
			break
		}
		err = nil
	}
}
